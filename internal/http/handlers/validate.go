package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"descsvc/internal/description"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("nopathsep", func(fl validator.FieldLevel) bool {
		return !description.HasPathSeparator(fl.Field().String())
	})
	_ = v.RegisterValidation("nodotsegment", func(fl validator.FieldLevel) bool {
		return !description.IsDotSegment(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// rule maps one failing field/tag pair to the message reported to clients.
// Rules are listed in reporting priority.
type rule struct {
	field string
	tag   string
	msg   string
}

var generateRules = []rule{
	{"subject", "required", "Missing required field: subject"},
	{"context", "required", "Missing required field: context"},
	{"source_url", "required", "Missing required field: source_url"},
	{"subject", "nopathsep", "Invalid subject: must not contain path separators"},
	{"subject", "nodotsegment", "Invalid subject: must not be . or .."},
	{"source_url", "startswith", "Invalid source_url: must be a valid URL"},
	{"context", "max", "context too long: maximum 5000 characters"},
	{"override_text", "max", "override_text too long: maximum 1000 characters"},
}

var promptUpdateRules = []rule{
	{"prompt_text", "required", "Missing required field: prompt_text"},
	{"prompt_text", "notblank", "prompt_text cannot be empty"},
	{"prompt_text", "max", "prompt_text too long: maximum 10000 characters"},
}

// check validates v and returns the highest-priority violation message, or
// "" when v is valid.
func check(v any, rules []rule) string {
	err := validate.Struct(v)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	failed := make(map[string]struct{}, len(verrs))
	for _, fe := range verrs {
		failed[fe.Field()+"|"+fe.Tag()] = struct{}{}
	}
	for _, r := range rules {
		if _, ok := failed[r.field+"|"+r.tag]; ok {
			return r.msg
		}
	}
	fe := verrs[0]
	return fmt.Sprintf("Invalid %s", fe.Field())
}
