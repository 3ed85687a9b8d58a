package description

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"descsvc/internal/domain"
)

// MaxDescriptionLength is the platform limit for a rendered description.
const MaxDescriptionLength = 5000

// RequiredSections lists the headers every rendered description must carry,
// in the order they are checked.
var RequiredSections = []string{
	"Full Playlist:",
	"About",
	"What to Expect",
	"Subscribe for More",
	"Timestamps:",
	"Tags:",
}

const documentLayout = `Full Playlist: %s

📚 About "%s"

%s

⭐ What to Expect

%s

🔔 Subscribe for More

%s

⏰ Timestamps:

%s

Tags:
%s`

// RenderInput carries everything a single description is built from.
type RenderInput struct {
	Subject      string
	SourceURL    string
	About        string
	WhatToExpect string
	Subscribe    string
	Timestamps   string
	Tags         string
}

// Render builds the fixed-layout description in NFC form. It is a pure
// function of its input.
func Render(in RenderInput) string {
	return norm.NFC.String(fmt.Sprintf(documentLayout,
		in.SourceURL,
		in.Subject,
		in.About,
		in.WhatToExpect,
		in.Subscribe,
		in.Timestamps,
		in.Tags,
	))
}

// ValidationKind names the rule a rendered description broke.
type ValidationKind string

const (
	EmptyDocument  ValidationKind = "EmptyDocument"
	LengthExceeded ValidationKind = "LengthExceeded"
	MissingSection ValidationKind = "MissingSection"
)

// ValidationError reports why a rendered description was rejected.
type ValidationError struct {
	Kind    ValidationKind
	Section string
	Length  int
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case EmptyDocument:
		return "description is empty"
	case LengthExceeded:
		return fmt.Sprintf("description exceeds the %d character limit (%d characters)", MaxDescriptionLength, e.Length)
	case MissingSection:
		return "missing required section: " + e.Section
	default:
		return string(e.Kind)
	}
}

func (e *ValidationError) Unwrap() error { return domain.ErrItemRenderInvalid }

// Validate checks a rendered description against the platform rules. Length
// is counted in characters of the text exactly as given.
func Validate(text string) error {
	if text == "" {
		return &ValidationError{Kind: EmptyDocument}
	}
	if n := utf8.RuneCountInString(text); n > MaxDescriptionLength {
		return &ValidationError{Kind: LengthExceeded, Length: n}
	}
	for _, section := range RequiredSections {
		if !strings.Contains(text, section) {
			return &ValidationError{Kind: MissingSection, Section: section}
		}
	}
	return nil
}
