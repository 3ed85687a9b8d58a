package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"descsvc/internal/description"
	"descsvc/internal/domain"
)

func (a *App) ListDescriptions(w http.ResponseWriter, r *http.Request) {
	subject, ok := a.pathParam(w, r, "subject")
	if !ok {
		return
	}
	prefix := description.OutputPrefix(subject)
	keys, err := a.Blobs.List(r.Context(), prefix)
	if err != nil {
		a.internal(w, r, err, "descriptions: list outputs")
		return
	}
	items := description.ItemsFromKeys(prefix, keys)
	if items == nil {
		items = []string{}
	}
	a.json(w, http.StatusOK, map[string]any{
		"success":            true,
		"subject":            subject,
		"total_descriptions": len(items),
		"items":              items,
	})
}

func (a *App) GetDescription(w http.ResponseWriter, r *http.Request) {
	subject, ok := a.pathParam(w, r, "subject")
	if !ok {
		return
	}
	item, ok := a.pathParam(w, r, "item")
	if !ok {
		return
	}
	data, err := a.Blobs.Get(r.Context(), description.OutputKey(subject, item))
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, http.StatusNotFound, "Description not found")
		return
	}
	if err != nil {
		a.internal(w, r, err, "descriptions: get output")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success":     true,
		"subject":     subject,
		"item":        item,
		"description": string(data),
	})
}

// pathParam returns the decoded URL parameter name. Decoded values holding a
// path separator are rejected so they cannot escape the subject prefix.
func (a *App) pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	val := chi.URLParam(r, name)
	if r.URL.RawPath != "" {
		// chi matched on the escaped path
		decoded, err := url.PathUnescape(val)
		if err != nil {
			a.error(w, http.StatusBadRequest, "Invalid "+name)
			return "", false
		}
		val = decoded
	}
	if val == "" {
		a.error(w, http.StatusBadRequest, "Invalid "+name)
		return "", false
	}
	if description.HasPathSeparator(val) {
		a.error(w, http.StatusBadRequest, "Invalid "+name+": must not contain path separators")
		return "", false
	}
	if description.IsDotSegment(val) {
		a.error(w, http.StatusBadRequest, "Invalid "+name+": must not be . or ..")
		return "", false
	}
	return val, true
}
