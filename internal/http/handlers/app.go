package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"descsvc/internal/domain"
	"descsvc/internal/orchestrator"
)

const (
	ServiceName    = "description-service"
	ServiceVersion = "1.0.0"

	maxBodyBytes = 1 << 20
)

// App carries the dependencies shared by every handler.
type App struct {
	Jobs       domain.JobRepository
	Prompts    domain.PromptRepository
	Blobs      domain.BlobStore
	Dispatcher orchestrator.Dispatcher
	Logger     zerolog.Logger
	Version    string

	Now   func() time.Time
	NewID func() string
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

func (a *App) newID() string {
	if a.NewID != nil {
		return a.NewID()
	}
	return uuid.NewString()
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, map[string]any{"success": false, "error": msg})
}

// internal logs err with request context and answers with a generic 500.
func (a *App) internal(w http.ResponseWriter, r *http.Request, err error, msg string) {
	a.Logger.Error().Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg(msg)
	a.error(w, http.StatusInternalServerError, "internal server error")
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(v)
}
