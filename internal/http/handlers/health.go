package handlers

import "net/http"

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	version := a.Version
	if version == "" {
		version = ServiceVersion
	}
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  "healthy",
		"service": ServiceName,
		"version": version,
	})
}
