package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"descsvc/internal/domain"
)

type promptUpdateRequest struct {
	PromptText  *string `json:"prompt_text" validate:"required,notblank,max=10000"`
	Description *string `json:"description"`
}

func (a *App) ListPrompts(w http.ResponseWriter, r *http.Request) {
	list, err := a.Prompts.List(r.Context())
	if err != nil {
		a.internal(w, r, err, "prompts: list")
		return
	}
	if list == nil {
		list = []domain.Prompt{}
	}
	a.json(w, http.StatusOK, map[string]any{
		"success":       true,
		"total_prompts": len(list),
		"prompts":       list,
	})
}

func (a *App) GetPrompt(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, err := a.Prompts.GetByName(r.Context(), name)
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, http.StatusNotFound, fmt.Sprintf("Prompt %q not found", name))
		return
	}
	if err != nil {
		a.internal(w, r, err, "prompts: get")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "prompt": p})
}

func (a *App) UpdatePrompt(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req promptUpdateRequest
	if err := a.decode(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if msg := check(req, promptUpdateRules); msg != "" {
		a.error(w, http.StatusBadRequest, msg)
		return
	}

	p, err := a.Prompts.Update(r.Context(), name, *req.PromptText, req.Description)
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, http.StatusNotFound, fmt.Sprintf("Prompt %q not found", name))
		return
	}
	if err != nil {
		a.internal(w, r, err, "prompts: update")
		return
	}
	a.Logger.Info().Str("prompt", name).Msg("prompts: updated")
	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Prompt %q updated successfully", name),
		"prompt":  p,
	})
}
