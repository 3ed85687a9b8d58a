package handlers

import (
	"net/http"
	"strings"
	"testing"

	"descsvc/internal/domain"
)

func TestListPrompts(t *testing.T) {
	app, _, _, _, _ := newTestApp()
	rr := serve(http.MethodGet, "/admin/prompts", app.ListPrompts, "/admin/prompts", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	got := decodeBody[struct {
		Success bool            `json:"success"`
		Total   int             `json:"total_prompts"`
		Prompts []domain.Prompt `json:"prompts"`
	}](t, rr.Body.Bytes())
	if !got.Success || got.Total != 2 || got.Prompts[0].Name != "description_system" {
		t.Fatalf("response = %+v", got)
	}
}

func TestGetPrompt(t *testing.T) {
	app, _, _, _, _ := newTestApp()
	rr := serve(http.MethodGet, "/admin/prompts/{name}", app.GetPrompt, "/admin/prompts/full_description", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	got := decodeBody[struct {
		Prompt domain.Prompt `json:"prompt"`
	}](t, rr.Body.Bytes())
	if got.Prompt.Type != domain.PromptTypeUser || got.Prompt.Text != "describe {novel_name}" {
		t.Fatalf("prompt = %+v", got.Prompt)
	}

	rr = serve(http.MethodGet, "/admin/prompts/{name}", app.GetPrompt, "/admin/prompts/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := decodeBody[envelope](t, rr.Body.Bytes()); got.Error != `Prompt "nope" not found` {
		t.Fatalf("error = %q", got.Error)
	}
}

func TestUpdatePromptValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "missing text", body: `{"description":"x"}`, want: "Missing required field: prompt_text"},
		{name: "blank text", body: `{"prompt_text":"  \n "}`, want: "prompt_text cannot be empty"},
		{name: "empty text", body: `{"prompt_text":""}`, want: "prompt_text cannot be empty"},
		{name: "too long", body: `{"prompt_text":"` + strings.Repeat("p", 10001) + `"}`, want: "prompt_text too long: maximum 10000 characters"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app, _, _, _, _ := newTestApp()
			rr := serve(http.MethodPatch, "/admin/prompts/{name}", app.UpdatePrompt, "/admin/prompts/full_description", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rr.Code)
			}
			if got := decodeBody[envelope](t, rr.Body.Bytes()); got.Error != tc.want {
				t.Fatalf("error = %q, want %q", got.Error, tc.want)
			}
		})
	}
}

func TestUpdatePrompt(t *testing.T) {
	app, _, prompts, _, _ := newTestApp()
	body := `{"prompt_text":"new text for {subject}","description":"edited"}`
	rr := serve(http.MethodPatch, "/admin/prompts/{name}", app.UpdatePrompt, "/admin/prompts/full_description", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rr.Code, rr.Body.String())
	}
	got := decodeBody[struct {
		Message string        `json:"message"`
		Prompt  domain.Prompt `json:"prompt"`
	}](t, rr.Body.Bytes())
	if got.Message != `Prompt "full_description" updated successfully` {
		t.Fatalf("message = %q", got.Message)
	}
	stored := prompts.items["full_description"]
	if stored.Text != "new text for {subject}" || stored.Description != "edited" {
		t.Fatalf("stored = %+v", stored)
	}

	rr = serve(http.MethodPatch, "/admin/prompts/{name}", app.UpdatePrompt, "/admin/prompts/unknown", body)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown prompt status = %d", rr.Code)
	}
}

func TestHealth(t *testing.T) {
	app, _, _, _, _ := newTestApp()
	rr := serve(http.MethodGet, "/health", app.Health, "/health", "")
	got := decodeBody[map[string]any](t, rr.Body.Bytes())
	if rr.Code != http.StatusOK || got["success"] != true || got["status"] != "healthy" || got["service"] != ServiceName || got["version"] != ServiceVersion {
		t.Fatalf("health = %d %v", rr.Code, got)
	}
}
