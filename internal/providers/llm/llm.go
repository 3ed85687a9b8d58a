// Package llm holds the text generator clients used to draft description
// sections.
package llm

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"descsvc/internal/domain"
	"descsvc/internal/infra"
)

const (
	defaultTimeout   = 120 * time.Second
	defaultMaxTokens = 10000
	maxErrorBody     = 512
)

// FromConfig returns the generator selected by LLM_PROVIDER.
func FromConfig(cfg *infra.Config) (domain.TextGenerator, error) {
	client := &http.Client{Timeout: cfg.LLMTimeout()}
	switch cfg.LLMProvider {
	case "openai":
		gen, err := NewOpenAI(OpenAIOptions{
			APIKey:       cfg.OpenAIAPIKey,
			Model:        cfg.OpenAIModel,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
			MaxTokens:    cfg.LLMMaxTokens,
			HTTPClient:   client,
		})
		if err != nil {
			return nil, err
		}
		return gen, nil
	case "azure":
		gen, err := NewAzureOpenAI(AzureOptions{
			APIKey:     cfg.OpenAIAPIKey,
			Endpoint:   cfg.AzureEndpoint,
			Deployment: cfg.AzureDeployment,
			APIVersion: cfg.AzureAPIVersion,
			MaxTokens:  cfg.LLMMaxTokens,
			HTTPClient: client,
		})
		if err != nil {
			return nil, err
		}
		return gen, nil
	case "gemini":
		gen, err := NewGemini(GeminiOptions{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			BaseURL:    cfg.GeminiBaseURL,
			MaxTokens:  cfg.LLMMaxTokens,
			HTTPClient: client,
		})
		if err != nil {
			return nil, err
		}
		return gen, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}

func statusError(provider string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := strings.TrimSpace(string(body))
	if detail == "" {
		return fmt.Errorf("%w: %s status %d", domain.ErrGenerator, provider, resp.StatusCode)
	}
	return fmt.Errorf("%w: %s status %d: %s", domain.ErrGenerator, provider, resp.StatusCode, detail)
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}
