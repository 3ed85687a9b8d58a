package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"descsvc/internal/domain"
)

type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	MaxTokens    int
	HTTPClient   *http.Client
}

type AzureOptions struct {
	APIKey     string
	Endpoint   string
	Deployment string
	APIVersion string
	MaxTokens  int
	HTTPClient *http.Client
}

// OpenAI talks to the chat completions API, either on api.openai.com or on an
// Azure OpenAI deployment.
type OpenAI struct {
	provider     string
	endpoint     string
	apiKey       string
	model        string
	organization string
	maxTokens    int
	azure        bool
	client       *http.Client
}

type chatRequest struct {
	Model               string        `json:"model,omitempty"`
	Messages            []chatMessage `json:"messages"`
	MaxTokens           int           `json:"max_tokens,omitempty"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func NewOpenAI(opts OpenAIOptions) (*OpenAI, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	base := strings.TrimRight(orDefault(opts.BaseURL, "https://api.openai.com/v1"), "/")
	return &OpenAI{
		provider:     "openai",
		endpoint:     base + "/chat/completions",
		apiKey:       strings.TrimSpace(opts.APIKey),
		model:        orDefault(opts.Model, "gpt-4o-mini"),
		organization: strings.TrimSpace(opts.Organization),
		maxTokens:    maxTokensOrDefault(opts.MaxTokens),
		client:       clientOrDefault(opts.HTTPClient),
	}, nil
}

func NewAzureOpenAI(opts AzureOptions) (*OpenAI, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("azure openai api key is required")
	}
	endpoint := strings.TrimRight(strings.TrimSpace(opts.Endpoint), "/")
	if endpoint == "" {
		return nil, errors.New("azure openai endpoint is required")
	}
	deployment := strings.TrimSpace(opts.Deployment)
	if deployment == "" {
		return nil, errors.New("azure openai deployment is required")
	}
	full := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		endpoint, url.PathEscape(deployment), url.QueryEscape(orDefault(opts.APIVersion, "2024-10-21")))
	return &OpenAI{
		provider:  "azure",
		endpoint:  full,
		apiKey:    strings.TrimSpace(opts.APIKey),
		model:     deployment,
		maxTokens: maxTokensOrDefault(opts.MaxTokens),
		azure:     true,
		client:    clientOrDefault(opts.HTTPClient),
	}, nil
}

// usesCompletionTokens reports whether the model rejects max_tokens in favour
// of max_completion_tokens.
func usesCompletionTokens(model string) bool {
	m := strings.ToLower(model)
	return strings.Contains(m, "gpt-5") || strings.Contains(m, "o1")
}

func (o *OpenAI) Generate(ctx context.Context, system, user string) (string, error) {
	payload := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	if !o.azure {
		payload.Model = o.model
	}
	if usesCompletionTokens(o.model) {
		payload.MaxCompletionTokens = o.maxTokens
	} else {
		payload.MaxTokens = o.maxTokens
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", fmt.Errorf("%w: encode request: %w", domain.ErrGenerator, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", domain.ErrGenerator, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if o.azure {
		httpReq.Header.Set("api-key", o.apiKey)
	} else {
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
		if o.organization != "" {
			httpReq.Header.Set("OpenAI-Organization", o.organization)
		}
	}

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %s request: %w", domain.ErrGenerator, o.provider, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return "", statusError(o.provider, resp)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", domain.ErrGenerator, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: %s returned no choices", domain.ErrGenerator, o.provider)
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: %s returned empty content (finish_reason=%s)", domain.ErrGenerator, o.provider, out.Choices[0].FinishReason)
	}
	return text, nil
}

func maxTokensOrDefault(n int) int {
	if n <= 0 {
		return defaultMaxTokens
	}
	return n
}

func clientOrDefault(c *http.Client) *http.Client {
	if c == nil {
		return &http.Client{Timeout: defaultTimeout}
	}
	return c
}

var _ domain.TextGenerator = (*OpenAI)(nil)
