package provider

import (
	"context"
	"fmt"
	"strings"

	"gullak/internal/apperr"
	"gullak/internal/module/advisor/domain"

	"google.golang.org/genai"
)

// GenAIConfig holds configuration for the Google GenAI provider.
type GenAIConfig struct {
	APIKey string
	Models []string // tried in order until one answers
}

// genaiProvider implements domain.Provider using the Google GenAI SDK.
type genaiProvider struct {
	client *genai.Client
	models []string
}

// NewGenAIProvider creates a new Google GenAI provider.
func NewGenAIProvider(cfg *GenAIConfig) (domain.Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("genai API key is required")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	models := cfg.Models
	if len(models) == 0 {
		models = []string{"gemini-2.0-flash"}
	}

	return &genaiProvider{client: client, models: models}, nil
}

func (p *genaiProvider) Name() string {
	return "gemini"
}

// Generate tries each configured model in order and returns the first
// answer. All failures across the list collapse into one error; quota and
// permission failures are tagged so the advisor can poison its cooldown.
func (p *genaiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}
	temp := float32(0.3)
	config := &genai.GenerateContentConfig{Temperature: &temp}

	var lastErr error
	for _, model := range p.models {
		resp, err := p.client.Models.GenerateContent(ctx, model, contents, config)
		if err != nil {
			lastErr = err
			if isQuotaError(err) {
				return "", apperr.QuotaExhausted(fmt.Sprintf("model %s quota exhausted", model)).WithErr(err)
			}
			continue
		}
		if text := extractText(resp); text != "" {
			return text, nil
		}
		lastErr = fmt.Errorf("model %s returned an empty response", model)
	}
	return "", apperr.PolicyUnavailable("all models failed").WithErr(lastErr)
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
	}
	return sb.String()
}

// isQuotaError matches the quota/permission failures the Gemini API returns
// when a key is throttled or out of credit.
func isQuotaError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "permission_denied") ||
		strings.Contains(msg, "429")
}
