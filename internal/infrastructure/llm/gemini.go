package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"ContentPipeline/internal/config"
	"ContentPipeline/internal/domain"
	"ContentPipeline/internal/ports"
)

// GeminiClient implements ports.ChatClient on top of the Gemini API.
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
}

var _ ports.ChatClient = (*GeminiClient)(nil)

// NewGeminiClient creates a Gemini-backed chat client.
func NewGeminiClient(ctx context.Context, cfg config.GoogleConfig, temperature float64) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		model:       model,
		temperature: float32(temperature),
	}, nil
}

// Complete sends the prompt as a single user turn.
func (g *GeminiClient) Complete(ctx context.Context, prompt string) (ports.Completion, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	})
	if err != nil {
		return ports.Completion{}, fmt.Errorf("gemini generate: %w", err)
	}

	out := ports.Completion{Content: resp.Text()}
	if meta := resp.UsageMetadata; meta != nil {
		out.Usage = domain.TokenUsage{
			PromptTokens:     int(meta.PromptTokenCount),
			CompletionTokens: int(meta.CandidatesTokenCount),
			TotalTokens:      int(meta.TotalTokenCount),
		}
	}
	return out, nil
}
