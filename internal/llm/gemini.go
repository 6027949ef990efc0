// Package llm wraps the Gemini API behind a small structured-output interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hochfrequenz/codigo-course-studio/internal/config"
	"google.golang.org/genai"
)

// ErrNoAPIKey is returned when no Gemini API key is configured
var ErrNoAPIKey = errors.New("gemini API key is required (set gemini.api_key or GOOGLE_API_KEY)")

// GeminiClient generates JSON documents constrained by a response schema.
type GeminiClient struct {
	client          *genai.Client
	model           string
	maxOutputTokens int32
	temperature     float32
}

// NewGeminiClient creates a client for the configured model.
func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{
		client:          client,
		model:           model,
		maxOutputTokens: cfg.MaxOutputTokens,
		temperature:     cfg.Temperature,
	}, nil
}

// Model returns the model name used for generation.
func (c *GeminiClient) Model() string {
	return c.model
}

// GenerateJSON sends prompt and returns the raw JSON text of the first candidate.
// An empty string with a nil error means the model produced no output.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
		Temperature:      genai.Ptr(c.temperature),
	}
	if c.maxOutputTokens > 0 {
		cfg.MaxOutputTokens = c.maxOutputTokens
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate (%s): %w", c.model, err)
	}
	if resp == nil {
		return "", nil
	}

	return StripCodeFences(resp.Text()), nil
}

// StripCodeFences removes markdown code fence wrapping from model output.
// Handles ```json, ```, and variations with language specifiers.
func StripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	firstNewline := strings.Index(trimmed, "\n")
	if firstNewline == -1 {
		return trimmed
	}
	lastFence := strings.LastIndex(trimmed, "```")
	if lastFence <= firstNewline {
		return trimmed
	}
	return strings.TrimSpace(trimmed[firstNewline+1 : lastFence])
}
