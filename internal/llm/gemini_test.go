package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/hochfrequenz/codigo-course-studio/internal/config"
)

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), config.GeminiConfig{Model: "gemini-2.0-flash"})
	if !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("error = %v, want ErrNoAPIKey", err)
	}
}

func TestNewGeminiClient_DefaultModel(t *testing.T) {
	c, err := NewGeminiClient(context.Background(), config.GeminiConfig{APIKey: "test-key"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Model() != "gemini-2.0-flash" {
		t.Errorf("Model() = %q, want gemini-2.0-flash", c.Model())
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```\n", `{"a":1}`},
		{"whitespace", "  \n{\"a\":1}\n ", `{"a":1}`},
		{"single line fence", "```{}```", "```{}```"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.input); got != tt.want {
				t.Errorf("StripCodeFences(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
