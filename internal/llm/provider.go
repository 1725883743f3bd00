// Package llm holds the clients for the external model providers: text
// generation (Gemini or any OpenAI-compatible endpoint) and embeddings.
package llm

import (
	"context"
	"fmt"

	"github.com/OuyangRuyi/pdf-reader/internal/config"
)

// ModelInfo describes a generation model.
type ModelInfo struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
	ModelID  string `json:"model_id"`
}

// Generator produces natural-language text from a prompt. Providers are
// selected by configuration at startup; there is no process-wide mutable
// model selection.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	ModelInfo() ModelInfo
	Close()
}

// NewGenerator builds the configured generation provider.
func NewGenerator(cfg config.Config, stats *Stats) (Generator, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, stats), nil
	case "openai":
		return NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, stats), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// RetryableError indicates a transient provider failure worth retrying.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
