package llm

import (
	"context"
	"fmt"
	"strings"
)

type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopK        *int     `json:"top_k"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// LLMClient defines the standard interface for any LLM backend
type LLMClient interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
	Model() string
}

// NewClient builds a backend client by name. Supported backends are
// "ollama" and "openai"; the model may be empty to use the backend's
// default.
func NewClient(backend, model string) (LLMClient, error) {
	switch strings.ToLower(backend) {
	case "ollama":
		return NewOllamaClient(model)
	case "openai":
		return NewOpenAIClient(model)
	default:
		return nil, fmt.Errorf("unknown LLM backend %q (want ollama or openai)", backend)
	}
}
