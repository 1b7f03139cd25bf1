// Package llm abstracts the external text-generation capability behind a
// small Provider interface so the pipeline can swap OpenAI, a scripted test
// double, or nothing at all (template-only mode).
package llm

import "context"

// Provider defines the interface for LLM providers (OpenAI, Anthropic, etc.)
type Provider interface {
	Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error)
	Available() bool
}

// CompletionOptions configures LLM completion requests
type CompletionOptions struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Format      string  `json:"format"` // "json" or "text"
}
