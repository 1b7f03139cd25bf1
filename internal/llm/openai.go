package llm

import (
	"context"
	"errors"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"cfp-backend/internal/config"
	appErrors "cfp-backend/pkg/errors"
)

// OpenAIProvider implements Provider using the official openai-go SDK
// (chat completions). The upstream is untrusted: callers are expected to
// validate and parse whatever text comes back.
type OpenAIProvider struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIProvider creates a provider from the LLM configuration.
// Returns nil when no API key is configured, which leaves the pipeline in
// template-only mode.
func NewOpenAIProvider(cfg config.LLM) *OpenAIProvider {
	if cfg.APIKey == "" {
		return nil
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIProvider{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Available reports whether the provider can serve completions.
func (p *OpenAIProvider) Available() bool {
	return p != nil
}

// Complete sends a single-turn chat completion bounded by the configured
// timeout. Deadline expiry maps to a timeout error, everything else from the
// SDK to an upstream error.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(options.Temperature),
	}
	if options.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(options.MaxTokens))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", appErrors.NewTimeout("completion exceeded time budget", err)
		}
		return "", appErrors.NewUpstream("completion request failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", appErrors.NewUpstream("completion returned no choices", nil)
	}
	return resp.Choices[0].Message.Content, nil
}
