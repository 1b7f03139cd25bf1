package proposal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"cfp-backend/internal/domain"
	"cfp-backend/internal/llm"
	"cfp-backend/internal/observability"
	appErrors "cfp-backend/pkg/errors"
)

// Generator produces proposals either through the configured LLM provider or,
// when the upstream is unavailable, fails, or times out, through deterministic
// templates. For a normalized request it never fails: the caller always
// receives some valid artifact.
type Generator struct {
	provider    llm.Provider
	temperature float64
	maxTokens   int
	metrics     *observability.Collector
	logger      *zap.Logger
}

// NewGenerator creates a generator. A nil provider leaves the generator in
// template-only mode.
func NewGenerator(provider llm.Provider, temperature float64, maxTokens int, metrics *observability.Collector, logger *zap.Logger) *Generator {
	return &Generator{
		provider:    provider,
		temperature: temperature,
		maxTokens:   maxTokens,
		metrics:     metrics,
		logger:      logger,
	}
}

// Generate produces a validated proposal for a normalized request.
// The model path is attempted first when a provider is configured; upstream
// and timeout failures, as well as unparseable output, fall back to the
// template path rather than surfacing to the caller.
func (g *Generator) Generate(ctx context.Context, req domain.ProposalRequest) (*domain.Proposal, error) {
	now := time.Now().UTC()

	if g.provider == nil || !g.provider.Available() {
		return g.fallback(req, now), nil
	}

	p, err := g.generateFromModel(ctx, req, now)
	if err != nil {
		if !appErrors.IsRecoverable(err) {
			return nil, err
		}
		g.logger.Warn("upstream generation failed, using template fallback",
			zap.String("subject", req.Subject),
			zap.Error(err),
		)
		g.metrics.GenerationFailures.Inc()
		return g.fallback(req, now), nil
	}
	g.metrics.ProposalsGenerated.WithLabelValues(string(domain.SourceModel)).Inc()
	return p, nil
}

// fallback synthesizes and counts a template artifact.
func (g *Generator) fallback(req domain.ProposalRequest, now time.Time) *domain.Proposal {
	g.metrics.ProposalsGenerated.WithLabelValues(string(domain.SourceTemplate)).Inc()
	return fallbackProposal(req, now)
}

// generateFromModel invokes the provider and parses its output into a
// repaired, validated artifact.
func (g *Generator) generateFromModel(ctx context.Context, req domain.ProposalRequest, now time.Time) (*domain.Proposal, error) {
	prompt := buildProposalPrompt(req)

	started := time.Now()
	response, err := g.provider.Complete(ctx, prompt, llm.CompletionOptions{
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		Format:      "json",
	})
	g.metrics.UpstreamDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		return nil, err
	}

	p, err := parseProposalResponse(response, req, now)
	if err != nil {
		// Garbled output is an upstream failure, not retried against the
		// same call.
		return nil, appErrors.NewUpstream("failed to parse completion output", err)
	}

	if err := repairOutline(p); err != nil {
		// An empty outline is an upstream defect like any other garbled
		// output; the template path takes over.
		return nil, appErrors.NewUpstream("completion produced an unrepairable outline", err)
	}
	if err := p.Validate(); err != nil {
		return nil, appErrors.NewUpstream("completion produced an invalid proposal", err)
	}
	return p, nil
}

// buildProposalPrompt creates the structured-output prompt for a request.
func buildProposalPrompt(req domain.ProposalRequest) string {
	expertise := "general software engineering"
	if len(req.ExpertiseTags) > 0 {
		expertise = strings.Join(req.ExpertiseTags, ", ")
	}

	return fmt.Sprintf(`You are an expert conference speaker coach. Write a talk proposal about %q.

Talk format: %s (%d minutes total)
Target audience: %s
Speaker expertise: %s

Return a JSON object with this structure:
{
  "title": "engaging title under 60 characters",
  "abstract": "150-200 word abstract that hooks the reader and states what attendees will learn",
  "learning_objectives": ["3-5 objectives, each starting with an action verb"],
  "outline": [
    {"title": "section title", "minutes": 10, "key_points": ["point", "point"]}
  ],
  "tags": ["up to 10 lowercase topic tags"]
}

Rules:
1. Outline section minutes must sum to exactly %d
2. Include an introduction and a conclusion section
3. Be specific and actionable, avoid clickbait
4. Match the depth to the target audience
`, req.Subject, req.Kind, req.Kind.TotalMinutes(), req.Audience, expertise, req.Kind.TotalMinutes())
}

// proposalPayload is the wire shape expected from the model.
type proposalPayload struct {
	Title              string   `json:"title"`
	Abstract           string   `json:"abstract"`
	LearningObjectives []string `json:"learning_objectives"`
	Outline            []struct {
		Title     string   `json:"title"`
		Minutes   int      `json:"minutes"`
		KeyPoints []string `json:"key_points"`
	} `json:"outline"`
	Tags []string `json:"tags"`
}

// parseProposalResponse parses the model output into a proposal.
func parseProposalResponse(response string, req domain.ProposalRequest, now time.Time) (*domain.Proposal, error) {
	// Clean up the response (remove any markdown formatting)
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
		response = strings.TrimSuffix(response, "```")
		response = strings.TrimSpace(response)
	}

	var payload proposalPayload
	if err := json.Unmarshal([]byte(response), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	outline := make([]domain.OutlineSection, 0, len(payload.Outline))
	for _, s := range payload.Outline {
		if s.Title == "" || s.Minutes <= 0 {
			continue
		}
		outline = append(outline, domain.OutlineSection{
			Title:     s.Title,
			Minutes:   s.Minutes,
			KeyPoints: s.KeyPoints,
		})
	}

	tags := payload.Tags
	if len(tags) == 0 {
		tags = deriveTags(req)
	}
	if len(tags) > 10 {
		tags = tags[:10]
	}

	return &domain.Proposal{
		Title:              strings.TrimSpace(payload.Title),
		Abstract:           strings.TrimSpace(payload.Abstract),
		LearningObjectives: payload.LearningObjectives,
		Outline:            outline,
		Tags:               tags,
		TotalMinutes:       req.Kind.TotalMinutes(),
		Source:             domain.SourceModel,
		CreatedAt:          now,
	}, nil
}

// repairOutline reconciles the outline durations with the declared total by
// padding or trimming the final section. A final section trimmed to zero or
// below collapses into its predecessor. Repair only fails when there is no
// outline at all, which the invariant check reports as unrepairable.
func repairOutline(p *domain.Proposal) error {
	if len(p.Outline) == 0 {
		return appErrors.NewInvariant("proposal outline is empty, cannot reconcile durations")
	}

	for {
		delta := p.TotalMinutes - p.OutlineMinutes()
		if delta == 0 {
			return nil
		}

		last := &p.Outline[len(p.Outline)-1]
		last.Minutes += delta
		if last.Minutes > 0 {
			return nil
		}

		if len(p.Outline) == 1 {
			last.Minutes = p.TotalMinutes
			return nil
		}

		// Fold the emptied section into its predecessor and re-reconcile.
		p.Outline = p.Outline[:len(p.Outline)-1]
	}
}
