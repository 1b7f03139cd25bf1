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
	appErrors "cfp-backend/pkg/errors"
)

// Review is the improvement report for an existing proposal. The strengths
// and weaknesses come from deterministic checks; suggestions come from the
// model when a provider is available and from the weaknesses otherwise.
type Review struct {
	Strengths   []string              `json:"strengths"`
	Weaknesses  []string              `json:"weaknesses"`
	Suggestions []string              `json:"suggestions"`
	Source      domain.ProposalSource `json:"source"`
}

// Review analyzes an existing proposal and returns concrete improvement
// suggestions. Like Generate, it never fails for a well-formed input:
// upstream and timeout failures on the suggestion path fall back to the
// deterministic suggestions derived from the weaknesses.
func (g *Generator) Review(ctx context.Context, p domain.Proposal) (*Review, error) {
	strengths, weaknesses := analyzeProposal(p)
	review := &Review{
		Strengths:  strengths,
		Weaknesses: weaknesses,
		Source:     domain.SourceTemplate,
	}

	if g.provider == nil || !g.provider.Available() {
		review.Suggestions = fallbackSuggestions(weaknesses)
		return review, nil
	}

	suggestions, err := g.suggestionsFromModel(ctx, p, weaknesses)
	if err != nil {
		if !appErrors.IsRecoverable(err) {
			return nil, err
		}
		g.logger.Warn("upstream review failed, using deterministic suggestions",
			zap.String("title", p.Title),
			zap.Error(err),
		)
		g.metrics.GenerationFailures.Inc()
		review.Suggestions = fallbackSuggestions(weaknesses)
		return review, nil
	}

	review.Suggestions = suggestions
	review.Source = domain.SourceModel
	return review, nil
}

// analyzeProposal runs the deterministic checks: title length, abstract
// word count, objective count and outline timing.
func analyzeProposal(p domain.Proposal) (strengths, weaknesses []string) {
	switch n := len(p.Title); {
	case n > 60:
		weaknesses = append(weaknesses, "title exceeds 60 characters and may be truncated on schedules")
	case n < 20:
		weaknesses = append(weaknesses, "title is under 20 characters and gives reviewers little to go on")
	default:
		strengths = append(strengths, "title length fits conference schedules")
	}

	switch words := len(strings.Fields(p.Abstract)); {
	case words < 50:
		weaknesses = append(weaknesses, "abstract is under 50 words and reads as underdeveloped")
	case words > 250:
		weaknesses = append(weaknesses, "abstract exceeds 250 words and risks losing reviewers")
	default:
		strengths = append(strengths, "abstract length is in the expected range")
	}

	switch n := len(p.LearningObjectives); {
	case n < 3:
		weaknesses = append(weaknesses, "fewer than 3 learning objectives")
	case n > 6:
		weaknesses = append(weaknesses, "more than 6 learning objectives dilutes the takeaways")
	default:
		strengths = append(strengths, "learning objectives are in the 3-6 range reviewers expect")
	}

	switch {
	case len(p.Outline) == 0:
		weaknesses = append(weaknesses, "outline is empty")
	case p.TotalMinutes > 0 && p.OutlineMinutes() != p.TotalMinutes:
		weaknesses = append(weaknesses, fmt.Sprintf(
			"outline sections sum to %d minutes but the slot is %d",
			p.OutlineMinutes(), p.TotalMinutes))
	default:
		strengths = append(strengths, "outline timing matches the slot length")
	}

	return strengths, weaknesses
}

// fallbackSuggestions derives suggestions from the weaknesses, then appends
// the general advice that applies to any submission.
func fallbackSuggestions(weaknesses []string) []string {
	var suggestions []string
	for _, w := range weaknesses {
		switch {
		case strings.Contains(w, "title"):
			suggestions = append(suggestions, "Rework the title to 20-60 characters that state the concrete takeaway")
		case strings.Contains(w, "abstract"):
			suggestions = append(suggestions, "Target a 150-200 word abstract that states what attendees will be able to do afterwards")
		case strings.Contains(w, "objectives"):
			suggestions = append(suggestions, "Aim for 3-5 specific learning objectives, each starting with an action verb")
		case strings.Contains(w, "outline"):
			suggestions = append(suggestions, "Rebalance the outline so section minutes sum to the slot length, with an introduction and a conclusion")
		}
	}

	return append(suggestions,
		"Include a real-world case study or production example",
		"Back claims with metrics or data points",
		"State in the abstract exactly what attendees will learn",
	)
}

// suggestionsFromModel asks the provider for targeted improvements.
func (g *Generator) suggestionsFromModel(ctx context.Context, p domain.Proposal, weaknesses []string) ([]string, error) {
	started := time.Now()
	response, err := g.provider.Complete(ctx, buildReviewPrompt(p, weaknesses), llm.CompletionOptions{
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		Format:      "json",
	})
	g.metrics.UpstreamDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		return nil, err
	}

	suggestions, err := parseReviewResponse(response)
	if err != nil {
		return nil, appErrors.NewUpstream("failed to parse review output", err)
	}
	return suggestions, nil
}

// buildReviewPrompt creates the structured-output prompt for a review.
func buildReviewPrompt(p domain.Proposal, weaknesses []string) string {
	var sb strings.Builder
	sb.WriteString("You are an expert conference talk reviewer. Suggest concrete improvements for this proposal.\n\n")
	fmt.Fprintf(&sb, "Title: %s\nAbstract: %s\n", p.Title, p.Abstract)
	if len(p.LearningObjectives) > 0 {
		fmt.Fprintf(&sb, "Learning objectives: %s\n", strings.Join(p.LearningObjectives, "; "))
	}
	if len(weaknesses) > 0 {
		fmt.Fprintf(&sb, "\nKnown weaknesses:\n- %s\n", strings.Join(weaknesses, "\n- "))
	}
	sb.WriteString(`
Return a JSON object with this structure:
{
  "suggestions": ["3-6 specific, actionable improvements"]
}

Address every known weakness, be specific, and do not restate the proposal.
`)
	return sb.String()
}

// reviewPayload is the wire shape expected from the model.
type reviewPayload struct {
	Suggestions []string `json:"suggestions"`
}

// parseReviewResponse parses the model output into a suggestion list.
func parseReviewResponse(response string) ([]string, error) {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
		response = strings.TrimSuffix(response, "```")
		response = strings.TrimSpace(response)
	}

	var payload reviewPayload
	if err := json.Unmarshal([]byte(response), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	suggestions := make([]string, 0, len(payload.Suggestions))
	for _, s := range payload.Suggestions {
		if s = strings.TrimSpace(s); s != "" {
			suggestions = append(suggestions, s)
		}
	}
	if len(suggestions) == 0 {
		return nil, fmt.Errorf("response contains no suggestions")
	}
	return suggestions, nil
}
