package proposal

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cfp-backend/internal/domain"
	"cfp-backend/internal/llm"
	"cfp-backend/internal/observability"
	appErrors "cfp-backend/pkg/errors"
)

func newTestGenerator(provider llm.Provider) *Generator {
	observability.ResetForTesting()
	return NewGenerator(provider, 0.7, 1200, observability.NewCollector("test"), zap.NewNop())
}

func sessionRequest() domain.ProposalRequest {
	return domain.ProposalRequest{
		Subject:       "Kubernetes Operators",
		Audience:      domain.AudienceIntermediate,
		Kind:          domain.KindSession,
		ExpertiseTags: []string{"go", "kubernetes"},
	}
}

const validModelResponse = `{
  "title": "Taming Kubernetes Operators",
  "abstract": "Operators promise self-driving infrastructure but most teams ship brittle ones. This talk walks through the reconcile loop, error budgets and upgrade paths using a production operator as the running example.",
  "learning_objectives": ["Design idempotent reconcile loops", "Test operators without a cluster", "Plan safe CRD upgrades"],
  "outline": [
    {"title": "Introduction", "minutes": 5, "key_points": ["why operators"]},
    {"title": "The reconcile loop", "minutes": 15, "key_points": ["idempotency", "requeue"]},
    {"title": "Testing strategies", "minutes": 15, "key_points": ["envtest"]},
    {"title": "Conclusion", "minutes": 5, "key_points": ["takeaways"]}
  ],
  "tags": ["kubernetes", "operators", "go"]
}`

func TestGenerator_Generate(t *testing.T) {
	t.Run("nil provider uses template", func(t *testing.T) {
		gen := newTestGenerator(nil)

		p, err := gen.Generate(context.Background(), sessionRequest())
		require.NoError(t, err)
		assert.Equal(t, domain.SourceTemplate, p.Source)
		assert.NoError(t, p.Validate())
	})

	t.Run("unavailable provider uses template", func(t *testing.T) {
		provider := llm.NewScriptedProvider()
		provider.SetAvailable(false)
		gen := newTestGenerator(provider)

		p, err := gen.Generate(context.Background(), sessionRequest())
		require.NoError(t, err)
		assert.Equal(t, domain.SourceTemplate, p.Source)
		assert.Equal(t, 0, provider.Calls())
	})

	t.Run("valid completion produces a model artifact", func(t *testing.T) {
		provider := llm.NewScriptedProvider().Queue(validModelResponse)
		gen := newTestGenerator(provider)

		p, err := gen.Generate(context.Background(), sessionRequest())
		require.NoError(t, err)
		assert.Equal(t, domain.SourceModel, p.Source)
		assert.Equal(t, "Taming Kubernetes Operators", p.Title)
		assert.Equal(t, 40, p.OutlineMinutes())
		assert.NoError(t, p.Validate())
	})

	t.Run("fenced completion is accepted", func(t *testing.T) {
		provider := llm.NewScriptedProvider().Queue("```json\n" + validModelResponse + "\n```")
		gen := newTestGenerator(provider)

		p, err := gen.Generate(context.Background(), sessionRequest())
		require.NoError(t, err)
		assert.Equal(t, domain.SourceModel, p.Source)
	})

	t.Run("upstream error falls back to template", func(t *testing.T) {
		provider := llm.NewScriptedProvider().
			QueueError(appErrors.NewUpstream("model overloaded", nil))
		gen := newTestGenerator(provider)

		p, err := gen.Generate(context.Background(), sessionRequest())
		require.NoError(t, err)
		assert.Equal(t, domain.SourceTemplate, p.Source)
		assert.Equal(t, 1, provider.Calls())
	})

	t.Run("timeout falls back to template", func(t *testing.T) {
		provider := llm.NewScriptedProvider().
			QueueError(appErrors.NewTimeout("completion timed out", nil))
		gen := newTestGenerator(provider)

		p, err := gen.Generate(context.Background(), sessionRequest())
		require.NoError(t, err)
		assert.Equal(t, domain.SourceTemplate, p.Source)
	})

	t.Run("garbled completion falls back to template", func(t *testing.T) {
		provider := llm.NewScriptedProvider().Queue("I cannot produce JSON today.")
		gen := newTestGenerator(provider)

		p, err := gen.Generate(context.Background(), sessionRequest())
		require.NoError(t, err)
		assert.Equal(t, domain.SourceTemplate, p.Source)
	})

	t.Run("empty outline falls back to template", func(t *testing.T) {
		response := `{
  "title": "A Talk",
  "abstract": "An abstract.",
  "learning_objectives": ["Learn"],
  "outline": [],
  "tags": ["go"]
}`
		provider := llm.NewScriptedProvider().Queue(response)
		gen := newTestGenerator(provider)

		p, err := gen.Generate(context.Background(), sessionRequest())
		require.NoError(t, err)
		assert.Equal(t, domain.SourceTemplate, p.Source)
		assert.NoError(t, p.Validate())
	})

	t.Run("outline with only zero-minute sections falls back to template", func(t *testing.T) {
		response := `{
  "title": "A Talk",
  "abstract": "An abstract.",
  "learning_objectives": ["Learn"],
  "outline": [
    {"title": "Intro", "minutes": 0},
    {"title": "Body", "minutes": -5}
  ],
  "tags": ["go"]
}`
		provider := llm.NewScriptedProvider().Queue(response)
		gen := newTestGenerator(provider)

		p, err := gen.Generate(context.Background(), sessionRequest())
		require.NoError(t, err)
		assert.Equal(t, domain.SourceTemplate, p.Source)
	})

	t.Run("mismatched outline durations are repaired, not rejected", func(t *testing.T) {
		response := `{
  "title": "A Talk",
  "abstract": "An abstract that says enough.",
  "learning_objectives": ["Learn a thing"],
  "outline": [
    {"title": "Intro", "minutes": 10},
    {"title": "Body", "minutes": 45}
  ],
  "tags": ["go"]
}`
		provider := llm.NewScriptedProvider().Queue(response)
		gen := newTestGenerator(provider)

		p, err := gen.Generate(context.Background(), sessionRequest())
		require.NoError(t, err)
		assert.Equal(t, domain.SourceModel, p.Source)
		assert.Equal(t, 40, p.OutlineMinutes())
	})
}

func TestFallbackProposal_Deterministic(t *testing.T) {
	req := sessionRequest()
	gen := newTestGenerator(nil)

	a, err := gen.Generate(context.Background(), req)
	require.NoError(t, err)
	b, err := gen.Generate(context.Background(), req)
	require.NoError(t, err)

	// Everything except the creation timestamp must match exactly.
	a.CreatedAt = b.CreatedAt
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("template output not deterministic (-first +second):\n%s", diff)
	}
}

func TestFallbackProposal_AllKinds(t *testing.T) {
	for _, kind := range []domain.TalkKind{domain.KindSession, domain.KindWorkshop, domain.KindLightning} {
		t.Run(string(kind), func(t *testing.T) {
			gen := newTestGenerator(nil)
			req := sessionRequest()
			req.Kind = kind

			p, err := gen.Generate(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, kind.TotalMinutes(), p.TotalMinutes)
			assert.Equal(t, kind.TotalMinutes(), p.OutlineMinutes())
			assert.NoError(t, p.Validate())
		})
	}
}

func TestRepairOutline(t *testing.T) {
	t.Run("exact sum is untouched", func(t *testing.T) {
		p := &domain.Proposal{
			TotalMinutes: 40,
			Outline: []domain.OutlineSection{
				{Title: "Intro", Minutes: 10},
				{Title: "Body", Minutes: 30},
			},
		}
		require.NoError(t, repairOutline(p))
		assert.Equal(t, 30, p.Outline[1].Minutes)
	})

	t.Run("shortfall pads the final section", func(t *testing.T) {
		p := &domain.Proposal{
			TotalMinutes: 40,
			Outline: []domain.OutlineSection{
				{Title: "Intro", Minutes: 10},
				{Title: "Body", Minutes: 20},
			},
		}
		require.NoError(t, repairOutline(p))
		assert.Equal(t, 30, p.Outline[1].Minutes)
		assert.Equal(t, 40, p.OutlineMinutes())
	})

	t.Run("overrun trims the final section", func(t *testing.T) {
		p := &domain.Proposal{
			TotalMinutes: 40,
			Outline: []domain.OutlineSection{
				{Title: "Intro", Minutes: 10},
				{Title: "Body", Minutes: 45},
			},
		}
		require.NoError(t, repairOutline(p))
		assert.Equal(t, 40, p.OutlineMinutes())
	})

	t.Run("emptied final section collapses into its predecessor", func(t *testing.T) {
		p := &domain.Proposal{
			TotalMinutes: 10,
			Outline: []domain.OutlineSection{
				{Title: "Intro", Minutes: 9},
				{Title: "Body", Minutes: 20},
			},
		}
		require.NoError(t, repairOutline(p))
		require.Len(t, p.Outline, 1)
		assert.Equal(t, 10, p.Outline[0].Minutes)
	})

	t.Run("single oversized section is set to the total", func(t *testing.T) {
		p := &domain.Proposal{
			TotalMinutes: 10,
			Outline:      []domain.OutlineSection{{Title: "Everything", Minutes: 90}},
		}
		require.NoError(t, repairOutline(p))
		assert.Equal(t, 10, p.Outline[0].Minutes)
	})

	t.Run("empty outline is unrepairable", func(t *testing.T) {
		p := &domain.Proposal{TotalMinutes: 40}
		err := repairOutline(p)
		require.Error(t, err)
		assert.True(t, appErrors.IsInvariant(err))
	})
}
