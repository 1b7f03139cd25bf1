package proposal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cfp-backend/internal/domain"
	appErrors "cfp-backend/pkg/errors"
)

func TestNormalize(t *testing.T) {
	t.Run("canonicalizes a valid request", func(t *testing.T) {
		req, err := Normalize(RawRequest{
			Subject:       "  Kubernetes Operators  ",
			Audience:      "Intermediate",
			Kind:          "SESSION",
			ExpertiseTags: []string{"Go", " kubernetes ", "go", ""},
		})
		require.NoError(t, err)

		assert.Equal(t, "Kubernetes Operators", req.Subject)
		assert.Equal(t, domain.AudienceIntermediate, req.Audience)
		assert.Equal(t, domain.KindSession, req.Kind)
		assert.Equal(t, []string{"go", "kubernetes"}, req.ExpertiseTags)
	})

	t.Run("rejects empty subject", func(t *testing.T) {
		_, err := Normalize(RawRequest{Subject: "   ", Audience: "beginner", Kind: "session"})
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("rejects unknown audience", func(t *testing.T) {
		_, err := Normalize(RawRequest{Subject: "Go", Audience: "expert", Kind: "session"})
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := Normalize(RawRequest{Subject: "Go", Audience: "beginner", Kind: "keynote"})
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("all-empty tags normalize to nil", func(t *testing.T) {
		req, err := Normalize(RawRequest{
			Subject:       "Go",
			Audience:      "beginner",
			Kind:          "session",
			ExpertiseTags: []string{"", "  "},
		})
		require.NoError(t, err)
		assert.Nil(t, req.ExpertiseTags)
	})
}

func TestCacheKey(t *testing.T) {
	t.Run("semantically equal requests share a key", func(t *testing.T) {
		a, err := Normalize(RawRequest{
			Subject:       "Kubernetes",
			Audience:      "beginner",
			Kind:          "session",
			ExpertiseTags: []string{"A", "B"},
		})
		require.NoError(t, err)

		b, err := Normalize(RawRequest{
			Subject:       "kubernetes",
			Audience:      "BEGINNER",
			Kind:          "Session",
			ExpertiseTags: []string{"b", "a"},
		})
		require.NoError(t, err)

		assert.Equal(t, CacheKey(a), CacheKey(b))
	})

	t.Run("different requests produce different keys", func(t *testing.T) {
		base := domain.ProposalRequest{
			Subject:  "Kubernetes",
			Audience: domain.AudienceBeginner,
			Kind:     domain.KindSession,
		}

		workshop := base
		workshop.Kind = domain.KindWorkshop
		assert.NotEqual(t, CacheKey(base), CacheKey(workshop))

		tagged := base
		tagged.ExpertiseTags = []string{"go"}
		assert.NotEqual(t, CacheKey(base), CacheKey(tagged))
	})

	t.Run("key is stable across calls", func(t *testing.T) {
		req := domain.ProposalRequest{
			Subject:       "Observability",
			Audience:      domain.AudienceAdvanced,
			Kind:          domain.KindLightning,
			ExpertiseTags: []string{"metrics", "tracing"},
		}
		assert.Equal(t, CacheKey(req), CacheKey(req))
	})
}
