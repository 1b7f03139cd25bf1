package proposal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestTopics(t *testing.T) {
	t.Run("expertise matches rank first", func(t *testing.T) {
		suggestions := SuggestTopics([]string{"kubernetes"}, 3)
		require.Len(t, suggestions, 3)

		assert.Contains(t, suggestions[0].Topic, "Kubernetes")
		assert.Greater(t, suggestions[0].Relevance, 0.0)
		assert.Contains(t, suggestions[0].Reason, "kubernetes")
	})

	t.Run("no expertise yields generic reasons", func(t *testing.T) {
		suggestions := SuggestTopics(nil, 5)
		require.Len(t, suggestions, 5)
		for _, s := range suggestions {
			assert.Zero(t, s.Relevance)
			assert.Equal(t, "General cloud-native topic with broad appeal", s.Reason)
		}
	})

	t.Run("zero limit returns the full list", func(t *testing.T) {
		suggestions := SuggestTopics([]string{"istio"}, 0)
		assert.Len(t, suggestions, len(trendingTopics))
	})

	t.Run("output is deterministic", func(t *testing.T) {
		a := SuggestTopics([]string{"kubernetes", "prometheus"}, 10)
		b := SuggestTopics([]string{"kubernetes", "prometheus"}, 10)
		assert.Equal(t, a, b)
	})
}
