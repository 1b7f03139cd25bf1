package proposal

import (
	"sort"
	"strings"
)

// trendingTopics is a curated list of cloud-native topics with steady CFP
// acceptance. Relevance scoring against speaker expertise replaces a model
// call here: suggestions must be cheap and deterministic for the dashboard.
var trendingTopics = []string{
	"Kubernetes Operators and Custom Resources",
	"Service Mesh Implementation with Istio",
	"GitOps and Progressive Delivery",
	"Observability with Prometheus and Grafana",
	"Security in Cloud-Native Applications",
	"Multi-cluster Management",
	"Serverless with Knative",
	"Edge Computing with Kubernetes",
	"Machine Learning on Kubernetes",
	"Cost Optimization in Cloud-Native Environments",
}

// TopicSuggestion is a scored topic recommendation.
type TopicSuggestion struct {
	Topic     string  `json:"topic"`
	Relevance float64 `json:"relevance"`
	Reason    string  `json:"reason"`
}

// SuggestTopics scores the trending topics against the speaker's expertise
// and returns the top n. Scoring: +2 for an expertise phrase contained in
// the topic, +1 for any individual word overlap, capped at 10.
func SuggestTopics(expertise []string, n int) []TopicSuggestion {
	if n <= 0 || n > len(trendingTopics) {
		n = len(trendingTopics)
	}

	suggestions := make([]TopicSuggestion, 0, len(trendingTopics))
	for _, topic := range trendingTopics {
		score, matched := scoreTopic(topic, expertise)
		suggestions = append(suggestions, TopicSuggestion{
			Topic:     topic,
			Relevance: score,
			Reason:    explainRelevance(matched),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Relevance > suggestions[j].Relevance
	})
	return suggestions[:n]
}

func scoreTopic(topic string, expertise []string) (float64, []string) {
	topicLower := strings.ToLower(topic)
	var score float64
	var matched []string

	for _, exp := range expertise {
		expLower := strings.ToLower(strings.TrimSpace(exp))
		if expLower == "" {
			continue
		}
		if strings.Contains(topicLower, expLower) {
			score += 2
			matched = append(matched, exp)
			continue
		}
		for _, word := range strings.Fields(expLower) {
			if strings.Contains(topicLower, word) {
				score++
				matched = append(matched, exp)
				break
			}
		}
	}

	if score > 10 {
		score = 10
	}
	return score, matched
}

func explainRelevance(matched []string) string {
	if len(matched) == 0 {
		return "General cloud-native topic with broad appeal"
	}
	return "Relates to your expertise in " + strings.Join(matched, ", ")
}
