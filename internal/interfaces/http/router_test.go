package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cfp-backend/internal/cache"
	"cfp-backend/internal/config"
	"cfp-backend/internal/domain"
	"cfp-backend/internal/interfaces/http/handlers"
	"cfp-backend/internal/llm"
	"cfp-backend/internal/observability"
	"cfp-backend/internal/service/discovery"
	"cfp-backend/internal/service/funding"
	"cfp-backend/internal/service/proposal"
)

func newTestRouter(t *testing.T, provider llm.Provider) http.Handler {
	t.Helper()
	observability.ResetForTesting()
	collector := observability.NewCollector("test")
	logger := zap.NewNop()

	store := cache.NewStore(cache.Config{MaxEntries: 100})
	gen := proposal.NewGenerator(provider, 0.7, 1200, collector, logger)
	pipeline := proposal.NewPipeline(store, gen, time.Minute, collector, logger)

	discoverySvc := discovery.NewService(config.Discovery{
		MaxRetries:   1,
		RetryBackoff: time.Millisecond,
		FetchTimeout: time.Second,
	}, time.Minute, cache.NewStore(cache.Config{MaxEntries: 10}), collector, logger)

	tracker, err := funding.NewTracker(filepath.Join(t.TempDir(), "applications.json"), logger)
	require.NoError(t, err)
	fundingSvc := funding.NewService(provider, tracker, logger)

	return NewRouter(Handlers{
		Proposal: handlers.NewProposalHandler(pipeline, logger),
		Event:    handlers.NewEventHandler(discoverySvc, logger),
		Funding:  handlers.NewFundingHandler(fundingSvc, logger),
		Health:   handlers.NewHealthHandler(provider, "test"),
	}, collector, logger, 5*time.Second)
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_GenerateProposal(t *testing.T) {
	t.Run("valid request returns a proposal", func(t *testing.T) {
		router := newTestRouter(t, nil)

		rec := doJSON(t, router, http.MethodPost, "/api/v1/proposals",
			`{"subject":"Kubernetes Operators","audience":"intermediate","kind":"session","expertise_tags":["go"]}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var artifact domain.Proposal
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &artifact))
		assert.Equal(t, domain.SourceTemplate, artifact.Source)
		assert.Equal(t, 40, artifact.TotalMinutes)
		assert.NoError(t, artifact.Validate())
	})

	t.Run("missing subject is a 400", func(t *testing.T) {
		router := newTestRouter(t, nil)

		rec := doJSON(t, router, http.MethodPost, "/api/v1/proposals",
			`{"audience":"beginner","kind":"session"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "subject")
	})

	t.Run("unknown audience is a 400", func(t *testing.T) {
		router := newTestRouter(t, nil)

		rec := doJSON(t, router, http.MethodPost, "/api/v1/proposals",
			`{"subject":"Go","audience":"expert","kind":"session"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown body field is a 400", func(t *testing.T) {
		router := newTestRouter(t, nil)

		rec := doJSON(t, router, http.MethodPost, "/api/v1/proposals",
			`{"subject":"Go","audience":"beginner","kind":"session","bogus":true}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRouter_SuggestTopics(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/topics/suggestions",
		`{"expertise":["kubernetes"],"limit":3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var suggestions []proposal.TopicSuggestion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &suggestions))
	assert.Len(t, suggestions, 3)
}

func TestRouter_ExportProposal(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/proposals/export", `{
		"title": "Taming Operators",
		"abstract": "What the talk covers.",
		"learning_objectives": ["Learn a thing"],
		"outline": [{"title": "Intro", "minutes": 10, "key_points": ["why"]}],
		"tags": ["kubernetes"]
	}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<h1")
	assert.Contains(t, rec.Body.String(), "Taming Operators")
	assert.Contains(t, rec.Body.String(), "Intro (10 min)")
}

func TestRouter_ReviewProposal(t *testing.T) {
	t.Run("returns an improvement report", func(t *testing.T) {
		router := newTestRouter(t, nil)

		rec := doJSON(t, router, http.MethodPost, "/api/v1/proposals/review", `{
			"kind": "session",
			"title": "Go",
			"abstract": "Too short.",
			"learning_objectives": ["Learn a thing"],
			"outline": [{"title": "Intro", "minutes": 10}]
		}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var review proposal.Review
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &review))
		assert.Equal(t, domain.SourceTemplate, review.Source)
		assert.NotEmpty(t, review.Weaknesses)
		assert.NotEmpty(t, review.Suggestions)
	})

	t.Run("rejects an unknown kind", func(t *testing.T) {
		router := newTestRouter(t, nil)

		rec := doJSON(t, router, http.MethodPost, "/api/v1/proposals/review",
			`{"kind":"keynote","title":"A Talk","abstract":"An abstract."}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRouter_CacheStats(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/proposals",
		`{"subject":"Go","audience":"beginner","kind":"session"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	statsRec := doJSON(t, router, http.MethodGet, "/api/v1/proposals/cache/stats", "")
	require.Equal(t, http.StatusOK, statsRec.Code)

	var stats cache.Stats
	require.NoError(t, json.Unmarshal(statsRec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Entries)
}

func TestRouter_Funding(t *testing.T) {
	t.Run("program catalog", func(t *testing.T) {
		router := newTestRouter(t, nil)

		rec := doJSON(t, router, http.MethodGet, "/api/v1/funding/programs", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var programs []domain.FundingProgram
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &programs))
		assert.Len(t, programs, 3)
	})

	t.Run("eligibility check", func(t *testing.T) {
		router := newTestRouter(t, nil)

		rec := doJSON(t, router, http.MethodPost, "/api/v1/funding/eligibility",
			`{"student":true,"financial_need":true}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var results []funding.EligibilityResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
		assert.Len(t, results, 3)
	})

	t.Run("cost estimate", func(t *testing.T) {
		router := newTestRouter(t, nil)

		rec := doJSON(t, router, http.MethodPost, "/api/v1/funding/estimates",
			`{"route_class":"domestic","nights":3}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var est domain.CostEstimate
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &est))
		assert.Equal(t, 350, est.Airfare)
		assert.Greater(t, est.Total, 0)
	})

	t.Run("invalid route class is a 400", func(t *testing.T) {
		router := newTestRouter(t, nil)

		rec := doJSON(t, router, http.MethodPost, "/api/v1/funding/estimates",
			`{"route_class":"orbital","nights":3}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("application lifecycle", func(t *testing.T) {
		router := newTestRouter(t, nil)

		rec := doJSON(t, router, http.MethodPost, "/api/v1/funding/applications",
			`{"program_id":"lf-diversity","event_name":"KubeCon","generate_letter":true}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var created domain.FundingApplication
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID)
		assert.NotEmpty(t, created.Letter, "template letter attached")

		rec = doJSON(t, router, http.MethodGet, "/api/v1/funding/applications/"+created.ID, "")
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, router, http.MethodPatch, "/api/v1/funding/applications/"+created.ID,
			`{"status":"submitted"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var updated domain.FundingApplication
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, domain.StatusSubmitted, updated.Status)

		rec = doJSON(t, router, http.MethodGet, "/api/v1/funding/applications", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var listed []funding.TrackedApplication
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
		assert.Len(t, listed, 1)
	})

	t.Run("unknown application is a 404", func(t *testing.T) {
		router := newTestRouter(t, nil)

		rec := doJSON(t, router, http.MethodGet, "/api/v1/funding/applications/missing", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown program on creation is a 404", func(t *testing.T) {
		router := newTestRouter(t, nil)

		rec := doJSON(t, router, http.MethodPost, "/api/v1/funding/applications",
			`{"program_id":"unknown","event_name":"KubeCon","generate_letter":true}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRouter_Events(t *testing.T) {
	t.Run("empty feed set returns an empty list", func(t *testing.T) {
		router := newTestRouter(t, nil)

		rec := doJSON(t, router, http.MethodGet, "/api/v1/events", "")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("malformed before parameter is a 400", func(t *testing.T) {
		router := newTestRouter(t, nil)

		rec := doJSON(t, router, http.MethodGet, "/api/v1/events?before=tomorrow", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "template", body["generation_mode"])
}

func TestRouter_Metrics(t *testing.T) {
	router := newTestRouter(t, nil)

	// Generate a request so counters move.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/proposals",
		`{"subject":"Go","audience":"beginner","kind":"session"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	metricsRec := doJSON(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, metricsRec.Code)
	assert.Contains(t, metricsRec.Body.String(), "test_http_requests_total")
}

func TestRouter_RequestID(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	echo := httptest.NewRecorder()
	router.ServeHTTP(echo, req)
	assert.Equal(t, "fixed-id", echo.Header().Get("X-Request-ID"))
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
