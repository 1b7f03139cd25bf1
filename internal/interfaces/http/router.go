// Package http assembles the dashboard API: router, middleware chain and
// handler wiring.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"cfp-backend/internal/interfaces/http/handlers"
	"cfp-backend/internal/middleware"
	"cfp-backend/internal/observability"
)

// Handlers groups the handler set the router mounts.
type Handlers struct {
	Proposal *handlers.ProposalHandler
	Event    *handlers.EventHandler
	Funding  *handlers.FundingHandler
	Health   *handlers.HealthHandler
}

// NewRouter builds the chi router with the standard middleware chain.
func NewRouter(h Handlers, collector *observability.Collector, logger *zap.Logger, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Metrics(collector))
	r.Use(middleware.Timeout(requestTimeout, logger))

	r.Get("/healthz", h.Health.Check)
	r.Method(http.MethodGet, "/metrics", collector.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/proposals", func(r chi.Router) {
			r.Post("/", h.Proposal.Generate)
			r.Post("/export", h.Proposal.Export)
			r.Post("/review", h.Proposal.Review)
			r.Get("/cache/stats", h.Proposal.CacheStats)
		})

		r.Post("/topics/suggestions", h.Proposal.SuggestTopics)

		r.Get("/events", h.Event.List)

		r.Route("/funding", func(r chi.Router) {
			r.Get("/programs", h.Funding.ListPrograms)
			r.Post("/eligibility", h.Funding.CheckEligibility)
			r.Post("/estimates", h.Funding.EstimateCosts)

			r.Route("/applications", func(r chi.Router) {
				r.Post("/", h.Funding.CreateApplication)
				r.Get("/", h.Funding.ListApplications)
				r.Get("/{id}", h.Funding.GetApplication)
				r.Patch("/{id}", h.Funding.UpdateApplication)
			})
		})
	})

	return r
}
