package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"cfp-backend/internal/service/discovery"
	"cfp-backend/pkg/api"
)

// EventHandler serves the event discovery endpoints.
type EventHandler struct {
	discovery *discovery.Service
	logger    *zap.Logger
}

// NewEventHandler creates an event handler.
func NewEventHandler(svc *discovery.Service, logger *zap.Logger) *EventHandler {
	return &EventHandler{discovery: svc, logger: logger}
}

// List handles GET /api/v1/events. Query parameters: topic, location,
// before (RFC 3339 or YYYY-MM-DD), include_past, cfp_open.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.discovery.Discover(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	opts := discovery.FilterOptions{
		Topic:       r.URL.Query().Get("topic"),
		Location:    r.URL.Query().Get("location"),
		IncludePast: r.URL.Query().Get("include_past") == "true",
		CFPOpenOnly: r.URL.Query().Get("cfp_open") == "true",
	}
	if before := r.URL.Query().Get("before"); before != "" {
		t, err := parseQueryDate(before)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "before must be an RFC 3339 timestamp or YYYY-MM-DD date")
			return
		}
		opts.Before = t
	}

	api.Success(w, http.StatusOK, h.discovery.Filter(events, opts))
}

func parseQueryDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
