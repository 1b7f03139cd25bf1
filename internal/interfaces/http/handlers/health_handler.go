package handlers

import (
	"net/http"
	"time"

	"cfp-backend/internal/llm"
	"cfp-backend/pkg/api"
)

// HealthHandler reports service liveness and which generation mode is active.
type HealthHandler struct {
	provider llm.Provider
	started  time.Time
	version  string
}

// NewHealthHandler creates a health handler. provider may be nil when the
// service runs in template-only mode.
func NewHealthHandler(provider llm.Provider, version string) *HealthHandler {
	return &HealthHandler{
		provider: provider,
		started:  time.Now(),
		version:  version,
	}
}

// Check handles GET /healthz.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	mode := "template"
	if h.provider != nil && h.provider.Available() {
		mode = "model"
	}
	api.Success(w, http.StatusOK, map[string]interface{}{
		"status":          "healthy",
		"version":         h.version,
		"generation_mode": mode,
		"uptime_seconds":  int(time.Since(h.started).Seconds()),
	})
}
