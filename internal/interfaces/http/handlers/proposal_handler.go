package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"cfp-backend/internal/domain"
	"cfp-backend/internal/interfaces/http/dto"
	"cfp-backend/internal/interfaces/http/validation"
	"cfp-backend/internal/service/proposal"
	"cfp-backend/pkg/api"
)

// ProposalHandler serves the proposal generation endpoints.
type ProposalHandler struct {
	pipeline *proposal.Pipeline
	markdown goldmark.Markdown
	logger   *zap.Logger
}

// NewProposalHandler creates a proposal handler.
func NewProposalHandler(pipeline *proposal.Pipeline, logger *zap.Logger) *ProposalHandler {
	return &ProposalHandler{
		pipeline: pipeline,
		markdown: goldmark.New(),
		logger:   logger,
	}
}

// Generate handles POST /api/v1/proposals.
func (h *ProposalHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateProposalRequest
	if err := decode(r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	artifact, err := h.pipeline.Handle(r.Context(), proposal.RawRequest{
		Subject:       req.Subject,
		Audience:      req.Audience,
		Kind:          req.Kind,
		ExpertiseTags: req.ExpertiseTags,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	api.Success(w, http.StatusOK, artifact)
}

// SuggestTopics handles POST /api/v1/topics/suggestions.
func (h *ProposalHandler) SuggestTopics(w http.ResponseWriter, r *http.Request) {
	var req dto.SuggestTopicsRequest
	if err := decode(r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	limit := req.Limit
	if limit == 0 {
		limit = 5
	}
	api.Success(w, http.StatusOK, proposal.SuggestTopics(req.Expertise, limit))
}

// Export handles POST /api/v1/proposals/export, rendering a proposal as an
// HTML document for submission forms that want rich text.
func (h *ProposalHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req dto.ExportProposalRequest
	if err := decode(r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(renderMarkdown(req)), &buf); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Review handles POST /api/v1/proposals/review, returning an improvement
// report for a proposal supplied by the caller.
func (h *ProposalHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req dto.ReviewProposalRequest
	if err := decode(r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	kind := domain.TalkKind(req.Kind)
	outline := make([]domain.OutlineSection, 0, len(req.Outline))
	for _, s := range req.Outline {
		outline = append(outline, domain.OutlineSection{
			Title:     s.Title,
			Minutes:   s.Minutes,
			KeyPoints: s.KeyPoints,
		})
	}

	review, err := h.pipeline.Review(r.Context(), domain.Proposal{
		Title:              req.Title,
		Abstract:           req.Abstract,
		LearningObjectives: req.LearningObjectives,
		Outline:            outline,
		Tags:               req.Tags,
		TotalMinutes:       kind.TotalMinutes(),
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	api.Success(w, http.StatusOK, review)
}

// CacheStats handles GET /api/v1/proposals/cache/stats.
func (h *ProposalHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.pipeline.CacheStats())
}

// renderMarkdown lays the proposal out as a markdown document.
func renderMarkdown(req dto.ExportProposalRequest) string {
	var sb bytes.Buffer
	fmt.Fprintf(&sb, "# %s\n\n%s\n\n", req.Title, req.Abstract)

	sb.WriteString("## Learning Objectives\n\n")
	for _, obj := range req.LearningObjectives {
		fmt.Fprintf(&sb, "- %s\n", obj)
	}

	sb.WriteString("\n## Outline\n\n")
	for _, section := range req.Outline {
		fmt.Fprintf(&sb, "### %s (%d min)\n\n", section.Title, section.Minutes)
		for _, point := range section.KeyPoints {
			fmt.Fprintf(&sb, "- %s\n", point)
		}
		sb.WriteString("\n")
	}

	if len(req.Tags) > 0 {
		sb.WriteString("## Tags\n\n")
		for i, tag := range req.Tags {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "`%s`", tag)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
