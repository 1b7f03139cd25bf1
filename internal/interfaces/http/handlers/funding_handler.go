package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"cfp-backend/internal/domain"
	"cfp-backend/internal/interfaces/http/dto"
	"cfp-backend/internal/interfaces/http/validation"
	"cfp-backend/internal/service/funding"
	"cfp-backend/pkg/api"
)

// FundingHandler serves the funding assistant endpoints: program catalog,
// eligibility, cost estimates and the application tracker.
type FundingHandler struct {
	funding *funding.Service
	logger  *zap.Logger
}

// NewFundingHandler creates a funding handler.
func NewFundingHandler(svc *funding.Service, logger *zap.Logger) *FundingHandler {
	return &FundingHandler{funding: svc, logger: logger}
}

// ListPrograms handles GET /api/v1/funding/programs.
func (h *FundingHandler) ListPrograms(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.funding.Programs())
}

// CheckEligibility handles POST /api/v1/funding/eligibility.
func (h *FundingHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	var req dto.EligibilityRequest
	if err := decode(r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	profile := domain.ApplicantProfile{
		Student:          req.Student,
		EarlyCareer:      req.EarlyCareer,
		Underrepresented: req.Underrepresented,
		FinancialNeed:    req.FinancialNeed,
		PriorRecipient:   req.PriorRecipient,
		CommunityMember:  req.CommunityMember,
	}
	api.Success(w, http.StatusOK, h.funding.CheckEligibility(profile))
}

// EstimateCosts handles POST /api/v1/funding/estimates.
func (h *FundingHandler) EstimateCosts(w http.ResponseWriter, r *http.Request) {
	var req dto.CostEstimateRequest
	if err := decode(r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	estimate, err := h.funding.EstimateCosts(funding.CostRequest{
		RouteClass: req.RouteClass,
		Nights:     req.Nights,
		SharedRoom: req.SharedRoom,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, estimate)
}

// CreateApplication handles POST /api/v1/funding/applications. When the
// request asks for a letter it is generated (model or template) and stored
// on the application.
func (h *FundingHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateApplicationRequest
	if err := decode(r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	app := domain.FundingApplication{
		ProgramID: req.ProgramID,
		EventName: req.EventName,
		Deadline:  req.Deadline,
		Status:    domain.StatusDraft,
	}

	if req.GenerateLetter {
		letter, fromModel, err := h.funding.GenerateLetter(r.Context(), funding.LetterRequest{
			ProgramID:  req.ProgramID,
			EventName:  req.EventName,
			Background: req.Background,
			Goals:      req.Goals,
		})
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		app.Letter = letter
		h.logger.Debug("application letter generated",
			zap.String("program", req.ProgramID),
			zap.Bool("from_model", fromModel),
		)
	}

	created, err := h.funding.Tracker().Create(app)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusCreated, created)
}

// ListApplications handles GET /api/v1/funding/applications.
func (h *FundingHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.funding.Tracker().List())
}

// GetApplication handles GET /api/v1/funding/applications/{id}.
func (h *FundingHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	app, err := h.funding.Tracker().Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, app)
}

// UpdateApplication handles PATCH /api/v1/funding/applications/{id}.
func (h *FundingHandler) UpdateApplication(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateApplicationRequest
	if err := decode(r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	app, err := h.funding.Tracker().UpdateStatus(chi.URLParam(r, "id"), domain.ApplicationStatus(req.Status))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, app)
}
