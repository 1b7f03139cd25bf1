// Package dto defines the request payloads accepted by the HTTP API.
// Validation rules live on the struct tags; the validation package applies
// them at the boundary before anything reaches a service.
package dto

import "time"

// GenerateProposalRequest is the body for POST /api/v1/proposals.
type GenerateProposalRequest struct {
	Subject       string   `json:"subject" validate:"required"`
	Audience      string   `json:"audience" validate:"required,oneof=beginner intermediate advanced"`
	Kind          string   `json:"kind" validate:"required,oneof=session workshop lightning"`
	ExpertiseTags []string `json:"expertise_tags" validate:"max=20,dive,max=64"`
}

// SuggestTopicsRequest is the body for POST /api/v1/topics/suggestions.
type SuggestTopicsRequest struct {
	Expertise []string `json:"expertise" validate:"max=20,dive,max=64"`
	Limit     int      `json:"limit" validate:"min=0,max=10"`
}

// EligibilityRequest is the body for POST /api/v1/funding/eligibility.
type EligibilityRequest struct {
	Student          bool `json:"student"`
	EarlyCareer      bool `json:"early_career"`
	Underrepresented bool `json:"underrepresented"`
	FinancialNeed    bool `json:"financial_need"`
	PriorRecipient   bool `json:"prior_recipient"`
	CommunityMember  bool `json:"community_member"`
}

// CostEstimateRequest is the body for POST /api/v1/funding/estimates.
type CostEstimateRequest struct {
	RouteClass string `json:"route_class" validate:"required,oneof=domestic continental intercontinental"`
	Nights     int    `json:"nights" validate:"required,min=1,max=30"`
	SharedRoom bool   `json:"shared_room"`
}

// CreateApplicationRequest is the body for POST /api/v1/funding/applications.
type CreateApplicationRequest struct {
	ProgramID  string    `json:"program_id" validate:"required"`
	EventName  string    `json:"event_name" validate:"required"`
	Deadline   time.Time `json:"deadline"`
	Background string    `json:"background" validate:"max=2000"`
	Goals      string    `json:"goals" validate:"max=2000"`
	// GenerateLetter requests an LLM-assisted justification letter.
	GenerateLetter bool `json:"generate_letter"`
}

// UpdateApplicationRequest is the body for PATCH /api/v1/funding/applications/{id}.
type UpdateApplicationRequest struct {
	Status string `json:"status" validate:"required,oneof=draft submitted accepted rejected"`
}

// ExportProposalRequest is the body for POST /api/v1/proposals/export.
// The proposal fields mirror the artifact shape returned by the generate
// endpoint so the dashboard can round-trip what it displays.
type ExportProposalRequest struct {
	Title              string          `json:"title" validate:"required"`
	Abstract           string          `json:"abstract" validate:"required"`
	LearningObjectives []string        `json:"learning_objectives" validate:"required,min=1"`
	Outline            []ExportSection `json:"outline" validate:"required,min=1,dive"`
	Tags               []string        `json:"tags"`
}

// ReviewProposalRequest is the body for POST /api/v1/proposals/review.
// It takes the same proposal shape as export plus the talk kind, so outline
// timing can be checked against the slot length. Objectives and outline may
// be absent: gaps there are exactly what the review reports.
type ReviewProposalRequest struct {
	Kind               string          `json:"kind" validate:"required,oneof=session workshop lightning"`
	Title              string          `json:"title" validate:"required"`
	Abstract           string          `json:"abstract" validate:"required"`
	LearningObjectives []string        `json:"learning_objectives"`
	Outline            []ExportSection `json:"outline" validate:"dive"`
	Tags               []string        `json:"tags"`
}

// ExportSection is one outline entry in an export request.
type ExportSection struct {
	Title     string   `json:"title" validate:"required"`
	Minutes   int      `json:"minutes" validate:"required,min=1"`
	KeyPoints []string `json:"key_points"`
}
