package domain

import (
	"time"

	appErrors "cfp-backend/pkg/errors"
)

// FundingProgram describes a scholarship or travel-funding program.
type FundingProgram struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	URL          string   `json:"url,omitempty"`
	MaxAmountUSD int      `json:"max_amount_usd"`
	Requirements []string `json:"requirements"`
	Coverage     []string `json:"coverage"`
	// DeadlineDays is how many days before the event applications close.
	DeadlineDays int `json:"deadline_days"`
}

// ApplicantProfile is the self-reported profile used for eligibility checks.
type ApplicantProfile struct {
	Student          bool `json:"student"`
	EarlyCareer      bool `json:"early_career"`
	Underrepresented bool `json:"underrepresented"`
	FinancialNeed    bool `json:"financial_need"`
	PriorRecipient   bool `json:"prior_recipient"`
	CommunityMember  bool `json:"community_member"`
}

// CostEstimate is an itemized travel cost projection in USD.
type CostEstimate struct {
	Airfare       int `json:"airfare"`
	Accommodation int `json:"accommodation"`
	Meals         int `json:"meals"`
	LocalTransit  int `json:"local_transit"`
	Contingency   int `json:"contingency"`
	Total         int `json:"total"`
}

// ApplicationStatus tracks a funding application through its lifecycle.
type ApplicationStatus string

const (
	StatusDraft     ApplicationStatus = "draft"
	StatusSubmitted ApplicationStatus = "submitted"
	StatusAccepted  ApplicationStatus = "accepted"
	StatusRejected  ApplicationStatus = "rejected"
)

// Valid reports whether the status is one of the enumerated states.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// FundingApplication is a tracked scholarship or travel-funding application.
type FundingApplication struct {
	ID          string            `json:"id"`
	ProgramID   string            `json:"program_id"`
	EventName   string            `json:"event_name"`
	Status      ApplicationStatus `json:"status"`
	Letter      string            `json:"letter,omitempty"`
	Deadline    time.Time         `json:"deadline,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	SubmittedAt time.Time         `json:"submitted_at,omitempty"`
}

// Validate checks the application's basic shape.
func (a *FundingApplication) Validate() error {
	if a.ProgramID == "" {
		return appErrors.NewValidation("program id is required")
	}
	if a.EventName == "" {
		return appErrors.NewValidation("event name is required")
	}
	if !a.Status.Valid() {
		return appErrors.NewValidation("invalid application status")
	}
	return nil
}

// DeadlineSoon reports whether the deadline falls within the given window.
func (a *FundingApplication) DeadlineSoon(now time.Time, window time.Duration) bool {
	if a.Deadline.IsZero() {
		return false
	}
	return a.Deadline.After(now) && a.Deadline.Before(now.Add(window))
}
