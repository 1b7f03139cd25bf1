// Package domain holds the core types for proposals, events and funding
// applications. Types here carry their own invariant checks; anything that
// reaches a service already passed through the normalizer or a constructor.
package domain

import (
	"time"

	appErrors "cfp-backend/pkg/errors"
)

// Audience is the experience level a talk targets.
type Audience string

const (
	AudienceBeginner     Audience = "beginner"
	AudienceIntermediate Audience = "intermediate"
	AudienceAdvanced     Audience = "advanced"
)

// Valid reports whether the audience is one of the enumerated levels.
func (a Audience) Valid() bool {
	switch a {
	case AudienceBeginner, AudienceIntermediate, AudienceAdvanced:
		return true
	}
	return false
}

// TalkKind is the submission format of a talk.
type TalkKind string

const (
	KindSession   TalkKind = "session"
	KindWorkshop  TalkKind = "workshop"
	KindLightning TalkKind = "lightning"
)

// Valid reports whether the kind is one of the enumerated formats.
func (k TalkKind) Valid() bool {
	switch k {
	case KindSession, KindWorkshop, KindLightning:
		return true
	}
	return false
}

// TotalMinutes returns the slot length conferences allocate for the format.
func (k TalkKind) TotalMinutes() int {
	switch k {
	case KindWorkshop:
		return 180
	case KindLightning:
		return 10
	default:
		return 40
	}
}

// ProposalRequest is a validated, canonical generation request.
// Only the normalizer produces these: the subject is trimmed, and tags are
// sorted and deduplicated.
type ProposalRequest struct {
	Subject       string   `json:"subject"`
	Audience      Audience `json:"audience"`
	Kind          TalkKind `json:"kind"`
	ExpertiseTags []string `json:"expertise_tags,omitempty"`
}

// ProposalSource records which path produced an artifact.
type ProposalSource string

const (
	SourceModel    ProposalSource = "model"
	SourceTemplate ProposalSource = "template"
)

// OutlineSection is one timed block of a talk outline.
type OutlineSection struct {
	Title     string   `json:"title"`
	Minutes   int      `json:"minutes"`
	KeyPoints []string `json:"key_points,omitempty"`
}

// Proposal is the structured content artifact the pipeline produces.
// Instances returned to callers are treated as immutable.
type Proposal struct {
	Title              string           `json:"title"`
	Abstract           string           `json:"abstract"`
	LearningObjectives []string         `json:"learning_objectives"`
	Outline            []OutlineSection `json:"outline"`
	Tags               []string         `json:"tags,omitempty"`
	TotalMinutes       int              `json:"total_minutes"`
	Source             ProposalSource   `json:"source"`
	CreatedAt          time.Time        `json:"created_at"`
}

// OutlineMinutes sums the outline section durations.
func (p *Proposal) OutlineMinutes() int {
	total := 0
	for _, s := range p.Outline {
		total += s.Minutes
	}
	return total
}

// Validate checks the artifact invariants: non-empty title, abstract and
// learning objectives, a non-empty outline, and outline durations that sum to
// the declared total.
func (p *Proposal) Validate() error {
	if p.Title == "" {
		return appErrors.NewInvariant("proposal title is empty")
	}
	if p.Abstract == "" {
		return appErrors.NewInvariant("proposal abstract is empty")
	}
	if len(p.LearningObjectives) == 0 {
		return appErrors.NewInvariant("proposal has no learning objectives")
	}
	if len(p.Outline) == 0 {
		return appErrors.NewInvariant("proposal has no outline sections")
	}
	if got := p.OutlineMinutes(); got != p.TotalMinutes {
		return appErrors.NewInvariant("outline durations do not sum to the total duration")
	}
	return nil
}
