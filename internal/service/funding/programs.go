// Package funding assists with scholarship and travel-funding applications:
// program catalog, eligibility checks, cost estimation, letter generation and
// a file-backed application tracker.
package funding

import (
	"cfp-backend/internal/domain"
)

// programs is the built-in catalog of funding programs. Loaded statically;
// program terms change rarely enough that a config-file override has not
// been needed.
var programs = []domain.FundingProgram{
	{
		ID:           "kubecon-scholarship",
		Name:         "KubeCon + CloudNativeCon Scholarship",
		URL:          "https://events.linuxfoundation.org/kubecon-cloudnativecon-north-america/attend/scholarships/",
		MaxAmountUSD: 500,
		Requirements: []string{
			"Student or early career professional",
			"Demonstrated interest in cloud-native technologies",
			"Financial need",
			"Not previously awarded a scholarship",
		},
		Coverage: []string{
			"Conference registration",
			"Travel expenses (up to $500)",
			"Accommodation (shared room)",
			"Meals during conference",
		},
		DeadlineDays: 60,
	},
	{
		ID:           "lf-diversity",
		Name:         "Linux Foundation Diversity Scholarship",
		URL:          "https://www.linuxfoundation.org/about/diversity-inclusivity/",
		MaxAmountUSD: 1500,
		Requirements: []string{
			"Underrepresented group in technology",
			"Demonstrated interest in open source",
			"Financial need",
			"Commitment to community involvement",
		},
		Coverage: []string{
			"Conference registration",
			"Travel expenses",
			"Accommodation",
			"Mentorship opportunities",
		},
		DeadlineDays: 90,
	},
	{
		ID:           "employer-sponsorship",
		Name:         "Employer Conference Sponsorship",
		MaxAmountUSD: 3000,
		Requirements: []string{
			"Employed with a professional development budget",
			"Talk acceptance or clear business justification",
		},
		Coverage: []string{
			"Conference registration",
			"Travel and accommodation",
			"Meals and incidentals",
		},
		DeadlineDays: 30,
	},
}

// EligibilityResult is the outcome of checking one program.
type EligibilityResult struct {
	Program     domain.FundingProgram `json:"program"`
	Eligible    bool                  `json:"eligible"`
	MissedRules []string              `json:"missed_rules,omitempty"`
}

// Programs returns the catalog.
func (s *Service) Programs() []domain.FundingProgram {
	out := make([]domain.FundingProgram, len(programs))
	copy(out, programs)
	return out
}

// CheckEligibility evaluates the applicant profile against every program.
func (s *Service) CheckEligibility(profile domain.ApplicantProfile) []EligibilityResult {
	results := make([]EligibilityResult, 0, len(programs))
	for _, p := range programs {
		missed := missedRules(p, profile)
		results = append(results, EligibilityResult{
			Program:     p,
			Eligible:    len(missed) == 0,
			MissedRules: missed,
		})
	}
	return results
}

func missedRules(p domain.FundingProgram, profile domain.ApplicantProfile) []string {
	var missed []string
	switch p.ID {
	case "kubecon-scholarship":
		if !profile.Student && !profile.EarlyCareer {
			missed = append(missed, "must be a student or early career professional")
		}
		if !profile.FinancialNeed {
			missed = append(missed, "must demonstrate financial need")
		}
		if profile.PriorRecipient {
			missed = append(missed, "must not be a prior scholarship recipient")
		}
	case "lf-diversity":
		if !profile.Underrepresented {
			missed = append(missed, "must belong to an underrepresented group in technology")
		}
		if !profile.FinancialNeed {
			missed = append(missed, "must demonstrate financial need")
		}
		if !profile.CommunityMember {
			missed = append(missed, "must demonstrate community involvement")
		}
	case "employer-sponsorship":
		if profile.Student {
			missed = append(missed, "requires current employment")
		}
	}
	return missed
}
