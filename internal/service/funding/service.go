package funding

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"cfp-backend/internal/domain"
	"cfp-backend/internal/llm"
	appErrors "cfp-backend/pkg/errors"
)

// Service provides funding assistance. The LLM provider is optional: letter
// generation falls back to a deterministic template the way the proposal
// generator does, so the operation never fails for valid input.
type Service struct {
	provider llm.Provider
	tracker  *Tracker
	logger   *zap.Logger
}

// NewService creates a funding service. provider may be nil.
func NewService(provider llm.Provider, tracker *Tracker, logger *zap.Logger) *Service {
	return &Service{
		provider: provider,
		tracker:  tracker,
		logger:   logger,
	}
}

// Tracker exposes the application tracker.
func (s *Service) Tracker() *Tracker {
	return s.tracker
}

// CostRequest describes a trip for estimation.
type CostRequest struct {
	RouteClass string `json:"route_class"` // domestic, continental, intercontinental
	Nights     int    `json:"nights"`
	SharedRoom bool   `json:"shared_room"`
}

// Daily and route-band rates in USD, taken from the published averages the
// scholarship programs budget against.
const (
	nightlyRate       = 180
	nightlyRateShared = 95
	mealsPerDay       = 60
	transitPerDay     = 25
)

var airfareByRoute = map[string]int{
	"domestic":         350,
	"continental":      650,
	"intercontinental": 1200,
}

// EstimateCosts produces an itemized projection with a 10% contingency.
func (s *Service) EstimateCosts(req CostRequest) (domain.CostEstimate, error) {
	airfare, ok := airfareByRoute[strings.ToLower(strings.TrimSpace(req.RouteClass))]
	if !ok {
		return domain.CostEstimate{}, appErrors.NewValidation("route_class must be one of domestic, continental, intercontinental")
	}
	if req.Nights < 1 || req.Nights > 30 {
		return domain.CostEstimate{}, appErrors.NewValidation("nights must be between 1 and 30")
	}

	rate := nightlyRate
	if req.SharedRoom {
		rate = nightlyRateShared
	}
	days := req.Nights + 1

	est := domain.CostEstimate{
		Airfare:       airfare,
		Accommodation: rate * req.Nights,
		Meals:         mealsPerDay * days,
		LocalTransit:  transitPerDay * days,
	}
	subtotal := est.Airfare + est.Accommodation + est.Meals + est.LocalTransit
	est.Contingency = subtotal / 10
	est.Total = subtotal + est.Contingency
	return est, nil
}

// LetterRequest carries what the justification letter needs to say.
type LetterRequest struct {
	ProgramID  string `json:"program_id"`
	EventName  string `json:"event_name"`
	Background string `json:"background"`
	Goals      string `json:"goals"`
}

// GenerateLetter produces a funding justification letter. Upstream failures
// fall back to a deterministic template; only validation errors surface.
func (s *Service) GenerateLetter(ctx context.Context, req LetterRequest) (string, bool, error) {
	program, err := s.findProgram(req.ProgramID)
	if err != nil {
		return "", false, err
	}
	if strings.TrimSpace(req.EventName) == "" {
		return "", false, appErrors.NewValidation("event_name must not be empty")
	}

	if s.provider != nil && s.provider.Available() {
		letter, err := s.generateFromModel(ctx, program, req)
		if err == nil {
			return letter, true, nil
		}
		if !appErrors.IsRecoverable(err) {
			return "", false, err
		}
		s.logger.Warn("letter generation failed upstream, using template",
			zap.String("program", program.ID),
			zap.Error(err),
		)
	}

	return templateLetter(program, req), false, nil
}

func (s *Service) generateFromModel(ctx context.Context, program domain.FundingProgram, req LetterRequest) (string, error) {
	prompt := fmt.Sprintf(`Write a concise, professional funding application letter (250-350 words).

Program: %s
Event: %s
Applicant background: %s
Goals for attending: %s

The letter should:
- State the financial need plainly without overstating it
- Connect the applicant's background to the event content
- Describe the concrete impact attending would have
- Close with a commitment to share learnings with the community

Return only the letter text.`, program.Name, req.EventName, req.Background, req.Goals)

	letter, err := s.provider.Complete(ctx, prompt, llm.CompletionOptions{
		Temperature: 0.6,
		MaxTokens:   600,
		Format:      "text",
	})
	if err != nil {
		return "", err
	}
	letter = strings.TrimSpace(letter)
	if letter == "" {
		return "", appErrors.NewUpstream("completion returned an empty letter", nil)
	}
	return letter, nil
}

func templateLetter(program domain.FundingProgram, req LetterRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Dear %s Committee,\n\n", program.Name)
	fmt.Fprintf(&sb, "I am writing to apply for support to attend %s. ", req.EventName)
	if req.Background != "" {
		fmt.Fprintf(&sb, "My background: %s. ", strings.TrimSuffix(req.Background, "."))
	}
	sb.WriteString("Attending without assistance is not financially feasible for me at this time.\n\n")
	if req.Goals != "" {
		fmt.Fprintf(&sb, "My goals for attending: %s.\n\n", strings.TrimSuffix(req.Goals, "."))
	}
	sb.WriteString("If awarded, I commit to writing up and sharing what I learn with my local community. Thank you for considering my application.\n\nSincerely,\n[Your name]")
	return sb.String()
}

func (s *Service) findProgram(id string) (domain.FundingProgram, error) {
	for _, p := range programs {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.FundingProgram{}, appErrors.NewNotFound("unknown funding program: " + id)
}
