package domain

import (
	"strings"
	"time"
)

// Event is a conference or community event discovered from a listing feed.
type Event struct {
	Name        string    `json:"name"`
	Source      string    `json:"source"`
	Location    string    `json:"location"`
	URL         string    `json:"url,omitempty"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	CFPDeadline time.Time `json:"cfp_deadline,omitempty"`
	Topics      []string  `json:"topics,omitempty"`
}

// Upcoming reports whether the event starts at or after the given time.
func (e Event) Upcoming(now time.Time) bool {
	return !e.StartDate.Before(now)
}

// MatchesTopic reports whether the event name or any topic contains the
// given term, case-insensitively. An empty term matches everything.
func (e Event) MatchesTopic(term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(e.Name), term) {
		return true
	}
	for _, t := range e.Topics {
		if strings.Contains(strings.ToLower(t), term) {
			return true
		}
	}
	return false
}

// CFPOpen reports whether the call for proposals is still open.
// Events without a published deadline are treated as open until they start.
func (e Event) CFPOpen(now time.Time) bool {
	if e.CFPDeadline.IsZero() {
		return e.Upcoming(now)
	}
	return now.Before(e.CFPDeadline)
}
