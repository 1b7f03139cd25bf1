// Package discovery fetches conference listings from configured feeds and
// serves them filtered to the dashboard, cached between refreshes.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cfp-backend/internal/config"
	"cfp-backend/internal/domain"
	appErrors "cfp-backend/pkg/errors"
)

// feedPayload is the JSON shape a listing feed returns. Feeds are expected
// to publish structured listings; site-specific HTML scraping is a
// collaborator concern, not handled here.
type feedPayload struct {
	Events []feedEvent `json:"events"`
}

type feedEvent struct {
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	URL         string   `json:"url"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	CFPDeadline string   `json:"cfp_deadline"`
	Topics      []string `json:"topics"`
}

// fetcher retrieves and decodes one feed with bounded retries.
type fetcher struct {
	client     *http.Client
	maxRetries int
	backoff    time.Duration
}

func newFetcher(cfg config.Discovery) *fetcher {
	return &fetcher{
		client:     &http.Client{Timeout: cfg.FetchTimeout},
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoff,
	}
}

// fetch retrieves the feed, retrying transient failures with exponential
// backoff. Non-retryable statuses fail immediately.
func (f *fetcher) fetch(ctx context.Context, feed config.Feed) ([]domain.Event, error) {
	var lastErr error

	for attempt := 0; attempt < f.maxRetries; attempt++ {
		if attempt > 0 {
			delay := f.backoff << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, appErrors.NewTimeout("feed fetch cancelled", ctx.Err())
			}
		}

		events, retryable, err := f.fetchOnce(ctx, feed)
		if err == nil {
			return events, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	return nil, appErrors.NewUpstream(fmt.Sprintf("feed %s unavailable", feed.Name), lastErr)
}

func (f *fetcher) fetchOnce(ctx context.Context, feed config.Feed) (events []domain.Event, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "cfp-backend/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, true, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, fmt.Errorf("feed %s returned status %d", feed.Name, resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("feed %s returned status %d", feed.Name, resp.StatusCode)
	}

	var payload feedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false, fmt.Errorf("feed %s returned unparseable payload: %w", feed.Name, err)
	}

	events = make([]domain.Event, 0, len(payload.Events))
	for _, fe := range payload.Events {
		ev, err := fe.toDomain(feed.Name)
		if err != nil {
			// Skip malformed records instead of failing the whole feed.
			continue
		}
		events = append(events, ev)
	}
	return events, false, nil
}

// toDomain converts a feed record, requiring a name and a parseable start
// date. Dates may be RFC 3339 or plain YYYY-MM-DD.
func (fe feedEvent) toDomain(source string) (domain.Event, error) {
	if fe.Name == "" {
		return domain.Event{}, fmt.Errorf("event has no name")
	}

	start, err := parseDate(fe.StartDate)
	if err != nil {
		return domain.Event{}, fmt.Errorf("event %s has invalid start date: %w", fe.Name, err)
	}

	end, err := parseDate(fe.EndDate)
	if err != nil {
		end = start
	}

	ev := domain.Event{
		Name:      fe.Name,
		Source:    source,
		Location:  fe.Location,
		URL:       fe.URL,
		StartDate: start,
		EndDate:   end,
		Topics:    fe.Topics,
	}
	if deadline, err := parseDate(fe.CFPDeadline); err == nil {
		ev.CFPDeadline = deadline
	}
	return ev, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
