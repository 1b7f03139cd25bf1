package discovery

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"cfp-backend/internal/cache"
	"cfp-backend/internal/config"
	"cfp-backend/internal/domain"
	"cfp-backend/internal/observability"
	appErrors "cfp-backend/pkg/errors"
)

const eventsCacheKey = "discovery:events"

// Service aggregates event listings from the configured feeds.
type Service struct {
	feeds   []config.Feed
	fetcher *fetcher
	store   *cache.Store
	ttl     time.Duration
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewService creates a discovery service caching merged listings in store.
func NewService(cfg config.Discovery, ttl time.Duration, store *cache.Store, metrics *observability.Collector, logger *zap.Logger) *Service {
	return &Service{
		feeds:   cfg.Feeds,
		fetcher: newFetcher(cfg),
		store:   store,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
	}
}

// Discover returns the merged event list, served from cache while fresh.
// Individual feed failures are logged and skipped; Discover only fails when
// every feed is unreachable and nothing is cached.
func (s *Service) Discover(ctx context.Context) ([]domain.Event, error) {
	if cached, ok := s.store.Get(eventsCacheKey); ok {
		if events, ok := cached.([]domain.Event); ok {
			s.metrics.CacheHits.Inc()
			return events, nil
		}
	}
	s.metrics.CacheMisses.Inc()

	var merged []domain.Event
	failures := 0
	for _, feed := range s.feeds {
		events, err := s.fetcher.fetch(ctx, feed)
		if err != nil {
			failures++
			s.metrics.FeedFetchErrors.Inc()
			s.logger.Warn("feed fetch failed",
				zap.String("feed", feed.Name),
				zap.Error(err),
			)
			continue
		}
		merged = append(merged, events...)
	}

	if len(s.feeds) > 0 && failures == len(s.feeds) {
		return nil, appErrors.NewUpstream("all listing feeds are unavailable", nil)
	}

	merged = dedupe(merged)
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].StartDate.Before(merged[j].StartDate)
	})

	s.metrics.EventsDiscovered.Add(float64(len(merged)))
	s.store.Put(eventsCacheKey, merged, s.ttl)
	s.logger.Info("events discovered",
		zap.Int("count", len(merged)),
		zap.Int("feeds", len(s.feeds)),
		zap.Int("failures", failures),
	)
	return merged, nil
}

// FilterOptions narrows a discovered event list.
type FilterOptions struct {
	Topic       string
	Location    string
	Before      time.Time // only events starting before this instant
	IncludePast bool
	CFPOpenOnly bool
}

// Filter applies the options to events. Past events are excluded unless
// IncludePast is set.
func (s *Service) Filter(events []domain.Event, opts FilterOptions) []domain.Event {
	now := time.Now()
	out := make([]domain.Event, 0, len(events))

	for _, ev := range events {
		if !opts.IncludePast && !ev.Upcoming(now) {
			continue
		}
		if !ev.MatchesTopic(opts.Topic) {
			continue
		}
		if opts.Location != "" && !strings.Contains(strings.ToLower(ev.Location), strings.ToLower(opts.Location)) {
			continue
		}
		if !opts.Before.IsZero() && !ev.StartDate.Before(opts.Before) {
			continue
		}
		if opts.CFPOpenOnly && !ev.CFPOpen(now) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// dedupe removes events sharing a name and start date, keeping the first.
func dedupe(events []domain.Event) []domain.Event {
	seen := make(map[string]struct{}, len(events))
	out := events[:0]
	for _, ev := range events {
		key := strings.ToLower(ev.Name) + "|" + ev.StartDate.Format("2006-01-02")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ev)
	}
	return out
}
