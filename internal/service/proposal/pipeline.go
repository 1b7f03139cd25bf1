package proposal

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"cfp-backend/internal/cache"
	"cfp-backend/internal/domain"
	"cfp-backend/internal/observability"
	appErrors "cfp-backend/pkg/errors"
)

// Pipeline wires the normalizer, cache store and generator together.
// Per request: Received -> Normalized -> CacheChecked -> hit? done :
// Generating -> Validated -> Cached -> done. Concurrent misses for the same
// key are collapsed to a single generation via singleflight.
type Pipeline struct {
	store   *cache.Store
	gen     *Generator
	ttl     atomic.Int64 // nanoseconds; written by the config reload hook
	group   singleflight.Group
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewPipeline creates a pipeline writing generated proposals to store with
// the given TTL.
func NewPipeline(store *cache.Store, gen *Generator, ttl time.Duration, metrics *observability.Collector, logger *zap.Logger) *Pipeline {
	p := &Pipeline{
		store:   store,
		gen:     gen,
		metrics: metrics,
		logger:  logger,
	}
	p.ttl.Store(int64(ttl))
	return p
}

// SetTTL updates the cache TTL for subsequently generated proposals.
// Used by the config hot-reload hook.
func (p *Pipeline) SetTTL(ttl time.Duration) {
	p.ttl.Store(int64(ttl))
}

// Handle runs a raw request through the full pipeline. Validation errors
// surface to the caller; upstream and timeout failures never do, because the
// generator recovers them with the template fallback. The returned proposal
// is shared with the cache and must not be mutated.
func (p *Pipeline) Handle(ctx context.Context, raw RawRequest) (*domain.Proposal, error) {
	req, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	key := CacheKey(req)
	if cached, ok := p.store.Get(key); ok {
		if artifact, ok := cached.(*domain.Proposal); ok {
			p.metrics.CacheHits.Inc()
			p.logger.Debug("cache hit", zap.String("key", key))
			return artifact, nil
		}
		// A foreign value under our key is a defect elsewhere; drop it and
		// regenerate rather than returning garbage.
		p.store.Delete(key)
	}
	p.metrics.CacheMisses.Inc()

	result, err, _ := p.group.Do(key, func() (any, error) {
		// Re-check: a concurrent leader may have filled the entry between
		// our miss and acquiring the flight.
		if cached, ok := p.store.Get(key); ok {
			if artifact, ok := cached.(*domain.Proposal); ok {
				return artifact, nil
			}
		}

		artifact, err := p.gen.Generate(ctx, req)
		if err != nil {
			return nil, err
		}
		if err := artifact.Validate(); err != nil {
			// The generator repairs before returning, so this is a
			// defensive, effectively unreachable state.
			return nil, appErrors.Wrap(err, "generated proposal failed validation")
		}

		p.store.Put(key, artifact, time.Duration(p.ttl.Load()))
		p.logger.Info("proposal generated",
			zap.String("subject", req.Subject),
			zap.String("kind", string(req.Kind)),
			zap.String("source", string(artifact.Source)),
		)
		return artifact, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Proposal), nil
}

// Review runs the generator's improvement review over an existing proposal.
// Reviews are not cached: the input is an arbitrary caller artifact, not a
// normalized request.
func (p *Pipeline) Review(ctx context.Context, artifact domain.Proposal) (*Review, error) {
	return p.gen.Review(ctx, artifact)
}

// PurgeExpired removes expired cache entries, returning the number removed.
// Called by the janitor goroutine on the configured interval.
func (p *Pipeline) PurgeExpired() int {
	return p.store.PurgeExpired()
}

// CacheStats exposes store counters for the dashboard.
func (p *Pipeline) CacheStats() cache.Stats {
	return p.store.Stats()
}
