package llm

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	appErrors "cfp-backend/pkg/errors"
)

// BreakerConfig holds configuration for the upstream circuit breaker.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns a default configuration for the upstream breaker.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      3,                // probes allowed in half-open state
		Interval:         30 * time.Second, // window before resetting stats
		Timeout:          60 * time.Second, // open duration before half-open
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// BreakerProvider decorates a Provider with a circuit breaker so a flapping
// upstream is cut off quickly instead of burning the per-request time budget.
// An open breaker surfaces as an upstream error, which the generator already
// recovers from via the template fallback.
type BreakerProvider struct {
	inner  Provider
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

// NewBreakerProvider wraps inner with a circuit breaker.
func NewBreakerProvider(inner Provider, config BreakerConfig, logger *zap.Logger) *BreakerProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Only trip once there are enough requests to make a decision
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("upstream circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &BreakerProvider{inner: inner, cb: cb, logger: logger}
}

// Available reports whether the underlying provider is configured.
func (p *BreakerProvider) Available() bool {
	return p.inner != nil && p.inner.Available()
}

// Complete executes the completion through the breaker.
func (p *BreakerProvider) Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error) {
	result, err := p.cb.Execute(func() (any, error) {
		return p.inner.Complete(ctx, prompt, options)
	})
	if err != nil {
		switch err {
		case gobreaker.ErrOpenState, gobreaker.ErrTooManyRequests:
			return "", appErrors.NewUpstream("upstream circuit breaker is open", err)
		default:
			return "", err
		}
	}
	return result.(string), nil
}
