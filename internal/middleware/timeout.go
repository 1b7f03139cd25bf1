package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"cfp-backend/pkg/api"
)

// timeoutWriter gives the handler goroutine a private header map and hands
// the underlying ResponseWriter to whichever side commits first. Once the
// timeout response has gone out, late handler writes are discarded, so the
// two goroutines never touch the connection concurrently.
type timeoutWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	h       http.Header
	timeout bool
	wrote   bool
}

func newTimeoutWriter(w http.ResponseWriter) *timeoutWriter {
	return &timeoutWriter{w: w, h: make(http.Header)}
}

// Header returns the private map; only the handler goroutine reads or
// writes it, and it is flushed to the real writer on first commit.
func (tw *timeoutWriter) Header() http.Header { return tw.h }

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timeout || tw.wrote {
		return
	}
	tw.wrote = true
	dst := tw.w.Header()
	for k, v := range tw.h {
		dst[k] = v
	}
	tw.w.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timeout {
		return len(b), nil
	}
	if !tw.wrote {
		tw.wrote = true
		dst := tw.w.Header()
		for k, v := range tw.h {
			dst[k] = v
		}
	}
	return tw.w.Write(b)
}

// claimForTimeout marks the writer as timed out and reports whether the
// handler had already started a response; when it had, the timeout side
// must not write a second status line.
func (tw *timeoutWriter) claimForTimeout() bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.timeout = true
	return !tw.wrote
}

// Timeout wraps requests with a timeout context so a stuck upstream call
// cannot stall a handler indefinitely.
func Timeout(timeout time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			r = r.WithContext(ctx)
			tw := newTimeoutWriter(w)
			done := make(chan struct{})

			go func() {
				defer func() {
					if err := recover(); err != nil {
						logger.Error("panic in timeout handler",
							zap.String("request_id", GetRequestID(r.Context())),
							zap.Any("panic", err),
						)
					}
				}()

				next.ServeHTTP(tw, r)
				close(done)
			}()

			select {
			case <-done:
				return
			case <-ctx.Done():
				logger.Warn("request timeout",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("path", r.URL.Path),
				)
				if tw.claimForTimeout() {
					api.Error(w, http.StatusRequestTimeout, "Request timeout")
				}
				return
			}
		})
	}
}
