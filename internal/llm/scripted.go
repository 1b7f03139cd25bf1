package llm

import (
	"context"
	"sync"
	"time"

	appErrors "cfp-backend/pkg/errors"
)

// ScriptedProvider is a test double that replays queued responses and errors
// in order, counting calls so tests can assert how often the upstream was hit.
type ScriptedProvider struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int
	available bool
	delay     time.Duration
}

// NewScriptedProvider creates an available provider with no queued responses.
func NewScriptedProvider() *ScriptedProvider {
	return &ScriptedProvider{available: true}
}

// Queue appends a successful response.
func (p *ScriptedProvider) Queue(response string) *ScriptedProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, response)
	p.errs = append(p.errs, nil)
	return p
}

// QueueError appends a failing call.
func (p *ScriptedProvider) QueueError(err error) *ScriptedProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, "")
	p.errs = append(p.errs, err)
	return p
}

// SetDelay makes each Complete call sleep before answering. Used by tests
// that need in-flight calls to overlap.
func (p *ScriptedProvider) SetDelay(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delay = d
}

// SetAvailable toggles availability.
func (p *ScriptedProvider) SetAvailable(available bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.available = available
}

// Calls returns how many times Complete was invoked.
func (p *ScriptedProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Available implements Provider.
func (p *ScriptedProvider) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available
}

// Complete replays the next queued response or error. An exhausted queue
// behaves like an unreachable upstream.
func (p *ScriptedProvider) Complete(_ context.Context, _ string, _ CompletionOptions) (string, error) {
	p.mu.Lock()
	if p.delay > 0 {
		d := p.delay
		p.mu.Unlock()
		time.Sleep(d)
		p.mu.Lock()
	}
	defer p.mu.Unlock()

	p.calls++
	if len(p.responses) == 0 {
		return "", appErrors.NewUpstream("scripted provider queue exhausted", nil)
	}

	resp, err := p.responses[0], p.errs[0]
	p.responses = p.responses[1:]
	p.errs = p.errs[1:]
	if err != nil {
		return "", err
	}
	return resp, nil
}
