// Package gateway adapts the externally-hosted payment widget. The widget
// fires at most one of three terminal events per opened session - a success
// callback, a failure event, or a dismissal - and this package collapses them
// into a single awaited tagged Outcome.
package gateway

import (
	"context"
	"sync"

	"github.com/kunalverma25/khatapay/models"
	"github.com/kunalverma25/khatapay/utils"
)

// OutcomeKind tags the single terminal event of a widget session
type OutcomeKind string

const (
	// OutcomeSuccess - the widget completed and produced a signed result
	OutcomeSuccess OutcomeKind = "success"
	// OutcomeFailure - the widget reported a payment failure
	OutcomeFailure OutcomeKind = "failure"
	// OutcomeDismissed - the user closed the widget before completion
	OutcomeDismissed OutcomeKind = "dismissed"
)

// Outcome is the tagged result of one widget session
type Outcome struct {
	Kind        OutcomeKind
	Result      *models.GatewayResult
	Description string
}

// CheckoutOptions is the configuration handed to the hosted widget. Amount
// and OrderID mirror the gateway order verbatim and are never recomputed.
type CheckoutOptions struct {
	Key              string `json:"key"`
	AmountMinorUnits int64  `json:"amount"`
	Currency         string `json:"currency"`
	OrderID          string `json:"order_id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	PrefillName      string `json:"prefill_name"`
	ThemeColor       string `json:"theme_color"`
}

// Session is a once-only rendezvous between the open widget and the flow
// waiting on it. Exactly one Resolve* call wins; the rest are no-ops.
type Session struct {
	opts CheckoutOptions
	once sync.Once
	done chan Outcome
}

// NewSession creates an unresolved session for the given checkout options
func NewSession(opts CheckoutOptions) *Session {
	return &Session{
		opts: opts,
		done: make(chan Outcome, 1),
	}
}

// Options returns the checkout configuration the widget was opened with
func (s *Session) Options() CheckoutOptions {
	return s.opts
}

func (s *Session) resolve(out Outcome) bool {
	resolved := false
	s.once.Do(func() {
		s.done <- out
		resolved = true
	})
	return resolved
}

// Succeed delivers the widget's success callback. It reports whether this
// call resolved the session.
func (s *Session) Succeed(result models.GatewayResult) bool {
	return s.resolve(Outcome{Kind: OutcomeSuccess, Result: &result})
}

// Fail delivers the widget's failure event with its human-readable description
func (s *Session) Fail(description string) bool {
	return s.resolve(Outcome{Kind: OutcomeFailure, Description: description})
}

// Dismiss delivers the user's dismissal of the widget
func (s *Session) Dismiss() bool {
	return s.resolve(Outcome{Kind: OutcomeDismissed})
}

// Await blocks until the session resolves. There is no session timeout; the
// widget's own UI is the only timeout source.
func (s *Session) Await(ctx context.Context) (Outcome, error) {
	select {
	case out := <-s.done:
		return out, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Registry tracks open sessions by attempt id so widget callbacks arriving
// over HTTP can be routed to the flow awaiting them.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Open registers a new session for the attempt and returns it
func (r *Registry) Open(attemptID string, opts CheckoutOptions) *Session {
	session := NewSession(opts)
	r.mu.Lock()
	r.sessions[attemptID] = session
	r.mu.Unlock()
	utils.LogDebug("Gateway session opened for attempt %s, order %s", attemptID, opts.OrderID)
	return session
}

// Lookup returns the open session for the attempt, if any
func (r *Registry) Lookup(attemptID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[attemptID]
	return session, ok
}

// Close removes the attempt's session once its outcome has been consumed
func (r *Registry) Close(attemptID string) {
	r.mu.Lock()
	delete(r.sessions, attemptID)
	r.mu.Unlock()
	utils.LogDebug("Gateway session closed for attempt %s", attemptID)
}
