// Package resilience shields request handling from providers that are
// repeatedly failing. A [Breaker] tracks consecutive upstream failures and
// rejects calls outright while the provider is considered down, so a dead
// upstream costs a generation race microseconds instead of the full deadline.
//
// All types are safe for concurrent use.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrTripped is returned by [Breaker.Do] when the breaker is open and the
// cooldown has not yet elapsed.
var ErrTripped = errors.New("resilience: provider circuit open")

const (
	stateClosed = iota
	stateOpen
	stateProbe
)

// DefaultFailLimit is the consecutive-failure count that opens a breaker.
const DefaultFailLimit = 3

// DefaultCooldown is how long an open breaker rejects calls before letting a
// probe through.
const DefaultCooldown = 30 * time.Second

// Breaker is a three-state circuit breaker: closed while the provider is
// healthy, open after failLimit consecutive failures, and probing after the
// cooldown. A single successful probe closes it again; a failed probe
// restarts the cooldown.
type Breaker struct {
	name      string
	failLimit int
	cooldown  time.Duration

	mu       sync.Mutex
	state    int
	failures int
	openedAt time.Time
	probing  bool
}

// BreakerOption customizes a Breaker.
type BreakerOption func(*Breaker)

// WithFailLimit sets the consecutive-failure count that opens the breaker.
func WithFailLimit(n int) BreakerOption {
	return func(b *Breaker) { b.failLimit = n }
}

// WithCooldown sets how long the breaker stays open before probing.
func WithCooldown(d time.Duration) BreakerOption {
	return func(b *Breaker) { b.cooldown = d }
}

// NewBreaker returns a closed Breaker. name appears in log messages.
func NewBreaker(name string, opts ...BreakerOption) *Breaker {
	b := &Breaker{
		name:      name,
		failLimit: DefaultFailLimit,
		cooldown:  DefaultCooldown,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Do runs fn if the breaker allows it, returning [ErrTripped] otherwise.
// Context cancellation and deadline errors from fn do not count as provider
// failures: a participant that loses a race is cancelled, not broken.
func (b *Breaker) Do(fn func() error) error {
	probe, ok := b.admit()
	if !ok {
		return ErrTripped
	}

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if probe {
		b.probing = false
	}
	switch {
	case err == nil:
		b.reset(probe)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		// Not the provider's fault; leave the state alone.
	default:
		b.fail(probe)
	}
	return err
}

// admit decides whether a call may proceed and whether it is a probe.
func (b *Breaker) admit() (probe, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateClosed:
		return false, true
	case stateOpen:
		if time.Since(b.openedAt) < b.cooldown {
			return false, false
		}
		b.state = stateProbe
		b.probing = true
		slog.Info("provider circuit probing", "provider", b.name)
		return true, true
	default: // stateProbe
		if b.probing {
			// One probe in flight is enough.
			return false, false
		}
		b.probing = true
		return true, true
	}
}

// reset restores the closed state. Must be called with b.mu held.
func (b *Breaker) reset(probe bool) {
	if probe || b.failures > 0 {
		if b.state != stateClosed {
			slog.Info("provider circuit closed", "provider", b.name)
		}
		b.state = stateClosed
		b.failures = 0
	}
}

// fail records one failure and opens the breaker when warranted. Must be
// called with b.mu held.
func (b *Breaker) fail(probe bool) {
	if probe {
		b.state = stateOpen
		b.openedAt = time.Now()
		slog.Warn("provider circuit re-opened after failed probe", "provider", b.name)
		return
	}
	b.failures++
	if b.state == stateClosed && b.failures >= b.failLimit {
		b.state = stateOpen
		b.openedAt = time.Now()
		slog.Warn("provider circuit opened",
			"provider", b.name,
			"consecutive_failures", b.failures)
	}
}
