// Package race implements the first-success-wins provider dispatcher.
//
// Interchangeable generation providers have different latency distributions;
// racing them bounds tail latency better than a fixed fallback order, at the
// cost of wasted calls to the losing providers. All participants start
// immediately, the first successful non-empty result wins, and the remaining
// participants are told to abort via context cancellation.
package race

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoProvider is returned when the participant list is empty.
	ErrNoProvider = errors.New("race: no provider configured")

	// ErrDeadlineExceeded is returned when no participant succeeds before
	// the deadline elapses.
	ErrDeadlineExceeded = errors.New("race: deadline exceeded")
)

// DefaultDeadline bounds a race when the caller does not configure one.
const DefaultDeadline = 1200 * time.Millisecond

// Participant is one provider call entered into a race.
type Participant struct {
	// Name identifies the provider in results and logs.
	Name string

	// Call performs the provider request. It must honour ctx: once a winner
	// is chosen the remaining calls are cancelled.
	Call func(ctx context.Context) (string, error)
}

// Result is the winning outcome of a race.
type Result struct {
	Provider string
	Text     string
	Latency  time.Duration
}

// outcome carries one participant's completion over the collection channel.
type outcome struct {
	name string
	text string
	err  error
}

// Run starts every participant immediately and returns the first successful
// non-empty result, with ties broken by completion order.
//
// A failing participant does not abort the race. If every participant fails,
// Run returns the last underlying error. If the deadline elapses with no
// winner, Run returns ErrDeadlineExceeded and the in-flight calls are
// abandoned (their contexts are cancelled, results discarded). An empty
// participant list fails immediately with ErrNoProvider.
func Run(ctx context.Context, deadline time.Duration, participants []Participant) (*Result, error) {
	if len(participants) == 0 {
		return nil, ErrNoProvider
	}
	if deadline <= 0 {
		deadline = DefaultDeadline
	}

	raceCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	start := time.Now()
	outcomes := make(chan outcome, len(participants))
	for _, p := range participants {
		go func(p Participant) {
			text, err := p.Call(raceCtx)
			if err == nil && text == "" {
				err = fmt.Errorf("race: provider %s returned empty text", p.Name)
			}
			outcomes <- outcome{name: p.Name, text: text, err: err}
		}(p)
	}

	var lastErr error
	for pending := len(participants); pending > 0; pending-- {
		select {
		case o := <-outcomes:
			if o.err != nil {
				lastErr = o.err
				continue
			}
			return &Result{
				Provider: o.name,
				Text:     o.text,
				Latency:  time.Since(start),
			}, nil
		case <-raceCtx.Done():
			if errors.Is(raceCtx.Err(), context.DeadlineExceeded) {
				return nil, ErrDeadlineExceeded
			}
			return nil, raceCtx.Err()
		}
	}

	if errors.Is(lastErr, context.DeadlineExceeded) {
		return nil, ErrDeadlineExceeded
	}
	return nil, fmt.Errorf("race: all providers failed: %w", lastErr)
}
