// Package keepalive pings the service's own public URL on an interval so
// free-tier hosting platforms do not put the instance to sleep between
// reading sessions.
package keepalive

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// DefaultInterval is used when the configuration does not set one.
const DefaultInterval = 10 * time.Minute

// Pinger periodically issues a GET request against a single URL.
type Pinger struct {
	url      string
	interval time.Duration
	client   *http.Client
}

// Option customizes a Pinger.
type Option func(*Pinger)

// WithClient replaces the HTTP client used for pings.
func WithClient(c *http.Client) Option {
	return func(p *Pinger) { p.client = c }
}

// New builds a Pinger for the given URL and interval. A non-positive
// interval selects DefaultInterval.
func New(url string, interval time.Duration, opts ...Option) *Pinger {
	if interval <= 0 {
		interval = DefaultInterval
	}
	p := &Pinger{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run pings until ctx is cancelled. The first ping fires after one full
// interval, not immediately; the server is obviously awake at startup.
func (p *Pinger) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	slog.Info("keepalive started", "url", p.url, "interval", p.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("keepalive stopped")
			return
		case <-ticker.C:
			if err := p.ping(ctx); err != nil {
				slog.Warn("keepalive ping failed", "url", p.url, "error", err)
			}
		}
	}
}

func (p *Pinger) ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("keepalive: build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("keepalive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("keepalive: unexpected status %d", resp.StatusCode)
	}
	slog.Debug("keepalive ping ok", "status", resp.StatusCode)
	return nil
}
