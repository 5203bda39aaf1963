package keepalive_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/keepalive"
)

func TestRun_PingsOnInterval(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := keepalive.New(srv.URL, 20*time.Millisecond)
	go p.Run(ctx)

	deadline := time.After(2 * time.Second)
	for hits.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("got %d pings, want at least 2", hits.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	p := keepalive.New(srv.URL, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_SurvivesErrorStatus(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := keepalive.New(srv.URL, 20*time.Millisecond)
	go p.Run(ctx)

	deadline := time.After(2 * time.Second)
	for hits.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("got %d pings, want the loop to keep going past failures", hits.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}
}
