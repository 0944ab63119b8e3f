// Package source implements upstream feed fetchers. Every source satisfies
// the same narrow contract: fetch an ordered list of items or fail with a
// source-level error that the aggregator isolates.
package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/trendpulse/trendpulse/internal/model"
)

// Source is one upstream feed.
type Source interface {
	// ID returns the stable source identifier used in results and the
	// authority table.
	ID() string

	// Name returns the human-readable source name.
	Name() string

	// FetchNews retrieves the source's current trending items, ordered by
	// source-local rank starting at 1.
	FetchNews(ctx context.Context) ([]model.NewsItem, error)
}

// Error is a source-level fetch failure carrying the source id. The
// aggregator records it in SourcesFailed and never lets it escape the run.
type Error struct {
	SourceID string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("source %s: %v", e.SourceID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// RateGate enforces a minimum interval between requests from one source.
// The last-request instant is explicit state, guarded for concurrent use.
type RateGate struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewRateGate creates a gate with the given minimum request interval.
func NewRateGate(interval time.Duration) *RateGate {
	return &RateGate{interval: interval}
}

// Wait blocks until the interval since the previous request has elapsed, or
// the context is cancelled.
func (g *RateGate) Wait(ctx context.Context) error {
	g.mu.Lock()
	now := time.Now()
	wait := g.interval - now.Sub(g.last)
	if wait < 0 {
		wait = 0
	}
	g.last = now.Add(wait)
	g.mu.Unlock()

	if wait == 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
