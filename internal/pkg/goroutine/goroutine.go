// Package goroutine runs fire-and-forget work with a bounded concurrency
// budget, so background tasks (event publishing, counter flushes, last-used
// touches) cannot pile up without limit.
package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
)

// DefaultMaxGoroutine is the per-CPU multiplier used when NewManager
// receives a non-positive limit.
const DefaultMaxGoroutine int = 100

// Manager schedules functions on goroutines up to a concurrency limit and
// collects the errors they return.
type Manager struct {
	mu      sync.Mutex
	errs    []error
	wg      sync.WaitGroup
	sema    chan struct{}
	stateMu sync.RWMutex
	closed  bool
}

// NewManager creates a Manager with the provided maximum concurrency.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{
		sema: make(chan struct{}, maxGoroutine),
	}
}

// Go schedules f on a goroutine if capacity is available. When the manager
// is at its limit or already closed, f is dropped with a warning; callers
// must treat scheduled work as best-effort.
func (g *Manager) Go(pCtx context.Context, f func(ctx context.Context) error) {
	if g == nil {
		return
	}

	g.stateMu.RLock()
	closed := g.closed
	g.stateMu.RUnlock()
	if closed {
		slog.WarnContext(pCtx, "goroutine manager is closed, skipping new goroutine")
		return
	}

	select {
	case g.sema <- struct{}{}:
		g.wg.Go(func() {
			defer func() {
				<-g.sema

				if rvr := recover(); rvr != nil {
					slog.ErrorContext(pCtx, "panic occurred in goroutine", "because", rvr, "stack", string(debug.Stack()))
				}
			}()

			select {
			case <-pCtx.Done():
				slog.WarnContext(pCtx, "goroutine canceled", "because", pCtx.Err())
			default:
				if err := f(pCtx); err != nil {
					g.mu.Lock()
					g.errs = append(g.errs, err)
					g.mu.Unlock()
				}
			}
		})

	default:
		slog.WarnContext(pCtx, "maximum goroutine limit reached, failed to start new goroutine")
	}
}

// Wait blocks until every scheduled goroutine finishes and returns the
// collected errors. The manager accepts no new work afterwards.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.stateMu.Lock()
	g.closed = true
	g.stateMu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}
