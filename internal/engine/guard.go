// Package engine contains the decision-and-execution core: entry signal
// evaluation, position sizing, the buy-then-bracket order sequence and the
// periodic scan loop that drives them.
package engine

import (
	"sync"
	"sync/atomic"
)

// PositionGuard enforces the single-open-position invariant: at most one
// entry sequence may be in flight system-wide at any time.
//
// The guard replaces the usual global "trading" flag with scoped acquire/
// release discipline so it is released on every exit path, including errors.
type PositionGuard struct {
	mu   sync.Mutex
	held atomic.Bool
}

// NewPositionGuard creates a released guard.
func NewPositionGuard() *PositionGuard {
	return &PositionGuard{}
}

// TryAcquire attempts to take the guard without blocking. It returns false
// when another entry sequence is already in flight.
func (g *PositionGuard) TryAcquire() bool {
	if !g.mu.TryLock() {
		return false
	}

	g.held.Store(true)

	return true
}

// Release returns the guard. It must only be called by the holder.
func (g *PositionGuard) Release() {
	g.held.Store(false)
	g.mu.Unlock()
}

// Held reports whether an entry sequence is currently in flight. The scan
// loop checks this before evaluating further symbols in an iteration.
func (g *PositionGuard) Held() bool {
	return g.held.Load()
}
