package engine

import (
	"sync"
	"time"

	"github.com/rxtech-lab/momentum-bot/internal/types"
)

// StatusSnapshot is the last-known state published by the engine after each
// significant transition. The HTTP surface reads it; it never feeds back into
// trading decisions.
type StatusSnapshot struct {
	QuoteBalance float64            `json:"quote_balance"`
	Position     *types.Position    `json:"position,omitempty"`
	LastSignal   *types.EntrySignal `json:"last_signal,omitempty"`
	LastError    string             `json:"last_error,omitempty"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// StatusBoard holds the snapshot behind a read/write lock so concurrent
// readers never observe torn writes from the scan loop.
type StatusBoard struct {
	mu       sync.RWMutex
	snapshot StatusSnapshot
}

// NewStatusBoard creates an empty status board.
func NewStatusBoard() *StatusBoard {
	return &StatusBoard{}
}

// Snapshot returns a copy of the current state. Pointer fields are copied so
// callers cannot mutate the board through the snapshot.
func (b *StatusBoard) Snapshot() StatusSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snapshot := b.snapshot
	if b.snapshot.Position != nil {
		p := *b.snapshot.Position
		snapshot.Position = &p
	}

	if b.snapshot.LastSignal != nil {
		sig := *b.snapshot.LastSignal
		snapshot.LastSignal = &sig
	}

	return snapshot
}

// PublishBalance records the latest observed free quote balance.
func (b *StatusBoard) PublishBalance(balance float64, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.snapshot.QuoteBalance = balance
	b.snapshot.UpdatedAt = now
}

// PublishSignal records the most recent entry signal evaluation.
func (b *StatusBoard) PublishSignal(signal types.EntrySignal, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := signal
	b.snapshot.LastSignal = &s
	b.snapshot.UpdatedAt = now
}

// PublishPosition records a newly opened position.
func (b *StatusBoard) PublishPosition(position types.Position, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := position
	b.snapshot.Position = &p
	b.snapshot.UpdatedAt = now
}

// ClearPosition removes the tracked position once the exit bracket has been
// handed to the exchange.
func (b *StatusBoard) ClearPosition(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.snapshot.Position = nil
	b.snapshot.UpdatedAt = now
}

// PublishError records the most recent failure for the dashboard.
func (b *StatusBoard) PublishError(err error, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.snapshot.LastError = err.Error()
	b.snapshot.UpdatedAt = now
}
