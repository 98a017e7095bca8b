package engine

import (
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/momentum-bot/pkg/errors"
)

// DefaultMinNotional is the sizing floor in quote-currency units. Entries
// whose target notional falls below it are rejected before any remote call.
const DefaultMinNotional = 10.0

// SizingPolicy converts a free quote balance into a target entry notional.
type SizingPolicy interface {
	Notional(freeBalance float64) float64
}

// percentagePolicy spends a fixed fraction of the free balance.
type percentagePolicy struct {
	fraction float64
}

func (p percentagePolicy) Notional(freeBalance float64) float64 {
	return freeBalance * p.fraction
}

// PercentageOf returns a policy that spends the given fraction (0..1] of the
// free quote balance on each entry.
func PercentageOf(fraction float64) SizingPolicy {
	return percentagePolicy{fraction: fraction}
}

// fixedPolicy spends a constant notional regardless of balance, capped at the
// free balance.
type fixedPolicy struct {
	amount float64
}

func (p fixedPolicy) Notional(freeBalance float64) float64 {
	if p.amount > freeBalance {
		return freeBalance
	}

	return p.amount
}

// FixedNotional returns a policy that spends a constant quote amount on each
// entry, capped at the available balance.
func FixedNotional(amount float64) SizingPolicy {
	return fixedPolicy{amount: amount}
}

// PositionSizer applies a sizing policy and the minimum-notional floor.
type PositionSizer struct {
	policy      SizingPolicy
	minNotional float64
}

// NewPositionSizer creates a sizer with the given policy. A non-positive
// floor falls back to DefaultMinNotional.
func NewPositionSizer(policy SizingPolicy, minNotional float64) *PositionSizer {
	if minNotional <= 0 {
		minNotional = DefaultMinNotional
	}

	return &PositionSizer{
		policy:      policy,
		minNotional: minNotional,
	}
}

// SizeEntry converts the free quote balance into the target entry notional.
// Returns ErrCodeInsufficientBalance when the result is below the floor.
func (s *PositionSizer) SizeEntry(freeBalance float64) (decimal.Decimal, error) {
	notional := s.policy.Notional(freeBalance)

	if notional < s.minNotional {
		return decimal.Zero, errors.Newf(errors.ErrCodeInsufficientBalance,
			"target notional %.2f below floor %.2f (free balance %.2f)",
			notional, s.minNotional, freeBalance)
	}

	return decimal.NewFromFloat(notional), nil
}
