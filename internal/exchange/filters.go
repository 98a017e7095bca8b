package exchange

import (
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/momentum-bot/internal/types"
	"github.com/rxtech-lab/momentum-bot/pkg/errors"
)

// NormalizeQuantity floors a raw quantity to the symbol's step-size grid:
// qty = floor(raw/step) * step, computed in decimal arithmetic so the result
// carries the exact precision implied by the step size.
func NormalizeQuantity(raw, stepSize decimal.Decimal) (decimal.Decimal, error) {
	return floorToGrid(raw, stepSize, "step size")
}

// NormalizePrice floors a raw price to the symbol's tick-size grid.
func NormalizePrice(raw, tickSize decimal.Decimal) (decimal.Decimal, error) {
	return floorToGrid(raw, tickSize, "tick size")
}

// floorToGrid subtracts the remainder of raw modulo the grid increment.
// Mod is exact in decimal arithmetic, so no binary-float rounding can leak in.
func floorToGrid(raw, grid decimal.Decimal, gridName string) (decimal.Decimal, error) {
	if grid.Sign() <= 0 {
		return decimal.Zero, errors.Newf(errors.ErrCodeInvalidParameter, "%s must be positive, got %s", gridName, grid)
	}

	if raw.Sign() < 0 {
		return decimal.Zero, errors.Newf(errors.ErrCodeInvalidParameter, "value must be non-negative, got %s", raw)
	}

	return raw.Sub(raw.Mod(grid)), nil
}

// ValidateOrder checks a normalized quantity and price against the symbol's
// minimum-quantity and minimum-notional filters.
func ValidateOrder(qty, price decimal.Decimal, filters types.SymbolFilters) error {
	if qty.LessThan(filters.MinQty) {
		return errors.Newf(errors.ErrCodeBelowMinQty,
			"quantity %s below minimum %s for %s", qty, filters.MinQty, filters.Symbol)
	}

	if qty.Mul(price).LessThan(filters.MinNotional) {
		return errors.Newf(errors.ErrCodeBelowMinNotional,
			"notional %s below minimum %s for %s", qty.Mul(price), filters.MinNotional, filters.Symbol)
	}

	return nil
}
