package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/momentum-bot/pkg/errors"
)

// SymbolFilters defines the valid quantity/price granularity for an instrument,
// as published by the exchange.
type SymbolFilters struct {
	Symbol      string          `json:"symbol"`
	StepSize    decimal.Decimal `json:"step_size"`
	TickSize    decimal.Decimal `json:"tick_size"`
	MinQty      decimal.Decimal `json:"min_qty"`
	MinNotional decimal.Decimal `json:"min_notional"`
}

// MarketBuyResult is the outcome of a submitted market buy.
// FillPrice is present only when the exchange response carried fills;
// an absent fill price triggers the settle-delay fallback in the executor.
type MarketBuyResult struct {
	Symbol      string
	ExecutedQty decimal.Decimal
	FillPrice   optional.Option[float64]
}

// Position represents the single open holding created after a confirmed buy
// fill. The engine owns it exclusively while the entry guard is held and
// stops tracking it once the exit bracket is handed to the exchange.
type Position struct {
	Symbol     string    `json:"symbol"`
	Quantity   float64   `json:"quantity"`
	EntryPrice float64   `json:"entry_price"`
	OpenedAt   time.Time `json:"opened_at"`
}

// ExitBracket is the paired take-profit/stop-loss exit derived from the
// realized entry price. All prices are already normalized to the tick grid.
type ExitBracket struct {
	TakeProfitPrice  decimal.Decimal `json:"take_profit_price"`
	StopTriggerPrice decimal.Decimal `json:"stop_trigger_price"`
	StopLimitPrice   decimal.Decimal `json:"stop_limit_price"`
	Quantity         decimal.Decimal `json:"quantity"`
}

// Validate checks the bracket price ordering invariant:
// stopLimit < stopTrigger < entry < takeProfit.
func (b ExitBracket) Validate(entryPrice decimal.Decimal) error {
	if !b.StopLimitPrice.LessThan(b.StopTriggerPrice) {
		return errors.Newf(errors.ErrCodeInvalidBracket,
			"stop limit price %s must be below stop trigger price %s",
			b.StopLimitPrice, b.StopTriggerPrice)
	}

	if !b.StopTriggerPrice.LessThan(entryPrice) {
		return errors.Newf(errors.ErrCodeInvalidBracket,
			"stop trigger price %s must be below entry price %s",
			b.StopTriggerPrice, entryPrice)
	}

	if !entryPrice.LessThan(b.TakeProfitPrice) {
		return errors.Newf(errors.ErrCodeInvalidBracket,
			"take profit price %s must be above entry price %s",
			b.TakeProfitPrice, entryPrice)
	}

	return nil
}
