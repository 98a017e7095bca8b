// Package exchange abstracts the remote spot exchange consumed by the
// trading engine and provides the Binance implementation.
package exchange

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/momentum-bot/internal/types"
)

// Exchange enumerates the remote operations the engine depends on. All calls
// are blocking I/O; cancellation is driven by the supplied context.
type Exchange interface {
	// GetAccountBalances returns the free balance per asset.
	GetAccountBalances(ctx context.Context) (types.AccountSnapshot, error)
	// GetPrice returns the last price for a single symbol.
	GetPrice(ctx context.Context, symbol string) (float64, error)
	// GetPrices returns the last price for every listed symbol.
	GetPrices(ctx context.Context) (map[string]float64, error)
	// GetSymbolFilters returns the quantity/price granularity constraints for a symbol.
	GetSymbolFilters(ctx context.Context, symbol string) (types.SymbolFilters, error)
	// GetCandles returns up to limit completed candles for the symbol and interval.
	GetCandles(ctx context.Context, symbol string, interval string, limit int) ([]types.Candle, error)
	// GetDailyStats returns 24h quote-volume statistics for the whole market.
	GetDailyStats(ctx context.Context) ([]types.DailyStat, error)
	// SubmitMarketBuy places a market buy for the given base quantity.
	SubmitMarketBuy(ctx context.Context, symbol string, quantity decimal.Decimal) (types.MarketBuyResult, error)
	// SubmitExitBracket places the paired take-profit/stop-loss exit for an open position.
	SubmitExitBracket(ctx context.Context, symbol string, bracket types.ExitBracket) error
}
