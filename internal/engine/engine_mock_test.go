package engine

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/momentum-bot/internal/types"
)

// fakeExchange is a hand-written Exchange stub with per-call capture, shared
// by the executor and scanner tests.
type fakeExchange struct {
	mu sync.Mutex

	balances     types.AccountSnapshot
	balanceQueue []types.AccountSnapshot
	balancesErr  error
	// balanceGate, when set, blocks GetAccountBalances until closed.
	balanceGate chan struct{}

	prices   map[string]float64
	priceErr error

	filters    map[string]types.SymbolFilters
	filtersErr error

	candles     map[string][]types.Candle
	candlesErr  error
	candleCalls []string

	stats    []types.DailyStat
	statsErr error

	buyResult types.MarketBuyResult
	buyErr    error
	buyCalls  []fakeBuyCall

	bracketErr   error
	bracketCalls []fakeBracketCall
}

type fakeBuyCall struct {
	symbol   string
	quantity decimal.Decimal
}

type fakeBracketCall struct {
	symbol  string
	bracket types.ExitBracket
}

func newFakeExchange() *fakeExchange {
	return &fakeExchange{
		prices:  make(map[string]float64),
		filters: make(map[string]types.SymbolFilters),
		candles: make(map[string][]types.Candle),
	}
}

func (f *fakeExchange) GetAccountBalances(ctx context.Context) (types.AccountSnapshot, error) {
	if f.balanceGate != nil {
		<-f.balanceGate
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.balancesErr != nil {
		return types.AccountSnapshot{}, f.balancesErr
	}

	if len(f.balanceQueue) > 0 {
		snapshot := f.balanceQueue[0]
		f.balanceQueue = f.balanceQueue[1:]

		return snapshot, nil
	}

	return f.balances, nil
}

func (f *fakeExchange) GetPrice(ctx context.Context, symbol string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.priceErr != nil {
		return 0, f.priceErr
	}

	return f.prices[symbol], nil
}

func (f *fakeExchange) GetPrices(ctx context.Context) (map[string]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.prices, f.priceErr
}

func (f *fakeExchange) GetSymbolFilters(ctx context.Context, symbol string) (types.SymbolFilters, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.filtersErr != nil {
		return types.SymbolFilters{}, f.filtersErr
	}

	return f.filters[symbol], nil
}

func (f *fakeExchange) GetCandles(ctx context.Context, symbol string, interval string, limit int) ([]types.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.candleCalls = append(f.candleCalls, symbol)

	if f.candlesErr != nil {
		return nil, f.candlesErr
	}

	return f.candles[symbol], nil
}

func (f *fakeExchange) GetDailyStats(ctx context.Context) ([]types.DailyStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.stats, f.statsErr
}

func (f *fakeExchange) SubmitMarketBuy(ctx context.Context, symbol string, quantity decimal.Decimal) (types.MarketBuyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.buyCalls = append(f.buyCalls, fakeBuyCall{symbol: symbol, quantity: quantity})

	if f.buyErr != nil {
		return types.MarketBuyResult{}, f.buyErr
	}

	return f.buyResult, nil
}

func (f *fakeExchange) SubmitExitBracket(ctx context.Context, symbol string, bracket types.ExitBracket) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.bracketCalls = append(f.bracketCalls, fakeBracketCall{symbol: symbol, bracket: bracket})

	return f.bracketErr
}

func (f *fakeExchange) buyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.buyCalls)
}

// fakeClock returns a fixed time and records sleep requests instead of
// blocking. onSleep, when set, is consulted to simulate cancellation.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	sleeps  []time.Duration
	onSleep func(d time.Duration) error
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	onSleep := c.onSleep
	c.mu.Unlock()

	if onSleep != nil {
		return onSleep(d)
	}

	return ctx.Err()
}

// fakeRecorder captures trade records in memory.
type fakeRecorder struct {
	mu      sync.Mutex
	records []types.TradeRecord
	err     error
}

func (r *fakeRecorder) Record(record types.TradeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, record)

	return r.err
}
