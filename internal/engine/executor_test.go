package engine

import (
	"context"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/momentum-bot/internal/logger"
	"github.com/rxtech-lab/momentum-bot/internal/types"
	"github.com/rxtech-lab/momentum-bot/pkg/errors"
)

func testExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		QuoteAsset:      "USDT",
		TakeProfitPct:   0.035,
		StopLossPct:     0.025,
		StopLimitBuffer: 0.001,
		SettleDelay:     3 * time.Second,
	}
}

func btcFilters() types.SymbolFilters {
	return types.SymbolFilters{
		Symbol:      "BTCUSDT",
		StepSize:    decimal.RequireFromString("0.001"),
		TickSize:    decimal.RequireFromString("0.01"),
		MinQty:      decimal.RequireFromString("0.001"),
		MinNotional: decimal.RequireFromString("10"),
	}
}

func filledBuy(symbol string, qty, price float64) types.MarketBuyResult {
	return types.MarketBuyResult{
		Symbol:      symbol,
		ExecutedQty: decimal.NewFromFloat(qty),
		FillPrice:   optional.Some(price),
	}
}

type ExecutorTestSuite struct {
	suite.Suite
	exchange *fakeExchange
	guard    *PositionGuard
	status   *StatusBoard
	recorder *fakeRecorder
	clock    *fakeClock
	executor *Executor
}

func TestExecutorSuite(t *testing.T) {
	suite.Run(t, new(ExecutorTestSuite))
}

func (s *ExecutorTestSuite) SetupTest() {
	s.exchange = newFakeExchange()
	s.guard = NewPositionGuard()
	s.status = NewStatusBoard()
	s.recorder = &fakeRecorder{}
	s.clock = newFakeClock()
	s.executor = NewExecutor(
		s.exchange,
		s.guard,
		NewPositionSizer(PercentageOf(0.9), 10),
		s.status,
		s.recorder,
		s.clock,
		logger.NewNopLogger(),
		testExecutorConfig(),
	)

	s.exchange.balances = usdtSnapshot(1000)
	s.exchange.prices["BTCUSDT"] = 100
	s.exchange.filters["BTCUSDT"] = btcFilters()
	s.exchange.buyResult = filledBuy("BTCUSDT", 9, 100)
}

func (s *ExecutorTestSuite) TestHappyPath() {
	err := s.executor.Execute(context.Background(), "BTCUSDT")
	s.Require().NoError(err)

	// 90% of 1000 USDT at price 100, floored to the 0.001 step.
	s.Require().Len(s.exchange.buyCalls, 1)
	s.Equal("BTCUSDT", s.exchange.buyCalls[0].symbol)
	s.Equal("9", s.exchange.buyCalls[0].quantity.String())

	s.Require().Len(s.exchange.bracketCalls, 1)
	bracket := s.exchange.bracketCalls[0].bracket
	s.Equal("103.5", bracket.TakeProfitPrice.String())
	s.Equal("97.5", bracket.StopTriggerPrice.String())
	s.Equal("97.4", bracket.StopLimitPrice.String())
	s.Equal("9", bracket.Quantity.String())

	// Buy then bracket, both journaled.
	s.Require().Len(s.recorder.records, 2)
	s.Equal(types.TradeSideBuy, s.recorder.records[0].Side)
	s.Equal(types.TradeSideSell, s.recorder.records[1].Side)
	s.Equal(100.0, s.recorder.records[0].Price)
	s.Equal(103.5, s.recorder.records[1].TakeProfit)

	// Position handed off to the exchange, guard released.
	s.Nil(s.status.Snapshot().Position)
	s.False(s.guard.Held())
	s.Empty(s.clock.sleeps)
}

func (s *ExecutorTestSuite) TestBracketOrderingInvariant() {
	err := s.executor.Execute(context.Background(), "BTCUSDT")
	s.Require().NoError(err)

	s.Require().Len(s.exchange.bracketCalls, 1)
	bracket := s.exchange.bracketCalls[0].bracket
	entry := decimal.NewFromInt(100)

	s.True(bracket.StopLimitPrice.LessThan(bracket.StopTriggerPrice))
	s.True(bracket.StopTriggerPrice.LessThan(entry))
	s.True(entry.LessThan(bracket.TakeProfitPrice))
}

func (s *ExecutorTestSuite) TestFillPriceFallback() {
	// Response without fills: the executor waits the settle delay, re-reads
	// the base balance and prices the entry off the fresh ticker.
	s.exchange.buyResult = types.MarketBuyResult{Symbol: "BTCUSDT"}
	s.exchange.balanceQueue = []types.AccountSnapshot{
		usdtSnapshot(1000),
		{Balances: map[string]float64{"BTC": 8.9995}},
	}

	err := s.executor.Execute(context.Background(), "BTCUSDT")
	s.Require().NoError(err)

	s.Require().Len(s.clock.sleeps, 1)
	s.Equal(3*time.Second, s.clock.sleeps[0])

	// 8.9995 BTC floored to the 0.001 step.
	s.Require().Len(s.exchange.bracketCalls, 1)
	s.Equal("8.999", s.exchange.bracketCalls[0].bracket.Quantity.String())

	s.Require().Len(s.recorder.records, 2)
	s.Equal(8.999, s.recorder.records[0].Quantity)
	s.Equal(100.0, s.recorder.records[0].Price)
}

func (s *ExecutorTestSuite) TestFillUnavailable() {
	s.exchange.buyResult = types.MarketBuyResult{Symbol: "BTCUSDT"}
	s.exchange.balanceQueue = []types.AccountSnapshot{
		usdtSnapshot(1000),
		{Balances: map[string]float64{}},
	}

	err := s.executor.Execute(context.Background(), "BTCUSDT")
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeFillUnavailable))

	s.Empty(s.exchange.bracketCalls)
	s.False(s.guard.Held())
}

func (s *ExecutorTestSuite) TestInsufficientBalanceAbortsBeforeBuy() {
	s.exchange.balances = usdtSnapshot(5)

	err := s.executor.Execute(context.Background(), "BTCUSDT")
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInsufficientBalance))

	s.Empty(s.exchange.buyCalls)
	s.False(s.guard.Held())
	s.NotEmpty(s.status.Snapshot().LastError)
}

func (s *ExecutorTestSuite) TestFilterRejectionAbortsBeforeBuy() {
	filters := btcFilters()
	filters.MinQty = decimal.RequireFromString("10")
	s.exchange.filters["BTCUSDT"] = filters

	err := s.executor.Execute(context.Background(), "BTCUSDT")
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeBelowMinQty))

	s.Empty(s.exchange.buyCalls)
	s.False(s.guard.Held())
}

func (s *ExecutorTestSuite) TestBracketFailureReleasesGuard() {
	s.exchange.bracketErr = errors.New(errors.ErrCodeBracketFailed, "oco rejected")

	err := s.executor.Execute(context.Background(), "BTCUSDT")
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeBracketFailed))

	// The buy happened and stays journaled; the position is the operator's
	// problem now, but the guard must still come back.
	s.Require().Len(s.recorder.records, 1)
	s.Equal(types.TradeSideBuy, s.recorder.records[0].Side)
	s.False(s.guard.Held())
	s.NotEmpty(s.status.Snapshot().LastError)
	s.NotNil(s.status.Snapshot().Position)
}

func (s *ExecutorTestSuite) TestRecorderFailureDoesNotAbort() {
	s.recorder.err = errors.New(errors.ErrCodeQueryFailed, "journal closed")

	err := s.executor.Execute(context.Background(), "BTCUSDT")
	s.Require().NoError(err)

	s.Len(s.exchange.bracketCalls, 1)
}
