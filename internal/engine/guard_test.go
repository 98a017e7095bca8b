package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/momentum-bot/internal/logger"
	"github.com/rxtech-lab/momentum-bot/internal/types"
	"github.com/rxtech-lab/momentum-bot/pkg/errors"
)

type PositionGuardTestSuite struct {
	suite.Suite
}

func TestPositionGuardSuite(t *testing.T) {
	suite.Run(t, new(PositionGuardTestSuite))
}

func (s *PositionGuardTestSuite) TestAcquireRelease() {
	guard := NewPositionGuard()

	s.False(guard.Held())
	s.True(guard.TryAcquire())
	s.True(guard.Held())
	s.False(guard.TryAcquire())

	guard.Release()
	s.False(guard.Held())
	s.True(guard.TryAcquire())
	guard.Release()
}

// TestConcurrentEntriesSingleBuy pins the single-open-position invariant:
// while one entry sequence is in flight, a second trigger is rejected before
// it reaches the exchange, so exactly one market buy is submitted.
func (s *PositionGuardTestSuite) TestConcurrentEntriesSingleBuy() {
	exchange := newFakeExchange()
	exchange.balanceGate = make(chan struct{})
	exchange.balances = usdtSnapshot(1000)
	exchange.prices["BTCUSDT"] = 100
	exchange.filters["BTCUSDT"] = btcFilters()
	exchange.buyResult = filledBuy("BTCUSDT", 9, 100)

	guard := NewPositionGuard()
	executor := NewExecutor(
		exchange,
		guard,
		NewPositionSizer(PercentageOf(0.9), 10),
		NewStatusBoard(),
		&fakeRecorder{},
		newFakeClock(),
		logger.NewNopLogger(),
		testExecutorConfig(),
	)

	done := make(chan error, 1)
	go func() {
		done <- executor.Execute(context.Background(), "BTCUSDT")
	}()

	s.Eventually(guard.Held, time.Second, time.Millisecond)

	err := executor.Execute(context.Background(), "BTCUSDT")
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeEntryInFlight))

	close(exchange.balanceGate)
	s.Require().NoError(<-done)

	s.Equal(1, exchange.buyCount())
	s.False(guard.Held())
}

func usdtSnapshot(free float64) types.AccountSnapshot {
	return types.AccountSnapshot{Balances: map[string]float64{"USDT": free}}
}
