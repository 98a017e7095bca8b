package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rxtech-lab/momentum-bot/internal/exchange"
	"github.com/rxtech-lab/momentum-bot/internal/logger"
	"github.com/rxtech-lab/momentum-bot/internal/types"
	"github.com/rxtech-lab/momentum-bot/pkg/errors"
)

// ExecutorState tracks the entry sequence through its states.
type ExecutorState int

const (
	StateIdle ExecutorState = iota
	StateSizing
	StateBuying
	StateAwaitingFill
	StateBracketPlacing
)

// TradeRecorder persists executed trades. Recording failures never abort the
// trading sequence; they are logged and the sequence continues.
type TradeRecorder interface {
	Record(record types.TradeRecord) error
}

// ExecutorConfig holds the order execution parameters.
type ExecutorConfig struct {
	// QuoteAsset is the quote currency all pairs trade against (e.g. USDT).
	QuoteAsset string
	// TakeProfitPct and StopLossPct are the exit offsets from the realized
	// entry price, e.g. 0.035 and 0.025.
	TakeProfitPct float64
	StopLossPct   float64
	// StopLimitBuffer shifts the stop limit below the stop trigger to improve
	// the odds the limit leg fills after the trigger, e.g. 0.001.
	StopLimitBuffer float64
	// SettleDelay is how long to wait before the follow-up balance read when
	// the buy response carries no fill price.
	SettleDelay time.Duration
}

// Executor runs the buy-then-bracket entry sequence:
// Idle -> Sizing -> Buying -> AwaitingFill -> BracketPlacing -> Idle.
//
// Every failure aborts back to Idle with the guard released; there are no
// retries. Orders are not idempotent, so a retried buy could double-buy -
// the next scheduled scan is the only retry mechanism.
type Executor struct {
	exchange exchange.Exchange
	guard    *PositionGuard
	sizer    *PositionSizer
	status   *StatusBoard
	recorder TradeRecorder
	clock    Clock
	log      *logger.Logger
	config   ExecutorConfig
}

// NewExecutor creates an order executor.
func NewExecutor(
	ex exchange.Exchange,
	guard *PositionGuard,
	sizer *PositionSizer,
	status *StatusBoard,
	recorder TradeRecorder,
	clock Clock,
	log *logger.Logger,
	config ExecutorConfig,
) *Executor {
	return &Executor{
		exchange: ex,
		guard:    guard,
		sizer:    sizer,
		status:   status,
		recorder: recorder,
		clock:    clock,
		log:      log,
		config:   config,
	}
}

// Execute runs one full entry sequence for the symbol. It acquires the
// position guard for the whole sequence and releases it on every exit path.
func (e *Executor) Execute(ctx context.Context, symbol string) error {
	if !e.guard.TryAcquire() {
		return errors.Newf(errors.ErrCodeEntryInFlight, "entry already in flight, skipping %s", symbol)
	}
	defer e.guard.Release()

	err := e.run(ctx, symbol)
	if err != nil {
		e.status.PublishError(err, e.clock.Now())
		e.log.Warn("entry sequence aborted",
			zap.String("symbol", symbol),
			zap.Error(err))
	}

	return err
}

func (e *Executor) run(ctx context.Context, symbol string) error {
	// Sizing: balance is queried fresh, never cached across iterations.
	snapshot, err := e.exchange.GetAccountBalances(ctx)
	if err != nil {
		return err
	}

	free := snapshot.Free(e.config.QuoteAsset)
	e.status.PublishBalance(free, e.clock.Now())

	notional, err := e.sizer.SizeEntry(free)
	if err != nil {
		return err
	}

	price, err := e.exchange.GetPrice(ctx, symbol)
	if err != nil {
		return err
	}

	filters, err := e.exchange.GetSymbolFilters(ctx, symbol)
	if err != nil {
		return err
	}

	priceDec := decimal.NewFromFloat(price)

	qty, err := exchange.NormalizeQuantity(notional.Div(priceDec), filters.StepSize)
	if err != nil {
		return err
	}

	if err := exchange.ValidateOrder(qty, priceDec, filters); err != nil {
		return err
	}

	// Buying: from here on every call issues a non-idempotent remote order.
	e.log.Info("submitting market buy",
		zap.String("symbol", symbol),
		zap.String("quantity", qty.String()),
		zap.Float64("price", price))

	result, err := e.exchange.SubmitMarketBuy(ctx, symbol, qty)
	if err != nil {
		return err
	}

	// AwaitingFill: realize the entry price and sell quantity.
	position, err := e.awaitFill(ctx, symbol, result, filters)
	if err != nil {
		return err
	}

	e.status.PublishPosition(position, e.clock.Now())
	e.recordTrade(types.TradeRecord{
		ID:        uuid.New().String(),
		Symbol:    symbol,
		Side:      types.TradeSideBuy,
		Quantity:  position.Quantity,
		Price:     position.EntryPrice,
		Notional:  position.Quantity * position.EntryPrice,
		CreatedAt: position.OpenedAt,
	})

	// BracketPlacing: a failed bracket leaves the position unprotected. That
	// is an accepted failure mode - logged, never retried.
	bracket, err := e.buildBracket(position, filters)
	if err != nil {
		return err
	}

	if err := e.exchange.SubmitExitBracket(ctx, symbol, bracket); err != nil {
		e.log.Error("exit bracket placement failed, position left unprotected",
			zap.String("symbol", symbol),
			zap.Float64("quantity", position.Quantity),
			zap.Float64("entry_price", position.EntryPrice),
			zap.Error(err))

		return err
	}

	e.log.Info("exit bracket placed",
		zap.String("symbol", symbol),
		zap.String("take_profit", bracket.TakeProfitPrice.String()),
		zap.String("stop_trigger", bracket.StopTriggerPrice.String()),
		zap.String("stop_limit", bracket.StopLimitPrice.String()))

	tp, _ := bracket.TakeProfitPrice.Float64()
	stop, _ := bracket.StopTriggerPrice.Float64()
	stopLimit, _ := bracket.StopLimitPrice.Float64()
	sellQty, _ := bracket.Quantity.Float64()

	e.recordTrade(types.TradeRecord{
		ID:          uuid.New().String(),
		Symbol:      symbol,
		Side:        types.TradeSideSell,
		Quantity:    sellQty,
		Price:       position.EntryPrice,
		Notional:    sellQty * position.EntryPrice,
		TakeProfit:  tp,
		StopTrigger: stop,
		StopLimit:   stopLimit,
		CreatedAt:   e.clock.Now(),
	})

	// The position is handed off to the exchange; the engine stops tracking it.
	e.status.ClearPosition(e.clock.Now())

	return nil
}

// awaitFill obtains the realized entry price. When the buy response carries a
// fill price the executed quantity is used directly. Otherwise it waits the
// configured settle delay, re-reads the base-asset balance for the sell
// quantity and prices the entry off the fresh ticker.
func (e *Executor) awaitFill(ctx context.Context, symbol string, result types.MarketBuyResult, filters types.SymbolFilters) (types.Position, error) {
	if fillPrice, err := result.FillPrice.Take(); err == nil {
		qty, _ := result.ExecutedQty.Float64()

		return types.Position{
			Symbol:     symbol,
			Quantity:   qty,
			EntryPrice: fillPrice,
			OpenedAt:   e.clock.Now(),
		}, nil
	}

	if err := e.clock.Sleep(ctx, e.config.SettleDelay); err != nil {
		return types.Position{}, err
	}

	snapshot, err := e.exchange.GetAccountBalances(ctx)
	if err != nil {
		return types.Position{}, err
	}

	baseAsset := strings.TrimSuffix(symbol, e.config.QuoteAsset)

	qty, err := exchange.NormalizeQuantity(decimal.NewFromFloat(snapshot.Free(baseAsset)), filters.StepSize)
	if err != nil {
		return types.Position{}, err
	}

	if qty.Sign() <= 0 {
		return types.Position{}, errors.Newf(errors.ErrCodeFillUnavailable,
			"no %s balance after market buy settled", baseAsset)
	}

	price, err := e.exchange.GetPrice(ctx, symbol)
	if err != nil {
		return types.Position{}, err
	}

	quantity, _ := qty.Float64()

	return types.Position{
		Symbol:     symbol,
		Quantity:   quantity,
		EntryPrice: price,
		OpenedAt:   e.clock.Now(),
	}, nil
}

// buildBracket derives the exit bracket from the realized entry price:
// takeProfit = entry*(1+tp), stopTrigger = entry*(1-sl),
// stopLimit = stopTrigger*(1-buffer), all floored to the tick grid.
func (e *Executor) buildBracket(position types.Position, filters types.SymbolFilters) (types.ExitBracket, error) {
	entry := decimal.NewFromFloat(position.EntryPrice)
	one := decimal.NewFromInt(1)

	takeProfit, err := exchange.NormalizePrice(
		entry.Mul(one.Add(decimal.NewFromFloat(e.config.TakeProfitPct))), filters.TickSize)
	if err != nil {
		return types.ExitBracket{}, err
	}

	stopTrigger, err := exchange.NormalizePrice(
		entry.Mul(one.Sub(decimal.NewFromFloat(e.config.StopLossPct))), filters.TickSize)
	if err != nil {
		return types.ExitBracket{}, err
	}

	stopLimit, err := exchange.NormalizePrice(
		stopTrigger.Mul(one.Sub(decimal.NewFromFloat(e.config.StopLimitBuffer))), filters.TickSize)
	if err != nil {
		return types.ExitBracket{}, err
	}

	qty, err := exchange.NormalizeQuantity(decimal.NewFromFloat(position.Quantity), filters.StepSize)
	if err != nil {
		return types.ExitBracket{}, err
	}

	bracket := types.ExitBracket{
		TakeProfitPrice:  takeProfit,
		StopTriggerPrice: stopTrigger,
		StopLimitPrice:   stopLimit,
		Quantity:         qty,
	}

	if err := bracket.Validate(entry); err != nil {
		return types.ExitBracket{}, err
	}

	return bracket, nil
}

func (e *Executor) recordTrade(record types.TradeRecord) {
	if e.recorder == nil {
		return
	}

	if err := e.recorder.Record(record); err != nil {
		e.log.Warn("failed to record trade",
			zap.String("symbol", record.Symbol),
			zap.Error(err))
	}
}
