package engine

import (
	"github.com/rxtech-lab/momentum-bot/internal/indicator"
	"github.com/rxtech-lab/momentum-bot/internal/types"
)

// EvaluatorConfig holds the entry-rule parameters.
type EvaluatorConfig struct {
	// EMAFastPeriod and EMASlowPeriod are the crossover periods. The fast EMA
	// is computed over the trailing EMAFastPeriod closes, the slow EMA over
	// the trailing EMASlowPeriod closes.
	EMAFastPeriod int
	EMASlowPeriod int
	// RSIPeriod is the RSI transition window.
	RSIPeriod int
	// RSILower and RSIUpper bound the acceptable momentum band (exclusive).
	RSILower float64
	RSIUpper float64
	// VolumeLookback is the trailing window for the average-volume filter.
	VolumeLookback int
}

// Evaluator applies the entry predicate to a candle window. It is pure:
// no side effects, deterministic given the same window.
type Evaluator struct {
	config EvaluatorConfig
}

// NewEvaluator creates an evaluator with the given parameters.
func NewEvaluator(config EvaluatorConfig) *Evaluator {
	return &Evaluator{config: config}
}

// Evaluate computes the indicator snapshot for the candle window and returns
// the entry decision: fast EMA above slow EMA, RSI inside the band, last
// close above the fast EMA, and last volume above its trailing average. All
// conditions must hold.
func (e *Evaluator) Evaluate(symbol string, candles []types.Candle) (types.EntrySignal, error) {
	closes := types.Closes(candles)
	volumes := types.Volumes(candles)

	emaFast, err := indicator.EMA(tail(closes, e.config.EMAFastPeriod), e.config.EMAFastPeriod)
	if err != nil {
		return types.EntrySignal{}, err
	}

	emaSlow, err := indicator.EMA(tail(closes, e.config.EMASlowPeriod), e.config.EMASlowPeriod)
	if err != nil {
		return types.EntrySignal{}, err
	}

	rsi, err := indicator.RSI(closes, e.config.RSIPeriod)
	if err != nil {
		return types.EntrySignal{}, err
	}

	avgVolume, err := indicator.AverageVolume(volumes, e.config.VolumeLookback)
	if err != nil {
		return types.EntrySignal{}, err
	}

	last := candles[len(candles)-1]

	signal := types.EntrySignal{
		Symbol:    symbol,
		Time:      last.OpenTime,
		EMAFast:   emaFast,
		EMASlow:   emaSlow,
		RSI:       rsi,
		Close:     last.Close,
		Volume:    last.Volume,
		AvgVolume: avgVolume,
	}

	signal.Decision = emaFast > emaSlow &&
		rsi > e.config.RSILower &&
		rsi < e.config.RSIUpper &&
		last.Close > emaFast &&
		last.Volume > avgVolume

	return signal, nil
}

// tail returns the trailing n values, or the whole slice when shorter.
func tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}

	return values[len(values)-n:]
}
