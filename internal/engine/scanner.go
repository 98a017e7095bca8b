package engine

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rxtech-lab/momentum-bot/internal/exchange"
	"github.com/rxtech-lab/momentum-bot/internal/logger"
	"github.com/rxtech-lab/momentum-bot/internal/types"
)

// ScannerConfig holds the scan loop parameters.
type ScannerConfig struct {
	// QuoteAsset restricts the universe to pairs quoted in this asset.
	QuoteAsset string
	// ExcludedAssets are base assets never traded (stablecoins).
	ExcludedAssets []string
	// MaxSymbols caps the universe after volume ranking.
	MaxSymbols int
	// Interval is the candle interval requested from the exchange (e.g. "5m").
	Interval string
	// CandleLimit is how many candles to fetch per symbol.
	CandleLimit int
	// MinCandles is the minimum window length required to evaluate a symbol;
	// shorter histories are skipped.
	MinCandles int
	// ScanInterval is the fixed pause between iterations. The pause is not
	// compensated for iteration duration and carries no backoff or jitter.
	ScanInterval time.Duration
}

// Scanner drives the periodic scan-evaluate-execute cycle over the symbol
// universe. One iteration: rank the universe by quote volume, walk it in
// order, evaluate each symbol, and commit to the first positive signal.
type Scanner struct {
	exchange  exchange.Exchange
	evaluator *Evaluator
	executor  *Executor
	guard     *PositionGuard
	status    *StatusBoard
	clock     Clock
	log       *logger.Logger
	config    ScannerConfig
}

// NewScanner creates a scan loop.
func NewScanner(
	ex exchange.Exchange,
	evaluator *Evaluator,
	executor *Executor,
	guard *PositionGuard,
	status *StatusBoard,
	clock Clock,
	log *logger.Logger,
	config ScannerConfig,
) *Scanner {
	return &Scanner{
		exchange:  ex,
		evaluator: evaluator,
		executor:  executor,
		guard:     guard,
		status:    status,
		clock:     clock,
		log:       log,
		config:    config,
	}
}

// Run executes scan iterations until the context is cancelled. Errors inside
// an iteration are logged and the loop continues; only cancellation stops it.
func (s *Scanner) Run(ctx context.Context) error {
	s.log.Info("scan loop started",
		zap.String("quote_asset", s.config.QuoteAsset),
		zap.Int("max_symbols", s.config.MaxSymbols),
		zap.Duration("scan_interval", s.config.ScanInterval))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.scanOnce(ctx)

		if err := s.clock.Sleep(ctx, s.config.ScanInterval); err != nil {
			s.log.Info("scan loop stopped", zap.Error(err))
			return err
		}
	}
}

// scanOnce runs a single iteration: build the universe, then evaluate symbols
// in volume order until the first entry decision. The iteration commits to
// that first match and ends regardless of the execution outcome; losers in
// the same iteration are never considered.
func (s *Scanner) scanOnce(ctx context.Context) {
	symbols, err := s.universe(ctx)
	if err != nil {
		s.status.PublishError(err, s.clock.Now())
		s.log.Warn("universe build failed", zap.Error(err))

		return
	}

	for _, symbol := range symbols {
		if s.guard.Held() {
			return
		}

		candles, err := s.exchange.GetCandles(ctx, symbol, s.config.Interval, s.config.CandleLimit)
		if err != nil {
			s.log.Warn("candle fetch failed, skipping symbol",
				zap.String("symbol", symbol),
				zap.Error(err))

			continue
		}

		if len(candles) < s.config.MinCandles {
			continue
		}

		signal, err := s.evaluator.Evaluate(symbol, candles)
		if err != nil {
			s.log.Warn("signal evaluation failed, skipping symbol",
				zap.String("symbol", symbol),
				zap.Error(err))

			continue
		}

		s.status.PublishSignal(signal, s.clock.Now())

		if !signal.Decision {
			continue
		}

		s.log.Info("entry signal",
			zap.String("symbol", symbol),
			zap.Float64("ema_fast", signal.EMAFast),
			zap.Float64("ema_slow", signal.EMASlow),
			zap.Float64("rsi", signal.RSI),
			zap.Float64("close", signal.Close))

		if err := s.executor.Execute(ctx, symbol); err != nil {
			s.log.Warn("entry execution failed",
				zap.String("symbol", symbol),
				zap.Error(err))
		}

		return
	}
}

// universe ranks the tradable pairs by 24h quote volume, descending, after
// removing non-quote pairs and excluded base assets, and caps the result at
// MaxSymbols.
func (s *Scanner) universe(ctx context.Context) ([]string, error) {
	stats, err := s.exchange.GetDailyStats(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]types.DailyStat, 0, len(stats))
	for _, stat := range stats {
		if !strings.HasSuffix(stat.Symbol, s.config.QuoteAsset) {
			continue
		}

		if s.excluded(strings.TrimSuffix(stat.Symbol, s.config.QuoteAsset)) {
			continue
		}

		filtered = append(filtered, stat)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].QuoteVolume > filtered[j].QuoteVolume
	})

	if len(filtered) > s.config.MaxSymbols {
		filtered = filtered[:s.config.MaxSymbols]
	}

	symbols := make([]string, len(filtered))
	for i, stat := range filtered {
		symbols[i] = stat.Symbol
	}

	return symbols, nil
}

func (s *Scanner) excluded(baseAsset string) bool {
	for _, asset := range s.config.ExcludedAssets {
		if baseAsset == asset {
			return true
		}
	}

	return false
}
