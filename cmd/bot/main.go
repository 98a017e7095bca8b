package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rxtech-lab/momentum-bot/internal/config"
	"github.com/rxtech-lab/momentum-bot/internal/engine"
	"github.com/rxtech-lab/momentum-bot/internal/exchange"
	"github.com/rxtech-lab/momentum-bot/internal/journal"
	"github.com/rxtech-lab/momentum-bot/internal/logger"
	"github.com/rxtech-lab/momentum-bot/internal/server"
)

// runAction wires the exchange, engine, journal and HTTP surface together and
// runs the scan loop until interrupted.
func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	binance, err := exchange.NewBinanceExchange(cfg.Binance)
	if err != nil {
		return fmt.Errorf("failed to create exchange: %w", err)
	}

	tradeJournal, err := journal.Open(cfg.Journal.Path, log)
	if err != nil {
		return fmt.Errorf("failed to open trade journal: %w", err)
	}
	defer tradeJournal.Close()

	guard := engine.NewPositionGuard()
	status := engine.NewStatusBoard()
	clock := engine.NewClock()

	sizer := engine.NewPositionSizer(
		engine.PercentageOf(cfg.Trading.EntryFraction),
		cfg.Trading.MinNotional,
	)

	evaluator := engine.NewEvaluator(engine.EvaluatorConfig{
		EMAFastPeriod:  cfg.Signal.EMAFastPeriod,
		EMASlowPeriod:  cfg.Signal.EMASlowPeriod,
		RSIPeriod:      cfg.Signal.RSIPeriod,
		RSILower:       cfg.Signal.RSILower,
		RSIUpper:       cfg.Signal.RSIUpper,
		VolumeLookback: cfg.Signal.VolumeLookback,
	})

	executor := engine.NewExecutor(binance, guard, sizer, status, tradeJournal, clock, log,
		engine.ExecutorConfig{
			QuoteAsset:      cfg.Trading.QuoteAsset,
			TakeProfitPct:   cfg.Trading.TakeProfitPct,
			StopLossPct:     cfg.Trading.StopLossPct,
			StopLimitBuffer: cfg.Trading.StopLimitBuffer,
			SettleDelay:     cfg.Trading.SettleDelay(),
		})

	scanner := engine.NewScanner(binance, evaluator, executor, guard, status, clock, log,
		engine.ScannerConfig{
			QuoteAsset:     cfg.Trading.QuoteAsset,
			ExcludedAssets: cfg.Scan.ExcludedAssets,
			MaxSymbols:     cfg.Scan.MaxSymbols,
			Interval:       cfg.Scan.CandleInterval,
			CandleLimit:    cfg.Scan.CandleLimit,
			MinCandles:     cfg.Scan.MinCandles,
			ScanInterval:   cfg.Scan.Interval(),
		})

	httpServer := server.NewServer(cfg.Server.Addr, status, tradeJournal, log)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(runCtx)

	group.Go(func() error {
		return httpServer.Run(groupCtx)
	})

	group.Go(func() error {
		err := scanner.Run(groupCtx)
		if err == context.Canceled {
			return nil
		}

		return err
	})

	log.Info("momentum bot started",
		zap.String("quote_asset", cfg.Trading.QuoteAsset),
		zap.String("http_addr", cfg.Server.Addr))

	if err := group.Wait(); err != nil && err != context.Canceled {
		return err
	}

	log.Info("momentum bot stopped")

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "bot",
		Usage: "Unattended momentum trading bot for Binance spot markets",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
			},
		},
		Action: runAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
