package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/momentum-bot/internal/types"
	"github.com/rxtech-lab/momentum-bot/pkg/errors"
)

type EvaluatorTestSuite struct {
	suite.Suite
	evaluator *Evaluator
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorTestSuite))
}

func (s *EvaluatorTestSuite) SetupTest() {
	s.evaluator = NewEvaluator(EvaluatorConfig{
		EMAFastPeriod:  2,
		EMASlowPeriod:  6,
		RSIPeriod:      3,
		RSILower:       45,
		RSIUpper:       60,
		VolumeLookback: 3,
	})
}

// uptrendWindow rises from 9.0 with one pullback near the end, so the fast
// EMA sits above the slow EMA, the last close sits above the fast EMA, and
// the trailing RSI lands around 57 (gains 0.4 vs losses 0.3). The last
// candle carries a volume spike.
func uptrendWindow() []types.Candle {
	closes := []float64{9.0, 9.4, 9.7, 10.0, 10.2, 9.9, 10.1}
	volumes := []float64{10, 10, 10, 10, 10, 10, 100}

	return candlesFrom(closes, volumes)
}

func candlesFrom(closes, volumes []float64) []types.Candle {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	candles := make([]types.Candle, len(closes))
	for i := range closes {
		candles[i] = types.Candle{
			OpenTime: start.Add(time.Duration(i) * 5 * time.Minute),
			Close:    closes[i],
			Volume:   volumes[i],
		}
	}

	return candles
}

func (s *EvaluatorTestSuite) TestEntrySignalOnUptrendWithModerateRSI() {
	signal, err := s.evaluator.Evaluate("BTCUSDT", uptrendWindow())
	s.Require().NoError(err)

	s.True(signal.Decision)
	s.Equal("BTCUSDT", signal.Symbol)
	s.Greater(signal.EMAFast, signal.EMASlow)
	s.Greater(signal.Close, signal.EMAFast)
	s.InDelta(57.142857, signal.RSI, 0.0001)
	s.Equal(100.0, signal.Volume)
	s.InDelta(40.0, signal.AvgVolume, 0.0001)
}

func (s *EvaluatorTestSuite) TestNoEntryOnPerfectUptrend() {
	// A monotonic rise drives RSI to 100, outside the momentum band.
	closes := []float64{9.0, 9.2, 9.4, 9.6, 9.8, 10.0, 10.2}
	volumes := []float64{10, 10, 10, 10, 10, 10, 100}

	signal, err := s.evaluator.Evaluate("BTCUSDT", candlesFrom(closes, volumes))
	s.Require().NoError(err)

	s.False(signal.Decision)
	s.Equal(100.0, signal.RSI)
}

func (s *EvaluatorTestSuite) TestNoEntryOnDowntrend() {
	closes := []float64{10.2, 10.0, 9.8, 9.9, 9.7, 9.5, 9.4}
	volumes := []float64{10, 10, 10, 10, 10, 10, 100}

	signal, err := s.evaluator.Evaluate("BTCUSDT", candlesFrom(closes, volumes))
	s.Require().NoError(err)

	s.False(signal.Decision)
	s.Less(signal.EMAFast, signal.EMASlow)
}

func (s *EvaluatorTestSuite) TestNoEntryWithoutVolumeSpike() {
	closes := []float64{9.0, 9.4, 9.7, 10.0, 10.2, 9.9, 10.1}
	volumes := []float64{10, 10, 10, 10, 10, 10, 10}

	signal, err := s.evaluator.Evaluate("BTCUSDT", candlesFrom(closes, volumes))
	s.Require().NoError(err)

	s.False(signal.Decision)
}

func (s *EvaluatorTestSuite) TestInsufficientHistory() {
	closes := []float64{10.0, 10.1, 10.2}
	volumes := []float64{10, 10, 10}

	_, err := s.evaluator.Evaluate("BTCUSDT", candlesFrom(closes, volumes))
	s.Require().Error(err)
	s.True(errors.IsInsufficientDataError(err))
}
