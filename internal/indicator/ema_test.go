package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/momentum-bot/pkg/errors"
)

type EMATestSuite struct {
	suite.Suite
}

func TestEMASuite(t *testing.T) {
	suite.Run(t, new(EMATestSuite))
}

func (suite *EMATestSuite) TestRecursiveComputation() {
	// closes=[10,11,12], period=2 -> k=2/3
	// ema0=10, ema1=11*2/3+10*1/3=10.667, ema2=12*2/3+10.667*1/3=11.556
	ema, err := EMA([]float64{10, 11, 12}, 2)
	suite.NoError(err)
	suite.InDelta(11.5556, ema, 0.0001)
}

func (suite *EMATestSuite) TestSingleValueSeedsAverage() {
	ema, err := EMA([]float64{42.5}, 1)
	suite.NoError(err)
	suite.Equal(42.5, ema)
}

func (suite *EMATestSuite) TestConstantSeries() {
	closes := []float64{100, 100, 100, 100, 100}
	ema, err := EMA(closes, 5)
	suite.NoError(err)
	suite.InDelta(100, ema, 1e-9)
}

func (suite *EMATestSuite) TestWeightsRecentValues() {
	rising := []float64{10, 10, 10, 10, 20}
	flat := []float64{10, 10, 10, 10, 10}

	emaRising, err := EMA(rising, 5)
	suite.NoError(err)
	emaFlat, err := EMA(flat, 5)
	suite.NoError(err)
	suite.Greater(emaRising, emaFlat)
}

func (suite *EMATestSuite) TestInsufficientData() {
	_, err := EMA([]float64{10, 11}, 9)
	suite.Error(err)
	suite.True(errors.IsInsufficientDataError(err))

	_, err = EMA(nil, 1)
	suite.Error(err)
	suite.True(errors.IsInsufficientDataError(err))
}

func (suite *EMATestSuite) TestInvalidPeriod() {
	_, err := EMA([]float64{10, 11}, 0)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))

	_, err = EMA([]float64{10, 11}, -3)
	suite.Error(err)
}
