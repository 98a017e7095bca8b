// Package indicator computes momentum indicators over in-memory closing-price
// windows fetched from the exchange.
package indicator

import "github.com/rxtech-lab/momentum-bot/pkg/errors"

// EMA calculates the Exponential Moving Average over the given closes.
// The first close seeds the average; each subsequent close is folded in with
// the smoothing factor k = 2/(period+1).
//
// Returns an InsufficientDataError when fewer than period closes are
// available rather than silently computing on too few points.
func EMA(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	if len(closes) < period {
		return 0, errors.NewInsufficientDataErrorf(period, len(closes), "",
			"EMA requires at least %d closes, got %d", period, len(closes))
	}

	k := 2.0 / (float64(period) + 1.0)
	ema := closes[0]

	for _, close := range closes[1:] {
		ema = close*k + ema*(1-k)
	}

	return ema, nil
}
