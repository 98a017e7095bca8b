package indicator

import "github.com/rxtech-lab/momentum-bot/pkg/errors"

// RSI calculates the Relative Strength Index over the trailing period
// transitions ending at the most recent close. The window is fixed to
// closes[len-period-1 .. len-1]: gains sum the positive deltas, losses the
// absolute negative deltas, over exactly period transitions.
//
// When the loss sum over the window is zero the ratio is undefined; by
// convention the function returns 100 (a perfect uptrend). The result is
// always within [0, 100].
//
// Returns an InsufficientDataError when fewer than period+1 closes are
// available.
func RSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	if len(closes) < period+1 {
		return 0, errors.NewInsufficientDataErrorf(period+1, len(closes), "",
			"RSI requires at least %d closes, got %d", period+1, len(closes))
	}

	var gains, losses float64

	for i := len(closes) - period; i < len(closes); i++ {
		diff := closes[i] - closes[i-1]
		if diff >= 0 {
			gains += diff
		} else {
			losses -= diff
		}
	}

	if losses == 0 {
		return 100, nil
	}

	rs := gains / losses

	return 100 - (100 / (1 + rs)), nil
}
