package indicator

import "github.com/rxtech-lab/momentum-bot/pkg/errors"

// AverageVolume returns the mean of the trailing lookback volumes.
//
// Returns an InsufficientDataError when fewer than lookback values are
// available.
func AverageVolume(volumes []float64, lookback int) (float64, error) {
	if lookback <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "lookback must be a positive integer, got %d", lookback)
	}

	if len(volumes) < lookback {
		return 0, errors.NewInsufficientDataErrorf(lookback, len(volumes), "",
			"average volume requires at least %d values, got %d", lookback, len(volumes))
	}

	var sum float64
	for _, v := range volumes[len(volumes)-lookback:] {
		sum += v
	}

	return sum / float64(lookback), nil
}
