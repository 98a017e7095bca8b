package types

import "time"

// Candle represents a single completed candlestick for a symbol.
// Candles are produced by the market data layer and consumed read-only.
type Candle struct {
	OpenTime time.Time `json:"open_time"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// Closes extracts the closing price series from a candle window.
func Closes(candles []Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	return closes
}

// Volumes extracts the volume series from a candle window.
func Volumes(candles []Candle) []float64 {
	volumes := make([]float64, len(candles))
	for i, c := range candles {
		volumes[i] = c.Volume
	}

	return volumes
}

// DailyStat is a 24h ticker entry used for volume ranking of the symbol universe.
type DailyStat struct {
	Symbol      string  `json:"symbol"`
	QuoteVolume float64 `json:"quote_volume"`
}

// AccountSnapshot holds free balances per asset at a single point in time.
// It is queried fresh before each sizing decision and never cached across
// scan iterations, since balances change after fills.
type AccountSnapshot struct {
	Balances map[string]float64 `json:"balances"`
	Time     time.Time          `json:"time"`
}

// Free returns the free balance for the given asset, or zero when the asset
// is not present in the snapshot.
func (s AccountSnapshot) Free(asset string) float64 {
	return s.Balances[asset]
}
