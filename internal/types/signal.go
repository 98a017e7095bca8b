package types

import "time"

// EntrySignal is the outcome of evaluating the entry rule for one symbol in
// one scan. It is ephemeral and never persisted.
type EntrySignal struct {
	Symbol    string    `json:"symbol"`
	Time      time.Time `json:"time"`
	EMAFast   float64   `json:"ema_fast"`
	EMASlow   float64   `json:"ema_slow"`
	RSI       float64   `json:"rsi"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	AvgVolume float64   `json:"avg_volume"`
	Decision  bool      `json:"decision"`
}
