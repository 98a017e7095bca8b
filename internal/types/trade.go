package types

import "time"

// TradeSide identifies the direction of a recorded trade.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// TradeRecord is the journal entry written after each executed entry and
// accepted exit bracket. Served by the trades endpoint, newest first.
type TradeRecord struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	Side        TradeSide `json:"side"`
	Quantity    float64   `json:"quantity"`
	Price       float64   `json:"price"`
	Notional    float64   `json:"notional"`
	TakeProfit  float64   `json:"take_profit,omitempty"`
	StopTrigger float64   `json:"stop_trigger,omitempty"`
	StopLimit   float64   `json:"stop_limit,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
