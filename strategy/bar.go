// Package strategy defines the contract between a trading strategy and the
// backtest engine: bar snapshots in, trade signals out.
package strategy

import (
	"fmt"
	"time"
)

// Bar is a single closed OHLCV observation for one market.
//
// Bars are immutable once built; the engine hands each bar to the strategy
// exactly once. Indicators carries optional precomputed values (ATR, channel
// bounds, etc.) keyed by name.
type Bar struct {
	Time   time.Time
	Market string

	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64

	Indicators map[string]float64
}

// NewBar builds a bar with a fresh, unaliased indicator map.
func NewBar(t time.Time, market string, open, high, low, close, volume float64) Bar {
	return Bar{
		Time:       t,
		Market:     market,
		Open:       open,
		High:       high,
		Low:        low,
		Close:      close,
		Volume:     volume,
		Indicators: make(map[string]float64),
	}
}

// Validate checks the OHLCV invariants: the high bounds every other price,
// the low is bounded by every other price, and volume is non-negative.
func (b Bar) Validate() error {
	if b.High < b.Open || b.High < b.Close || b.High < b.Low {
		return fmt.Errorf("bar %s %s: high %.8f below open/close/low", b.Market, b.Time.Format(time.RFC3339), b.High)
	}
	if b.Low > b.Open || b.Low > b.Close {
		return fmt.Errorf("bar %s %s: low %.8f above open/close", b.Market, b.Time.Format(time.RFC3339), b.Low)
	}
	if b.Volume < 0 {
		return fmt.Errorf("bar %s %s: negative volume %.8f", b.Market, b.Time.Format(time.RFC3339), b.Volume)
	}
	return nil
}
