// Package indicators provides the technical indicators the bundled
// strategies rely on: Donchian channels, ATR, and moving averages.
//
// All functions operate on a bar slice ordered oldest-first and look only at
// closed bars; deterministic across live, replay, and backtest use.
package indicators

import (
	"fmt"

	"github.com/rustyeddy/edgelab/strategy"
)

// SMA calculates the simple moving average of the closes over the trailing
// period.
func SMA(bars []strategy.Bar, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(bars) < period {
		return 0, fmt.Errorf("not enough bars: need %d, got %d", period, len(bars))
	}

	sum := 0.0
	for i := len(bars) - period; i < len(bars); i++ {
		sum += bars[i].Close
	}
	return sum / float64(period), nil
}

// EMA calculates the exponential moving average of the closes, seeded with
// the SMA of the first period.
func EMA(bars []strategy.Bar, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(bars) < period {
		return 0, fmt.Errorf("not enough bars: need %d, got %d", period, len(bars))
	}

	multiplier := 2.0 / float64(period+1)

	sma := 0.0
	for i := 0; i < period; i++ {
		sma += bars[i].Close
	}
	ema := sma / float64(period)

	for i := period; i < len(bars); i++ {
		ema = (bars[i].Close-ema)*multiplier + ema
	}

	return ema, nil
}
