package indicators

import (
	"fmt"

	"github.com/rustyeddy/edgelab/strategy"
)

// Donchian returns the channel bounds over the trailing period: the highest
// high and lowest low of the last period bars.
func Donchian(bars []strategy.Bar, period int) (upper, lower float64, err error) {
	if period <= 0 {
		return 0, 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(bars) < period {
		return 0, 0, fmt.Errorf("not enough bars: need %d, got %d", period, len(bars))
	}

	start := len(bars) - period
	upper = bars[start].High
	lower = bars[start].Low
	for _, b := range bars[start+1:] {
		if b.High > upper {
			upper = b.High
		}
		if b.Low < lower {
			lower = b.Low
		}
	}
	return upper, lower, nil
}
