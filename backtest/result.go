// backtest/result.go
package backtest

import (
	"time"

	"github.com/rustyeddy/edgelab/strategy"
)

// Trade is one closed round trip.
type Trade struct {
	ID      string
	Market  string
	Side    strategy.Side
	Entry   float64
	Exit    float64
	Stop    float64
	Size    float64
	RiskUSD float64 // dollar value of 1R at entry

	GrossPnL float64
	Fees     float64
	PnL      float64 // net of fees
	PnLR     float64 // net P&L in R units

	Reason    string
	OpenTime  time.Time
	CloseTime time.Time
	Duration  time.Duration
}

// DroppedSignal records a signal the engine refused to act on.
type DroppedSignal struct {
	Market string
	Side   strategy.Side
	Time   time.Time
	Reason string
}

// Result is everything a single Run produced.
type Result struct {
	Market      string
	Trades      []Trade
	EquityCurve []float64
	Dropped     []DroppedSignal
	Metrics     Metrics
}
