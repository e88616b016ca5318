// journal/run.go
package journal

import "time"

// BacktestRun mirrors the backtest_runs table: one row per engine run with
// the headline result metrics, so runs can be compared without replaying
// their trade lists.
type BacktestRun struct {
	RunID    string
	Created  time.Time
	Market   string
	Strategy string
	Params   string // strategy params, serialized

	Bars        int
	StartEquity float64
	FinalEquity float64

	NetPnL       float64
	ReturnPct    float64
	Trades       int
	WinRate      float64
	ProfitFactor float64
	Sharpe       float64
	MaxDDPct     float64
}
