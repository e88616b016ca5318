// Package risk gates position opening and sizes trades as a fraction of risk
// capital. A stateful Manager tracks daily realized loss in R-units and walks
// a risk-level state machine (normal -> warning -> critical -> locked) with a
// kill-switch when the daily loss limit is breached.
package risk

// Level is the account's risk posture.
type Level string

const (
	Normal   Level = "normal"
	Warning  Level = "warning"  // within 80% of the daily loss limit
	Critical Level = "critical" // limit hit, trading disabled until day rollover
	Locked   Level = "locked"   // manual emergency stop
)

// Limits are the account risk limits the Manager enforces.
type Limits struct {
	// PerTradeRiskPct is the percent of equity risked per trade (1.0 = 1%).
	PerTradeRiskPct float64

	// MaxDailyLossR is the daily realized loss limit in R-units.
	MaxDailyLossR float64

	// MaxConcurrent caps simultaneously open positions.
	MaxConcurrent int

	// MaxPositionSizeUSD caps a single position's notional.
	MaxPositionSizeUSD float64

	// MaxExposurePerMarket caps per-market notional as percent of equity.
	MaxExposurePerMarket float64

	// MinEVNet is the minimum net expected value (in R) required to open.
	MinEVNet float64
}

// DefaultLimits returns conservative account limits: 1% per trade, 5R daily
// stop, at most 3 concurrent positions.
func DefaultLimits() Limits {
	return Limits{
		PerTradeRiskPct:      1.0,
		MaxDailyLossR:        5.0,
		MaxConcurrent:        3,
		MaxPositionSizeUSD:   100_000,
		MaxExposurePerMarket: 50.0,
		MinEVNet:             0.0,
	}
}
