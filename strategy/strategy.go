package strategy

// Strategy is the minimal interface the backtest engine drives.
//
// OnBar is called once per closed bar with the cumulative history up to and
// including that bar. Strategies must only act on bars strictly before the
// most recent close when computing indicators; that look-ahead discipline is
// a contract obligation on the strategy, not enforced by the engine.
type Strategy interface {
	Name() string

	// OnBar returns zero or more signals for the current bar. history[len-1]
	// is the bar itself.
	OnBar(bar Bar, history []Bar) []Signal

	// Markets lists the market ids this strategy trades.
	Markets() []string

	// Every strategy carries the position lifecycle hooks; embed NoopTracker
	// for the no-op shape. The engine calls them unconditionally, no runtime
	// capability probing.
	PositionTracker
}

// PositionTracker is the lifecycle hook pair a strategy uses to follow its
// own open positions (e.g. to emit exit signals for them).
type PositionTracker interface {
	RegisterPosition(market string, side Side)
	UnregisterPosition(market string)
}

// NoopTracker is the default no-op PositionTracker for strategies that do not
// track positions.
type NoopTracker struct{}

func (NoopTracker) RegisterPosition(string, Side) {}
func (NoopTracker) UnregisterPosition(string)     {}

// SizeFromSignal computes risk-based position size for a signal.
//
//	rUSD = (riskPct/100) * equity
//	size = rUSD / (stopDistance * contractSize)
//
// A zero stop distance returns (0, 0): the signal is unsizable and must be
// dropped by the caller.
func SizeFromSignal(s Signal, equity, riskPct, contractSize float64) (size, rUSD float64) {
	dist := s.RiskDistance()
	if dist == 0 || contractSize == 0 {
		return 0, 0
	}

	rUSD = (riskPct / 100.0) * equity
	size = rUSD / (dist * contractSize)
	return size, rUSD
}
