package risk

import (
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/edgelab/strategy"
)

// Position is an open exposure the Manager is tracking.
type Position struct {
	Market   string
	Side     strategy.Side
	Entry    float64
	Size     float64
	Stop     float64
	RUSD     float64 // dollar value of 1R for this position
	OpenedAt time.Time
}

// RiskDistance is the price distance from entry to stop.
func (p Position) RiskDistance() float64 {
	return math.Abs(p.Entry - p.Stop)
}

// CurrentR is the position's P&L at price in R-units.
func (p Position) CurrentR(price float64) float64 {
	if p.RUSD == 0 {
		return 0
	}

	var pnl float64
	if p.Side == strategy.Long {
		pnl = (price - p.Entry) * p.Size
	} else {
		pnl = (p.Entry - price) * p.Size
	}
	return pnl / p.RUSD
}

// Status is a point-in-time snapshot for callers and the reporting layer.
type Status struct {
	Equity           float64
	Level            Level
	TradingEnabled   bool
	DailyLossR       float64
	DailyLossLimitR  float64
	DailyTradesCount int
	OpenPositions    int
	MaxPositions     int
}

// Manager sizes positions and enforces the account risk limits.
//
// It owns mutable state (equity, daily loss counters, the level machine) and
// is not safe for concurrent use; each backtest run owns its own Manager.
type Manager struct {
	equity float64
	limits Limits
	now    func() time.Time

	positions map[string]Position

	dailyLossR       float64
	dailyTradesCount int
	dayStart         time.Time
	lossHistory      []float64

	level          Level
	tradingEnabled bool
}

// NewManager builds a Manager with the given starting equity. A nil limits
// pointer selects DefaultLimits. The clock defaults to time.Now; tests
// override it with WithClock to drive day rollovers deterministically.
func NewManager(equity float64, limits *Limits) *Manager {
	l := DefaultLimits()
	if limits != nil {
		l = *limits
	}

	m := &Manager{
		equity:         equity,
		limits:         l,
		now:            time.Now,
		positions:      make(map[string]Position),
		level:          Normal,
		tradingEnabled: true,
	}
	m.dayStart = dayStart(m.now())
	return m
}

// WithClock replaces the Manager's time source and returns the Manager.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	m.dayStart = dayStart(m.now())
	return m
}

func dayStart(t time.Time) time.Time {
	y, mo, d := t.UTC().Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// checkNewDay resets daily counters once per calendar day. A CRITICAL state
// clears back to NORMAL on rollover; a manual LOCK does not.
func (m *Manager) checkNewDay() {
	current := dayStart(m.now())
	if !current.After(m.dayStart) {
		return
	}

	m.lossHistory = append(m.lossHistory, m.dailyLossR)
	m.dailyLossR = 0
	m.dailyTradesCount = 0
	m.dayStart = current

	if m.level == Critical {
		m.level = Normal
		m.tradingEnabled = true
	}
}

// PositionSize computes risk-based sizing:
//
//	rUSD = (riskPct/100) * equity
//	size = rUSD / (stopDistance * contractSize)
//
// riskPct <= 0 selects the per-trade default from the limits. entry == stop
// returns (0, 0).
func (m *Manager) PositionSize(entry, stop, contractSize, riskPct float64) (size, rUSD float64) {
	if riskPct <= 0 {
		riskPct = m.limits.PerTradeRiskPct
	}

	dist := math.Abs(entry - stop)
	if dist == 0 {
		return 0, 0
	}

	rUSD = (riskPct / 100.0) * m.equity
	size = rUSD / (dist * contractSize)
	return size, rUSD
}

// CanOpen evaluates the gate checks in order and short-circuits on the first
// failure. All must pass for the position to be allowed.
func (m *Manager) CanOpen(market string, size, entry, rUSD, evNet float64) (bool, string) {
	m.checkNewDay()

	if !m.tradingEnabled {
		return false, "trading is disabled (manual lock or critical state)"
	}

	if evNet < m.limits.MinEVNet {
		return false, fmt.Sprintf("ev_net (%.3f) below minimum (%.3f)", evNet, m.limits.MinEVNet)
	}

	if m.dailyLossR <= -m.limits.MaxDailyLossR {
		m.level = Critical
		m.tradingEnabled = false
		return false, fmt.Sprintf("daily loss limit reached (%.1fR / -%.1fR)", m.dailyLossR, m.limits.MaxDailyLossR)
	}

	if len(m.positions) >= m.limits.MaxConcurrent {
		return false, fmt.Sprintf("max concurrent positions reached (%d/%d)", len(m.positions), m.limits.MaxConcurrent)
	}

	notional := size * entry
	if notional > m.limits.MaxPositionSizeUSD {
		return false, fmt.Sprintf("position notional (%.0f$) exceeds limit (%.0f$)", notional, m.limits.MaxPositionSizeUSD)
	}

	existingPct := 0.0
	if pos, ok := m.positions[market]; ok {
		existingPct = (pos.Size * pos.Entry / m.equity) * 100.0
	}
	totalPct := existingPct + (notional/m.equity)*100.0
	if totalPct > m.limits.MaxExposurePerMarket {
		return false, fmt.Sprintf("market exposure (%.1f%%) exceeds limit (%.1f%%)", totalPct, m.limits.MaxExposurePerMarket)
	}

	return true, "OK"
}

// Register records an opened position.
func (m *Manager) Register(market string, side strategy.Side, entry, size, stop, rUSD float64) {
	m.checkNewDay()

	m.positions[market] = Position{
		Market:   market,
		Side:     side,
		Entry:    entry,
		Size:     size,
		Stop:     stop,
		RUSD:     rUSD,
		OpenedAt: m.now(),
	}
	m.dailyTradesCount++
}

// Close realizes a position at exit, returning the result in R. It folds the
// result into the daily loss counter and equity, then re-evaluates the risk
// level. ok is false when no position exists for the market.
func (m *Manager) Close(market string, exit float64) (resultR float64, ok bool) {
	m.checkNewDay()

	pos, found := m.positions[market]
	if !found {
		return 0, false
	}

	resultR = pos.CurrentR(exit)
	m.dailyLossR += resultR
	m.equity += resultR * pos.RUSD

	delete(m.positions, market)
	m.updateLevel()

	return resultR, true
}

// updateLevel recomputes the risk level from the daily loss. The full-limit
// breach takes precedence over the 80% warning band and disables trading.
func (m *Manager) updateLevel() {
	switch {
	case m.dailyLossR <= -m.limits.MaxDailyLossR:
		m.level = Critical
		m.tradingEnabled = false
	case m.dailyLossR <= -m.limits.MaxDailyLossR*0.8:
		m.level = Warning
	default:
		m.level = Normal
	}
}

// Lock is the manual emergency stop.
func (m *Manager) Lock() {
	m.tradingEnabled = false
	m.level = Locked
}

// Unlock re-enables trading after a manual lock. Refused while the daily
// loss limit remains breached.
func (m *Manager) Unlock() bool {
	if m.dailyLossR <= -m.limits.MaxDailyLossR {
		return false
	}
	m.tradingEnabled = true
	m.level = Normal
	return true
}

// Equity returns the current account equity.
func (m *Manager) Equity() float64 { return m.equity }

// Limits returns the configured limits.
func (m *Manager) Limits() Limits { return m.limits }

// OpenPosition returns the tracked position for market, if any.
func (m *Manager) OpenPosition(market string) (Position, bool) {
	pos, ok := m.positions[market]
	return pos, ok
}

// LossHistory returns archived daily losses (R), oldest first.
func (m *Manager) LossHistory() []float64 {
	out := make([]float64, len(m.lossHistory))
	copy(out, m.lossHistory)
	return out
}

// Status snapshots the Manager for callers and the reporting layer.
func (m *Manager) Status() Status {
	m.checkNewDay()

	return Status{
		Equity:           m.equity,
		Level:            m.level,
		TradingEnabled:   m.tradingEnabled,
		DailyLossR:       m.dailyLossR,
		DailyLossLimitR:  -m.limits.MaxDailyLossR,
		DailyTradesCount: m.dailyTradesCount,
		OpenPositions:    len(m.positions),
		MaxPositions:     m.limits.MaxConcurrent,
	}
}
