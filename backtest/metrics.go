// backtest/metrics.go
package backtest

import "math"

// Metrics summarizes a finished run. Percentages are 0..100, MaxDrawdownPct
// is the most negative peak-to-trough excursion of the equity curve and so
// carries a minus sign.
type Metrics struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64

	TotalPnL float64
	AvgWin   float64
	AvgLoss  float64 // negative

	ProfitFactor   float64 // |avgWin / avgLoss|, 0 when no losses
	Sharpe         float64 // mean/std of trade P&L, annualized by sqrt(252)
	MaxDrawdownPct float64

	FinalEquity float64
	ReturnPct   float64
}

func (e *Engine) metrics() Metrics {
	m := Metrics{FinalEquity: e.equity}

	if len(e.trades) == 0 {
		return m
	}

	var totalPnL, winSum, lossSum float64
	for _, t := range e.trades {
		totalPnL += t.PnL
		switch {
		case t.PnL > 0:
			m.WinningTrades++
			winSum += t.PnL
		case t.PnL < 0:
			m.LosingTrades++
			lossSum += t.PnL
		}
	}

	m.TotalTrades = len(e.trades)
	m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades) * 100
	m.TotalPnL = totalPnL

	if m.WinningTrades > 0 {
		m.AvgWin = winSum / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AvgLoss = lossSum / float64(m.LosingTrades)
	}
	if m.AvgLoss != 0 {
		m.ProfitFactor = math.Abs(m.AvgWin / m.AvgLoss)
	}

	m.Sharpe = sharpe(e.trades)
	m.MaxDrawdownPct = maxDrawdownPct(e.equityCurve)
	m.ReturnPct = (e.equity - e.cfg.InitialCapital) / e.cfg.InitialCapital * 100

	return m
}

// sharpe annualizes mean/std of per-trade P&L. Returns 0 with fewer than two
// trades or zero variance.
func sharpe(trades []Trade) float64 {
	if len(trades) < 2 {
		return 0
	}

	var sum float64
	for _, t := range trades {
		sum += t.PnL
	}
	mean := sum / float64(len(trades))

	var variance float64
	for _, t := range trades {
		d := t.PnL - mean
		variance += d * d
	}
	variance /= float64(len(trades))

	if variance == 0 {
		return 0
	}
	return mean / math.Sqrt(variance) * math.Sqrt(252)
}

// maxDrawdownPct returns the most negative (equity-runningMax)/runningMax
// over the curve, in percent.
func maxDrawdownPct(curve []float64) float64 {
	var worst float64
	runningMax := math.Inf(-1)

	for _, eq := range curve {
		if eq > runningMax {
			runningMax = eq
		}
		if runningMax <= 0 {
			continue
		}
		dd := (eq - runningMax) / runningMax * 100
		if dd < worst {
			worst = dd
		}
	}
	return worst
}
