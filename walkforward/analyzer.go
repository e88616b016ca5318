// walkforward/analyzer.go
package walkforward

import (
	"fmt"

	"github.com/rustyeddy/edgelab/backtest"
	"github.com/rustyeddy/edgelab/strategy"
)

// Analyzer backtests every split's train slice (in-sample) and test slice
// (out-of-sample) and aggregates how the two compare. A wide IS-over-OOS
// return gap is the primary overfitting signal; the analyzer reports it and
// leaves the judgment to the caller.
//
// NewStrategy must return a fresh instance per call: strategies carry
// position-tracking state and one run must never see another's.
type Analyzer struct {
	NewStrategy func() strategy.Strategy
	Config      backtest.Config
}

// SplitResult carries both metric sets for one split. A failed split keeps
// its Err and zero metrics; the remaining splits still run.
type SplitResult struct {
	SplitID int
	Train   backtest.Metrics
	Test    backtest.Metrics
	Err     error
}

// Summary aggregates across the successful splits. Consistency is the
// percentage of them whose out-of-sample return was positive.
type Summary struct {
	ISAvgReturnPct  float64
	OOSAvgReturnPct float64
	OOSAvgSharpe    float64
	OOSAvgWinRate   float64
	OOSConsistency  float64
	Splits          int
	Failed          int
}

type Result struct {
	Splits  []SplitResult
	Summary Summary
}

// Run splits bars and backtests each window. Splitting errors are hard
// failures; a single split's backtest failure is recorded against that
// split and the rest proceed.
func (a *Analyzer) Run(market string, bars []strategy.Bar, sp Splitter) (*Result, error) {
	if a.NewStrategy == nil {
		return nil, fmt.Errorf("walkforward %s: no strategy constructor", market)
	}

	splits, err := sp.Split(bars)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", market, err)
	}

	res := &Result{}
	for _, split := range splits {
		sr := SplitResult{SplitID: split.ID}

		train, err := a.runOnce(market, split.Train)
		if err != nil {
			sr.Err = fmt.Errorf("walkforward %s split %d (in-sample): %w", market, split.ID, err)
			res.Splits = append(res.Splits, sr)
			continue
		}

		test, err := a.runOnce(market, split.Test)
		if err != nil {
			sr.Err = fmt.Errorf("walkforward %s split %d (out-of-sample): %w", market, split.ID, err)
			res.Splits = append(res.Splits, sr)
			continue
		}

		sr.Train = train
		sr.Test = test
		res.Splits = append(res.Splits, sr)
	}

	res.Summary = aggregate(res.Splits)
	return res, nil
}

// runOnce backtests one window with a fresh strategy and engine. Strategies
// are external code, so a panic is contained here and surfaced as that
// split's error.
func (a *Analyzer) runOnce(market string, bars []strategy.Bar) (m backtest.Metrics, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy panic: %v", r)
		}
	}()

	eng := backtest.New(a.NewStrategy(), a.Config)
	res, err := eng.Run(market, bars)
	if err != nil {
		return backtest.Metrics{}, err
	}
	return res.Metrics, nil
}

func aggregate(splits []SplitResult) Summary {
	s := Summary{Splits: len(splits)}

	var ok, profitable int
	for _, sr := range splits {
		if sr.Err != nil {
			s.Failed++
			continue
		}
		ok++

		s.ISAvgReturnPct += sr.Train.ReturnPct
		s.OOSAvgReturnPct += sr.Test.ReturnPct
		s.OOSAvgSharpe += sr.Test.Sharpe
		s.OOSAvgWinRate += sr.Test.WinRate
		if sr.Test.ReturnPct > 0 {
			profitable++
		}
	}

	if ok == 0 {
		return s
	}

	n := float64(ok)
	s.ISAvgReturnPct /= n
	s.OOSAvgReturnPct /= n
	s.OOSAvgSharpe /= n
	s.OOSAvgWinRate /= n
	s.OOSConsistency = float64(profitable) / n * 100
	return s
}
