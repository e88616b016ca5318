// optimize/optimize.go

// Package optimize grid-searches strategy parameters and ranks every
// combination by an out-of-sample walk-forward metric. In-sample numbers
// are reported but never used for ranking; picking parameters by in-sample
// performance is how strategies get overfit.
package optimize

import (
	"fmt"
	"sort"

	"github.com/rustyeddy/edgelab/backtest"
	"github.com/rustyeddy/edgelab/strategy"
	"github.com/rustyeddy/edgelab/walkforward"
)

// Metric selects the out-of-sample ranking statistic.
type Metric string

const (
	OOSSharpe      Metric = "oos_sharpe"
	OOSReturn      Metric = "oos_return"
	OOSConsistency Metric = "oos_consistency"
)

// Grid maps parameter names to their candidate values.
type Grid map[string][]float64

// Combinations enumerates the full Cartesian product in a deterministic
// order (keys sorted, values in given order).
func (g Grid) Combinations() []map[string]float64 {
	if len(g) == 0 {
		return nil
	}

	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	combos := []map[string]float64{{}}
	for _, key := range keys {
		var next []map[string]float64
		for _, combo := range combos {
			for _, v := range g[key] {
				c := make(map[string]float64, len(combo)+1)
				for ck, cv := range combo {
					c[ck] = cv
				}
				c[key] = v
				next = append(next, c)
			}
		}
		combos = next
	}
	return combos
}

// Factory builds a fresh strategy instance from one parameter combination.
type Factory func(params map[string]float64) strategy.Strategy

// Candidate is one evaluated parameter combination. A combination whose
// walk-forward run failed keeps its Err and sorts behind every success.
type Candidate struct {
	Params  map[string]float64
	Summary walkforward.Summary
	Score   float64
	Err     error
}

type Result struct {
	Best        *Candidate
	Ranked      []Candidate
	Top         []Candidate
	Sensitivity map[string]float64
}

// Optimizer runs the grid search. Metric defaults to OOSSharpe, TopN to 5.
type Optimizer struct {
	Factory  Factory
	Splitter walkforward.Splitter
	Config   backtest.Config
	Metric   Metric
	TopN     int
}

func (o *Optimizer) metric() Metric {
	if o.Metric == "" {
		return OOSSharpe
	}
	return o.Metric
}

func (o *Optimizer) topN() int {
	if o.TopN <= 0 {
		return 5
	}
	return o.TopN
}

// Run evaluates every combination of grid over bars. One combination's
// failure is recorded against it; the rest of the grid still runs.
func (o *Optimizer) Run(market string, bars []strategy.Bar, grid Grid) (*Result, error) {
	if o.Factory == nil {
		return nil, fmt.Errorf("optimize %s: no strategy factory", market)
	}

	combos := grid.Combinations()
	if len(combos) == 0 {
		return &Result{Sensitivity: map[string]float64{}}, nil
	}

	ranked := make([]Candidate, 0, len(combos))
	for _, params := range combos {
		cand := Candidate{Params: params}

		analyzer := &walkforward.Analyzer{
			NewStrategy: func() strategy.Strategy { return o.Factory(params) },
			Config:      o.Config,
		}

		wf, err := analyzer.Run(market, bars, o.Splitter)
		if err != nil {
			cand.Err = fmt.Errorf("optimize %s params %v: %w", market, params, err)
		} else {
			cand.Summary = wf.Summary
			cand.Score = score(wf.Summary, o.metric())
		}

		ranked = append(ranked, cand)
	}

	rank(ranked)

	res := &Result{
		Ranked:      ranked,
		Sensitivity: sensitivity(ranked, o.metric()),
	}

	n := o.topN()
	if n > len(ranked) {
		n = len(ranked)
	}
	res.Top = ranked[:n]

	if ranked[0].Err == nil {
		res.Best = &ranked[0]
	}
	return res, nil
}

// rank orders candidates by Score descending; failed candidates sort
// behind every success regardless of score.
func rank(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if (cands[i].Err == nil) != (cands[j].Err == nil) {
			return cands[i].Err == nil
		}
		return cands[i].Score > cands[j].Score
	})
}

func score(s walkforward.Summary, m Metric) float64 {
	switch m {
	case OOSReturn:
		return s.OOSAvgReturnPct
	case OOSConsistency:
		return s.OOSConsistency
	default:
		return s.OOSAvgSharpe
	}
}

// sensitivity groups successful candidates by each parameter's value,
// averages the ranking metric within each group, and reports the spread of
// those averages. A wide spread means OOS performance hinges on that
// parameter.
func sensitivity(cands []Candidate, m Metric) map[string]float64 {
	out := map[string]float64{}

	var ok []Candidate
	for _, c := range cands {
		if c.Err == nil {
			ok = append(ok, c)
		}
	}
	if len(ok) == 0 {
		return out
	}

	for name := range ok[0].Params {
		sums := map[float64]float64{}
		counts := map[float64]int{}
		for _, c := range ok {
			v := c.Params[name]
			sums[v] += score(c.Summary, m)
			counts[v]++
		}

		if len(sums) < 2 {
			out[name] = 0
			continue
		}

		first := true
		var min, max float64
		for v, sum := range sums {
			avg := sum / float64(counts[v])
			if first {
				min, max = avg, avg
				first = false
				continue
			}
			if avg < min {
				min = avg
			}
			if avg > max {
				max = avg
			}
		}
		out[name] = max - min
	}
	return out
}
