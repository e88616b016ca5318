package optimize

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/edgelab/strategy"
	"github.com/rustyeddy/edgelab/walkforward"
)

func TestGridCombinations(t *testing.T) {
	t.Parallel()

	g := Grid{
		"don_break": {10, 20},
		"don_exit":  {5, 10, 15},
	}

	combos := g.Combinations()
	require.Len(t, combos, 6)

	// Deterministic: keys sorted, values in declared order.
	assert.Equal(t, map[string]float64{"don_break": 10, "don_exit": 5}, combos[0])
	assert.Equal(t, map[string]float64{"don_break": 10, "don_exit": 10}, combos[1])
	assert.Equal(t, map[string]float64{"don_break": 20, "don_exit": 15}, combos[5])

	assert.Nil(t, Grid{}.Combinations())
}

func TestRankPrefersOutOfSample(t *testing.T) {
	t.Parallel()

	// A shines in-sample but is weak out-of-sample; B is the reverse.
	a := Candidate{
		Params:  map[string]float64{"p": 1},
		Summary: walkforward.Summary{ISAvgReturnPct: 80, OOSAvgSharpe: 0.2},
	}
	b := Candidate{
		Params:  map[string]float64{"p": 2},
		Summary: walkforward.Summary{ISAvgReturnPct: 5, OOSAvgSharpe: 1.8},
	}
	a.Score = score(a.Summary, OOSSharpe)
	b.Score = score(b.Summary, OOSSharpe)

	cands := []Candidate{a, b}
	rank(cands)

	assert.Equal(t, 2.0, cands[0].Params["p"])
	assert.Equal(t, 1.0, cands[1].Params["p"])
}

func TestRankFailuresLast(t *testing.T) {
	t.Parallel()

	cands := []Candidate{
		{Params: map[string]float64{"p": 1}, Err: errors.New("boom"), Score: 99},
		{Params: map[string]float64{"p": 2}, Score: 0.5},
	}
	rank(cands)

	assert.NoError(t, cands[0].Err)
	assert.Error(t, cands[1].Err)
}

func TestScoreMetrics(t *testing.T) {
	t.Parallel()

	s := walkforward.Summary{
		OOSAvgReturnPct: 12,
		OOSAvgSharpe:    1.5,
		OOSConsistency:  80,
	}
	assert.Equal(t, 1.5, score(s, OOSSharpe))
	assert.Equal(t, 12.0, score(s, OOSReturn))
	assert.Equal(t, 80.0, score(s, OOSConsistency))
	assert.Equal(t, 1.5, score(s, Metric("")))
}

func TestSensitivitySpread(t *testing.T) {
	t.Parallel()

	mk := func(p1, p2, sharpe float64) Candidate {
		return Candidate{
			Params:  map[string]float64{"a": p1, "b": p2},
			Summary: walkforward.Summary{OOSAvgSharpe: sharpe},
		}
	}

	// Sharpe tracks parameter a and ignores b entirely.
	cands := []Candidate{
		mk(1, 1, 0.5), mk(1, 2, 0.5),
		mk(2, 1, 2.0), mk(2, 2, 2.0),
	}

	sens := sensitivity(cands, OOSSharpe)
	assert.InDelta(t, 1.5, sens["a"], 1e-9)
	assert.InDelta(t, 0.0, sens["b"], 1e-9)
}

func TestSensitivitySingleValueParam(t *testing.T) {
	t.Parallel()

	cands := []Candidate{
		{Params: map[string]float64{"a": 1}, Summary: walkforward.Summary{OOSAvgSharpe: 1}},
		{Params: map[string]float64{"a": 1}, Summary: walkforward.Summary{OOSAvgSharpe: 2}},
	}
	sens := sensitivity(cands, OOSSharpe)
	assert.Zero(t, sens["a"])
}

// edgeStrategy opens one long per window whose payoff scales with the
// "edge" parameter, so bigger edge means better everywhere.
type edgeStrategy struct {
	strategy.NoopTracker
	edge float64
}

func (e *edgeStrategy) Name() string      { return "edge" }
func (e *edgeStrategy) Markets() []string { return []string{"BTC-PERP"} }

func (e *edgeStrategy) OnBar(bar strategy.Bar, history []strategy.Bar) []strategy.Signal {
	if len(history) != 1 {
		return nil
	}
	return []strategy.Signal{{
		Market: bar.Market, Side: strategy.Long,
		Entry: bar.Close, Stop: bar.Close - 100,
		Targets:    []float64{bar.Close + e.edge},
		Confidence: 1,
	}}
}

func optBars(n int) []strategy.Bar {
	bars := make([]strategy.Bar, 0, n)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		px := 1000 + float64(i)
		bars = append(bars, strategy.NewBar(
			start.Add(time.Duration(i)*24*time.Hour),
			"BTC-PERP", px, px+2, px-2, px, 500,
		))
	}
	return bars
}

func TestOptimizerEndToEnd(t *testing.T) {
	t.Parallel()

	o := &Optimizer{
		Factory: func(params map[string]float64) strategy.Strategy {
			return &edgeStrategy{edge: params["edge"]}
		},
		Splitter: walkforward.NewSplitter(60, 20, 20, false),
		// One trade per window leaves Sharpe at zero, so rank by return.
		Metric: OOSReturn,
		TopN:   2,
	}

	res, err := o.Run("BTC-PERP", optBars(160), Grid{"edge": {0.5, 1.5}})
	require.NoError(t, err)
	require.NotNil(t, res.Best)

	assert.Equal(t, 1.5, res.Best.Params["edge"])
	assert.Len(t, res.Ranked, 2)
	assert.Len(t, res.Top, 2)
	assert.Contains(t, res.Sensitivity, "edge")

	for _, c := range res.Ranked {
		assert.NoError(t, c.Err)
		assert.Equal(t, 5, c.Summary.Splits)
	}
}

func TestOptimizerIsolatesComboFailure(t *testing.T) {
	t.Parallel()

	o := &Optimizer{
		Factory: func(params map[string]float64) strategy.Strategy {
			return &edgeStrategy{edge: params["edge"]}
		},
		// Window larger than the data, so every walk-forward run fails hard.
		Splitter: walkforward.NewSplitter(90, 30, 30, false),
	}

	res, err := o.Run("BTC-PERP", optBars(50), Grid{"edge": {0.5, 1.5}})
	require.NoError(t, err)

	assert.Nil(t, res.Best)
	require.Len(t, res.Ranked, 2)
	for _, c := range res.Ranked {
		assert.Error(t, c.Err)
	}
	assert.Empty(t, res.Sensitivity)
}

func TestOptimizerEmptyGrid(t *testing.T) {
	t.Parallel()

	o := &Optimizer{Factory: func(map[string]float64) strategy.Strategy { return nil }}
	res, err := o.Run("BTC-PERP", optBars(50), nil)
	require.NoError(t, err)
	assert.Nil(t, res.Best)
	assert.Empty(t, res.Ranked)
}
