// montecarlo/montecarlo.go

// Package montecarlo characterizes the range of equity outcomes a trade
// sequence could have produced by replaying it in many random orders.
//
// Each replication is a full permutation of the trade list, so the sum of
// P&L is preserved and every replication ends at the same final equity;
// only the path between start and end varies. That makes the percentile
// curves and drawdown range meaningful while the final-equity distribution
// is degenerate. Resampling with replacement would vary the endpoint too,
// but that is a different experiment and is intentionally not what this
// simulator does.
package montecarlo

import (
	"math/rand"
	"sort"
	"time"

	"github.com/rustyeddy/edgelab/backtest"
)

const (
	DefaultSimulations    = 1000
	DefaultInitialCapital = 10000.0
)

// Simulator shuffles a completed trade list N times and aggregates the
// resulting equity curves.
type Simulator struct {
	n       int
	capital float64
	rng     *rand.Rand
}

// New returns a Simulator running n replications from initialCapital.
// Passing seed 0 seeds from the clock; any other value makes the run
// reproducible. Non-positive n and capital fall back to the defaults.
func New(n int, initialCapital float64, seed int64) *Simulator {
	if n <= 0 {
		n = DefaultSimulations
	}
	if initialCapital <= 0 {
		initialCapital = DefaultInitialCapital
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		n:       n,
		capital: initialCapital,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Replication is one shuffled replay of the trade list.
type Replication struct {
	EquityCurve []float64
	FinalEquity float64
	ReturnPct   float64
}

// Percentiles are per-timestep equity percentile curves across all
// replications.
type Percentiles struct {
	P5  []float64
	P25 []float64
	P50 []float64
	P75 []float64
	P95 []float64
}

type Stats struct {
	ProbProfit        float64 // fraction of replications ending above start
	MedianReturnPct   float64
	MeanReturnPct     float64
	WorstReturnPct    float64
	BestReturnPct     float64
	MedianFinalEquity float64
}

type Result struct {
	Replications []Replication
	Percentiles  Percentiles
	Stats        Stats
}

// Run simulates the trade list. An empty list yields a degenerate result
// pinned at the initial capital with zero probability of profit.
func (s *Simulator) Run(trades []backtest.Trade) *Result {
	if len(trades) == 0 {
		return s.empty()
	}

	pnls := make([]float64, len(trades))
	for i, t := range trades {
		pnls[i] = t.PnL
	}

	reps := make([]Replication, 0, s.n)
	shuffled := make([]float64, len(pnls))
	copy(shuffled, pnls)

	for i := 0; i < s.n; i++ {
		s.rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		curve := make([]float64, 0, len(shuffled)+1)
		equity := s.capital
		curve = append(curve, equity)
		for _, pnl := range shuffled {
			equity += pnl
			curve = append(curve, equity)
		}

		reps = append(reps, Replication{
			EquityCurve: curve,
			FinalEquity: equity,
			ReturnPct:   (equity - s.capital) / s.capital * 100,
		})
	}

	return &Result{
		Replications: reps,
		Percentiles:  s.percentiles(reps),
		Stats:        s.stats(reps),
	}
}

func (s *Simulator) percentiles(reps []Replication) Percentiles {
	steps := len(reps[0].EquityCurve)
	p := Percentiles{
		P5:  make([]float64, steps),
		P25: make([]float64, steps),
		P50: make([]float64, steps),
		P75: make([]float64, steps),
		P95: make([]float64, steps),
	}

	column := make([]float64, len(reps))
	for t := 0; t < steps; t++ {
		for i, rep := range reps {
			column[i] = rep.EquityCurve[t]
		}
		sort.Float64s(column)

		p.P5[t] = percentile(column, 5)
		p.P25[t] = percentile(column, 25)
		p.P50[t] = percentile(column, 50)
		p.P75[t] = percentile(column, 75)
		p.P95[t] = percentile(column, 95)
	}
	return p
}

func (s *Simulator) stats(reps []Replication) Stats {
	returns := make([]float64, len(reps))
	finals := make([]float64, len(reps))

	var profitable int
	var sum float64
	worst, best := reps[0].ReturnPct, reps[0].ReturnPct

	for i, rep := range reps {
		returns[i] = rep.ReturnPct
		finals[i] = rep.FinalEquity
		sum += rep.ReturnPct

		if rep.ReturnPct > 0 {
			profitable++
		}
		if rep.ReturnPct < worst {
			worst = rep.ReturnPct
		}
		if rep.ReturnPct > best {
			best = rep.ReturnPct
		}
	}

	sort.Float64s(returns)
	sort.Float64s(finals)

	return Stats{
		ProbProfit:        float64(profitable) / float64(len(reps)),
		MedianReturnPct:   percentile(returns, 50),
		MeanReturnPct:     sum / float64(len(reps)),
		WorstReturnPct:    worst,
		BestReturnPct:     best,
		MedianFinalEquity: percentile(finals, 50),
	}
}

func (s *Simulator) empty() *Result {
	base := []float64{s.capital}
	return &Result{
		Percentiles: Percentiles{
			P5: base, P25: base, P50: base, P75: base, P95: base,
		},
		Stats: Stats{MedianFinalEquity: s.capital},
	}
}

// percentile interpolates linearly between the two nearest ranks of an
// already sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
