// Package ev computes cost-adjusted expected value for a trade setup.
//
// All payoff and cost figures are normalized into R-units (the dollar amount
// risked on one trade) so setups on different markets compare directly. The
// rule is simple: trade only when EV net of every cost is positive.
package ev

// CostInputs describes the cost basket of a round trip.
//
// Fees are in basis points and may be negative (maker rebates). FundingRate
// is the per-8-hour rate applied to the entry notional. RUSD is the dollar
// value of 1R for the trade being evaluated.
type CostInputs struct {
	NotionalIn  float64
	NotionalOut float64
	FeeInBps    float64
	FeeOutBps   float64
	FundingRate float64
	HoldHours   float64
	SlippageBps float64
	GasUSD      float64
	RUSD        float64
}

// Result is the full expectancy breakdown for a win-rate/payoff profile.
type Result struct {
	WinRate  float64
	AvgWinR  float64
	AvgLossR float64

	FeesR       float64
	FundingR    float64
	SlippageR   float64
	GasR        float64
	TotalCostsR float64

	GrossEV float64
	NetEV   float64
}

// Tradeable reports whether the setup is worth taking: net EV must be
// strictly positive.
func (r Result) Tradeable() bool {
	return r.NetEV > 0
}

// Calculator evaluates expectancy with venue-default fee rates.
type Calculator struct {
	DefaultMakerBps float64
	DefaultTakerBps float64
}

// NewCalculator returns a calculator with typical perp venue fees: a small
// maker rebate and a positive taker fee.
func NewCalculator() *Calculator {
	return &Calculator{
		DefaultMakerBps: -1.5,
		DefaultTakerBps: 4.5,
	}
}

// CostsInR sums fees, funding, slippage and gas for a round trip and converts
// the total into R-units.
//
//	fees     = notionalIn*feeIn/10000 + notionalOut*feeOut/10000
//	funding  = fundingRate * (holdHours/8) * notionalIn
//	slippage = (notionalIn+notionalOut) * slippageBps/10000
//
// RUSD at or below zero yields 0: an unsizable trade contributes no cost.
func CostsInR(in CostInputs) float64 {
	if in.RUSD <= 0 {
		return 0
	}

	fees := in.NotionalIn*(in.FeeInBps/10000.0) + in.NotionalOut*(in.FeeOutBps/10000.0)
	funding := in.FundingRate * (in.HoldHours / 8.0) * in.NotionalIn
	slippage := (in.NotionalIn + in.NotionalOut) * (in.SlippageBps / 10000.0)

	return (fees + funding + slippage + in.GasUSD) / in.RUSD
}

// NetEV is the expectancy after costs, in R:
//
//	winRate*avgWinR - (1-winRate)*|avgLossR| - costsR
func NetEV(winRate, avgWinR, avgLossR, costsR float64) float64 {
	return GrossEV(winRate, avgWinR, avgLossR) - costsR
}

// GrossEV is the expectancy before costs, in R.
func GrossEV(winRate, avgWinR, avgLossR float64) float64 {
	lossRate := 1.0 - winRate
	return winRate*avgWinR - lossRate*abs(avgLossR)
}

// Evaluate produces the full Result breakdown. Fee fields of in may be left
// zero-valued by passing useDefaults=true, in which case the calculator's
// default maker rate applies to both legs.
func (c *Calculator) Evaluate(winRate, avgWinR, avgLossR float64, in CostInputs, useDefaults bool) Result {
	if useDefaults {
		in.FeeInBps = c.DefaultMakerBps
		in.FeeOutBps = c.DefaultMakerBps
	}

	var feesR, fundingR, slippageR, gasR float64
	if in.RUSD > 0 {
		feesR = (in.NotionalIn*(in.FeeInBps/10000.0) + in.NotionalOut*(in.FeeOutBps/10000.0)) / in.RUSD
		fundingR = in.FundingRate * (in.HoldHours / 8.0) * in.NotionalIn / in.RUSD
		slippageR = (in.NotionalIn + in.NotionalOut) * (in.SlippageBps / 10000.0) / in.RUSD
		gasR = in.GasUSD / in.RUSD
	}

	total := feesR + fundingR + slippageR + gasR
	gross := GrossEV(winRate, avgWinR, avgLossR)

	return Result{
		WinRate:     winRate,
		AvgWinR:     avgWinR,
		AvgLossR:    avgLossR,
		FeesR:       feesR,
		FundingR:    fundingR,
		SlippageR:   slippageR,
		GasR:        gasR,
		TotalCostsR: total,
		GrossEV:     gross,
		NetEV:       gross - total,
	}
}

// RollingEV is the arithmetic mean of recent per-trade R outcomes minus the
// average per-trade cost. Callers feed it a decaying window and kill trading
// when it drops through zero.
func RollingEV(recentTradesR []float64, costsR float64) float64 {
	if len(recentTradesR) == 0 {
		return 0
	}

	sum := 0.0
	for _, r := range recentTradesR {
		sum += r
	}
	return sum/float64(len(recentTradesR)) - costsR
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
