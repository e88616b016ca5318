package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/edgelab/backtest"
	"github.com/rustyeddy/edgelab/config"
	"github.com/rustyeddy/edgelab/ev"
	"github.com/rustyeddy/edgelab/id"
	"github.com/rustyeddy/edgelab/journal"
	"github.com/rustyeddy/edgelab/montecarlo"
	"github.com/rustyeddy/edgelab/optimize"
	"github.com/rustyeddy/edgelab/risk"
	"github.com/rustyeddy/edgelab/strategies"
	"github.com/rustyeddy/edgelab/strategy"
	"github.com/rustyeddy/edgelab/walkforward"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full validation pipeline from a config file",
	Long: `Run executes backtest, expected-value, risk-limit, walk-forward and
Monte-Carlo analysis for the strategy described in a YAML or JSON config,
and the parameter grid search when the config declares a grid.

Example:
  edgelab run -f edgelab.yaml`,
	RunE: runRunCmd,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "edgelab.yaml", "path to config file")
}

func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return err
	}

	market := cfg.Strategy.Market
	interval := time.Duration(cfg.Strategy.BarIntervalHours) * time.Hour
	bars, err := loadBars(cfg.Strategy.DataCSV, market, interval)
	if err != nil {
		return err
	}

	params := strategies.Params(cfg.Strategy.Params)
	construct, err := strategyFactory(cfg.Strategy.Name, []string{market})
	if err != nil {
		return err
	}
	strat := construct(params)

	btCfg := backtest.Config{
		InitialCapital:  cfg.Account.InitialCapital,
		RiskPerTradePct: cfg.Risk.PerTradeRiskPct,
		FeeRate:         cfg.Account.FeeRate,
	}

	eng := backtest.New(strat, btCfg)

	runID := id.New()
	jrnl, err := openConfigJournal(cfg.Journal)
	if err != nil {
		return err
	}
	if jrnl != nil {
		defer jrnl.Close()
		eng.SetJournal(jrnl, runID)
	}

	res, err := eng.Run(market, bars)
	if err != nil {
		return err
	}

	m := res.Metrics
	fmt.Printf("Backtest %s on %s: %d trades, %+.2f%% return, sharpe %.2f, dd %.2f%%\n",
		cfg.Strategy.Name, market, m.TotalTrades, m.ReturnPct, m.Sharpe, m.MaxDrawdownPct)

	printEVVerdict(cfg, res)
	printRiskReplay(cfg, market, res)

	if err := runConfigWalkforward(cfg, market, bars, construct, params, btCfg); err != nil {
		return err
	}

	sim := montecarlo.New(cfg.Research.Simulations, cfg.Account.InitialCapital, cfg.Research.Seed)
	mc := sim.Run(res.Trades)
	fmt.Printf("Monte-Carlo (%d replications): profit prob %.1f%%, return %+.2f%% median, worst %+.2f%%\n",
		len(mc.Replications), mc.Stats.ProbProfit*100, mc.Stats.MedianReturnPct, mc.Stats.WorstReturnPct)

	if len(cfg.Research.Grid) > 0 {
		if err := runConfigOptimize(cfg, market, bars, construct, btCfg); err != nil {
			return err
		}
	}
	return nil
}

func openConfigJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	case "csv":
		return journal.NewCSV(jc.TradesFile, jc.EquityFile)
	default:
		return nil, nil
	}
}

// printEVVerdict folds the realized trade statistics into the expected-value
// calculator: would this edge survive its own costs?
func printEVVerdict(cfg *config.Config, res *backtest.Result) {
	if len(res.Trades) == 0 {
		return
	}

	var winR, lossR, notIn, notOut float64
	var wins, losses int
	for _, t := range res.Trades {
		if t.PnLR > 0 {
			winR += t.PnLR
			wins++
		} else if t.PnLR < 0 {
			lossR += t.PnLR
			losses++
		}
		notIn += t.Entry * t.Size
		notOut += t.Exit * t.Size
	}

	avgWinR, avgLossR := 0.0, 0.0
	if wins > 0 {
		avgWinR = winR / float64(wins)
	}
	if losses > 0 {
		avgLossR = lossR / float64(losses)
	}

	n := float64(len(res.Trades))
	feeBps := cfg.Account.FeeRate * 10000

	calc := ev.NewCalculator()
	result := calc.Evaluate(float64(wins)/n, avgWinR, avgLossR, ev.CostInputs{
		NotionalIn:  notIn / n,
		NotionalOut: notOut / n,
		FeeInBps:    feeBps,
		FeeOutBps:   feeBps,
		RUSD:        cfg.Risk.PerTradeRiskPct / 100 * cfg.Account.InitialCapital,
	}, false)

	verdict := "NOT tradeable"
	if result.Tradeable() {
		verdict = "tradeable"
	}
	fmt.Printf("Expected value: gross %+.3fR, costs %.3fR, net %+.3fR => %s\n",
		result.GrossEV, result.TotalCostsR, result.NetEV, verdict)
}

// printRiskReplay pushes the realized trade sequence through the risk
// manager as if it had landed in one session, showing where the daily-loss
// kill-switch would have tripped.
func printRiskReplay(cfg *config.Config, market string, res *backtest.Result) {
	if len(res.Trades) == 0 {
		return
	}

	limits := risk.Limits{
		PerTradeRiskPct:      cfg.Risk.PerTradeRiskPct,
		MaxDailyLossR:        cfg.Risk.MaxDailyLossR,
		MaxConcurrent:        cfg.Risk.MaxConcurrent,
		MaxPositionSizeUSD:   cfg.Risk.MaxPositionSizeUSD,
		MaxExposurePerMarket: cfg.Risk.MaxExposurePerMarket,
	}
	mgr := risk.NewManager(cfg.Account.InitialCapital, &limits)

	tripped := -1
	for i, t := range res.Trades {
		mgr.Register(market, t.Side, t.Entry, t.Size, t.Stop, t.RiskUSD)
		mgr.Close(market, t.Exit)

		if st := mgr.Status(); !st.TradingEnabled && tripped < 0 {
			tripped = i
		}
	}

	st := mgr.Status()
	fmt.Printf("Risk replay (single-session): level %s, daily %+.2fR of %.2fR\n",
		st.Level, st.DailyLossR, st.DailyLossLimitR)
	if tripped >= 0 {
		fmt.Printf("  Kill-switch would have tripped after trade %d of %d\n", tripped+1, len(res.Trades))
	}
}

func runConfigWalkforward(cfg *config.Config, market string, bars []strategy.Bar, construct func(strategies.Params) strategy.Strategy, params strategies.Params, btCfg backtest.Config) error {
	analyzer := &walkforward.Analyzer{
		NewStrategy: func() strategy.Strategy { return construct(params) },
		Config:      btCfg,
	}

	sp := walkforward.NewSplitter(cfg.Research.TrainDays, cfg.Research.TestDays, cfg.Research.StepDays, cfg.Research.Anchored)
	wf, err := analyzer.Run(market, bars, sp)
	if err != nil {
		return err
	}

	sum := wf.Summary
	fmt.Printf("Walk-forward (%d splits, %d failed): IS %+.2f%%, OOS %+.2f%%, consistency %.1f%%\n",
		sum.Splits, sum.Failed, sum.ISAvgReturnPct, sum.OOSAvgReturnPct, sum.OOSConsistency)
	return nil
}

func runConfigOptimize(cfg *config.Config, market string, bars []strategy.Bar, construct func(strategies.Params) strategy.Strategy, btCfg backtest.Config) error {
	o := &optimize.Optimizer{
		Factory: func(p map[string]float64) strategy.Strategy {
			return construct(strategies.Params(p))
		},
		Splitter: walkforward.NewSplitter(cfg.Research.TrainDays, cfg.Research.TestDays, cfg.Research.StepDays, cfg.Research.Anchored),
		Config:   btCfg,
		Metric:   optimize.Metric(cfg.Research.Metric),
		TopN:     cfg.Research.TopN,
	}

	res, err := o.Run(market, bars, optimize.Grid(cfg.Research.Grid))
	if err != nil {
		return err
	}

	if res.Best == nil {
		fmt.Println("Optimize: no combination succeeded")
		return nil
	}
	fmt.Printf("Optimize (%d combos): best %v, score %.3f\n",
		len(res.Ranked), res.Best.Params, res.Best.Score)
	return nil
}
