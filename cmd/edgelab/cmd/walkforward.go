package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/edgelab/backtest"
	"github.com/rustyeddy/edgelab/strategy"
	"github.com/rustyeddy/edgelab/walkforward"
)

var walkforwardCmd = &cobra.Command{
	Use:   "walkforward",
	Short: "Validate a strategy with walk-forward train/test splits",
	Long: `Walkforward slices the bar series into train/test windows, backtests each
window, and compares in-sample to out-of-sample performance. A strategy that
only wins in-sample is overfit.

Example:
  edgelab walkforward --data data/btc_1d.csv --train 90 --test 30 --step 30`,
	RunE: runWalkforwardCmd,
}

var (
	wfDataPath string
	wfMarket   string
	wfStrategy string
	wfParams   []string
	wfCapital  float64
	wfRiskPct  float64
	wfFeeRate  float64
	wfInterval time.Duration
	wfTrain    int
	wfTest     int
	wfStep     int
	wfAnchored bool
)

func init() {
	rootCmd.AddCommand(walkforwardCmd)

	walkforwardCmd.Flags().StringVarP(&wfDataPath, "data", "d", "", "path to bar CSV (required)")
	walkforwardCmd.Flags().StringVarP(&wfMarket, "market", "m", "BTC-PERP", "market id")
	walkforwardCmd.Flags().StringVarP(&wfStrategy, "strategy", "s", "breakout", "strategy name")
	walkforwardCmd.Flags().StringArrayVarP(&wfParams, "param", "p", nil, "strategy parameter name=value (repeatable)")
	walkforwardCmd.Flags().Float64VarP(&wfCapital, "capital", "c", 10_000, "starting capital per window")
	walkforwardCmd.Flags().Float64Var(&wfRiskPct, "risk", 1.0, "risk percent per trade")
	walkforwardCmd.Flags().Float64Var(&wfFeeRate, "fee", 0.0005, "fee rate per fill")
	walkforwardCmd.Flags().DurationVar(&wfInterval, "interval", 24*time.Hour, "expected bar spacing, 0 disables the gap check")
	walkforwardCmd.Flags().IntVar(&wfTrain, "train", 90, "train window length in bars")
	walkforwardCmd.Flags().IntVar(&wfTest, "test", 30, "test window length in bars")
	walkforwardCmd.Flags().IntVar(&wfStep, "step", 0, "window step in bars (default: test length)")
	walkforwardCmd.Flags().BoolVar(&wfAnchored, "anchored", false, "grow the train window from the start instead of sliding it")

	walkforwardCmd.MarkFlagRequired("data")
}

func runWalkforwardCmd(cmd *cobra.Command, args []string) error {
	bars, err := loadBars(wfDataPath, wfMarket, wfInterval)
	if err != nil {
		return err
	}

	params, err := parseParams(wfParams)
	if err != nil {
		return err
	}

	construct, err := strategyFactory(wfStrategy, []string{wfMarket})
	if err != nil {
		return err
	}

	analyzer := &walkforward.Analyzer{
		NewStrategy: func() strategy.Strategy { return construct(params) },
		Config: backtest.Config{
			InitialCapital:  wfCapital,
			RiskPerTradePct: wfRiskPct,
			FeeRate:         wfFeeRate,
		},
	}

	sp := walkforward.NewSplitter(wfTrain, wfTest, wfStep, wfAnchored)
	res, err := analyzer.Run(wfMarket, bars, sp)
	if err != nil {
		return err
	}

	mode := "rolling"
	if wfAnchored {
		mode = "anchored"
	}
	fmt.Printf("Walk-forward %s (%s, %s %dd/%dd step %dd)\n",
		wfStrategy, wfMarket, mode, wfTrain, wfTest, sp.StepDays)

	for _, s := range res.Splits {
		if s.Err != nil {
			fmt.Printf("  split %d: FAILED: %v\n", s.SplitID, s.Err)
			continue
		}
		fmt.Printf("  split %d: IS %+.2f%%  OOS %+.2f%% (sharpe %.2f, win %.1f%%)\n",
			s.SplitID, s.Train.ReturnPct, s.Test.ReturnPct, s.Test.Sharpe, s.Test.WinRate)
	}

	sum := res.Summary
	fmt.Printf("Summary over %d splits (%d failed):\n", sum.Splits, sum.Failed)
	fmt.Printf("  IS avg return:   %+.2f%%\n", sum.ISAvgReturnPct)
	fmt.Printf("  OOS avg return:  %+.2f%%\n", sum.OOSAvgReturnPct)
	fmt.Printf("  OOS avg sharpe:  %.2f\n", sum.OOSAvgSharpe)
	fmt.Printf("  OOS consistency: %.1f%%\n", sum.OOSConsistency)

	if gap := sum.ISAvgReturnPct - sum.OOSAvgReturnPct; gap > 0 {
		fmt.Printf("  IS-over-OOS gap: %+.2f%% (large gap suggests overfitting)\n", gap)
	}
	return nil
}
