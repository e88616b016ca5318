package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/edgelab/backtest"
	"github.com/rustyeddy/edgelab/id"
	"github.com/rustyeddy/edgelab/journal"
	"github.com/rustyeddy/edgelab/strategies"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Backtest a strategy against historical bars",
	Long: `Backtest replays daily bars through a strategy, sizing each position at a
fixed percent of equity risked to the stop.

Supported strategies:
  - breakout: Donchian channel breakout with a 2R target and exit channel
  - noop: never trades (baseline)

Example:
  edgelab backtest --data data/btc_1d.csv --market BTC-PERP -s breakout -p don_break=20 -p don_exit=10`,
	RunE: runBacktestCmd,
}

var (
	btDataPath string
	btMarket   string
	btStrategy string
	btParams   []string
	btCapital  float64
	btRiskPct  float64
	btFeeRate  float64
	btInterval time.Duration
	btDBPath   string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btDataPath, "data", "d", "", "path to bar CSV (timestamp,open,high,low,close,volume) (required)")
	backtestCmd.Flags().StringVarP(&btMarket, "market", "m", "BTC-PERP", "market id")
	backtestCmd.Flags().StringVarP(&btStrategy, "strategy", "s", "breakout", "strategy name (breakout, noop)")
	backtestCmd.Flags().StringArrayVarP(&btParams, "param", "p", nil, "strategy parameter name=value (repeatable)")
	backtestCmd.Flags().Float64VarP(&btCapital, "capital", "c", 10_000, "starting capital")
	backtestCmd.Flags().Float64Var(&btRiskPct, "risk", 1.0, "risk percent per trade (1.0 = 1%)")
	backtestCmd.Flags().Float64Var(&btFeeRate, "fee", 0.0005, "fee rate per fill (0.0005 = 0.05%)")
	backtestCmd.Flags().DurationVar(&btInterval, "interval", 24*time.Hour, "expected bar spacing, 0 disables the gap check")
	backtestCmd.Flags().StringVar(&btDBPath, "db", "", "journal trades to this SQLite DB")

	backtestCmd.MarkFlagRequired("data")
}

func runBacktestCmd(cmd *cobra.Command, args []string) error {
	bars, err := loadBars(btDataPath, btMarket, btInterval)
	if err != nil {
		return err
	}

	params, err := parseParams(btParams)
	if err != nil {
		return err
	}

	strat, err := strategies.ByName(btStrategy, params, []string{btMarket})
	if err != nil {
		return err
	}

	eng := backtest.New(strat, backtest.Config{
		InitialCapital:  btCapital,
		RiskPerTradePct: btRiskPct,
		FeeRate:         btFeeRate,
	})

	runID := id.New()
	var j *journal.SQLite
	if btDBPath != "" {
		j, err = journal.NewSQLite(btDBPath)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer j.Close()
		eng.SetJournal(j, runID)
	}

	res, err := eng.Run(btMarket, bars)
	if err != nil {
		return err
	}

	m := res.Metrics
	fmt.Printf("Backtest %s (%s, %d bars)\n", btStrategy, btMarket, len(bars))
	fmt.Printf("  Trades:        %d (%d W / %d L, %.1f%% win rate)\n",
		m.TotalTrades, m.WinningTrades, m.LosingTrades, m.WinRate)
	fmt.Printf("  Net P&L:       %.2f (%.2f%%)\n", m.TotalPnL, m.ReturnPct)
	fmt.Printf("  Avg win/loss:  %.2f / %.2f (PF %.2f)\n", m.AvgWin, m.AvgLoss, m.ProfitFactor)
	fmt.Printf("  Sharpe:        %.2f\n", m.Sharpe)
	fmt.Printf("  Max drawdown:  %.2f%%\n", m.MaxDrawdownPct)
	fmt.Printf("  Final equity:  %.2f\n", m.FinalEquity)
	if len(res.Dropped) > 0 {
		fmt.Printf("  Dropped signals: %d\n", len(res.Dropped))
	}

	if j != nil {
		err = j.RecordRun(journal.BacktestRun{
			RunID:        runID,
			Created:      time.Now().UTC(),
			Market:       btMarket,
			Strategy:     btStrategy,
			Params:       fmt.Sprintf("%v", params),
			Bars:         len(bars),
			StartEquity:  btCapital,
			FinalEquity:  m.FinalEquity,
			NetPnL:       m.TotalPnL,
			ReturnPct:    m.ReturnPct,
			Trades:       m.TotalTrades,
			WinRate:      m.WinRate,
			ProfitFactor: m.ProfitFactor,
			Sharpe:       m.Sharpe,
			MaxDDPct:     m.MaxDrawdownPct,
		})
		if err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		fmt.Printf("  Journaled as run %s\n", runID)
	}
	return nil
}
