package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/edgelab/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query journaled backtest runs and trades",
	Long: `Query and display backtest records from a SQLite journal.

Subcommands:
  runs   - List recorded backtest runs
  run    - List the trades of one run
  trade  - Get details of a specific trade by ID

Examples:
  edgelab journal runs
  edgelab journal run 01HX4QJ2M3...
  edgelab journal trade 01HX4QK9F7...`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded backtest runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "List the trades of one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Get details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var (
	journalDBPath string
	journalSince  string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalRunCmd)
	journalCmd.AddCommand(journalTradeCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./edgelab.sqlite", "path to SQLite journal DB")
	journalRunsCmd.Flags().StringVar(&journalSince, "since", "", "only runs created on or after YYYY-MM-DD")
}

func openJournal() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	since := time.Time{}
	if journalSince != "" {
		since, err = time.Parse("2006-01-02", journalSince)
		if err != nil {
			return fmt.Errorf("bad --since date: %w", err)
		}
	}

	runs, err := j.ListRunsSince(since)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	for _, r := range runs {
		fmt.Printf("%s  %s  %s %s  %d trades  %+.2f%%  sharpe %.2f  dd %.2f%%\n",
			r.RunID, r.Created.Format("2006-01-02 15:04"),
			r.Strategy, r.Market, r.Trades, r.ReturnPct, r.Sharpe, r.MaxDDPct)
	}
	return nil
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	trades, err := j.ListTradesByRun(args[0])
	if err != nil {
		return err
	}
	if len(trades) == 0 {
		fmt.Println("No trades for that run.")
		return nil
	}

	for _, t := range trades {
		fmt.Printf("%s  %-5s %-9s  %.4f @ %.2f -> %.2f  %+.2f (%+.2fR)  %s\n",
			t.TradeID, t.Side, t.Market, t.Size, t.EntryPrice, t.ExitPrice,
			t.NetPnL, t.PnLR, t.Reason)
	}
	return nil
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	t, err := j.GetTrade(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Trade %s (run %s)\n", t.TradeID, t.RunID)
	fmt.Printf("  %s %s, size %.4f\n", t.Side, t.Market, t.Size)
	fmt.Printf("  Entry: %.2f at %s\n", t.EntryPrice, t.OpenTime.Format(time.RFC3339))
	fmt.Printf("  Exit:  %.2f at %s (%s)\n", t.ExitPrice, t.CloseTime.Format(time.RFC3339), t.Reason)
	fmt.Printf("  P&L:   gross %+.2f, fees %.2f, net %+.2f (%+.2fR)\n",
		t.GrossPnL, t.Fees, t.NetPnL, t.PnLR)
	return nil
}
