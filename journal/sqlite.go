package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, run_id, market, side, size, entry_price, exit_price, open_time, close_time, gross_pnl, fees, net_pnl, pnl_r, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.RunID, t.Market, t.Side, t.Size, t.EntryPrice, t.ExitPrice,
		t.OpenTime, t.CloseTime, t.GrossPnL, t.Fees, t.NetPnL, t.PnLR, t.Reason,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (run_id, time, equity) VALUES (?, ?, ?)`,
		e.RunID, e.Time, e.Equity,
	)
	return err
}

func (j *SQLite) RecordRun(r BacktestRun) error {
	_, err := j.db.Exec(`
		INSERT INTO backtest_runs
		(run_id, created, market, strategy, params, bars, start_equity, final_equity,
		 net_pnl, return_pct, trades, win_rate, profit_factor, sharpe, max_dd_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Market, r.Strategy, r.Params, r.Bars, r.StartEquity,
		r.FinalEquity, r.NetPnL, r.ReturnPct, r.Trades, r.WinRate, r.ProfitFactor,
		r.Sharpe, r.MaxDDPct,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
