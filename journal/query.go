package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	var rec TradeRecord

	row := j.db.QueryRow(`
		SELECT trade_id, run_id, market, side, size, entry_price, exit_price, open_time, close_time, gross_pnl, fees, net_pnl, pnl_r, reason
		FROM trades
		WHERE trade_id = ?`, tradeID)

	err := scanTrade(row, &rec)
	if err != nil {
		if err == sql.ErrNoRows {
			return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTradesByRun returns all trades of a run ordered by close time.
func (j *SQLite) ListTradesByRun(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, run_id, market, side, size, entry_price, exit_price, open_time, close_time, gross_pnl, fees, net_pnl, pnl_r, reason
		FROM trades
		WHERE run_id = ?
		ORDER BY close_time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := scanTrade(rows, &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityByRun returns a run's equity snapshots in time order.
func (j *SQLite) ListEquityByRun(runID string) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, equity
		FROM equity
		WHERE run_id = ?
		ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.RunID, &e.Time, &e.Equity); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRunsSince returns run summaries created at or after start, newest first.
func (j *SQLite) ListRunsSince(start time.Time) ([]BacktestRun, error) {
	rows, err := j.db.Query(`
		SELECT run_id, created, market, strategy, params, bars, start_equity, final_equity,
		       net_pnl, return_pct, trades, win_rate, profit_factor, sharpe, max_dd_pct
		FROM backtest_runs
		WHERE created >= ?
		ORDER BY created DESC`, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BacktestRun
	for rows.Next() {
		var r BacktestRun
		if err := rows.Scan(
			&r.RunID, &r.Created, &r.Market, &r.Strategy, &r.Params, &r.Bars,
			&r.StartEquity, &r.FinalEquity, &r.NetPnL, &r.ReturnPct, &r.Trades,
			&r.WinRate, &r.ProfitFactor, &r.Sharpe, &r.MaxDDPct,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner, rec *TradeRecord) error {
	return s.Scan(
		&rec.TradeID,
		&rec.RunID,
		&rec.Market,
		&rec.Side,
		&rec.Size,
		&rec.EntryPrice,
		&rec.ExitPrice,
		&rec.OpenTime,
		&rec.CloseTime,
		&rec.GrossPnL,
		&rec.Fees,
		&rec.NetPnL,
		&rec.PnLR,
		&rec.Reason,
	)
}
