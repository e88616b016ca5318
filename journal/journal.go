// journal/journal.go
package journal

import "time"

// TradeRecord is one closed trade as persisted by a journal backend.
type TradeRecord struct {
	TradeID    string
	RunID      string
	Market     string
	Side       string
	Size       float64
	EntryPrice float64
	ExitPrice  float64
	OpenTime   time.Time
	CloseTime  time.Time
	GrossPnL   float64
	Fees       float64
	NetPnL     float64
	PnLR       float64
	Reason     string
}

// EquitySnapshot is a point on the account equity curve.
type EquitySnapshot struct {
	RunID  string
	Time   time.Time
	Equity float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}
