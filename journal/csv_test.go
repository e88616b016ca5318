package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCSVJournalWritesRows(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	assert.NoError(t, err)

	now := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	assert.NoError(t, j.RecordTrade(TradeRecord{
		TradeID:    "T1",
		RunID:      "R1",
		Market:     "SOL-USD",
		Side:       "long",
		Size:       10,
		EntryPrice: 100,
		ExitPrice:  104,
		OpenTime:   now,
		CloseTime:  now.Add(time.Hour),
		GrossPnL:   40,
		Fees:       1,
		NetPnL:     39,
		PnLR:       1.95,
		Reason:     "strategy_exit",
	}))
	assert.NoError(t, j.RecordEquity(EquitySnapshot{RunID: "R1", Time: now, Equity: 10039}))
	assert.NoError(t, j.Close())

	tf, err := os.Open(tradesPath)
	assert.NoError(t, err)
	defer tf.Close()

	rows, err := csv.NewReader(tf).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, "trade_id", rows[0][0])
	assert.Equal(t, "T1", rows[1][0])
	assert.Equal(t, "SOL-USD", rows[1][2])
	assert.Equal(t, "39", rows[1][11])

	ef, err := os.Open(equityPath)
	assert.NoError(t, err)
	defer ef.Close()

	erows, err := csv.NewReader(ef).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, erows, 2)
	assert.Equal(t, "10039", erows[1][2])
}
