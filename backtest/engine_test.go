package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/edgelab/journal"
	"github.com/rustyeddy/edgelab/strategy"
)

// scripted emits canned signals keyed by bar index and records the
// register/unregister calls it receives.
type scripted struct {
	signals    map[int][]strategy.Signal
	registered []string
	released   []string
}

func (s *scripted) Name() string      { return "scripted" }
func (s *scripted) Markets() []string { return []string{"BTC-PERP"} }

func (s *scripted) OnBar(bar strategy.Bar, history []strategy.Bar) []strategy.Signal {
	return s.signals[len(history)-1]
}

func (s *scripted) RegisterPosition(market string, side strategy.Side) {
	s.registered = append(s.registered, market+"/"+string(side))
}

func (s *scripted) UnregisterPosition(market string) {
	s.released = append(s.released, market)
}

func bar(i int, high, low, close float64) strategy.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return strategy.NewBar(start.Add(time.Duration(i)*24*time.Hour), "BTC-PERP", close, high, low, close, 1000)
}

func longSignal(entry, stop float64, targets ...float64) strategy.Signal {
	return strategy.Signal{
		Market: "BTC-PERP", Side: strategy.Long,
		Entry: entry, Stop: stop, Targets: targets, Confidence: 0.5,
	}
}

func TestRunNoBars(t *testing.T) {
	t.Parallel()

	e := New(&scripted{}, Config{})
	_, err := e.Run("BTC-PERP", nil)
	assert.Error(t, err)
}

func TestLongTargetHitAccounting(t *testing.T) {
	t.Parallel()

	s := &scripted{signals: map[int][]strategy.Signal{
		0: {longSignal(50000, 49000, 52000)},
	}}
	e := New(s, Config{})

	bars := []strategy.Bar{
		bar(0, 50500, 49500, 50000),
		bar(1, 51000, 49600, 50800),
		bar(2, 52100, 50500, 51900),
	}
	res, err := e.Run("BTC-PERP", bars)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)

	tr := res.Trades[0]
	assert.Equal(t, strategy.Long, tr.Side)
	assert.Equal(t, "target_hit", tr.Reason)
	assert.InDelta(t, 0.1, tr.Size, 1e-9)
	assert.InDelta(t, 52000, tr.Exit, 1e-9)
	assert.InDelta(t, 200, tr.GrossPnL, 1e-9)
	assert.InDelta(t, 5.1, tr.Fees, 1e-9)
	assert.InDelta(t, 194.9, tr.PnL, 1e-9)
	assert.InDelta(t, 1.949, tr.PnLR, 1e-9)
	assert.NotEmpty(t, tr.ID)

	assert.InDelta(t, 10194.9, res.Metrics.FinalEquity, 1e-9)
	assert.Len(t, res.EquityCurve, len(bars)+1)
	assert.InDelta(t, 10000, res.EquityCurve[0], 1e-9)
	assert.InDelta(t, 10194.9, res.EquityCurve[len(res.EquityCurve)-1], 1e-9)

	assert.Equal(t, []string{"BTC-PERP/long"}, s.registered)
	assert.Equal(t, []string{"BTC-PERP"}, s.released)
}

func TestStopBeatsTargetInsideOneBar(t *testing.T) {
	t.Parallel()

	s := &scripted{signals: map[int][]strategy.Signal{
		0: {longSignal(50000, 49000, 52000)},
	}}
	e := New(s, Config{})

	// Bar 1 spans both the stop and the target; the stop wins.
	bars := []strategy.Bar{
		bar(0, 50500, 49500, 50000),
		bar(1, 52500, 48800, 50000),
	}
	res, err := e.Run("BTC-PERP", bars)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)
	assert.Equal(t, "stop_loss", res.Trades[0].Reason)
	assert.InDelta(t, 49000, res.Trades[0].Exit, 1e-9)
	assert.Less(t, res.Trades[0].PnL, 0.0)
}

func TestShortTargetMirror(t *testing.T) {
	t.Parallel()

	s := &scripted{signals: map[int][]strategy.Signal{
		0: {{
			Market: "BTC-PERP", Side: strategy.Short,
			Entry: 50000, Stop: 51000, Targets: []float64{48000}, Confidence: 0.5,
		}},
	}}
	e := New(s, Config{})

	bars := []strategy.Bar{
		bar(0, 50500, 49500, 50000),
		bar(1, 50200, 47900, 48100),
	}
	res, err := e.Run("BTC-PERP", bars)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)

	tr := res.Trades[0]
	assert.Equal(t, "target_hit", tr.Reason)
	assert.InDelta(t, 200, tr.GrossPnL, 1e-9)
	assert.InDelta(t, (50000+48000)*0.1*0.0005, tr.Fees, 1e-9)
	assert.InDelta(t, 200-4.9, tr.PnL, 1e-9)
}

func TestExitSignalClosesAtSignalPrice(t *testing.T) {
	t.Parallel()

	s := &scripted{signals: map[int][]strategy.Signal{
		0: {longSignal(50000, 49000, 60000)},
		2: {{Market: "BTC-PERP", Side: strategy.Exit, Entry: 50500, Confidence: 1}},
	}}
	e := New(s, Config{})

	bars := []strategy.Bar{
		bar(0, 50500, 49500, 50000),
		bar(1, 51000, 49600, 50800),
		bar(2, 51000, 50000, 50500),
	}
	res, err := e.Run("BTC-PERP", bars)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)
	assert.Equal(t, "strategy_exit", res.Trades[0].Reason)
	assert.InDelta(t, 50500, res.Trades[0].Exit, 1e-9)
}

func TestExitWithoutPositionIsNoop(t *testing.T) {
	t.Parallel()

	s := &scripted{signals: map[int][]strategy.Signal{
		0: {{Market: "BTC-PERP", Side: strategy.Exit, Entry: 50500, Confidence: 1}},
	}}
	e := New(s, Config{})

	res, err := e.Run("BTC-PERP", []strategy.Bar{bar(0, 50500, 49500, 50000)})
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
	assert.Empty(t, res.Dropped)
}

func TestSecondEntryIgnoredWhileOpen(t *testing.T) {
	t.Parallel()

	s := &scripted{signals: map[int][]strategy.Signal{
		0: {longSignal(50000, 49000, 60000)},
		1: {longSignal(50800, 49800, 60000)},
	}}
	e := New(s, Config{})

	bars := []strategy.Bar{
		bar(0, 50500, 49500, 50000),
		bar(1, 51000, 49900, 50800),
		bar(2, 51000, 50000, 50500),
	}
	res, err := e.Run("BTC-PERP", bars)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)
	assert.InDelta(t, 50000, res.Trades[0].Entry, 1e-9)
	assert.Len(t, s.registered, 1)
}

func TestZeroStopDistanceDropped(t *testing.T) {
	t.Parallel()

	s := &scripted{signals: map[int][]strategy.Signal{
		0: {{Market: "BTC-PERP", Side: strategy.Long, Entry: 50000, Stop: 50000, Targets: []float64{52000}, Confidence: 0.5}},
	}}
	e := New(s, Config{})

	res, err := e.Run("BTC-PERP", []strategy.Bar{bar(0, 50500, 49500, 50000)})
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
	require.Len(t, res.Dropped, 1)
	assert.Equal(t, strategy.Long, res.Dropped[0].Side)
}

func TestForceCloseAtEnd(t *testing.T) {
	t.Parallel()

	s := &scripted{signals: map[int][]strategy.Signal{
		0: {longSignal(50000, 49000, 60000)},
	}}
	e := New(s, Config{})

	bars := []strategy.Bar{
		bar(0, 50500, 49500, 50000),
		bar(1, 51000, 49600, 50800),
	}
	res, err := e.Run("BTC-PERP", bars)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)
	assert.Equal(t, "backtest_end", res.Trades[0].Reason)
	assert.InDelta(t, 50800, res.Trades[0].Exit, 1e-9)
	assert.Equal(t, []string{"BTC-PERP"}, s.released)
}

func TestJournalRecording(t *testing.T) {
	t.Parallel()

	s := &scripted{signals: map[int][]strategy.Signal{
		0: {longSignal(50000, 49000, 52000)},
	}}
	e := New(s, Config{})

	j := &captureJournal{}
	e.SetJournal(j, "R1")

	bars := []strategy.Bar{
		bar(0, 50500, 49500, 50000),
		bar(1, 52100, 50000, 51900),
	}
	_, err := e.Run("BTC-PERP", bars)
	require.NoError(t, err)

	require.Len(t, j.trades, 1)
	assert.Equal(t, "R1", j.trades[0].RunID)
	assert.Equal(t, "long", j.trades[0].Side)
	assert.InDelta(t, 194.9, j.trades[0].NetPnL, 1e-9)
	assert.Len(t, j.equity, len(bars))
}

type captureJournal struct {
	trades []journal.TradeRecord
	equity []journal.EquitySnapshot
}

func (c *captureJournal) RecordTrade(t journal.TradeRecord) error {
	c.trades = append(c.trades, t)
	return nil
}

func (c *captureJournal) RecordEquity(e journal.EquitySnapshot) error {
	c.equity = append(c.equity, e)
	return nil
}

func (c *captureJournal) Close() error { return nil }
