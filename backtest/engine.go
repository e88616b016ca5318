// backtest/engine.go
package backtest

import (
	"fmt"
	"time"

	"github.com/rustyeddy/edgelab/id"
	"github.com/rustyeddy/edgelab/journal"
	"github.com/rustyeddy/edgelab/strategy"
)

// Config sets the account simulated by an Engine. Zero fields fall back to
// the defaults below.
type Config struct {
	InitialCapital  float64 // default 10000
	RiskPerTradePct float64 // default 1.0 (% of equity risked per trade)
	FeeRate         float64 // default 0.0005 (0.05% per fill)
}

const (
	DefaultInitialCapital = 10000.0
	DefaultRiskPct        = 1.0
	DefaultFeeRate        = 0.0005
)

func (c *Config) applyDefaults() {
	if c.InitialCapital == 0 {
		c.InitialCapital = DefaultInitialCapital
	}
	if c.RiskPerTradePct == 0 {
		c.RiskPerTradePct = DefaultRiskPct
	}
	if c.FeeRate == 0 {
		c.FeeRate = DefaultFeeRate
	}
}

// Engine replays bars through a strategy, fills its signals against bar
// highs and lows, and tracks equity trade by trade. One position per market
// at a time; entries while a position is open are silently ignored.
type Engine struct {
	strat strategy.Strategy
	cfg   Config

	jrnl  journal.Journal
	runID string
	newID func() string

	equity      float64
	positions   map[string]*position
	trades      []Trade
	equityCurve []float64
	dropped     []DroppedSignal
}

type position struct {
	market   string
	side     strategy.Side
	entry    float64
	stop     float64
	targets  []float64
	size     float64
	riskUSD  float64
	openedAt time.Time
}

func New(s strategy.Strategy, cfg Config) *Engine {
	cfg.applyDefaults()
	return &Engine{
		strat: s,
		cfg:   cfg,
		newID: id.New,
	}
}

// SetJournal makes the engine persist every closed trade and a per-bar
// equity snapshot under runID.
func (e *Engine) SetJournal(j journal.Journal, runID string) {
	e.jrnl = j
	e.runID = runID
}

// Run replays bars for a single market. Bars must be in time order; the
// strategy sees all history up to and including the current bar. Any
// position still open after the last bar is closed at its close price.
func (e *Engine) Run(market string, bars []strategy.Bar) (*Result, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("backtest %s: no bars", market)
	}

	e.equity = e.cfg.InitialCapital
	e.positions = make(map[string]*position)
	e.trades = nil
	e.equityCurve = []float64{e.cfg.InitialCapital}
	e.dropped = nil

	for i := range bars {
		bar := bars[i]
		history := bars[:i+1]

		for _, sig := range e.strat.OnBar(bar, history) {
			if err := e.processSignal(sig, bar.Time); err != nil {
				return nil, err
			}
		}

		if err := e.checkPosition(bar); err != nil {
			return nil, err
		}

		e.equityCurve = append(e.equityCurve, e.equity)

		if e.jrnl != nil {
			err := e.jrnl.RecordEquity(journal.EquitySnapshot{
				RunID:  e.runID,
				Time:   bar.Time,
				Equity: e.equity,
			})
			if err != nil {
				return nil, fmt.Errorf("backtest %s: journal equity: %w", market, err)
			}
		}
	}

	last := bars[len(bars)-1]
	for m := range e.positions {
		if err := e.closePosition(m, last.Close, "backtest_end", last.Time); err != nil {
			return nil, err
		}
	}

	return &Result{
		Market:      market,
		Trades:      e.trades,
		EquityCurve: e.equityCurve,
		Dropped:     e.dropped,
		Metrics:     e.metrics(),
	}, nil
}

func (e *Engine) processSignal(sig strategy.Signal, at time.Time) error {
	if err := strategy.ValidateSignal(sig); err != nil {
		e.drop(sig, at, err.Error())
		return nil
	}

	if sig.Side == strategy.Exit {
		if _, ok := e.positions[sig.Market]; ok {
			return e.closePosition(sig.Market, sig.Entry, "strategy_exit", at)
		}
		return nil
	}

	// One position per market; later entries wait for flat.
	if _, ok := e.positions[sig.Market]; ok {
		return nil
	}

	size, riskUSD := strategy.SizeFromSignal(sig, e.equity, e.cfg.RiskPerTradePct, 1.0)
	if size == 0 {
		e.drop(sig, at, "zero stop distance")
		return nil
	}

	e.positions[sig.Market] = &position{
		market:   sig.Market,
		side:     sig.Side,
		entry:    sig.Entry,
		stop:     sig.Stop,
		targets:  sig.Targets,
		size:     size,
		riskUSD:  riskUSD,
		openedAt: at,
	}
	e.strat.RegisterPosition(sig.Market, sig.Side)
	return nil
}

// checkPosition fills stops and targets against the current bar's range.
// The stop is checked first and wins when both levels are inside the bar.
func (e *Engine) checkPosition(bar strategy.Bar) error {
	pos, ok := e.positions[bar.Market]
	if !ok {
		return nil
	}

	switch pos.side {
	case strategy.Long:
		if bar.Low <= pos.stop {
			return e.closePosition(bar.Market, pos.stop, "stop_loss", bar.Time)
		}
		if len(pos.targets) > 0 && bar.High >= pos.targets[0] {
			return e.closePosition(bar.Market, pos.targets[0], "target_hit", bar.Time)
		}
	case strategy.Short:
		if bar.High >= pos.stop {
			return e.closePosition(bar.Market, pos.stop, "stop_loss", bar.Time)
		}
		if len(pos.targets) > 0 && bar.Low <= pos.targets[0] {
			return e.closePosition(bar.Market, pos.targets[0], "target_hit", bar.Time)
		}
	}
	return nil
}

func (e *Engine) closePosition(market string, exitPrice float64, reason string, at time.Time) error {
	pos, ok := e.positions[market]
	if !ok {
		return nil
	}

	priceDiff := exitPrice - pos.entry
	if pos.side == strategy.Short {
		priceDiff = pos.entry - exitPrice
	}

	grossPnL := priceDiff * pos.size
	fees := (pos.entry + exitPrice) * pos.size * e.cfg.FeeRate
	netPnL := grossPnL - fees

	pnlR := 0.0
	if pos.riskUSD > 0 {
		pnlR = netPnL / pos.riskUSD
	}

	e.equity += netPnL

	trade := Trade{
		ID:        e.newID(),
		Market:    market,
		Side:      pos.side,
		Entry:     pos.entry,
		Exit:      exitPrice,
		Stop:      pos.stop,
		Size:      pos.size,
		RiskUSD:   pos.riskUSD,
		GrossPnL:  grossPnL,
		Fees:      fees,
		PnL:       netPnL,
		PnLR:      pnlR,
		Reason:    reason,
		OpenTime:  pos.openedAt,
		CloseTime: at,
		Duration:  at.Sub(pos.openedAt),
	}
	e.trades = append(e.trades, trade)

	delete(e.positions, market)
	e.strat.UnregisterPosition(market)

	if e.jrnl != nil {
		err := e.jrnl.RecordTrade(journal.TradeRecord{
			TradeID:    trade.ID,
			RunID:      e.runID,
			Market:     trade.Market,
			Side:       string(trade.Side),
			Size:       trade.Size,
			EntryPrice: trade.Entry,
			ExitPrice:  trade.Exit,
			OpenTime:   trade.OpenTime,
			CloseTime:  trade.CloseTime,
			GrossPnL:   trade.GrossPnL,
			Fees:       trade.Fees,
			NetPnL:     trade.PnL,
			PnLR:       trade.PnLR,
			Reason:     trade.Reason,
		})
		if err != nil {
			return fmt.Errorf("backtest %s: journal trade: %w", market, err)
		}
	}
	return nil
}

func (e *Engine) drop(sig strategy.Signal, at time.Time, reason string) {
	e.dropped = append(e.dropped, DroppedSignal{
		Market: sig.Market,
		Side:   sig.Side,
		Time:   at,
		Reason: reason,
	})
}
