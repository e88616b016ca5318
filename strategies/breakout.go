// strategies/breakout.go
package strategies

import (
	"github.com/rustyeddy/edgelab/indicators"
	"github.com/rustyeddy/edgelab/strategy"
)

// Breakout trades Donchian channel breakouts: enter long when the close
// breaks above the prior donBreak-bar high, short on a break below the prior
// low. The stop sits on the opposite channel band, the single target at 2R.
// Open positions are exited when the close crosses the shorter donExit
// channel in the adverse direction.
//
// Channels are always taken from the window ending at the previous closed
// bar, so the breakout bar itself never feeds the band it breaks.
type Breakout struct {
	donBreak int
	donExit  int
	atrLen   int
	markets  []string

	// market -> side of the position this strategy opened
	open map[string]strategy.Side
}

// Params holds numeric strategy parameters keyed by name, the shape the
// optimizer's grid produces.
type Params map[string]float64

func (p Params) intOr(key string, def int) int {
	if v, ok := p[key]; ok {
		return int(v)
	}
	return def
}

func NewBreakout(params Params, markets []string) *Breakout {
	if len(markets) == 0 {
		markets = []string{"BTC-PERP", "ETH-PERP"}
	}
	return &Breakout{
		donBreak: params.intOr("don_break", 20),
		donExit:  params.intOr("don_exit", 10),
		atrLen:   params.intOr("atr_len", 20),
		markets:  markets,
		open:     make(map[string]strategy.Side),
	}
}

func (b *Breakout) Name() string      { return "breakout" }
func (b *Breakout) Markets() []string { return b.markets }

func (b *Breakout) OnBar(bar strategy.Bar, history []strategy.Bar) []strategy.Signal {
	var signals []strategy.Signal

	minHistory := b.donBreak
	if b.atrLen > minHistory {
		minHistory = b.atrLen
	}
	if len(history) < minHistory+1 {
		return signals
	}

	// Channel windows end at the previous closed bar.
	prev := history[:len(history)-1]

	prevUpper, prevLower, err := indicators.Donchian(prev, b.donBreak)
	if err != nil {
		return signals
	}
	atr, err := indicators.ATR(history, b.atrLen)
	if err != nil {
		return signals
	}

	switch {
	case bar.Close > prevUpper:
		entry := bar.Close
		stop := prevLower
		risk := entry - stop
		sig := strategy.Signal{
			Market:     bar.Market,
			Side:       strategy.Long,
			Entry:      entry,
			Stop:       stop,
			Targets:    []float64{entry + 2.0*risk},
			Confidence: 0.5,
			Meta: map[string]any{
				"reason":    "donchian_breakout_long",
				"don_upper": prevUpper,
				"don_lower": prevLower,
				"atr":       atr,
			},
		}
		if strategy.ValidateSignal(sig) == nil {
			signals = append(signals, sig)
		}

	case bar.Close < prevLower:
		entry := bar.Close
		stop := prevUpper
		risk := stop - entry
		sig := strategy.Signal{
			Market:     bar.Market,
			Side:       strategy.Short,
			Entry:      entry,
			Stop:       stop,
			Targets:    []float64{entry - 2.0*risk},
			Confidence: 0.5,
			Meta: map[string]any{
				"reason":    "donchian_breakout_short",
				"don_upper": prevUpper,
				"don_lower": prevLower,
				"atr":       atr,
			},
		}
		if strategy.ValidateSignal(sig) == nil {
			signals = append(signals, sig)
		}
	}

	side, tracked := b.open[bar.Market]
	if !tracked {
		return signals
	}

	exitUpper, exitLower, err := indicators.Donchian(prev, b.donExit)
	if err != nil {
		return signals
	}

	switch side {
	case strategy.Long:
		if bar.Close < exitLower {
			signals = append(signals, exitSignal(bar, "donchian_exit_long", exitLower))
			delete(b.open, bar.Market)
		}
	case strategy.Short:
		if bar.Close > exitUpper {
			signals = append(signals, exitSignal(bar, "donchian_exit_short", exitUpper))
			delete(b.open, bar.Market)
		}
	}

	return signals
}

func exitSignal(bar strategy.Bar, reason string, channel float64) strategy.Signal {
	return strategy.Signal{
		Market:     bar.Market,
		Side:       strategy.Exit,
		Entry:      bar.Close,
		Confidence: 1.0,
		Meta: map[string]any{
			"reason":       reason,
			"exit_channel": channel,
		},
	}
}

func (b *Breakout) RegisterPosition(market string, side strategy.Side) {
	b.open[market] = side
}

func (b *Breakout) UnregisterPosition(market string) {
	delete(b.open, market)
}
