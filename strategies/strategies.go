// strategies/strategies.go
package strategies

import (
	"fmt"

	"github.com/rustyeddy/edgelab/strategy"
)

// Noop never signals. Useful as a baseline and in tests.
type Noop struct {
	strategy.NoopTracker
	markets []string
}

func NewNoop(markets []string) *Noop { return &Noop{markets: markets} }

func (n *Noop) Name() string      { return "noop" }
func (n *Noop) Markets() []string { return n.markets }

func (n *Noop) OnBar(bar strategy.Bar, history []strategy.Bar) []strategy.Signal {
	return nil
}

// ByName builds a registered strategy from its name and parameter map.
func ByName(name string, params Params, markets []string) (strategy.Strategy, error) {
	switch name {
	case "breakout":
		return NewBreakout(params, markets), nil
	case "noop":
		return NewNoop(markets), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}
