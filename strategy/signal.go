package strategy

import (
	"fmt"
	"math"
)

// Side is the direction of a trade signal.
type Side string

const (
	Long  Side = "long"
	Short Side = "short"
	Exit  Side = "exit"
)

// Signal is a strategy's instruction to the engine: what to do, where to
// enter, where the stop sits, and which targets to aim for.
//
// Signals are consumed immediately by the engine and never persisted. Meta
// is free-form; strategies put indicator values and entry reasons there.
type Signal struct {
	Market     string
	Side       Side
	Entry      float64
	Stop       float64
	Targets    []float64
	Confidence float64 // 0.0 - 1.0
	Meta       map[string]any
}

// RiskDistance is the absolute price distance from entry to stop (one R in
// price terms).
func (s Signal) RiskDistance() float64 {
	return math.Abs(s.Entry - s.Stop)
}

// RewardDistance is the distance from entry to the first target, 0 if the
// signal carries no targets.
func (s Signal) RewardDistance() float64 {
	if len(s.Targets) == 0 {
		return 0
	}
	return math.Abs(s.Targets[0] - s.Entry)
}

// RiskReward returns reward/risk for the first target, 0 when the stop
// distance is zero.
func (s Signal) RiskReward() float64 {
	risk := s.RiskDistance()
	if risk == 0 {
		return 0
	}
	return s.RewardDistance() / risk
}

// ValidateSignal checks the side/price-ordering invariants:
//
//	long:  stop < entry < every target
//	short: every target < entry < stop
//
// Exit signals are always valid; they carry only the exit price. Malformed
// signals are dropped by the engine, so a strategy that emits them loses the
// trade but never aborts the run.
func ValidateSignal(s Signal) error {
	if s.Side == Exit {
		return nil
	}

	if s.Entry == s.Stop {
		return fmt.Errorf("signal %s %s: entry equals stop (%.8f)", s.Market, s.Side, s.Entry)
	}
	if len(s.Targets) == 0 {
		return fmt.Errorf("signal %s %s: no targets", s.Market, s.Side)
	}

	switch s.Side {
	case Long:
		if s.Stop >= s.Entry {
			return fmt.Errorf("signal %s long: stop %.8f not below entry %.8f", s.Market, s.Stop, s.Entry)
		}
		for _, tgt := range s.Targets {
			if tgt <= s.Entry {
				return fmt.Errorf("signal %s long: target %.8f not above entry %.8f", s.Market, tgt, s.Entry)
			}
		}
	case Short:
		if s.Stop <= s.Entry {
			return fmt.Errorf("signal %s short: stop %.8f not above entry %.8f", s.Market, s.Stop, s.Entry)
		}
		for _, tgt := range s.Targets {
			if tgt >= s.Entry {
				return fmt.Errorf("signal %s short: target %.8f not below entry %.8f", s.Market, tgt, s.Entry)
			}
		}
	default:
		return fmt.Errorf("signal %s: unknown side %q", s.Market, s.Side)
	}

	return nil
}
