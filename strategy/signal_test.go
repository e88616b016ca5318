package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateSignal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sig  Signal
		ok   bool
	}{
		{
			"valid long",
			Signal{Market: "BTC-PERP", Side: Long, Entry: 50000, Stop: 49000, Targets: []float64{52000}},
			true,
		},
		{
			"valid long multiple targets",
			Signal{Market: "BTC-PERP", Side: Long, Entry: 50000, Stop: 49000, Targets: []float64{52000, 54000, 56000}},
			true,
		},
		{
			"valid short",
			Signal{Market: "ETH-PERP", Side: Short, Entry: 3000, Stop: 3100, Targets: []float64{2800}},
			true,
		},
		{
			"exit always valid",
			Signal{Market: "BTC-PERP", Side: Exit, Entry: 50000},
			true,
		},
		{
			"entry equals stop",
			Signal{Market: "BTC-PERP", Side: Long, Entry: 50000, Stop: 50000, Targets: []float64{52000}},
			false,
		},
		{
			"long stop above entry",
			Signal{Market: "BTC-PERP", Side: Long, Entry: 50000, Stop: 51000, Targets: []float64{52000}},
			false,
		},
		{
			"long target below entry",
			Signal{Market: "BTC-PERP", Side: Long, Entry: 50000, Stop: 49000, Targets: []float64{49500}},
			false,
		},
		{
			"long target equals entry",
			Signal{Market: "BTC-PERP", Side: Long, Entry: 50000, Stop: 49000, Targets: []float64{50000}},
			false,
		},
		{
			"short stop below entry",
			Signal{Market: "ETH-PERP", Side: Short, Entry: 3000, Stop: 2900, Targets: []float64{2800}},
			false,
		},
		{
			"short target above entry",
			Signal{Market: "ETH-PERP", Side: Short, Entry: 3000, Stop: 3100, Targets: []float64{3200}},
			false,
		},
		{
			"no targets",
			Signal{Market: "BTC-PERP", Side: Long, Entry: 50000, Stop: 49000},
			false,
		},
		{
			"unknown side",
			Signal{Market: "BTC-PERP", Side: Side("hold"), Entry: 50000, Stop: 49000, Targets: []float64{52000}},
			false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateSignal(tt.sig)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSignalRiskReward(t *testing.T) {
	t.Parallel()

	s := Signal{Market: "BTC-PERP", Side: Long, Entry: 50000, Stop: 49000, Targets: []float64{52000}}
	assert.InDelta(t, 1000.0, s.RiskDistance(), 1e-9)
	assert.InDelta(t, 2000.0, s.RewardDistance(), 1e-9)
	assert.InDelta(t, 2.0, s.RiskReward(), 1e-9)

	degenerate := Signal{Side: Long, Entry: 100, Stop: 100, Targets: []float64{110}}
	assert.Zero(t, degenerate.RiskReward())

	noTargets := Signal{Side: Exit, Entry: 100}
	assert.Zero(t, noTargets.RewardDistance())
}

func TestSizeFromSignal(t *testing.T) {
	t.Parallel()

	s := Signal{Market: "BTC-PERP", Side: Long, Entry: 50000, Stop: 49000, Targets: []float64{52000}}

	size, rUSD := SizeFromSignal(s, 10000, 1.0, 1.0)
	assert.InDelta(t, 100.0, rUSD, 1e-9)
	assert.InDelta(t, 0.1, size, 1e-9)

	// Zero stop distance never sizes a position.
	flat := Signal{Side: Long, Entry: 50000, Stop: 50000}
	size, rUSD = SizeFromSignal(flat, 10000, 1.0, 1.0)
	assert.Zero(t, size)
	assert.Zero(t, rUSD)
}

func TestBarValidate(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	good := NewBar(now, "BTC-PERP", 100, 105, 99, 102, 1500)
	assert.NoError(t, good.Validate())
	assert.NotNil(t, good.Indicators)

	badHigh := NewBar(now, "BTC-PERP", 100, 101, 99, 102, 1500)
	assert.Error(t, badHigh.Validate())

	badLow := NewBar(now, "BTC-PERP", 100, 105, 101, 102, 1500)
	assert.Error(t, badLow.Validate())

	badVolume := NewBar(now, "BTC-PERP", 100, 105, 99, 102, -1)
	assert.Error(t, badVolume.Validate())
}

func TestNewBarIndicatorMapsNotAliased(t *testing.T) {
	t.Parallel()

	now := time.Now()
	a := NewBar(now, "BTC-PERP", 1, 2, 0.5, 1.5, 10)
	b := NewBar(now, "BTC-PERP", 1, 2, 0.5, 1.5, 10)

	a.Indicators["atr"] = 42
	_, ok := b.Indicators["atr"]
	assert.False(t, ok)
}
