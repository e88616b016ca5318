// walkforward/splitter.go
package walkforward

import (
	"fmt"

	"github.com/rustyeddy/edgelab/strategy"
)

// Split is one train/test partition. Test follows train contiguously with
// no overlap and no gap.
type Split struct {
	ID    int
	Train []strategy.Bar
	Test  []strategy.Bar
}

// Splitter partitions an ordered bar series into consecutive train/test
// windows. Rolling mode slides a fixed-size train window forward by
// StepDays per split; anchored mode pins the train start at the first bar
// and grows the window instead.
type Splitter struct {
	TrainDays int
	TestDays  int
	StepDays  int
	Anchored  bool
}

func NewSplitter(trainDays, testDays, stepDays int, anchored bool) Splitter {
	if stepDays <= 0 {
		stepDays = testDays
	}
	return Splitter{
		TrainDays: trainDays,
		TestDays:  testDays,
		StepDays:  stepDays,
		Anchored:  anchored,
	}
}

// Split windows bars into train/test pairs. It fails hard when the series
// cannot fit even one split; it never emits partial windows.
func (s Splitter) Split(bars []strategy.Bar) ([]Split, error) {
	if s.TrainDays <= 0 || s.TestDays <= 0 {
		return nil, fmt.Errorf("walkforward: train and test window must be positive, got train=%d test=%d", s.TrainDays, s.TestDays)
	}

	step := s.StepDays
	if step <= 0 {
		step = s.TestDays
	}

	minRequired := s.TrainDays + s.TestDays
	if len(bars) < minRequired {
		return nil, fmt.Errorf("walkforward: insufficient data: need %d bars, have %d", minRequired, len(bars))
	}

	var splits []Split

	trainStart := 0
	trainEnd := s.TrainDays
	testEnd := trainEnd + s.TestDays

	for testEnd <= len(bars) {
		splits = append(splits, Split{
			ID:    len(splits),
			Train: bars[trainStart:trainEnd],
			Test:  bars[trainEnd:testEnd],
		})

		if !s.Anchored {
			trainStart += step
		}
		trainEnd += step
		testEnd += step
	}

	return splits, nil
}
