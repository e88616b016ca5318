// feed/feed.go

// Package feed loads historical bars from CSV files. The loader enforces
// what the simulator assumes about its input: ascending timestamps, OHLC
// consistency and non-negative volume. Rows that violate either fail the
// load with the offending line number.
package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/edgelab/strategy"
)

// LoadCSV reads bars for a market from a CSV file with columns
// timestamp,open,high,low,close,volume. A header row is detected and
// skipped. Timestamps are RFC3339 or unix seconds.
func LoadCSV(path, market string) ([]strategy.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}
	defer f.Close()

	bars, err := Read(f, market)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", path, err)
	}
	return bars, nil
}

// Read parses bars from r. See LoadCSV for the expected format.
func Read(r io.Reader, market string) ([]strategy.Bar, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	var bars []strategy.Bar
	line := 0

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		if len(rec) < 6 {
			return nil, fmt.Errorf("line %d: want 6 columns, got %d", line, len(rec))
		}

		ts, err := parseTime(rec[0])
		if err != nil {
			if line == 1 {
				// Header row.
				continue
			}
			return nil, fmt.Errorf("line %d: bad timestamp %q", line, rec[0])
		}

		var vals [5]float64
		for i := 0; i < 5; i++ {
			vals[i], err = strconv.ParseFloat(rec[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad number %q", line, rec[i+1])
			}
		}

		b := strategy.NewBar(ts, market, vals[0], vals[1], vals[2], vals[3], vals[4])
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if len(bars) > 0 && !bars[len(bars)-1].Time.Before(b.Time) {
			return nil, fmt.Errorf("line %d: timestamps not strictly ascending", line)
		}

		bars = append(bars, b)
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars")
	}
	return bars, nil
}

// CheckInterval verifies bars are evenly spaced by want. The simulator
// tolerates gaps, but research windows sized in days assume daily bars.
func CheckInterval(bars []strategy.Bar, want time.Duration) error {
	for i := 1; i < len(bars); i++ {
		if got := bars[i].Time.Sub(bars[i-1].Time); got != want {
			return fmt.Errorf("feed: gap before %s: want %s, got %s",
				bars[i].Time.Format(time.RFC3339), want, got)
		}
	}
	return nil
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", s)
}
