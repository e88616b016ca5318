package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/edgelab/feed"
	"github.com/rustyeddy/edgelab/optimize"
	"github.com/rustyeddy/edgelab/strategies"
	"github.com/rustyeddy/edgelab/strategy"
)

// loadBars reads the bar CSV for a market and rejects gapped series when a
// bar interval is given. Research windows are sized in bars, so a gap would
// silently shrink every train/test window.
func loadBars(path, market string, interval time.Duration) ([]strategy.Bar, error) {
	if path == "" {
		return nil, fmt.Errorf("no data file given (use --data)")
	}

	bars, err := feed.LoadCSV(path, market)
	if err != nil {
		return nil, err
	}
	if interval > 0 {
		if err := feed.CheckInterval(bars, interval); err != nil {
			return nil, err
		}
	}
	return bars, nil
}

// strategyFactory resolves name once up front and returns a constructor for
// the walk-forward and optimizer factories, which cannot surface errors.
// The constructor re-resolves on every call so each window gets a fresh
// instance; a failure there means the registry changed under us.
func strategyFactory(name string, markets []string) (func(strategies.Params) strategy.Strategy, error) {
	if _, err := strategies.ByName(name, nil, markets); err != nil {
		return nil, err
	}
	return func(params strategies.Params) strategy.Strategy {
		s, err := strategies.ByName(name, params, markets)
		if err != nil {
			panic(fmt.Sprintf("strategy %q vanished from the registry: %v", name, err))
		}
		return s
	}, nil
}

// parseParams turns repeated key=value flags into a parameter map.
func parseParams(kvs []string) (strategies.Params, error) {
	params := strategies.Params{}
	for _, kv := range kvs {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("bad param %q, want name=value", kv)
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("bad param value %q: %w", kv, err)
		}
		params[key] = f
	}
	return params, nil
}

// parseGrid turns repeated name=v1,v2,... flags into an optimizer grid.
func parseGrid(entries []string) (optimize.Grid, error) {
	grid := optimize.Grid{}
	for _, entry := range entries {
		key, list, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("bad grid entry %q, want name=v1,v2,...", entry)
		}
		var vals []float64
		for _, s := range strings.Split(list, ",") {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("bad grid value %q in %q: %w", s, entry, err)
			}
			vals = append(vals, f)
		}
		if len(vals) == 0 {
			return nil, fmt.Errorf("grid entry %q has no values", entry)
		}
		grid[key] = vals
	}
	return grid, nil
}
