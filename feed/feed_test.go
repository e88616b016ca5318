package feed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `timestamp,open,high,low,close,volume
2024-01-01T00:00:00Z,100,105,95,102,1000
2024-01-02T00:00:00Z,102,108,101,107,1200
2024-01-03T00:00:00Z,107,110,104,105,900
`

func TestReadWithHeader(t *testing.T) {
	t.Parallel()

	bars, err := Read(strings.NewReader(sampleCSV), "BTC-PERP")
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.Equal(t, "BTC-PERP", bars[0].Market)
	assert.InDelta(t, 102, bars[0].Close, 1e-9)
	assert.InDelta(t, 110, bars[2].High, 1e-9)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), bars[1].Time)
}

func TestReadUnixTimestamps(t *testing.T) {
	t.Parallel()

	doc := "1704067200,100,105,95,102,1000\n1704153600,102,108,101,107,1200\n"
	bars, err := Read(strings.NewReader(doc), "ETH-PERP")
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), bars[0].Time)
}

func TestReadRejectsUnorderedRows(t *testing.T) {
	t.Parallel()

	doc := "2024-01-02T00:00:00Z,100,105,95,102,1000\n2024-01-01T00:00:00Z,102,108,101,107,1200\n"
	_, err := Read(strings.NewReader(doc), "BTC-PERP")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ascending")
}

func TestReadRejectsBadOHLC(t *testing.T) {
	t.Parallel()

	// High below the close.
	doc := "2024-01-01T00:00:00Z,100,101,95,104,1000\n"
	_, err := Read(strings.NewReader(doc), "BTC-PERP")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestReadRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := Read(strings.NewReader("2024-01-01T00:00:00Z,abc,105,95,102,1000\n"), "X")
	assert.Error(t, err)

	_, err = Read(strings.NewReader("2024-01-01T00:00:00Z,100,105\n"), "X")
	assert.Error(t, err)

	_, err = Read(strings.NewReader("timestamp,open,high,low,close,volume\n"), "X")
	assert.Error(t, err) // header only, no bars
}

func TestLoadCSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

	bars, err := LoadCSV(path, "BTC-PERP")
	require.NoError(t, err)
	assert.Len(t, bars, 3)

	_, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), "BTC-PERP")
	assert.Error(t, err)
}

func TestCheckInterval(t *testing.T) {
	t.Parallel()

	bars, err := Read(strings.NewReader(sampleCSV), "BTC-PERP")
	require.NoError(t, err)
	assert.NoError(t, CheckInterval(bars, 24*time.Hour))
	assert.Error(t, CheckInterval(bars, time.Hour))
}
