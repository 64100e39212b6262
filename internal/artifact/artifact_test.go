package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visa-movement/bulletin-cli/internal/bulletin"
	"github.com/visa-movement/bulletin-cli/internal/category"
	"github.com/visa-movement/bulletin-cli/internal/forecast"
)

func samplePoints() []forecast.Point {
	cutoff := time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC)
	return []forecast.Point{
		{
			Month:   bulletin.Month{Year: 2025, Month: time.June},
			Cutoff:  cutoff,
			Ordinal: forecast.Ordinal(cutoff),
		},
		{
			Month:   bulletin.Month{Year: 2025, Month: time.July},
			Cutoff:  cutoff.AddDate(0, 0, 21),
			Ordinal: forecast.Ordinal(cutoff.AddDate(0, 0, 21)),
		},
	}
}

func TestBuildAndWrite(t *testing.T) {
	f := Build(map[category.AppCategory][]forecast.Point{
		category.EB3: samplePoints(),
	})

	path := filepath.Join(t.TempDir(), "employment_forecast.json")
	require.NoError(t, Write(path, f))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]map[string]Entry
	require.NoError(t, json.Unmarshal(data, &decoded))

	eb3 := decoded["EB3"]
	require.NotNil(t, eb3)
	require.Len(t, eb3, 2)
	assert.Equal(t, "2023-03-15", eb3["2025-06"].CutoffDate)
	assert.Equal(t, "2023-04-05", eb3["2025-07"].CutoffDate)
	assert.Equal(t, eb3["2025-06"].Ordinal+21, eb3["2025-07"].Ordinal)
}

func TestBuild_DropsEmptyCategories(t *testing.T) {
	f := Build(map[category.AppCategory][]forecast.Point{
		category.EB3: samplePoints(),
		category.EB4: nil,
	})
	assert.Contains(t, f, category.EB3)
	assert.NotContains(t, f, category.EB4)
}

func TestWrite_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "family_forecast.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"stale":true}`), 0o644))

	require.NoError(t, Write(path, Build(map[category.AppCategory][]forecast.Point{
		category.F1: samplePoints(),
	})))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
	assert.Contains(t, string(data), "F1")

	// No temp leftovers.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
