// Package artifact renders forecast output into the on-disk JSON contract
// consumed by the presentation layer.
package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/visa-movement/bulletin-cli/internal/category"
	"github.com/visa-movement/bulletin-cli/internal/forecast"
)

// Entry is one forecast month: the predicted cutoff date and its
// proleptic Gregorian ordinal for client-side interpolation.
type Entry struct {
	CutoffDate string `json:"cutoff_date"`
	Ordinal    int    `json:"ordinal"`
}

// Forecast is the artifact shape: canonical category to future
// "YYYY-MM" month to entry.
type Forecast map[category.AppCategory]map[string]Entry

// Build converts engine output for a set of categories into the artifact
// shape.
func Build(results map[category.AppCategory][]forecast.Point) Forecast {
	out := make(Forecast, len(results))
	for cat, points := range results {
		if len(points) == 0 {
			continue
		}
		byMonth := make(map[string]Entry, len(points))
		for _, p := range points {
			byMonth[p.Month.Time().Format("2006-01")] = Entry{
				CutoffDate: p.Cutoff.Format("2006-01-02"),
				Ordinal:    p.Ordinal,
			}
		}
		out[cat] = byMonth
	}
	return out
}

// Write persists the artifact atomically: the payload lands at a
// temporary path in the same directory and is renamed over the target, so
// readers never observe a half-written forecast. The prior artifact is
// fully replaced, never merged.
func Write(path string, f Forecast) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return eris.Wrap(err, "artifact: encode forecast")
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return eris.Wrapf(err, "artifact: create temp file in %s", dir)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return eris.Wrapf(err, "artifact: write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return eris.Wrapf(err, "artifact: close %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return eris.Wrapf(err, "artifact: rename into %s", path)
	}
	return nil
}
