// Package corpus assembles the historical per-category cutoff series from
// a directory tree of persisted bulletin records.
package corpus

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/visa-movement/bulletin-cli/internal/bulletin"
	"github.com/visa-movement/bulletin-cli/internal/category"
)

// worldwideKey is the normalized label of the catch-all chargeability
// column: the worldwide baseline, excluding countries with per-country
// retrogression. Matched by prefix because some revisions append footnote
// markers to the label.
const worldwideKey = "allchargeabilityareasexceptthoselisted"

// Point is one historical observation: the bulletin month and the exact
// filing-date cutoff it published.
type Point struct {
	Month  bulletin.Month
	Cutoff time.Time
}

// Series is a time-ordered, month-deduplicated sequence of points for one
// category.
type Series []Point

// Observation is the immutable product of reading one record file: a
// single (category, month, cutoff) triple.
type Observation struct {
	Category category.AppCategory
	Month    bulletin.Month
	Cutoff   time.Time
}

// Builder folds record files into per-category series.
type Builder struct {
	mapper *category.Mapper
	groups map[category.Group]bool
}

// NewBuilder creates a corpus builder restricted to the given table
// groups. An empty group list means both.
func NewBuilder(mapper *category.Mapper, groups ...category.Group) *Builder {
	set := make(map[category.Group]bool, 2)
	if len(groups) == 0 {
		groups = []category.Group{category.GroupEmployment, category.GroupFamily}
	}
	for _, g := range groups {
		set[g] = true
	}
	return &Builder{mapper: mapper, groups: set}
}

// Build walks recordsDir (fiscal-year subdirectories of month files),
// extracts zero or more observations per file in parallel, and merges them
// deterministically: files fold in lexical walk order, and for duplicate
// (category, month) pairs the later-processed observation wins.
func (b *Builder) Build(recordsDir string) (map[category.AppCategory]Series, error) {
	files, err := recordFiles(recordsDir)
	if err != nil {
		return nil, err
	}

	perFile := make([][]Observation, len(files))
	g := errgroup.Group{}
	g.SetLimit(8)
	for i, path := range files {
		g.Go(func() error {
			obs, err := b.observeFile(path)
			if err != nil {
				return err
			}
			perFile[i] = obs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Deterministic fold: last write wins per (category, month).
	type key struct {
		cat   category.AppCategory
		month bulletin.Month
	}
	latest := make(map[key]time.Time)
	for _, obs := range perFile {
		for _, o := range obs {
			latest[key{o.Category, o.Month}] = o.Cutoff
		}
	}

	series := make(map[category.AppCategory]Series)
	for k, cutoff := range latest {
		series[k.cat] = append(series[k.cat], Point{Month: k.month, Cutoff: cutoff})
	}
	for cat := range series {
		s := series[cat]
		sort.Slice(s, func(i, j int) bool { return s[i].Month.Before(s[j].Month) })
		series[cat] = s
	}

	zap.L().Info("corpus: built historical series",
		zap.Int("files", len(files)),
		zap.Int("categories", len(series)),
	)
	return series, nil
}

// observeFile reads one record and yields its observations. Unmapped
// category labels and non-date cutoffs are skipped at the observation
// level; a missing worldwide column skips the row.
func (b *Builder) observeFile(path string) ([]Observation, error) {
	month, err := bulletin.ParseMonthFile(filepath.Base(path))
	if err != nil {
		return nil, eris.Wrapf(err, "corpus: record %s", path)
	}
	rec, err := bulletin.ReadRecord(path)
	if err != nil {
		return nil, err
	}

	var out []Observation
	sections := []struct {
		group category.Group
		tbl   bulletin.Table
	}{
		{category.GroupFamily, rec.DatesForFiling.Family},
		{category.GroupEmployment, rec.DatesForFiling.Employment},
	}
	for _, sec := range sections {
		if !b.groups[sec.group] {
			continue
		}
		// Sorted label order keeps last-write-wins deterministic when two
		// raw labels map to the same category.
		labels := make([]string, 0, len(sec.tbl))
		for rawLabel := range sec.tbl {
			labels = append(labels, rawLabel)
		}
		sort.Strings(labels)
		for _, rawLabel := range labels {
			areas := sec.tbl[rawLabel]
			cat, ok := b.mapper.Canonical(rawLabel)
			if !ok {
				zap.L().Debug("corpus: skipping unmapped label",
					zap.String("label", rawLabel), zap.String("month", month.String()))
				continue
			}
			token, ok := worldwideCutoff(areas)
			if !ok {
				continue
			}
			cutoff, ok := bulletin.ParseCutoffDate(bulletin.NormalizeCutoff(token))
			if !ok {
				// Sentinels and unknowns carry no numeric trend signal.
				continue
			}
			out = append(out, Observation{Category: cat, Month: month, Cutoff: cutoff})
		}
	}
	return out, nil
}

// worldwideCutoff finds the catch-all chargeability column in a row.
func worldwideCutoff(areas map[string]string) (string, bool) {
	for label, token := range areas {
		if strings.HasPrefix(category.Normalize(label), worldwideKey) {
			return token, true
		}
	}
	return "", false
}

// recordFiles lists record JSON files under recordsDir in lexical order,
// one fiscal-year directory at a time.
func recordFiles(recordsDir string) ([]string, error) {
	entries, err := os.ReadDir(recordsDir)
	if err != nil {
		return nil, eris.Wrapf(err, "corpus: read records dir %s", recordsDir)
	}
	var files []string
	for _, fy := range entries {
		if !fy.IsDir() {
			continue
		}
		sub, err := os.ReadDir(filepath.Join(recordsDir, fy.Name()))
		if err != nil {
			return nil, eris.Wrapf(err, "corpus: read fiscal year dir %s", fy.Name())
		}
		for _, f := range sub {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
				continue
			}
			files = append(files, filepath.Join(recordsDir, fy.Name(), f.Name()))
		}
	}
	return files, nil
}
