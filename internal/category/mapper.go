package category

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Mapper resolves raw preference labels to canonical categories via a
// static lookup table keyed by normalized label. The table is
// configuration, not inference: unmapped labels resolve to nothing and the
// caller must skip the observation rather than guess.
type Mapper struct {
	table map[string]AppCategory
}

// defaultLabels covers every raw label variant observed in bulletins from
// FY2016 through FY2025, including non-breaking-space and phrasing drift.
var defaultLabels = map[string]AppCategory{
	// Employment preference.
	"1st":           EB1,
	"2nd":           EB2,
	"3rd":           EB3,
	"Other Workers": OtherWorkers,
	"4th":           EB4,
	"Certain Religious Workers":  EB4,
	"Certain Religious Workers": EB4,
	"5th": EB5,
	"5th Unreserved (including C5, T5, I5, R5)":                         EB5,
	"5th Unreserved (C5, T5, and all others)":                           EB5,
	"5th Unreserved (I5 and R5)":                                   EB5,
	"5th Non-Regional Center (C5 and T5)":                               EB5,
	"5th Regional Center (I5 and R5)":                                   EB5,
	"5th Targeted Employment Areas/ Regional Centers and Pilot Programs": EB5,
	// Family preference.
	"F1":          F1,
	"First":       F1,
	"F2A":         F2A,
	"Second A":    F2A,
	"F2B":         F2B,
	"Second B":    F2B,
	"F3":          F3,
	"Third (F3)":  F3,
	"F4":          F4,
	"Fourth (F4)": F4,
}

// NewMapper builds a mapper from the compiled-in default label table.
func NewMapper() *Mapper {
	m := &Mapper{table: make(map[string]AppCategory, len(defaultLabels))}
	for raw, cat := range defaultLabels {
		m.table[Normalize(raw)] = cat
	}
	return m
}

// mappingFile is the YAML shape of an external label table: raw label to
// canonical category name.
type mappingFile struct {
	Categories map[string]string `yaml:"categories"`
}

// LoadMapper reads an external label table and merges it over the
// defaults, so new document revisions can extend coverage without code
// changes. Entries naming a category outside the closed vocabulary are an
// error.
func LoadMapper(path string) (*Mapper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "category: read mapping file %s", path)
	}
	var file mappingFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrapf(err, "category: parse mapping file %s", path)
	}

	m := NewMapper()
	for raw, name := range file.Categories {
		cat := AppCategory(name)
		if !cat.Valid() {
			return nil, eris.Errorf("category: mapping file %s: %q maps to unknown category %q", path, raw, name)
		}
		m.table[Normalize(raw)] = cat
	}
	return m, nil
}

// Canonical resolves a raw label. The second return is false for labels
// absent from the table.
func (m *Mapper) Canonical(raw string) (AppCategory, bool) {
	key := Normalize(raw)
	if key == "" {
		return "", false
	}
	cat, ok := m.table[key]
	if !ok {
		zap.L().Debug("category: unmapped raw label", zap.String("raw", raw), zap.String("normalized", key))
		return "", false
	}
	return cat, true
}
