package bulletin

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

// Table maps a raw preference-category label, verbatim from the source, to
// per-chargeability-area cutoff tokens.
type Table map[string]map[string]string

// Tables groups the family and employment tables of one bulletin section.
type Tables struct {
	Family     Table `json:"family"`
	Employment Table `json:"employment"`
}

// Record is the normalized output of one bulletin document. It is created
// once per document, persisted as a file, and never mutated afterward.
type Record struct {
	FinalActionDates Tables `json:"final_action_dates"`
	DatesForFiling   Tables `json:"dates_for_filing"`
}

// NormalizeCutoffs applies cutoff token normalization to every value in the
// record, converting compact source dates to the canonical textual format.
func (r *Record) NormalizeCutoffs() {
	for _, tbl := range []Table{
		r.FinalActionDates.Family, r.FinalActionDates.Employment,
		r.DatesForFiling.Family, r.DatesForFiling.Employment,
	} {
		for _, areas := range tbl {
			for area, token := range areas {
				areas[area] = NormalizeCutoff(token)
			}
		}
	}
}

// ReadRecord loads a persisted record from disk.
func ReadRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "bulletin: read record %s", path)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, eris.Wrapf(err, "bulletin: decode record %s", path)
	}
	return &rec, nil
}

// WriteRecord persists a record as indented JSON.
func WriteRecord(path string, rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return eris.Wrap(err, "bulletin: encode record")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "bulletin: write record %s", path)
	}
	return nil
}
