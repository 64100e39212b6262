package bulletin

import (
	"strings"
	"time"
)

// Sentinel cutoff tokens published in place of a date.
const (
	CutoffCurrent     = "C" // all qualified applicants may proceed
	CutoffUnavailable = "U" // no visas available this period
)

// cutoffDateLayout is the canonical on-disk textual format for exact
// cutoff dates, chosen to be unambiguous relative to the source's compact
// day+month-abbreviation+2-digit-year format.
const cutoffDateLayout = "01-02-2006"

// sourceDateLayout is the compact format used in the published tables,
// e.g. "01OCT24". The 2-digit year is assumed to lie in 20xx; the domain's
// practical range (2016-2035) keeps that assumption safe.
const sourceDateLayout = "02Jan06"

// NormalizeCutoff converts a raw cutoff token into its canonical form.
// Sentinels "C", "U", and the empty string pass through unchanged. Any
// other token is parsed as a compact source date and re-rendered in the
// canonical format; on parse failure the token is returned unchanged, and
// numeric consumers must treat it as an unknown and exclude it.
func NormalizeCutoff(token string) string {
	switch token {
	case CutoffCurrent, CutoffUnavailable, "":
		return token
	}
	t, ok := parseSourceDate(token)
	if !ok {
		return token
	}
	return t.Format(cutoffDateLayout)
}

// parseSourceDate parses the compact "01OCT24" form. The month
// abbreviation is matched case-insensitively.
func parseSourceDate(token string) (time.Time, bool) {
	if len(token) != 7 {
		return time.Time{}, false
	}
	recased := token[:2] + strings.ToUpper(token[2:3]) + strings.ToLower(token[3:5]) + token[5:]
	t, err := time.Parse(sourceDateLayout, recased)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseCutoffDate parses a canonical-format cutoff token into an exact
// date. The second return is false for sentinels, unknown tokens, and
// anything else that carries no numeric trend signal.
func ParseCutoffDate(token string) (time.Time, bool) {
	t, err := time.Parse(cutoffDateLayout, token)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
