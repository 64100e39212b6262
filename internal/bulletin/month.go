// Package bulletin defines the visa bulletin data model: monthly issue
// identity, the per-bulletin record layout, and cutoff token handling.
package bulletin

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Month identifies one bulletin issue by calendar month and year.
type Month struct {
	Year  int
	Month time.Month
}

var monthsByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// ParseMonth parses a "<month-name>-<year>" identity, e.g. "october-2015".
// Month names are matched case-insensitively.
func ParseMonth(s string) (Month, error) {
	name, yearStr, ok := strings.Cut(s, "-")
	if !ok {
		return Month{}, eris.Errorf("bulletin: month identity %q not in month-year form", s)
	}
	mon, ok := monthsByName[strings.ToLower(name)]
	if !ok {
		return Month{}, eris.Errorf("bulletin: unknown month name %q", name)
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil || year <= 0 {
		return Month{}, eris.Errorf("bulletin: bad year %q in month identity %q", yearStr, s)
	}
	return Month{Year: year, Month: mon}, nil
}

// ParseMonthFile parses a record filename such as "october-2015.json".
func ParseMonthFile(name string) (Month, error) {
	return ParseMonth(strings.TrimSuffix(name, ".json"))
}

// String renders the canonical lower-case identity, e.g. "october-2015".
func (m Month) String() string {
	return fmt.Sprintf("%s-%d", strings.ToLower(m.Month.String()), m.Year)
}

// FileName returns the record filename for this issue.
func (m Month) FileName() string {
	return m.String() + ".json"
}

// Time returns the first day of the bulletin month in UTC.
func (m Month) Time() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// FiscalYear returns the federal fiscal year this issue belongs to.
// The fiscal year begins in October of the prior calendar year.
func (m Month) FiscalYear() int {
	if m.Month >= time.October {
		return m.Year + 1
	}
	return m.Year
}

// Before reports whether m precedes other chronologically.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	t := m.Time().AddDate(0, 1, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

// MonthOf truncates a time to its bulletin month.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}
