package bulletin

import (
	"fmt"
	"time"
)

// DefaultBaseURL is the State Department visa bulletin index.
const DefaultBaseURL = "https://travel.state.gov/content/travel/en/legal/visa-law0/visa-bulletin"

// Target pairs one bulletin issue with the URL it is published at.
type Target struct {
	Month Month
	URL   string
}

// URL returns the published location of the bulletin for the given issue.
// Bulletins are grouped by fiscal year in the URL path.
func URL(baseURL string, m Month) string {
	return fmt.Sprintf("%s/%d/visa-bulletin-for-%s.html", baseURL, m.FiscalYear(), m.String())
}

// Targets enumerates every bulletin issue of the fiscal years startFY
// through endFY inclusive, in publication order. Each fiscal year runs
// October of the prior calendar year through September.
func Targets(baseURL string, startFY, endFY int) []Target {
	var targets []Target
	for fy := startFY; fy <= endFY; fy++ {
		m := Month{Year: fy - 1, Month: time.October}
		for range 12 {
			targets = append(targets, Target{Month: m, URL: URL(baseURL, m)})
			m = m.Next()
		}
	}
	return targets
}

// CurrentTarget returns the bulletin issue for the calendar month of now.
func CurrentTarget(baseURL string, now time.Time) Target {
	m := MonthOf(now)
	return Target{Month: m, URL: URL(baseURL, m)}
}
