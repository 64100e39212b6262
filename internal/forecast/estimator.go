// Package forecast fits statistical models to historical cutoff series and
// projects future priority-date movement per category.
package forecast

import (
	"fmt"

	"github.com/visa-movement/bulletin-cli/internal/bulletin"
)

// Model is a fitted time-series model over monthly observations.
type Model interface {
	// Fitted returns the in-sample fitted values, aligned with the
	// training series.
	Fitted() []float64
	// Project returns predictions for the given number of calendar months
	// immediately following the training series.
	Project(steps int) []float64
}

// Estimator fits a Model to a monthly series. The algorithms behind this
// interface are implementation choices; any trend+residual pair that
// supports seasonal monthly data and a multi-year horizon can serve.
type Estimator interface {
	Fit(months []bulletin.Month, values []float64) (Model, error)
}

// SkipError reports that a category was excluded from the forecast run
// rather than failing it.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("forecast skipped: %s", e.Reason)
}

// monthsBetween counts calendar months from a to b.
func monthsBetween(a, b bulletin.Month) int {
	return (b.Year-a.Year)*12 + int(b.Month) - int(a.Month)
}
