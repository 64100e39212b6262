package forecast

import (
	"time"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"

	"github.com/visa-movement/bulletin-cli/internal/bulletin"
)

// seasonalCols is the width of the seasonal design matrix: intercept,
// linear trend, and eleven month-of-year dummies (December is the
// baseline).
const seasonalCols = 13

// SeasonalTrend fits a linear trend plus yearly seasonality by ordinary
// least squares. This is the primary signal: priority-date advancement is
// broadly monotonic with seasonal fluctuation tied to the fiscal-year
// visa allocation cycle.
type SeasonalTrend struct{}

// Fit solves the least-squares regression of values on trend and
// month-of-year. Fails when the series is shorter than the parameter
// count or the design matrix is rank deficient.
func (SeasonalTrend) Fit(months []bulletin.Month, values []float64) (Model, error) {
	n := len(values)
	if n != len(months) {
		return nil, eris.New("forecast: months and values length mismatch")
	}
	if n <= seasonalCols {
		return nil, eris.Errorf("forecast: %d points cannot support %d seasonal parameters", n, seasonalCols)
	}

	origin := months[0]
	x := mat.NewDense(n, seasonalCols, nil)
	for i, m := range months {
		fillSeasonalRow(x.RawRowView(i), monthsBetween(origin, m), m.Month)
	}

	var beta mat.VecDense
	if err := beta.SolveVec(x, mat.NewVecDense(n, values)); err != nil {
		return nil, eris.Wrap(err, "forecast: seasonal trend solve")
	}

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)

	return &seasonalTrendModel{
		beta:   beta.RawVector().Data,
		origin: origin,
		last:   months[n-1],
		fitted: fitted.RawVector().Data,
	}, nil
}

type seasonalTrendModel struct {
	beta   []float64
	origin bulletin.Month
	last   bulletin.Month
	fitted []float64
}

func (m *seasonalTrendModel) Fitted() []float64 {
	return m.fitted
}

func (m *seasonalTrendModel) Project(steps int) []float64 {
	out := make([]float64, steps)
	row := make([]float64, seasonalCols)
	month := m.last
	for s := range steps {
		month = month.Next()
		fillSeasonalRow(row, monthsBetween(m.origin, month), month.Month)
		var v float64
		for j, b := range m.beta {
			v += b * row[j]
		}
		out[s] = v
	}
	return out
}

// fillSeasonalRow writes one design-matrix row: intercept, trend offset in
// months from the series origin, and the month-of-year dummy.
func fillSeasonalRow(row []float64, trend int, month time.Month) {
	for j := range row {
		row[j] = 0
	}
	row[0] = 1
	row[1] = float64(trend)
	if month != time.December {
		row[1+int(month)] = 1
	}
}
