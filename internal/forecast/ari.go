package forecast

import (
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"

	"github.com/visa-movement/bulletin-cli/internal/bulletin"
)

// ARI is an autoregressive model fit to the first difference of its input
// series. It captures short-memory autocorrelation the trend model
// missed; a failed fit is a recoverable degradation, not an error, at the
// engine level.
type ARI struct {
	// P is the autoregressive order. Zero means the default of 2.
	P int
}

func (a ARI) order() int {
	if a.P <= 0 {
		return 2
	}
	return a.P
}

// Fit differences the series once and regresses each difference on its P
// predecessors plus an intercept. Degenerate (near-constant) differenced
// series fail the fit.
func (a ARI) Fit(months []bulletin.Month, values []float64) (Model, error) {
	p := a.order()
	n := len(values)
	if n != len(months) {
		return nil, eris.New("forecast: months and values length mismatch")
	}
	if n < 2*p+3 {
		return nil, eris.Errorf("forecast: %d points too short for AR(%d) on differences", n, p)
	}

	diffs := make([]float64, n-1)
	var lo, hi float64
	for i := range diffs {
		diffs[i] = values[i+1] - values[i]
		if i == 0 || diffs[i] < lo {
			lo = diffs[i]
		}
		if i == 0 || diffs[i] > hi {
			hi = diffs[i]
		}
	}
	if hi-lo < 1e-9 {
		return nil, eris.New("forecast: differenced series is constant")
	}

	rows := len(diffs) - p
	x := mat.NewDense(rows, p+1, nil)
	y := mat.NewVecDense(rows, nil)
	for t := range rows {
		row := x.RawRowView(t)
		row[0] = 1
		for j := 1; j <= p; j++ {
			row[j] = diffs[t+p-j]
		}
		y.SetVec(t, diffs[t+p])
	}

	var beta mat.VecDense
	if err := beta.SolveVec(x, y); err != nil {
		return nil, eris.Wrap(err, "forecast: AR solve")
	}
	coef := beta.RawVector().Data

	// An explosive fit would compound over a multi-year horizon; reject it
	// and let the engine degrade to the trend model alone.
	var sumAbs float64
	for _, c := range coef[1:] {
		sumAbs += math.Abs(c)
	}
	if sumAbs >= 1 {
		return nil, eris.Errorf("forecast: unstable AR fit (coefficient mass %.2f)", sumAbs)
	}

	// One-step-ahead fitted levels for the in-sample span. The first p+1
	// points carry no prediction and repeat the observed level.
	fitted := make([]float64, n)
	copy(fitted, values[:p+1])
	for t := p; t < len(diffs); t++ {
		pred := coef[0]
		for j := 1; j <= p; j++ {
			pred += coef[j] * diffs[t-j]
		}
		fitted[t+1] = values[t] + pred
	}

	recent := make([]float64, p)
	for j := range p {
		recent[j] = diffs[len(diffs)-1-j]
	}

	return &ariModel{coef: coef, recent: recent, level: values[n-1], fitted: fitted}, nil
}

type ariModel struct {
	coef   []float64 // intercept followed by AR coefficients
	recent []float64 // most recent differences, newest first
	level  float64   // last observed level
	fitted []float64
}

func (m *ariModel) Fitted() []float64 {
	return m.fitted
}

// Project forecasts differences recursively and integrates them back to
// levels.
func (m *ariModel) Project(steps int) []float64 {
	recent := append([]float64(nil), m.recent...)
	level := m.level
	out := make([]float64, steps)
	for s := range steps {
		pred := m.coef[0]
		for j, d := range recent {
			pred += m.coef[j+1] * d
		}
		level += pred
		out[s] = level
		copy(recent[1:], recent[:len(recent)-1])
		recent[0] = pred
	}
	return out
}
