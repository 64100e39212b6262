package forecast

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/visa-movement/bulletin-cli/internal/bulletin"
	"github.com/visa-movement/bulletin-cli/internal/corpus"
)

// Defaults for the engine preconditions and horizon.
const (
	DefaultHorizonMonths = 36
	DefaultMinPoints     = 24
)

// Point is one projected observation: a future bulletin month, its
// predicted cutoff date, and the date's proleptic Gregorian ordinal for
// client-side interpolation.
type Point struct {
	Month   bulletin.Month
	Cutoff  time.Time
	Ordinal int
}

// Engine produces multi-model forecasts: a primary seasonal trend fit
// plus an autoregressive correction over its residuals.
type Engine struct {
	Horizon   int
	MinPoints int
	Trend     Estimator
	Residual  Estimator
}

// NewEngine returns an engine with the default two-stage model stack.
func NewEngine(horizon int) *Engine {
	if horizon <= 0 {
		horizon = DefaultHorizonMonths
	}
	return &Engine{
		Horizon:   horizon,
		MinPoints: DefaultMinPoints,
		Trend:     SeasonalTrend{},
		Residual:  ARI{},
	}
}

// Forecast projects the series Horizon months past its last observation.
// Categories with insufficient history or a failed primary fit return a
// *SkipError; a failed residual fit degrades to trend-only output.
func (e *Engine) Forecast(series corpus.Series) ([]Point, error) {
	if len(series) < e.MinPoints {
		return nil, &SkipError{Reason: "insufficient history"}
	}

	// Day offsets from the series epoch: the earliest cutoff date.
	epoch := series[0].Cutoff
	for _, p := range series[1:] {
		if p.Cutoff.Before(epoch) {
			epoch = p.Cutoff
		}
	}
	months := make([]bulletin.Month, len(series))
	values := make([]float64, len(series))
	for i, p := range series {
		months[i] = p.Month
		values[i] = daysBetween(epoch, p.Cutoff)
	}

	trend, err := e.Trend.Fit(months, values)
	if err != nil {
		return nil, &SkipError{Reason: err.Error()}
	}

	fitted := trend.Fitted()
	residuals := make([]float64, len(values))
	for i := range values {
		residuals[i] = values[i] - fitted[i]
	}

	projection := trend.Project(e.Horizon)
	if residModel, err := e.Residual.Fit(months, residuals); err != nil {
		zap.L().Warn("forecast: residual model fit failed, using trend only", zap.Error(err))
	} else {
		correction := residModel.Project(e.Horizon)
		for i := range projection {
			projection[i] += correction[i]
		}
	}

	points := make([]Point, e.Horizon)
	month := months[len(months)-1]
	for i, v := range projection {
		month = month.Next()
		cutoff := epoch.AddDate(0, 0, int(math.RoundToEven(v)))
		points[i] = Point{Month: month, Cutoff: cutoff, Ordinal: Ordinal(cutoff)}
	}
	return points, nil
}

// daysBetween counts whole days from a to b; negative when b precedes a.
func daysBetween(a, b time.Time) float64 {
	return float64(dayNumber(b) - dayNumber(a))
}

// Ordinal returns the proleptic Gregorian ordinal of a date, where
// January 1 of year 1 is day 1.
func Ordinal(t time.Time) int {
	return dayNumber(t) + 719163
}

// dayNumber counts days since 1970-01-01 by civil-calendar arithmetic,
// avoiding time.Duration overflow over multi-century spans.
func dayNumber(t time.Time) int {
	y, m, d := t.Date()
	if m <= time.February {
		y--
	}
	era := y / 400
	if y < 0 && y%400 != 0 {
		era--
	}
	yoe := y - era*400
	var mp int
	if m > time.February {
		mp = int(m) - 3
	} else {
		mp = int(m) + 9
	}
	doy := (153*mp+2)/5 + d - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}
