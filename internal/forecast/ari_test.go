package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visa-movement/bulletin-cli/internal/bulletin"
)

func monthRange(n int) []bulletin.Month {
	months := make([]bulletin.Month, n)
	m := bulletin.Month{Year: 2021, Month: time.January}
	for i := range n {
		months[i] = m
		m = m.Next()
	}
	return months
}

func TestARI_FitsDriftingSeries(t *testing.T) {
	// A series whose differences decay toward a steady drift. The noise
	// term keeps the lag columns linearly independent of the intercept;
	// an exact recursion would make the regression rank-deficient.
	values := make([]float64, 30)
	diff := 10.0
	for i := 1; i < len(values); i++ {
		values[i] = values[i-1] + diff
		diff = 0.5*diff + 2 + 1.5*math.Sin(2.1*float64(i))
	}

	model, err := ARI{}.Fit(monthRange(len(values)), values)
	require.NoError(t, err)

	proj := model.Project(6)
	require.Len(t, proj, 6)
	// Projections continue the drift: strictly increasing levels.
	prev := values[len(values)-1]
	for _, v := range proj {
		assert.Greater(t, v, prev)
		prev = v
	}
}

func TestARI_ConstantDifferencesRejected(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = float64(20 * i)
	}
	_, err := ARI{}.Fit(monthRange(len(values)), values)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "constant")
}

func TestARI_TooShortRejected(t *testing.T) {
	values := []float64{1, 3, 2, 5, 4, 6}
	_, err := ARI{}.Fit(monthRange(len(values)), values)
	assert.Error(t, err)
}

func TestARI_FittedAlignment(t *testing.T) {
	values := make([]float64, 28)
	step := 16.0
	for i := 1; i < len(values); i++ {
		values[i] = values[i-1] + 6 + step + math.Sin(2.1*float64(i))
		step *= 0.7
	}
	model, err := ARI{}.Fit(monthRange(len(values)), values)
	require.NoError(t, err)
	assert.Len(t, model.Fitted(), len(values))
}

func TestSeasonalTrend_RecoverLinearSignal(t *testing.T) {
	months := monthRange(36)
	values := make([]float64, 36)
	for i := range values {
		values[i] = 100 + 20*float64(i)
	}

	model, err := SeasonalTrend{}.Fit(months, values)
	require.NoError(t, err)

	fitted := model.Fitted()
	for i := range values {
		assert.InDelta(t, values[i], fitted[i], 1e-6)
	}

	proj := model.Project(12)
	for i, v := range proj {
		assert.InDelta(t, 100+20*float64(36+i), v, 1e-6)
	}
}

func TestSeasonalTrend_TooShort(t *testing.T) {
	months := monthRange(10)
	values := make([]float64, 10)
	_, err := SeasonalTrend{}.Fit(months, values)
	assert.Error(t, err)
}
