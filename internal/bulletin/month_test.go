package bulletin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("october-2015")
	require.NoError(t, err)
	assert.Equal(t, 2015, m.Year)
	assert.Equal(t, time.October, m.Month)
	assert.Equal(t, "october-2015", m.String())
	assert.Equal(t, "october-2015.json", m.FileName())
}

func TestParseMonth_CaseInsensitive(t *testing.T) {
	m, err := ParseMonth("January-2024")
	require.NoError(t, err)
	assert.Equal(t, time.January, m.Month)
	assert.Equal(t, 2024, m.Year)
}

func TestParseMonth_Invalid(t *testing.T) {
	for _, s := range []string{"", "october", "smarch-2020", "october-abc"} {
		_, err := ParseMonth(s)
		assert.Error(t, err, s)
	}
}

func TestParseMonthFile(t *testing.T) {
	m, err := ParseMonthFile("june-2023.json")
	require.NoError(t, err)
	assert.Equal(t, Month{Year: 2023, Month: time.June}, m)
}

func TestFiscalYear(t *testing.T) {
	assert.Equal(t, 2016, Month{Year: 2015, Month: time.October}.FiscalYear())
	assert.Equal(t, 2016, Month{Year: 2015, Month: time.December}.FiscalYear())
	assert.Equal(t, 2016, Month{Year: 2016, Month: time.January}.FiscalYear())
	assert.Equal(t, 2016, Month{Year: 2016, Month: time.September}.FiscalYear())
	assert.Equal(t, 2017, Month{Year: 2016, Month: time.October}.FiscalYear())
}

func TestMonthOrdering(t *testing.T) {
	a := Month{Year: 2023, Month: time.December}
	b := Month{Year: 2024, Month: time.January}
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.Equal(t, b, a.Next())
}
