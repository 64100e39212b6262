package bulletin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCutoff_Sentinels(t *testing.T) {
	for _, token := range []string{"C", "U", ""} {
		assert.Equal(t, token, NormalizeCutoff(token))
	}
}

func TestNormalizeCutoff_Dates(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"01OCT24", "10-01-2024"},
		{"15JAN16", "01-15-2016"},
		{"08MAY22", "05-08-2022"},
		{"22DEC19", "12-22-2019"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeCutoff(tt.token), tt.token)
	}
}

func TestNormalizeCutoff_UnparseablePassThrough(t *testing.T) {
	for _, token := range []string{"N/A", "01XXX24", "pending", "1OCT24", "01OCT2024"} {
		assert.Equal(t, token, NormalizeCutoff(token), token)
	}
}

func TestNormalizeCutoff_Idempotent(t *testing.T) {
	once := NormalizeCutoff("01OCT24")
	assert.Equal(t, once, NormalizeCutoff(once))
}

func TestParseCutoffDate(t *testing.T) {
	d, ok := ParseCutoffDate("10-01-2024")
	assert.True(t, ok)
	assert.Equal(t, "2024-10-01", d.Format("2006-01-02"))

	for _, token := range []string{"C", "U", "", "01OCT24", "garbage"} {
		_, ok := ParseCutoffDate(token)
		assert.False(t, ok, token)
	}
}

func TestRecordNormalizeCutoffs(t *testing.T) {
	rec := &Record{
		DatesForFiling: Tables{
			Employment: Table{
				"3rd": {"AllChargeabilityAreasExceptThoseListed": "01OCT24", "INDIA": "C"},
			},
		},
		FinalActionDates: Tables{
			Family: Table{
				"F1": {"AllChargeabilityAreasExceptThoseListed": "22DEC19"},
			},
		},
	}
	rec.NormalizeCutoffs()
	assert.Equal(t, "10-01-2024", rec.DatesForFiling.Employment["3rd"]["AllChargeabilityAreasExceptThoseListed"])
	assert.Equal(t, "C", rec.DatesForFiling.Employment["3rd"]["INDIA"])
	assert.Equal(t, "12-22-2019", rec.FinalActionDates.Family["F1"]["AllChargeabilityAreasExceptThoseListed"])
}
