package category

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapper_EmploymentLabels(t *testing.T) {
	m := NewMapper()
	tests := []struct {
		raw  string
		want AppCategory
	}{
		{"1st", EB1},
		{"2nd", EB2},
		{"3rd", EB3},
		{"Other Workers", OtherWorkers},
		{"Other Workers", OtherWorkers},
		{"4th", EB4},
		{"Certain Religious Workers", EB4},
		{"5th", EB5},
		{"5th Unreserved (I5 and R5)", EB5},
		{"5th Unreserved (I5 and R5)", EB5},
		{"5th Unreserved (including C5, T5, I5, R5)", EB5},
		{"5th Non-Regional Center (C5 and T5)", EB5},
	}
	for _, tt := range tests {
		got, ok := m.Canonical(tt.raw)
		require.True(t, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestMapper_FamilyLabels(t *testing.T) {
	m := NewMapper()
	tests := []struct {
		raw  string
		want AppCategory
	}{
		{"F1", F1},
		{"First", F1},
		{"F2A", F2A},
		{"Second A", F2A},
		{"F2B", F2B},
		{"Second B", F2B},
		{"Third (F3)", F3},
		{"Fourth (F4)", F4},
	}
	for _, tt := range tests {
		got, ok := m.Canonical(tt.raw)
		require.True(t, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestMapper_UnmappedReturnsNothing(t *testing.T) {
	m := NewMapper()
	_, ok := m.Canonical("6th Preference Lunar Colonists")
	assert.False(t, ok)
	_, ok = m.Canonical("")
	assert.False(t, ok)
}

func TestLoadMapper_ExtendsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"categories:\n  \"3rd Professional\": EB3\n  \"Fifth Set Aside\": EB5\n",
	), 0o644))

	m, err := LoadMapper(path)
	require.NoError(t, err)

	got, ok := m.Canonical("3rd Professional")
	require.True(t, ok)
	assert.Equal(t, EB3, got)

	// Defaults survive the merge.
	got, ok = m.Canonical("Other Workers")
	require.True(t, ok)
	assert.Equal(t, OtherWorkers, got)
}

func TestLoadMapper_RejectsUnknownCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"categories:\n  \"9th\": EB9\n",
	), 0o644))

	_, err := LoadMapper(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
}

func TestLoadMapper_MissingFile(t *testing.T) {
	_, err := LoadMapper(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
