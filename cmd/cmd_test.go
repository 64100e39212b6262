package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visa-movement/bulletin-cli/internal/bulletin"
	"github.com/visa-movement/bulletin-cli/internal/category"
	"github.com/visa-movement/bulletin-cli/internal/config"
	"github.com/visa-movement/bulletin-cli/internal/store"
)

const bulletinFixture = `<html><body>
<p><u>A.  FINAL ACTION DATES FOR FAMILY-SPONSORED PREFERENCE CASES</u></p>
<table>
<tr><td>Family- Sponsored</td><td>All Chargeability Areas Except Those Listed</td><td>INDIA</td></tr>
<tr><td>F1</td><td>22DEC15</td><td>22DEC15</td></tr>
</table>
<p><u>B.  DATES FOR FILING FAMILY-SPONSORED VISA APPLICATIONS</u></p>
<table>
<tr><td>Family- Sponsored</td><td>All Chargeability Areas Except Those Listed</td><td>INDIA</td></tr>
<tr><td>F1</td><td>01SEP17</td><td>01SEP17</td></tr>
</table>
<p><u>A.  FINAL ACTION DATES FOR EMPLOYMENT-BASED PREFERENCE CASES</u></p>
<table>
<tr><td>Employment- based</td><td>All Chargeability Areas Except Those Listed</td><td>INDIA</td></tr>
<tr><td>2nd</td><td>C</td><td>01JAN13</td></tr>
</table>
<p><u>B.  DATES FOR FILING OF EMPLOYMENT-BASED VISA APPLICATIONS</u></p>
<table>
<tr><td>Employment- based</td><td>All Chargeability Areas Except Those Listed</td><td>INDIA</td></tr>
<tr><td>2nd</td><td>C</td><td>01JUL13</td></tr>
</table>
</body></html>`

// withTestConfig installs a config pointing all output at temp dirs and
// restores the previous global afterwards.
func withTestConfig(t *testing.T) {
	t.Helper()
	prev := cfg
	dir := t.TempDir()
	cfg = &config.Config{
		Scrape: config.ScrapeConfig{
			HTMLDir:   filepath.Join(dir, "html"),
			RecordDir: filepath.Join(dir, "records"),
		},
		Fetch: config.FetchConfig{TimeoutSecs: 5, MaxRetries: 1},
	}
	t.Cleanup(func() { cfg = prev })
}

func TestProcessTarget(t *testing.T) {
	withTestConfig(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(bulletinFixture))
	}))
	defer srv.Close()

	m := bulletin.Month{Year: 2025, Month: time.March}
	target := bulletin.Target{Month: m, URL: srv.URL + "/visa-bulletin-for-march-2025.html"}

	require.NoError(t, processTarget(t.Context(), newFetcher(), target))

	html, err := os.ReadFile(filepath.Join(cfg.Scrape.HTMLDir, "FY2025", "march-2025.html"))
	require.NoError(t, err)
	assert.Equal(t, bulletinFixture, string(html))

	rec, err := bulletin.ReadRecord(filepath.Join(cfg.Scrape.RecordDir, "FY2025", "march-2025.json"))
	require.NoError(t, err)
	// Persisted records carry canonical cutoff tokens, not raw source dates.
	assert.Equal(t, "07-01-2013", rec.DatesForFiling.Employment["2nd"]["INDIA"])
	assert.Equal(t, "C", rec.DatesForFiling.Employment["2nd"]["AllChargeabilityAreasExceptThoseListed"])
}

func TestProcessTarget_FetchFailure(t *testing.T) {
	withTestConfig(t)

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	m := bulletin.Month{Year: 2025, Month: time.March}
	target := bulletin.Target{Month: m, URL: srv.URL + "/missing.html"}

	err := processTarget(t.Context(), newFetcher(), target)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")

	// Nothing persisted on failure.
	_, statErr := os.Stat(filepath.Join(cfg.Scrape.HTMLDir, "FY2025"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestProcessTarget_ExtractFailureKeepsHTML(t *testing.T) {
	withTestConfig(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>maintenance page</body></html>"))
	}))
	defer srv.Close()

	m := bulletin.Month{Year: 2025, Month: time.March}
	target := bulletin.Target{Month: m, URL: srv.URL + "/visa-bulletin-for-march-2025.html"}

	require.Error(t, processTarget(t.Context(), newFetcher(), target))

	// Raw HTML is persisted before extraction, so the failure is inspectable.
	_, err := os.Stat(filepath.Join(cfg.Scrape.HTMLDir, "FY2025", "march-2025.html"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.Scrape.RecordDir, "FY2025", "march-2025.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestLatestStoredMonth(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{
		"FY2025/september-2025.json",
		"FY2026/october-2025.json",
		"FY2026/november-2025.json",
		"FY2026/notes.txt",
	} {
		full := filepath.Join(dir, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("{}"), 0o644))
	}

	m, err := latestStoredMonth(dir)
	require.NoError(t, err)
	assert.Equal(t, bulletin.Month{Year: 2025, Month: time.November}, m)
}

func TestLatestStoredMonth_Empty(t *testing.T) {
	_, err := latestStoredMonth(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no records")
}

func TestParseGroups(t *testing.T) {
	tests := []struct {
		in   string
		want []category.Group
		err  bool
	}{
		{"employment", []category.Group{category.GroupEmployment}, false},
		{"family", []category.Group{category.GroupFamily}, false},
		{"all", []category.Group{category.GroupEmployment, category.GroupFamily}, false},
		{"", []category.Group{category.GroupEmployment, category.GroupFamily}, false},
		{"bogus", nil, true},
	}
	for _, tt := range tests {
		got, err := parseGroups(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "6ba7b810", truncateID("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	assert.Equal(t, "short", truncateID("short"))
}

func TestFormatRuns(t *testing.T) {
	finished := time.Date(2025, time.March, 1, 12, 5, 30, 0, time.UTC)
	runs := []store.Run{
		{
			ID:         "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
			Command:    "scrape",
			Status:     store.RunStatusComplete,
			Detail:     "12 stored, 0 failed of 12 targets",
			StartedAt:  time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC),
			FinishedAt: &finished,
		},
		{
			ID:        "aaaabbbb-0000-0000-0000-000000000000",
			Command:   "dol",
			Status:    store.RunStatusRunning,
			StartedAt: time.Date(2025, time.March, 2, 9, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	formatRuns(&buf, runs)
	out := buf.String()

	assert.Contains(t, out, "6ba7b810")
	assert.Contains(t, out, "scrape")
	assert.Contains(t, out, "5m30s")
	assert.Contains(t, out, "12 stored, 0 failed of 12 targets")
	assert.Contains(t, out, "running")
	assert.NotContains(t, out, "9dad") // IDs are truncated
}

func TestFormatDocuments(t *testing.T) {
	docs := []store.Document{
		{
			Month:     "march-2025",
			Status:    store.DocStatusFailed,
			Error:     "fetcher: unexpected status 404 from https://example.com/a-very-long-url-that-keeps-going-and-going",
			FetchedAt: time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	formatDocuments(&buf, docs)
	out := buf.String()

	assert.Contains(t, out, "march-2025")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "...") // long errors truncated
}
