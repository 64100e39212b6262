// Package store persists the ingest ledger: one row per pipeline run and
// one row per bulletin document touched by that run.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// RunStatus tracks the lifecycle of an ingest run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// DocStatus records the outcome for a single bulletin document.
type DocStatus string

const (
	DocStatusStored DocStatus = "stored"
	DocStatusFailed DocStatus = "failed"
)

// Run is one invocation of an ingest command (scrape, update, dol).
type Run struct {
	ID         string     `json:"id"`
	Command    string     `json:"command"`
	Status     RunStatus  `json:"status"`
	Detail     string     `json:"detail,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Document is one bulletin page processed during a run.
type Document struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	URL       string    `json:"url"`
	Month     string    `json:"month"`
	Status    DocStatus `json:"status"`
	Error     string    `json:"error,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status  RunStatus `json:"status,omitempty"`
	Command string    `json:"command,omitempty"`
	Limit   int       `json:"limit,omitempty"`
	Offset  int       `json:"offset,omitempty"`
}

// Store defines the persistence interface for the ingest ledger.
type Store interface {
	CreateRun(ctx context.Context, command string) (*Run, error)
	FinishRun(ctx context.Context, runID string, status RunStatus, detail string) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)

	RecordDocument(ctx context.Context, runID string, url string, month string, status DocStatus, docErr string) (*Document, error)
	ListDocuments(ctx context.Context, runID string) ([]Document, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open constructs a Store for the configured driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite", "":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
