package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool the ledger needs. pgxmock satisfies
// it, so the query layer is unit-testable without a live database.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// the hot path of backfill runs.
var preparedStatements = map[string]string{
	"insert_run":      `INSERT INTO runs (id, command, status, started_at) VALUES ($1, $2, $3, $4)`,
	"finish_run":      `UPDATE runs SET status = $1, detail = $2, finished_at = $3 WHERE id = $4`,
	"get_run":         `SELECT id, command, status, detail, started_at, finished_at FROM runs WHERE id = $1`,
	"insert_document": `INSERT INTO documents (id, run_id, url, month, status, error, fetched_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	command     TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'running',
	detail      TEXT,
	started_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	run_id     TEXT NOT NULL REFERENCES runs(id),
	url        TEXT NOT NULL,
	month      TEXT NOT NULL,
	status     TEXT NOT NULL,
	error      TEXT,
	fetched_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_command ON runs(command);
CREATE INDEX IF NOT EXISTS idx_documents_run_id ON documents(run_id);
CREATE INDEX IF NOT EXISTS idx_documents_month ON documents(month);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, command string) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, command, status, started_at) VALUES ($1, $2, $3, $4)`,
		id, command, string(RunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &Run{
		ID:        id,
		Command:   command,
		Status:    RunStatusRunning,
		StartedAt: now,
	}, nil
}

func (s *PostgresStore) FinishRun(ctx context.Context, runID string, status RunStatus, detail string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, detail = $2, finished_at = $3 WHERE id = $4`,
		string(status), detail, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: finish run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	var r Run
	var detail *string
	var finished *time.Time

	err := s.pool.QueryRow(ctx,
		`SELECT id, command, status, detail, started_at, finished_at FROM runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.Command, &r.Status, &detail, &r.StartedAt, &finished)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	if detail != nil {
		r.Detail = *detail
	}
	r.FinishedAt = finished
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `SELECT id, command, status, detail, started_at, finished_at FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.Command != "" {
		query += fmt.Sprintf(` AND command = $%d`, argIdx)
		args = append(args, filter.Command)
		argIdx++
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var detail *string
		var finished *time.Time
		if err := rows.Scan(&r.ID, &r.Command, &r.Status, &detail, &r.StartedAt, &finished); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if detail != nil {
			r.Detail = *detail
		}
		r.FinishedAt = finished
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) RecordDocument(ctx context.Context, runID string, url string, month string, status DocStatus, docErr string) (*Document, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO documents (id, run_id, url, month, status, error, fetched_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, runID, url, month, string(status), docErr, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert document for run %s", runID)
	}

	return &Document{
		ID:        id,
		RunID:     runID,
		URL:       url,
		Month:     month,
		Status:    status,
		Error:     docErr,
		FetchedAt: now,
	}, nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context, runID string) ([]Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, run_id, url, month, status, error, fetched_at FROM documents
		 WHERE run_id = $1 ORDER BY fetched_at ASC`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list documents")
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var docErr *string
		if err := rows.Scan(&d.ID, &d.RunID, &d.URL, &d.Month, &d.Status, &docErr, &d.FetchedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan document")
		}
		if docErr != nil {
			d.Error = *docErr
		}
		docs = append(docs, d)
	}
	return docs, eris.Wrap(rows.Err(), "postgres: list documents iterate")
}
