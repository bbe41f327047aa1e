package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/signalforge/datamart/internal/model"
)

// RunStore records pipeline run history in SQLite. It is advisory state:
// a missing or broken run database never blocks the pipeline itself.
type RunStore struct {
	db *sql.DB
}

// NewRunStore opens a SQLite database at the given path and configures WAL
// mode.
func NewRunStore(dsn string) (*RunStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "runs: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "runs: exec %s", pragma)
		}
	}
	return &RunStore{db: db}, nil
}

const runsMigration = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id                TEXT PRIMARY KEY,
	status            TEXT NOT NULL DEFAULT 'running',
	started_at        DATETIME NOT NULL,
	finished_at       DATETIME,
	total_added_bytes INTEGER NOT NULL DEFAULT 0,
	details           TEXT,
	verticals         TEXT
);

CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started_at ON pipeline_runs(started_at);
`

func (s *RunStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, runsMigration)
	return eris.Wrap(err, "runs: migrate")
}

func (s *RunStore) Close() error {
	return s.db.Close()
}

// CreateRun inserts a new running record and returns it.
func (s *RunStore) CreateRun(ctx context.Context) (*model.Run, error) {
	run := &model.Run{
		ID:        uuid.New().String(),
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pipeline_runs (id, status, started_at) VALUES (?, ?, ?)`,
		run.ID, string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "runs: insert run")
	}
	return run, nil
}

// FinishRun records the terminal state of a run.
func (s *RunStore) FinishRun(ctx context.Context, run *model.Run) error {
	detailsJSON, err := json.Marshal(run.Details)
	if err != nil {
		return eris.Wrap(err, "runs: marshal details")
	}
	verticalsJSON, err := json.Marshal(run.Verticals)
	if err != nil {
		return eris.Wrap(err, "runs: marshal verticals")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE pipeline_runs
		 SET status = ?, finished_at = ?, total_added_bytes = ?, details = ?, verticals = ?
		 WHERE id = ?`,
		string(run.Status), run.FinishedAt, run.TotalAddedBytes,
		string(detailsJSON), string(verticalsJSON), run.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "runs: finish run %s", run.ID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "runs: rows affected")
	}
	if n == 0 {
		return eris.Errorf("runs: run not found: %s", run.ID)
	}
	return nil
}

// GetRun returns one run by id.
func (s *RunStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, started_at, finished_at, total_added_bytes, details, verticals
		 FROM pipeline_runs WHERE id = ?`, id)
	return scanRun(row)
}

// ListRuns returns the most recent runs, newest first.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, started_at, finished_at, total_added_bytes, details, verticals
		 FROM pipeline_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "runs: list")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "runs: list iterate")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var finishedAt sql.NullTime
	var detailsJSON, verticalsJSON sql.NullString

	err := row.Scan(&r.ID, &r.Status, &r.StartedAt, &finishedAt,
		&r.TotalAddedBytes, &detailsJSON, &verticalsJSON)
	if err == sql.ErrNoRows {
		return nil, eris.New("runs: run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "runs: scan run")
	}

	if finishedAt.Valid {
		r.FinishedAt = finishedAt.Time
	}
	if detailsJSON.Valid && detailsJSON.String != "" {
		if err := json.Unmarshal([]byte(detailsJSON.String), &r.Details); err != nil {
			return nil, eris.Wrap(err, "runs: unmarshal details")
		}
	}
	if verticalsJSON.Valid && verticalsJSON.String != "" {
		if err := json.Unmarshal([]byte(verticalsJSON.String), &r.Verticals); err != nil {
			return nil, eris.Wrap(err, "runs: unmarshal verticals")
		}
	}
	return &r, nil
}
