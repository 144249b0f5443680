package database

import (
	"context"
	"database/sql"
	"fmt"

	"release_notifier/internal/domain/release"
)

const schemaReleaseRuns = `CREATE TABLE IF NOT EXISTS release_runs (
    id              UUID PRIMARY KEY,
    started_at      TIMESTAMPTZ NOT NULL,
    finished_at     TIMESTAMPTZ NOT NULL,
    previous_tag    TEXT NOT NULL DEFAULT '',
    tag             TEXT NOT NULL DEFAULT '',
    publish_outcome TEXT NOT NULL DEFAULT '',
    recipients      INTEGER NOT NULL DEFAULT 0,
    status          TEXT NOT NULL,
    error           TEXT NOT NULL DEFAULT ''
)`

type PostgresReleaseRepository struct {
	db *sql.DB
}

var _ release.HistoryRepository = (*PostgresReleaseRepository)(nil)

func NewPostgresReleaseRepository(db *sql.DB) *PostgresReleaseRepository {
	return &PostgresReleaseRepository{db: db}
}

// EnsureSchema creates the release_runs table if it does not exist.
func (r *PostgresReleaseRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaReleaseRuns); err != nil {
		return fmt.Errorf("error creating release_runs table: %w", err)
	}
	return nil
}

func (r *PostgresReleaseRepository) Create(ctx context.Context, run *release.Run) error {
	query := `INSERT INTO release_runs (id, started_at, finished_at, previous_tag, tag, publish_outcome, recipients, status, error)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.StartedAt, run.FinishedAt, run.PreviousTag, run.Tag,
		string(run.PublishOutcome), run.Recipients, string(run.Status), run.Error)
	if err != nil {
		return fmt.Errorf("error recording release run %s: %w", run.ID, err)
	}
	return nil
}

// ListRecent returns up to limit runs, newest first.
func (r *PostgresReleaseRepository) ListRecent(ctx context.Context, limit int) ([]*release.Run, error) {
	query := `SELECT id, started_at, finished_at, previous_tag, tag, publish_outcome, recipients, status, error
               FROM release_runs ORDER BY started_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing release runs: %w", err)
	}
	defer rows.Close()

	var runs []*release.Run
	for rows.Next() {
		run := &release.Run{}
		var outcome, status string
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.PreviousTag, &run.Tag,
			&outcome, &run.Recipients, &status, &run.Error); err != nil {
			return nil, fmt.Errorf("error scanning release run: %w", err)
		}
		run.PublishOutcome = release.PublishOutcome(outcome)
		run.Status = release.RunStatus(status)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating release runs: %w", err)
	}
	return runs, nil
}

// NoopHistoryRepository is used when no database is configured.
type NoopHistoryRepository struct{}

var _ release.HistoryRepository = NoopHistoryRepository{}

func (NoopHistoryRepository) Create(context.Context, *release.Run) error { return nil }

func (NoopHistoryRepository) ListRecent(context.Context, int) ([]*release.Run, error) {
	return nil, nil
}
