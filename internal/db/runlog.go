package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Execer is the slice of *sql.DB the run log needs; it also matches *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// RunRecord is one row of import run history. Runs are recorded at the end of
// every batch, including batches that finished with per-record errors.
type RunRecord struct {
	ID             string
	Kind           string
	SourceFile     string
	ActorID        string
	StartedAt      time.Time
	FinishedAt     time.Time
	Created        int
	Duplicates     int
	Errors         int
	Skipped        int
	ImagesAttached int
}

// RecordImportRun appends a run to the import_runs history table.
func RecordImportRun(ctx context.Context, store Execer, run RunRecord) error {
	_, err := store.ExecContext(ctx, `
		INSERT INTO import_runs (
			id,
			kind,
			source_file,
			actor_id,
			started_at,
			finished_at,
			created_count,
			duplicate_count,
			error_count,
			skipped_count,
			images_attached
		) VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5, $6, $7, $8, $9, $10, $11)
	`,
		run.ID,
		run.Kind,
		run.SourceFile,
		run.ActorID,
		run.StartedAt,
		run.FinishedAt,
		run.Created,
		run.Duplicates,
		run.Errors,
		run.Skipped,
		run.ImagesAttached,
	)
	if err != nil {
		return fmt.Errorf("insert import run: %w", err)
	}
	return nil
}
