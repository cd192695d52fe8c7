package store

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates the archive tables if they do not exist.
func InitSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id            TEXT PRIMARY KEY,
			created_at    TEXT NOT NULL,
			sample_size   INTEGER NOT NULL,
			quiz_items    INTEGER NOT NULL,
			std_dev_base  REAL NOT NULL,
			bias_pre      REAL NOT NULL,
			bias_post     REAL NOT NULL,
			seed          INTEGER NOT NULL,
			output_path   TEXT NOT NULL DEFAULT '',
			pre_mean      REAL NOT NULL DEFAULT 0,
			post_mean     REAL NOT NULL DEFAULT 0,
			diff_mean     REAL NOT NULL DEFAULT 0,
			diff_variance REAL NOT NULL DEFAULT 0,
			diff_std_dev  REAL NOT NULL DEFAULT 0,
			std_error     REAL NOT NULL DEFAULT 0,
			t_statistic   REAL NOT NULL DEFAULT 0,
			cohens_d      REAL NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS run_rows (
			run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			subject_id INTEGER NOT NULL,
			pre_score  INTEGER NOT NULL,
			post_score INTEGER NOT NULL,
			diff       INTEGER NOT NULL,
			PRIMARY KEY (run_id, subject_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}
