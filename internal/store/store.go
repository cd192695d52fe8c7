// Package store persists completed simulation runs in a local SQLite
// archive, so historical reports can be re-printed and score tables
// re-exported without re-running the simulation.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/edstats/pairsim/internal/simulate"
	"github.com/edstats/pairsim/internal/stats"

	_ "modernc.org/sqlite" // SQLite driver
)

// ErrRunNotFound reports that no archived run has the requested id.
var ErrRunNotFound = errors.New("run not found")

// RunStore archives simulation runs in SQLite.
type RunStore struct {
	db     *sql.DB
	dir    string
	dbPath string
}

// RunRecord is one archived run: the parameters that produced it, the
// computed statistics, and where the score table was written.
type RunRecord struct {
	ID         string          `json:"id"`
	CreatedAt  time.Time       `json:"created_at"`
	Params     simulate.Params `json:"params"`
	Stats      stats.Paired    `json:"stats"`
	OutputPath string          `json:"output_path"`
}

// NewRunID derives a run id from its creation time.
func NewRunID(t time.Time) string {
	return fmt.Sprintf("run-%d", t.UnixNano())
}

// Open opens the run archive rooted at root. The database lives at
// root/.pairsim/pairsim.db and is created on first use.
func Open(root string) (*RunStore, error) {
	dir := filepath.Join(root, ".pairsim")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .pairsim directory: %w", err)
	}

	dbPath := filepath.Join(dir, "pairsim.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &RunStore{db: db, dir: dir, dbPath: dbPath}, nil
}

// Close closes the underlying database.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// SaveRun archives a run and its score rows in one transaction.
func (s *RunStore) SaveRun(ctx context.Context, rec RunRecord, rows []simulate.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, created_at, sample_size, quiz_items, std_dev_base,
			bias_pre, bias_post, seed, output_path,
			pre_mean, post_mean, diff_mean, diff_variance, diff_std_dev,
			std_error, t_statistic, cohens_d
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		rec.Params.SampleSize, rec.Params.QuizItems, rec.Params.StdDevBase,
		rec.Params.BiasPre, rec.Params.BiasPost, int64(rec.Params.Seed),
		rec.OutputPath,
		rec.Stats.PreMean, rec.Stats.PostMean, rec.Stats.DiffMean,
		rec.Stats.DiffVariance, rec.Stats.DiffStdDev, rec.Stats.StdError,
		rec.Stats.TStatistic, rec.Stats.CohensD,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", rec.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_rows (run_id, subject_id, pre_score, post_score, diff)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, rec.ID, row.ID, row.Pre, row.Post, row.Diff); err != nil {
			return fmt.Errorf("failed to insert row %d of run %s: %w", row.ID, rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", rec.ID, err)
	}
	return nil
}

// ListRuns returns all archived runs, newest first.
func (s *RunStore) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, sample_size, quiz_items, std_dev_base,
		       bias_pre, bias_post, seed, output_path,
		       pre_mean, post_mean, diff_mean, diff_variance, diff_std_dev,
		       std_error, t_statistic, cohens_d
		FROM runs ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return records, nil
}

// GetRun returns one archived run by id, or ErrRunNotFound.
func (s *RunStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, sample_size, quiz_items, std_dev_base,
		       bias_pre, bias_post, seed, output_path,
		       pre_mean, post_mean, diff_mean, diff_variance, diff_std_dev,
		       std_error, t_statistic, cohens_d
		FROM runs WHERE id = ?
	`, id)

	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// RunRows returns the archived score rows of a run in subject order.
func (s *RunStore) RunRows(ctx context.Context, id string) ([]simulate.Row, error) {
	if _, err := s.GetRun(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT subject_id, pre_score, post_score, diff
		FROM run_rows WHERE run_id = ? ORDER BY subject_id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows of run %s: %w", id, err)
	}
	defer rows.Close()

	var out []simulate.Row
	for rows.Next() {
		var r simulate.Row
		if err := rows.Scan(&r.ID, &r.Pre, &r.Post, &r.Diff); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows of run %s: %w", id, err)
	}
	return out, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (RunRecord, error) {
	var rec RunRecord
	var createdAt string
	var seed int64

	err := sc.Scan(
		&rec.ID, &createdAt,
		&rec.Params.SampleSize, &rec.Params.QuizItems, &rec.Params.StdDevBase,
		&rec.Params.BiasPre, &rec.Params.BiasPost, &seed, &rec.OutputPath,
		&rec.Stats.PreMean, &rec.Stats.PostMean, &rec.Stats.DiffMean,
		&rec.Stats.DiffVariance, &rec.Stats.DiffStdDev, &rec.Stats.StdError,
		&rec.Stats.TStatistic, &rec.Stats.CohensD,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, err
	}
	if err != nil {
		return rec, fmt.Errorf("failed to scan run: %w", err)
	}

	rec.Params.Seed = uint64(seed)
	rec.Stats.N = rec.Params.SampleSize

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return rec, fmt.Errorf("failed to parse run timestamp %q: %w", createdAt, err)
	}
	rec.CreatedAt = t

	return rec, nil
}
