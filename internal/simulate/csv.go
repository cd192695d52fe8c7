package simulate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Header is the exact column header of the scores table. Analysis of an
// existing table rejects files that do not start with it.
var Header = []string{"student ref id", "pre-quiz score", "post-quiz score", "score difference"}

// ErrRowMismatch reports a score table whose rows are internally
// inconsistent: a difference column that is not post minus pre, or subject
// ids that are not the ordered sequence 0..N-1.
var ErrRowMismatch = errors.New("score table row inconsistent")

// WriteCSV writes the score table to path. The file is written to a
// temporary name in the same directory and renamed into place on success,
// so a failed run never leaves a partial table behind under the final
// name. An existing file at path is overwritten.
func WriteCSV(path string, rows []Row) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err = w.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.ID),
			strconv.Itoa(r.Pre),
			strconv.Itoa(r.Post),
			strconv.Itoa(r.Diff),
		}
		if err = w.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r.ID, err)
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return fmt.Errorf("failed to flush table: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move table into place: %w", err)
	}
	return nil
}

// ReadCSV reads a score table previously written by WriteCSV. It verifies
// the header, that ids form the ordered sequence 0..N-1, and that every
// difference equals post minus pre.
func ReadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open score table: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse score table: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("score table is empty: %s", path)
	}

	if len(records[0]) != len(Header) {
		return nil, fmt.Errorf("unexpected header %v, want %v", records[0], Header)
	}
	for i, col := range Header {
		if records[0][i] != col {
			return nil, fmt.Errorf("unexpected header column %q, want %q", records[0][i], col)
		}
	}

	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != 4 {
			return nil, fmt.Errorf("row %d: %d columns, want 4: %w", i, len(record), ErrRowMismatch)
		}
		var row Row
		fields := []*int{&row.ID, &row.Pre, &row.Post, &row.Diff}
		for j, field := range fields {
			v, convErr := strconv.Atoi(record[j])
			if convErr != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i, Header[j], convErr)
			}
			*field = v
		}

		if row.ID != i {
			return nil, fmt.Errorf("row %d has id %d, want %d: %w", i, row.ID, i, ErrRowMismatch)
		}
		if row.Diff != row.Post-row.Pre {
			return nil, fmt.Errorf("row %d: diff %d != post %d - pre %d: %w", i, row.Diff, row.Post, row.Pre, ErrRowMismatch)
		}
		rows = append(rows, row)
	}

	return rows, nil
}
