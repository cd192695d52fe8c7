package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/edstats/pairsim/internal/simulate"
)

// arrowSchema mirrors the CSV score table as four int64 columns.
var arrowSchema = arrow.NewSchema([]arrow.Field{
	{Name: "student_ref_id", Type: arrow.PrimitiveTypes.Int64},
	{Name: "pre_quiz_score", Type: arrow.PrimitiveTypes.Int64},
	{Name: "post_quiz_score", Type: arrow.PrimitiveTypes.Int64},
	{Name: "score_difference", Type: arrow.PrimitiveTypes.Int64},
}, nil)

// WriteArrow writes the score rows to path as an Arrow IPC file, for
// loading the table into columnar tooling (pandas, polars, duckdb)
// without CSV re-parsing. Like WriteCSV, the file is written to a
// temporary name and renamed into place on success.
func WriteArrow(path string, rows []simulate.Row) (err error) {
	builder := array.NewRecordBuilder(memory.NewGoAllocator(), arrowSchema)
	defer builder.Release()

	for _, r := range rows {
		builder.Field(0).(*array.Int64Builder).Append(int64(r.ID))
		builder.Field(1).(*array.Int64Builder).Append(int64(r.Pre))
		builder.Field(2).(*array.Int64Builder).Append(int64(r.Post))
		builder.Field(3).(*array.Int64Builder).Append(int64(r.Diff))
	}

	rec := builder.NewRecord()
	defer rec.Release()

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w, err := ipc.NewFileWriter(tmp, ipc.WithSchema(arrowSchema))
	if err != nil {
		return fmt.Errorf("failed to create arrow writer: %w", err)
	}
	if err = w.Write(rec); err != nil {
		return fmt.Errorf("failed to write arrow record: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to finalize arrow file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move arrow file into place: %w", err)
	}
	return nil
}
