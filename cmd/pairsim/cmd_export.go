package main

import (
	"encoding/json"
	"fmt"

	"github.com/edstats/pairsim/internal/simulate"
	"github.com/edstats/pairsim/internal/store"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Export an archived run's score table",
		Long: `Export the score rows of an archived run as CSV or as an Arrow
IPC file for columnar tooling.

Examples:
  pairsim export run-1757847093428123456 --out scores.csv
  pairsim export run-1757847093428123456 --format arrow --out scores.arrow`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			format, _ := cmd.Flags().GetString("format")
			out, _ := cmd.Flags().GetString("out")
			id := args[0]

			if out == "" {
				return fmt.Errorf("--out is required")
			}

			s, err := store.Open(root)
			if err != nil {
				return fmt.Errorf("failed to open run archive: %w", err)
			}
			defer s.Close()

			rows, err := s.RunRows(cmd.Context(), id)
			if err != nil {
				return err
			}

			switch format {
			case "csv":
				err = simulate.WriteCSV(out, rows)
			case "arrow":
				err = store.WriteArrow(out, rows)
			default:
				return fmt.Errorf("unknown format: %s (valid: csv, arrow)", format)
			}
			if err != nil {
				return fmt.Errorf("failed to export run %s: %w", id, err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"status": "exported",
					"run_id": id,
					"format": format,
					"path":   out,
					"rows":   len(rows),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows of %s to %s (%s)\n", len(rows), id, out, format)
			return nil
		},
	}

	cmd.Flags().String("format", "csv", "Export format (csv, arrow)")
	cmd.Flags().String("out", "", "Destination file (required)")
	cmd.MarkFlagRequired("out")

	return cmd
}
