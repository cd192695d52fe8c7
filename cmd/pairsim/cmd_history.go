package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/edstats/pairsim/internal/report"
	"github.com/edstats/pairsim/internal/store"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List archived runs or show one run's report",
		Long: `Without arguments, list all archived runs newest first.
With a run id, print that run's analysis report.

Examples:
  pairsim history
  pairsim history run-1757847093428123456`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")

			s, err := store.Open(root)
			if err != nil {
				return fmt.Errorf("failed to open run archive: %w", err)
			}
			defer s.Close()

			if len(args) == 1 {
				rec, err := s.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				if jsonOut {
					return json.NewEncoder(cmd.OutOrStdout()).Encode(rec)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "run:      %s\n", rec.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "created:  %s\n", rec.CreatedAt.Format(time.RFC3339))
				fmt.Fprintf(cmd.OutOrStdout(), "seed:     %d\n", rec.Params.Seed)
				fmt.Fprintf(cmd.OutOrStdout(), "output:   %s\n\n", rec.OutputPath)
				return report.New(rec.Params.QuizItems, rec.Stats).WriteText(cmd.OutOrStdout())
			}

			records, err := s.ListRuns(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"runs":  records,
					"count": len(records),
				})
			}

			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No archived runs.")
				fmt.Fprintln(cmd.OutOrStdout(), "\nUse 'pairsim run --archive' to archive a run.")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Archived runs (%d):\n\n", len(records))
			for _, rec := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", rec.ID, rec.CreatedAt.Format(time.RFC3339))
				fmt.Fprintf(cmd.OutOrStdout(), "  samples: %d  seed: %d  t: %.4f  d: %.4f\n",
					rec.Params.SampleSize, rec.Params.Seed, rec.Stats.TStatistic, rec.Stats.CohensD)
			}
			return nil
		},
	}

	return cmd
}
