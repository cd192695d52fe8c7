package main

import (
	"encoding/json"
	"fmt"

	"github.com/edstats/pairsim/internal/report"
	"github.com/edstats/pairsim/internal/simulate"
	"github.com/edstats/pairsim/internal/stats"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <csv-file>",
		Short: "Recompute the analysis report from a score table",
		Long: `Read a previously written score table and recompute the paired
t-test and Cohen's d report from its rows.

Example:
  pairsim analyze scores.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			items, _ := cmd.Flags().GetInt("items")

			rows, err := simulate.ReadCSV(args[0])
			if err != nil {
				return fmt.Errorf("failed to read score table: %w", err)
			}

			pre := make([]int, len(rows))
			post := make([]int, len(rows))
			for i, r := range rows {
				pre[i] = r.Pre
				post[i] = r.Post
			}

			paired, err := stats.FromScores(pre, post)
			if err != nil {
				return fmt.Errorf("failed to compute statistics: %w", err)
			}

			rep := report.New(items, paired)
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(rep)
			}
			return rep.WriteText(cmd.OutOrStdout())
		},
	}

	cmd.Flags().Int("items", simulate.DefaultParams().QuizItems, "Number of quiz items the table was simulated with")

	return cmd
}
