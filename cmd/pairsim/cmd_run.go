package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/edstats/pairsim/internal/config"
	"github.com/edstats/pairsim/internal/logging"
	"github.com/edstats/pairsim/internal/report"
	"github.com/edstats/pairsim/internal/simulate"
	"github.com/edstats/pairsim/internal/stats"
	"github.com/edstats/pairsim/internal/store"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation and write the score table",
		Long: `Run the paired score simulation, write the score table as CSV,
and print the analysis report.

Parameters come from ~/.pairsim/config.yaml and PAIRSIM_* environment
variables; flags override both. Seed 0 picks a fresh seed and reports
it so the run can be replayed.

Examples:
  pairsim run
  pairsim run --samples 500 --seed 42 --output out.csv
  pairsim run --archive --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			archive, _ := cmd.Flags().GetBool("archive")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			applyRunFlags(cmd, cfg)

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			params := cfg.Params()
			if params.Seed == 0 {
				params.Seed = rand.Uint64()
			}

			log := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
			trace := logging.NewRunLogger(filepath.Join(root, ".pairsim"), cfg.Logging.Level)
			defer trace.Close()

			runner, err := simulate.NewRunner(params, log, trace)
			if err != nil {
				return err
			}

			result, runErr := runner.Run(cmd.Context())
			if runErr != nil && !errors.Is(runErr, stats.ErrInsufficientVariance) {
				return runErr
			}

			outputPath := cfg.Output.Path
			if !filepath.IsAbs(outputPath) {
				outputPath = filepath.Join(root, outputPath)
			}
			if err := simulate.WriteCSV(outputPath, result.Rows); err != nil {
				return fmt.Errorf("failed to write score table: %w", err)
			}
			log.Info("score table written", "path", outputPath, "rows", len(result.Rows))

			var runID string
			if archive {
				runID, err = archiveRun(cmd, root, result, outputPath)
				if err != nil {
					return err
				}
			}

			// Degenerate statistics: the table is written, but there is
			// no report to print.
			if runErr != nil {
				return fmt.Errorf("score table written to %s, but statistics are unavailable: %w", outputPath, runErr)
			}

			if jsonOut {
				out := map[string]any{
					"params": result.Params,
					"stats":  result.Stats,
					"output": outputPath,
				}
				if runID != "" {
					out["run_id"] = runID
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
			}

			rep := report.New(result.Params.QuizItems, result.Stats)
			if err := rep.WriteText(cmd.OutOrStdout()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nseed: %d\noutput: %s\n", result.Params.Seed, outputPath)
			if runID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "archived as: %s\n", runID)
			}
			return nil
		},
	}

	cmd.Flags().Int("samples", 0, "Number of simulated subjects")
	cmd.Flags().Int("items", 0, "Number of quiz items")
	cmd.Flags().Float64("std-dev-base", 0, "Spread base for score shaping")
	cmd.Flags().Float64("bias-pre", 0, "Pre-quiz bias in [-1, 1]")
	cmd.Flags().Float64("bias-post", 0, "Post-quiz bias in [-1, 1]")
	cmd.Flags().Uint64("seed", 0, "Random seed (0 = pick a fresh seed)")
	cmd.Flags().String("output", "", "Score table destination (CSV)")
	cmd.Flags().Bool("archive", false, "Archive the run in .pairsim/pairsim.db")

	return cmd
}

// applyRunFlags overrides config values with explicitly set flags.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("samples") {
		cfg.Simulation.SampleSize, _ = cmd.Flags().GetInt("samples")
	}
	if cmd.Flags().Changed("items") {
		cfg.Simulation.QuizItems, _ = cmd.Flags().GetInt("items")
	}
	if cmd.Flags().Changed("std-dev-base") {
		cfg.Simulation.StdDevBase, _ = cmd.Flags().GetFloat64("std-dev-base")
	}
	if cmd.Flags().Changed("bias-pre") {
		cfg.Simulation.BiasPre, _ = cmd.Flags().GetFloat64("bias-pre")
	}
	if cmd.Flags().Changed("bias-post") {
		cfg.Simulation.BiasPost, _ = cmd.Flags().GetFloat64("bias-post")
	}
	if cmd.Flags().Changed("seed") {
		cfg.Simulation.Seed, _ = cmd.Flags().GetUint64("seed")
	}
	if cmd.Flags().Changed("output") {
		cfg.Output.Path, _ = cmd.Flags().GetString("output")
	}
}

func archiveRun(cmd *cobra.Command, root string, result *simulate.Result, outputPath string) (string, error) {
	s, err := store.Open(root)
	if err != nil {
		return "", fmt.Errorf("failed to open run archive: %w", err)
	}
	defer s.Close()

	now := time.Now().UTC()
	rec := store.RunRecord{
		ID:         store.NewRunID(now),
		CreatedAt:  now,
		Params:     result.Params,
		Stats:      result.Stats,
		OutputPath: outputPath,
	}
	if err := s.SaveRun(cmd.Context(), rec, result.Rows); err != nil {
		return "", fmt.Errorf("failed to archive run: %w", err)
	}
	return rec.ID, nil
}
