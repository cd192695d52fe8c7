// Package simulate runs the paired pre/post assessment simulation: for
// each simulated subject it synthesizes a pre-quiz and post-quiz score,
// records the difference, and hands the accumulated differences to the
// statistics engine.
package simulate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edstats/pairsim/internal/logging"
	"github.com/edstats/pairsim/internal/score"
	"github.com/edstats/pairsim/internal/simnorm"
	"github.com/edstats/pairsim/internal/stats"
)

// Params fully determines a simulation run. Two runs with equal Params
// produce identical rows.
type Params struct {
	// SampleSize is the number of simulated subjects.
	SampleSize int `json:"sample_size"`

	// QuizItems is the number of items on the simulated quiz.
	QuizItems int `json:"quiz_items"`

	// StdDevBase is the spread base for score shaping.
	StdDevBase float64 `json:"std_dev_base"`

	// BiasPre shifts the pre-quiz score distribution; in [-1, 1].
	BiasPre float64 `json:"bias_pre"`

	// BiasPost shifts the post-quiz score distribution; in [-1, 1].
	BiasPost float64 `json:"bias_post"`

	// Seed seeds the random source. The same seed replays the same run.
	Seed uint64 `json:"seed"`
}

// DefaultParams returns the parameters of the assessment study:
// 235 subjects, 50 quiz items, bias 0.15 before and 0.60 after.
func DefaultParams() Params {
	return Params{
		SampleSize: 235,
		QuizItems:  50,
		StdDevBase: 20,
		BiasPre:    0.15,
		BiasPost:   0.60,
	}
}

// ScoreConfig returns the score-shaping configuration slice of the params.
func (p Params) ScoreConfig() score.Config {
	return score.Config{QuizItems: p.QuizItems, StdDevBase: p.StdDevBase}
}

// Validate checks that the parameters describe a runnable simulation.
func (p Params) Validate() error {
	if p.SampleSize <= 0 {
		return fmt.Errorf("sample_size must be positive, got %d", p.SampleSize)
	}
	if err := p.ScoreConfig().Validate(); err != nil {
		return err
	}
	if err := score.ValidateBias(p.BiasPre); err != nil {
		return fmt.Errorf("bias_pre: %w", err)
	}
	if err := score.ValidateBias(p.BiasPost); err != nil {
		return fmt.Errorf("bias_post: %w", err)
	}
	return nil
}

// Row is one simulated subject: pre-quiz score, post-quiz score, and
// their difference. Rows are immutable after creation.
type Row struct {
	ID   int `json:"id"`
	Pre  int `json:"pre"`
	Post int `json:"post"`
	Diff int `json:"diff"`
}

// Result holds everything a run produced. Rows are always populated;
// Stats is zero when the run's statistics could not be computed (see
// Runner.Run).
type Result struct {
	Params Params       `json:"params"`
	Rows   []Row        `json:"rows"`
	Stats  stats.Paired `json:"stats"`
}

// Runner orchestrates a single simulation run.
type Runner struct {
	params Params
	synth  *score.Synthesizer
	log    *slog.Logger
	trace  *logging.RunLogger
}

// NewRunner creates a Runner for the given parameters. log may be nil to
// discard operational output; trace may be nil to skip row tracing.
func NewRunner(p Params, log *slog.Logger, trace *logging.RunLogger) (*Runner, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation params: %w", err)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	synth, err := score.NewSynthesizer(p.ScoreConfig(), simnorm.New(p.Seed))
	if err != nil {
		return nil, err
	}

	return &Runner{params: p, synth: synth, log: log, trace: trace}, nil
}

// Run executes the simulation and computes the paired statistics.
//
// When the statistics are degenerate (stats.ErrInsufficientVariance, e.g.
// sample size 1), Run returns the Result with its rows populated alongside
// the error, so the caller can still persist the score table.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	n := r.params.SampleSize
	r.log.Debug("starting simulation",
		"sample_size", n,
		"quiz_items", r.params.QuizItems,
		"bias_pre", r.params.BiasPre,
		"bias_post", r.params.BiasPost,
		"seed", r.params.Seed)

	rows := make([]Row, 0, n)
	diffs := make([]float64, 0, n)
	var preSum, postSum, diffSum float64

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("simulation cancelled at row %d: %w", i, err)
		}

		pre := r.synth.Score(r.params.BiasPre)
		post := r.synth.Score(r.params.BiasPost)
		diff := post - pre

		rows = append(rows, Row{ID: i, Pre: pre, Post: post, Diff: diff})

		preSum += float64(pre)
		postSum += float64(post)
		diffSum += float64(diff)
		diffs = append(diffs, float64(diff))

		r.trace.Log(map[string]any{
			"row":  i,
			"pre":  pre,
			"post": post,
			"diff": diff,
		})
	}

	result := &Result{Params: r.params, Rows: rows}

	paired, err := stats.Compute(preSum, postSum, diffs)
	if err != nil {
		return result, err
	}
	result.Stats = paired

	r.log.Debug("simulation complete",
		"rows", len(rows),
		"diff_mean", paired.DiffMean,
		"t_statistic", paired.TStatistic)

	return result, nil
}
