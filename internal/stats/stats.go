// Package stats computes paired-sample inferential statistics over
// pre/post score differences: mean difference, Bessel-corrected variance,
// the paired t-statistic, and Cohen's d effect size.
package stats

import (
	"errors"
	"fmt"
	"math"
)

// ErrInsufficientVariance reports that the difference sequence has no
// spread (fewer than two samples, or all differences identical), so the
// standard error and effect size are undefined. Callers surface this as a
// distinct condition instead of printing Inf or NaN.
var ErrInsufficientVariance = errors.New("insufficient variance to compute effect size")

// Paired holds the results of a paired-sample analysis.
// The t-statistic is a one-sample t-test of the differences against zero.
type Paired struct {
	N            int     `json:"n"`
	PreMean      float64 `json:"pre_mean"`
	PostMean     float64 `json:"post_mean"`
	DiffMean     float64 `json:"diff_mean"`
	DiffVariance float64 `json:"diff_variance"`
	DiffStdDev   float64 `json:"diff_std_dev"`
	StdError     float64 `json:"std_error"`
	TStatistic   float64 `json:"t_statistic"`
	CohensD      float64 `json:"cohens_d"`
}

// Compute derives the paired statistics from accumulated column sums and
// the ordered difference sequence. The variance is Bessel-corrected
// (divide by N-1) and computed with a second pass over diffs.
func Compute(preSum, postSum float64, diffs []float64) (Paired, error) {
	n := len(diffs)
	if n < 2 {
		return Paired{}, fmt.Errorf("sample size %d: %w", n, ErrInsufficientVariance)
	}

	nf := float64(n)
	var diffSum float64
	for _, d := range diffs {
		diffSum += d
	}

	p := Paired{
		N:        n,
		PreMean:  preSum / nf,
		PostMean: postSum / nf,
		DiffMean: diffSum / nf,
	}

	var sumSq float64
	for _, d := range diffs {
		dev := d - p.DiffMean
		sumSq += dev * dev
	}
	p.DiffVariance = sumSq / (nf - 1)
	p.DiffStdDev = math.Sqrt(p.DiffVariance)

	if p.DiffStdDev == 0 {
		return Paired{}, fmt.Errorf("all %d differences identical: %w", n, ErrInsufficientVariance)
	}

	p.StdError = p.DiffStdDev / math.Sqrt(nf)
	p.TStatistic = p.DiffMean / p.StdError
	p.CohensD = p.DiffMean / p.DiffStdDev

	return p, nil
}

// FromScores derives the paired statistics directly from pre/post score
// columns. Used when re-analyzing a previously written score table.
func FromScores(pre, post []int) (Paired, error) {
	if len(pre) != len(post) {
		return Paired{}, fmt.Errorf("column length mismatch: %d pre vs %d post scores", len(pre), len(post))
	}

	var preSum, postSum float64
	diffs := make([]float64, len(pre))
	for i := range pre {
		preSum += float64(pre[i])
		postSum += float64(post[i])
		diffs[i] = float64(post[i] - pre[i])
	}

	return Compute(preSum, postSum, diffs)
}

// Accumulator is a streaming mean/variance accumulator over a single
// column. It tracks sum and sum of squares, so variance needs no second
// pass; Compute's two-pass variance is the reference the accumulator is
// checked against in tests.
type Accumulator struct {
	Count float64
	Sum   float64
	Sumsq float64
}

// Add folds one observation into the accumulator.
func (a *Accumulator) Add(v float64) {
	a.Count++
	a.Sum += v
	a.Sumsq += v * v
}

// Mean returns the arithmetic mean of the observations so far.
func (a *Accumulator) Mean() float64 {
	if a.Count == 0 {
		return 0
	}
	return a.Sum / a.Count
}

// Variance returns the Bessel-corrected sample variance. Floating-point
// cancellation can push the raw value slightly negative; it is floored at
// zero. Fewer than two observations yield zero.
func (a *Accumulator) Variance() float64 {
	if a.Count < 2 {
		return 0
	}
	mean := a.Mean()
	variance := a.Sumsq - a.Count*mean*mean
	if variance < 0 {
		return 0
	}
	return variance / (a.Count - 1)
}

// StdDev returns the sample standard deviation.
func (a *Accumulator) StdDev() float64 {
	return math.Sqrt(a.Variance())
}
