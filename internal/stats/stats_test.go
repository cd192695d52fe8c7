package stats

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestComputeKnownValues(t *testing.T) {
	// pre:  {10, 12, 14, 16}, post: {15, 18, 17, 22}
	// diffs: {5, 6, 3, 6}, diffMean = 5, variance = (0+1+4+1)/3 = 2
	pre := []int{10, 12, 14, 16}
	post := []int{15, 18, 17, 22}

	p, err := FromScores(pre, post)
	if err != nil {
		t.Fatalf("FromScores: %v", err)
	}

	if p.N != 4 {
		t.Errorf("N = %d, want 4", p.N)
	}
	if !almostEqual(p.PreMean, 13) {
		t.Errorf("PreMean = %g, want 13", p.PreMean)
	}
	if !almostEqual(p.PostMean, 18) {
		t.Errorf("PostMean = %g, want 18", p.PostMean)
	}
	if !almostEqual(p.DiffMean, 5) {
		t.Errorf("DiffMean = %g, want 5", p.DiffMean)
	}
	if !almostEqual(p.DiffVariance, 2) {
		t.Errorf("DiffVariance = %g, want 2", p.DiffVariance)
	}
	wantStdDev := math.Sqrt(2)
	if !almostEqual(p.DiffStdDev, wantStdDev) {
		t.Errorf("DiffStdDev = %g, want %g", p.DiffStdDev, wantStdDev)
	}
	wantStdErr := wantStdDev / 2 // sqrt(N) = 2
	if !almostEqual(p.StdError, wantStdErr) {
		t.Errorf("StdError = %g, want %g", p.StdError, wantStdErr)
	}
	if !almostEqual(p.TStatistic, 5/wantStdErr) {
		t.Errorf("TStatistic = %g, want %g", p.TStatistic, 5/wantStdErr)
	}
	if !almostEqual(p.CohensD, 5/wantStdDev) {
		t.Errorf("CohensD = %g, want %g", p.CohensD, 5/wantStdDev)
	}
}

func TestDiffMeanEqualsMeanDifference(t *testing.T) {
	pre := []int{20, 25, 17, 31, 22, 19}
	post := []int{28, 30, 25, 35, 21, 33}
	p, err := FromScores(pre, post)
	if err != nil {
		t.Fatalf("FromScores: %v", err)
	}
	if !almostEqual(p.DiffMean, p.PostMean-p.PreMean) {
		t.Errorf("DiffMean = %g, PostMean-PreMean = %g; want equal", p.DiffMean, p.PostMean-p.PreMean)
	}
}

func TestComputeInsufficientVariance(t *testing.T) {
	tests := []struct {
		name  string
		diffs []float64
	}{
		{"empty", nil},
		{"single sample", []float64{3}},
		{"identical differences", []float64{4, 4, 4, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(0, 0, tt.diffs)
			if err == nil {
				t.Fatal("Compute() error = nil, want ErrInsufficientVariance")
			}
			if !errors.Is(err, ErrInsufficientVariance) {
				t.Errorf("Compute() error = %v, want ErrInsufficientVariance", err)
			}
		})
	}
}

func TestFromScoresLengthMismatch(t *testing.T) {
	_, err := FromScores([]int{1, 2, 3}, []int{1, 2})
	if err == nil {
		t.Fatal("FromScores() error = nil, want mismatch error")
	}
	if errors.Is(err, ErrInsufficientVariance) {
		t.Error("length mismatch should not report ErrInsufficientVariance")
	}
}

func TestAccumulatorMatchesTwoPass(t *testing.T) {
	diffs := []float64{5, -2, 7, 0, 3, 11, -4, 6, 2, 9}

	var acc Accumulator
	var preSum, postSum float64
	for i, d := range diffs {
		acc.Add(d)
		// Arbitrary pre column; post follows from the diff.
		preSum += float64(10 + i)
		postSum += float64(10+i) + d
	}

	p, err := Compute(preSum, postSum, diffs)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if math.Abs(acc.Mean()-p.DiffMean) > 1e-9 {
		t.Errorf("streaming mean = %g, two-pass = %g", acc.Mean(), p.DiffMean)
	}
	if math.Abs(acc.Variance()-p.DiffVariance) > 1e-9 {
		t.Errorf("streaming variance = %g, two-pass = %g", acc.Variance(), p.DiffVariance)
	}
	if math.Abs(acc.StdDev()-p.DiffStdDev) > 1e-9 {
		t.Errorf("streaming stddev = %g, two-pass = %g", acc.StdDev(), p.DiffStdDev)
	}
}

func TestAccumulatorDegenerate(t *testing.T) {
	var acc Accumulator
	if acc.Mean() != 0 || acc.Variance() != 0 {
		t.Errorf("empty accumulator: mean = %g, variance = %g, want 0, 0", acc.Mean(), acc.Variance())
	}
	acc.Add(5)
	if acc.Variance() != 0 {
		t.Errorf("single-sample variance = %g, want 0", acc.Variance())
	}
	if acc.Mean() != 5 {
		t.Errorf("single-sample mean = %g, want 5", acc.Mean())
	}
}
