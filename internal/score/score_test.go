package score

import (
	"math"
	"testing"

	"github.com/edstats/pairsim/internal/simnorm"
)

// constSource always returns the same uniform value.
type constSource struct{ v float64 }

func (s constSource) Float64() float64 { return s.v }

// pairSource alternates between two uniform values, so every Box-Muller
// pair sees the same (u1, u2).
type pairSource struct {
	u1, u2 float64
	next   int
}

func (s *pairSource) Float64() float64 {
	if s.next == 0 {
		s.next = 1
		return s.u1
	}
	s.next = 0
	return s.u2
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"zero items", Config{QuizItems: 0, StdDevBase: 20}, true},
		{"negative items", Config{QuizItems: -5, StdDevBase: 20}, true},
		{"zero base", Config{QuizItems: 50, StdDevBase: 0}, true},
		{"base equals items", Config{QuizItems: 50, StdDevBase: 50}, true},
		{"base above items", Config{QuizItems: 50, StdDevBase: 60}, true},
		{"small valid", Config{QuizItems: 10, StdDevBase: 4}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigDerivedValues(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.Extremes(); got != 30 {
		t.Errorf("Extremes() = %g, want 30", got)
	}
	if got := cfg.MedianHalf(); got != 15 {
		t.Errorf("MedianHalf() = %g, want 15", got)
	}
}

func TestValidateBias(t *testing.T) {
	tests := []struct {
		bias    float64
		wantErr bool
	}{
		{0, false},
		{0.15, false},
		{0.60, false},
		{-1.0, false},
		{1.0, false},
		{1.01, true},
		{-1.5, true},
	}
	for _, tt := range tests {
		err := ValidateBias(tt.bias)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateBias(%g) error = %v, wantErr %v", tt.bias, err, tt.wantErr)
		}
	}
}

func TestShapeBounds(t *testing.T) {
	gen := simnorm.New(11)
	s, err := NewSynthesizer(DefaultConfig(), gen)
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}
	for i := 0; i < 10000; i++ {
		v := s.Shape()
		if v <= 0 || v >= s.Config().StdDevBase {
			t.Fatalf("Shape() = %g, want within (0, %g)", v, s.Config().StdDevBase)
		}
	}
}

func TestScorePinnedAtLowerBoundary(t *testing.T) {
	// u2=0.5 puts the Box-Muller angle at pi (cos = -1), and a tiny u1
	// makes the radius large, so the variate is deeply negative and the
	// sigmoid squashes the shaped term to ~0. With zero bias the score
	// must collapse to exactly floor(medianHalf) = 15.
	gen := simnorm.NewFromSource(&pairSource{u1: 1e-300, u2: 0.5})
	s, err := NewSynthesizer(DefaultConfig(), gen)
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}
	if got := s.Score(0); got != 15 {
		t.Errorf("Score(0) = %d, want 15", got)
	}
}

func TestScorePinnedAtMedian(t *testing.T) {
	// u1=1 collapses the radius to 0, so the variate is exactly 0 and the
	// sigmoid sits at its median: shape = 0.5 * 20 = 10.
	newPinned := func() *Synthesizer {
		gen := simnorm.NewFromSource(constSource{v: 1.0})
		s, err := NewSynthesizer(DefaultConfig(), gen)
		if err != nil {
			t.Fatalf("NewSynthesizer: %v", err)
		}
		return s
	}

	tests := []struct {
		name string
		bias float64
		want int
	}{
		{"unbiased", 0, 25},     // 15 + 0 + 10
		{"full positive", 1, 40}, // 15 + 15 + 10
		{"full negative", -1, 10}, // 15 - 15 + 10
		{"post-quiz bias", 0.60, 34}, // 15 + 9 + 10
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newPinned().Score(tt.bias); got != tt.want {
				t.Errorf("Score(%g) = %d, want %d", tt.bias, got, tt.want)
			}
		})
	}
}

func TestScoreBiasOrdering(t *testing.T) {
	// With identical randomness, a higher bias can never produce a lower
	// score. Replay the same seed for each bias level.
	const n = 500
	means := make([]float64, 0, 3)
	for _, bias := range []float64{-0.5, 0.15, 0.60} {
		gen := simnorm.New(99)
		s, err := NewSynthesizer(DefaultConfig(), gen)
		if err != nil {
			t.Fatalf("NewSynthesizer: %v", err)
		}
		var sum float64
		for i := 0; i < n; i++ {
			sum += float64(s.Score(bias))
		}
		means = append(means, sum/n)
	}
	if !(means[0] < means[1] && means[1] < means[2]) {
		t.Errorf("mean scores not ordered by bias: %v", means)
	}
}

func TestScoreDeterminism(t *testing.T) {
	a, err := NewSynthesizer(DefaultConfig(), simnorm.New(5))
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}
	b, err := NewSynthesizer(DefaultConfig(), simnorm.New(5))
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}
	for i := 0; i < 200; i++ {
		if ga, gb := a.Score(0.15), b.Score(0.15); ga != gb {
			t.Fatalf("draw %d: %d != %d with identical seeds", i, ga, gb)
		}
	}
}

func TestSigmoid(t *testing.T) {
	if got := sigmoid(0); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("sigmoid(0) = %g, want 0.5", got)
	}
	if got := sigmoid(40); got <= 0.999 {
		t.Errorf("sigmoid(40) = %g, want ~1", got)
	}
	if got := sigmoid(-40); got >= 0.001 {
		t.Errorf("sigmoid(-40) = %g, want ~0", got)
	}
}
