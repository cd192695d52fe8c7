// Package score synthesizes plausible integer quiz scores from
// normally-distributed randomness. A sigmoid squash removes the unbounded
// tails of the normal distribution, and a bias factor shifts the resulting
// distribution up or down to simulate weaker or stronger cohorts.
package score

import (
	"fmt"
	"math"

	"github.com/edstats/pairsim/internal/simnorm"
)

// Config describes the shape of the synthesized score distribution.
type Config struct {
	// QuizItems is the total number of items on the simulated quiz.
	QuizItems int

	// StdDevBase is the target spread for the shaped variate. It also
	// defines the extreme band: scores concentrate in the middle
	// QuizItems - StdDevBase range rather than near 0 or QuizItems.
	StdDevBase float64
}

// DefaultConfig returns the distribution shape used by the assessment study:
// a 50-item quiz with a spread base of 20, centering scores around 15-35.
func DefaultConfig() Config {
	return Config{
		QuizItems:  50,
		StdDevBase: 20,
	}
}

// Validate checks that the configuration describes a usable distribution.
func (c Config) Validate() error {
	if c.QuizItems <= 0 {
		return fmt.Errorf("quiz_items must be positive, got %d", c.QuizItems)
	}
	if c.StdDevBase <= 0 {
		return fmt.Errorf("std_dev_base must be positive, got %g", c.StdDevBase)
	}
	if c.StdDevBase >= float64(c.QuizItems) {
		return fmt.Errorf("std_dev_base (%g) must be smaller than quiz_items (%d)", c.StdDevBase, c.QuizItems)
	}
	return nil
}

// Extremes is the band of scores treated as unrealistically high or low.
func (c Config) Extremes() float64 {
	return float64(c.QuizItems) - c.StdDevBase
}

// MedianHalf is the lower edge of the central score band; an unbiased
// synthesized score distributes above it.
func (c Config) MedianHalf() float64 {
	return c.Extremes() / 2
}

// ValidateBias checks that a bias factor is within [-1, 1].
func ValidateBias(bias float64) error {
	if bias < -1.0 || bias > 1.0 {
		return fmt.Errorf("bias factor must be in [-1.0, 1.0], got %g", bias)
	}
	return nil
}

// Synthesizer produces integer quiz scores from a normal-deviate generator.
type Synthesizer struct {
	cfg Config
	gen *simnorm.Generator
}

// NewSynthesizer creates a Synthesizer drawing randomness from gen.
func NewSynthesizer(cfg Config, gen *simnorm.Generator) (*Synthesizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid score config: %w", err)
	}
	return &Synthesizer{cfg: cfg, gen: gen}, nil
}

// Config returns the synthesizer's distribution configuration.
func (s *Synthesizer) Config() Config {
	return s.cfg
}

// Shape draws one normal variate and squashes it into (0, StdDevBase).
// The sigmoid maps (-inf, inf) smoothly onto (0, 1) with 0.5 as the
// median, so no hard clamping is needed downstream.
func (s *Synthesizer) Shape() float64 {
	return sigmoid(s.gen.Norm()) * s.cfg.StdDevBase
}

// Score synthesizes one integer quiz score. A bias of 0 centers the
// distribution at MedianHalf; positive bias shifts scores upward, negative
// downward. Callers validate bias with ValidateBias before simulation
// starts. The result is not clamped into [0, QuizItems]: out-of-range
// values are possible but statistically rare, and clamping would distort
// the distribution the study depends on.
func (s *Synthesizer) Score(bias float64) int {
	medianHalf := s.cfg.MedianHalf()
	alpha := bias * medianHalf
	// Real-world scores have no decimals; round down.
	return int(math.Floor(medianHalf + alpha + s.Shape()))
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
