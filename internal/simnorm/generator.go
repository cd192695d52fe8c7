// Package simnorm generates standard-normal random variates from uniform
// randomness using the Box-Muller transform. Generators own their random
// source, so seeded runs are reproducible and independent of any
// process-global state.
package simnorm

import (
	"math"
	"math/rand/v2"
)

// UniformSource produces uniform random values in [0, 1).
// *rand.Rand satisfies this interface; tests inject deterministic sources.
type UniformSource interface {
	Float64() float64
}

// Generator produces standard-normal variates from a uniform source.
type Generator struct {
	src UniformSource
}

// New creates a Generator backed by a seeded PCG source.
// The same seed always yields the same variate sequence.
func New(seed uint64) *Generator {
	return &Generator{src: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewFromSource creates a Generator that draws from src.
func NewFromSource(src UniformSource) *Generator {
	return &Generator{src: src}
}

// Pair returns two independent standard-normal variates via the Box-Muller
// transform. It consumes two uniform draws. A draw of exactly 0 for the
// radial component would make the logarithm undefined, so it is silently
// re-drawn; with a seeded source this is still deterministic.
func (g *Generator) Pair() (z0, z1 float64) {
	u1 := g.src.Float64()
	for u1 == 0 {
		u1 = g.src.Float64()
	}
	u2 := g.src.Float64()

	r := math.Sqrt(-2.0 * math.Log(u1))
	z0 = r * math.Cos(2.0*math.Pi*u2)
	z1 = r * math.Sin(2.0*math.Pi*u2)
	return z0, z1
}

// Norm returns a single standard-normal variate. It consumes two uniform
// draws and discards the second variate of the underlying pair.
func (g *Generator) Norm() float64 {
	z0, _ := g.Pair()
	return z0
}
