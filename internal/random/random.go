// Package random provides the seeded uniform source shared by the engine and
// the growth behaviors.
package random

import (
	"math/rand/v2"
	"sync"
)

// Source is a seeded PCG generator safe for concurrent use. Two sources
// created with the same seed produce the same sequence.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a source for the given seed.
func New(seed uint64) *Source {
	return &Source{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Uniform returns a value in [min, max).
func (s *Source) Uniform(min, max float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return min + s.rng.Float64()*(max-min)
}

// Float64 returns a value in [0, 1).
func (s *Source) Float64() float64 {
	return s.Uniform(0, 1)
}

// Chance reports true with probability p.
func (s *Source) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	return s.Float64() < p
}

// Normal returns a normally distributed value with the given mean and
// standard deviation.
func (s *Source) Normal(mean, stddev float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return mean + s.rng.NormFloat64()*stddev
}
