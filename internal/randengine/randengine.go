// Package randengine wraps golang.org/x/exp/rand behind a seeded, mutex
// guarded Engine, so every sampling operation in the low-level planner
// draws from one reproducible stream given one seed.
package randengine

import (
	"sync"

	"golang.org/x/exp/rand"
)

// Engine is a thread-safe seeded random source.
type Engine struct {
	*rand.Rand
	mtx sync.Mutex
}

// New creates a seeded Engine.
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed))}
}

// Float64Safe returns a random float64 in [0, 1) under lock.
func (e *Engine) Float64Safe() float64 {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.Float64()
}

// PTrue returns true with probability p (non thread-safe, for hot loops
// that already run single-threaded inside one low-level planner call).
func (e *Engine) PTrue(p float64) bool {
	return e.Float64() < p
}

// UniformRange returns a uniform float64 in [lo, hi).
func (e *Engine) UniformRange(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + e.Float64()*(hi-lo)
}

// IntnSafe returns a random int in [0, n) under lock.
func (e *Engine) IntnSafe(n int) int {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.Intn(n)
}
