// Package random provides the random-number source and weighted selection
// helpers used by catalog generation and item rolling.
package random

import (
	"math/rand"
	"sync"
	"time"
)

// RNG is the random source injected into the rolling and generation services.
// Implementations must return values in [0, 1).
type RNG interface {
	Float64() float64
}

// lockedRNG wraps a math/rand source behind a mutex so a single RNG can be
// shared across request goroutines.
type lockedRNG struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (r *lockedRNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}

// New returns a time-seeded RNG suitable for production use
func New() RNG {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic RNG for tests
func NewSeeded(seed int64) RNG {
	return &lockedRNG{rnd: rand.New(rand.NewSource(seed))}
}
