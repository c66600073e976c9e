// Package weighted holds the random primitives shared by the scheduler and
// the dispatch policy: one categorical draw and one uniform integer draw.
package weighted

import (
	"errors"
	"math/rand/v2"
	"sync"
)

var (
	ErrNoWeights      = errors.New("no positive weights to sample from")
	ErrNegativeWeight = errors.New("weights must be non-negative")
)

// Rand is the subset of *rand.Rand used here. Implementations must be safe
// for concurrent use since every chat loop draws from the same source.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

type globalRand struct{}

func (globalRand) IntN(n int) int   { return rand.IntN(n) }
func (globalRand) Float64() float64 { return rand.Float64() }

// Global returns a source backed by the math/rand/v2 top-level functions.
func Global() Rand {
	return globalRand{}
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New returns a deterministic, mutex-guarded source. Used by tests.
func New(seed uint64) Rand {
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// Pick draws one index from weights treated as a categorical distribution.
// Weights need not sum to one.
func Pick(r Rand, weights []float64) (int, error) {
	var total float64
	for _, w := range weights {
		if w < 0 {
			return 0, ErrNegativeWeight
		}
		total += w
	}

	if total <= 0 {
		return 0, ErrNoWeights
	}

	target := r.Float64() * total
	last := -1
	for i, w := range weights {
		if w == 0 {
			continue
		}
		last = i
		if target < w {
			return i, nil
		}
		target -= w
	}

	// float drift can leave target marginally above the final bucket
	return last, nil
}

// Between returns a uniform integer in [min, max].
func Between(r Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + r.IntN(max-min+1)
}
