// Package sampling holds the random helpers used to vary discovery rows and
// recommendation picks. Randomness comes from an injectable Source so tests
// can pin the sequence.
package sampling

import (
	"math/rand/v2"
	"sync"
	"time"
)

// DiscoverPageCeiling bounds the random page requested for discovery rows.
const DiscoverPageCeiling = 10

// Source yields uniform integers in [0, n).
type Source interface {
	IntN(n int) int
}

type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// NewSource returns a Source seeded from the clock, safe for concurrent use.
func NewSource() Source {
	seed := uint64(time.Now().UnixNano())
	return &lockedSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewSeeded returns a deterministic Source.
func NewSeeded(seed uint64) Source {
	return &lockedSource{rng: rand.New(rand.NewPCG(seed, seed))}
}

// RandomPage returns a page number uniformly in [1, max]. max below 1 is
// treated as 1.
func RandomPage(src Source, max int) int {
	if max < 1 {
		max = 1
	}
	return src.IntN(max) + 1
}

// ShuffleSample returns up to k elements of items in a uniformly random order.
// The input slice is never modified.
func ShuffleSample[T any](src Source, items []T, k int) []T {
	if k <= 0 || len(items) == 0 {
		return []T{}
	}

	shuffled := make([]T, len(items))
	copy(shuffled, items)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	if k > len(shuffled) {
		k = len(shuffled)
	}
	return shuffled[:k]
}
