package dynamics

import (
	"math/rand"
	"time"
)

// JitterSource yields values in [-1, 1] used to de-clump layout groups
type JitterSource interface {
	Next() float64
}

type seededJitter struct {
	rng *rand.Rand
}

// NewSeededJitter returns a reproducible jitter source. A zero seed uses the clock.
func NewSeededJitter(seed int64) JitterSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &seededJitter{rng: rand.New(rand.NewSource(seed))}
}

func (s *seededJitter) Next() float64 {
	return s.rng.Float64()*2 - 1
}

// FixedJitter always yields the same value, clamped to [-1, 1]
type FixedJitter float64

// Next implements JitterSource
func (f FixedJitter) Next() float64 {
	return clamp(float64(f), -1, 1)
}
