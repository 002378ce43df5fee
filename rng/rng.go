// Package rng provides the two random handles the engine uses: a reproducible
// stream derived from a seed string, and an independently seeded source for
// live gameplay noise.
package rng

import (
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Mixed into the second PCG word so that seeds hashing to small values still
// produce well spread streams.
const pcgStream = 0x9e3779b97f4a7c15

var entropyCounter atomic.Uint64

// New returns a deterministic generator for the given seed string.
// The same seed always yields the same sequence.
func New(seed string) *rand.Rand {
	h := xxhash.Sum64String(seed)
	return rand.New(rand.NewPCG(h, h^pcgStream))
}

// Salted returns a deterministic generator for seed and salt, so that
// independent draws over the same base seed do not share a stream.
func Salted(seed, salt string) *rand.Rand {
	return New(seed + ":" + salt)
}

// Entropy returns a generator that is not tied to any maze seed.
// Two calls never return generators with the same state.
func Entropy() *rand.Rand {
	n := entropyCounter.Add(1)
	return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), n^pcgStream))
}

// Shuffle returns a shuffled copy of items. The order depends only on seed
// and salt. Items are swapped from the end towards the front.
func Shuffle[T any](items []T, seed, salt string) []T {
	r := Salted(seed, salt)
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
