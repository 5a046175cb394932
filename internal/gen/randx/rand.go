// Package randx provides the explicit pseudo-random source threaded through
// every generator. There is no package-level stream: a seeded generator call
// derives its own sub-stream, so it never shifts the draws seen by the caller.
package randx

import (
	"math"
	"math/rand/v2"
)

// Stream names the consumer of a derived sub-stream.
type Stream uint64

const (
	StreamLayout Stream = iota + 1
	StreamTree
	StreamCrystal
	StreamHouse
	StreamShop
	StreamSkyscraper
	StreamHumanoid
)

// Rand is a seeded PCG stream. It is not safe for concurrent use.
type Rand struct {
	r *rand.Rand
}

// New returns the stream for seed.
func New(seed int64) *Rand {
	return &Rand{r: rand.New(rand.NewPCG(uint64(seed), mix64(uint64(seed))))}
}

// Derive returns the sub-stream for (seed, stream). It does not depend on, or
// advance, any other Rand.
func Derive(seed int64, stream Stream) *Rand {
	h := Hash2(seed, uint64(stream), 0)
	return &Rand{r: rand.New(rand.NewPCG(h, mix64(h)))}
}

// Float64 returns a value in [0,1).
func (x *Rand) Float64() float64 { return x.r.Float64() }

// Uniform returns a value in [lo,hi).
func (x *Rand) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*x.r.Float64()
}

// IntRange returns an integer in [lo,hi], both ends inclusive.
func (x *Rand) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + x.r.IntN(hi-lo+1)
}

// Pick returns an index in [0,n).
func (x *Rand) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	return x.r.IntN(n)
}

// Bernoulli reports true with probability p.
func (x *Rand) Bernoulli(p float64) bool {
	return x.r.Float64() < p
}

// Angle returns a value in [0,2π).
func (x *Rand) Angle() float64 {
	return x.Uniform(0, 2*math.Pi)
}

// Choose returns a uniformly picked element of s. s must be non-empty.
func Choose[T any](x *Rand, s []T) T {
	return s[x.Pick(len(s))]
}
