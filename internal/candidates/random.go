package candidates

import "math/rand/v2"

// Randomizer is the source of randomness for generation. *rand.Rand satisfies it.
type Randomizer interface {
	IntN(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// globalRand delegates to the concurrency-safe top-level math/rand/v2 functions.
type globalRand struct{}

func (globalRand) IntN(n int) int                     { return rand.IntN(n) }
func (globalRand) Float64() float64                   { return rand.Float64() }
func (globalRand) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// NewSeededRandomizer returns a deterministic Randomizer. It is not safe for concurrent use.
func NewSeededRandomizer(seed uint64) Randomizer {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func pick[T any](r Randomizer, items []T) T {
	return items[r.IntN(len(items))]
}

// intRange returns a uniform integer in [lo, hi].
func intRange(r Randomizer, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}

func chance(r Randomizer, p float64) bool {
	return r.Float64() < p
}

func shuffled[T any](r Randomizer, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func without(items []string, exclude ...string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		skip := false
		for _, e := range exclude {
			if item == e {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, item)
		}
	}
	return out
}

// window returns items[lo:hi] clamped to the slice bounds.
func window[T any](items []T, lo, hi int) []T {
	if lo > len(items) {
		lo = len(items)
	}
	if hi > len(items) {
		hi = len(items)
	}
	if hi < lo {
		hi = lo
	}
	return items[lo:hi]
}
