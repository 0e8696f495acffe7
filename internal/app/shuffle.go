package app

import (
	"math/rand"
	"time"
)

// OptionShuffler produces randomized option orderings for questions. One
// shuffle happens per question per load; re-renders reuse the stored order.
type OptionShuffler struct {
	rnd *rand.Rand
}

func NewOptionShuffler() *OptionShuffler {
	return NewOptionShufflerWithSource(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewOptionShufflerWithSource allows deterministic shuffles in tests.
func NewOptionShufflerWithSource(rnd *rand.Rand) *OptionShuffler {
	return &OptionShuffler{rnd: rnd}
}

// Shuffle returns a uniformly random permutation of options as a new slice.
// The input is never mutated; the canonical option data stays intact.
func (s *OptionShuffler) Shuffle(options []string) []string {
	out := make([]string, len(options))
	copy(out, options)
	s.rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
