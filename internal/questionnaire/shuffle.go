package questionnaire

import "math/rand/v2"

// Rand is the source of randomness used by Shuffle.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Shuffle returns a uniformly random permutation of items using Fisher-Yates.
// The input slice is left untouched. A nil r uses the process-wide generator.
func Shuffle(items []Item, r Rand) []Item {
	if r == nil {
		r = globalRand{}
	}

	out := make([]Item, len(items))
	copy(out, items)

	for i := len(out) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
