package bracket

import "math/rand/v2"

// Shuffler decides the order competitors and pairings are laid out in.
// It has the same shape as rand.Shuffle so implementations can permute any slice.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type RandomShuffler struct{}

func (RandomShuffler) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

// KeepOrder leaves the input order untouched.
type KeepOrder struct{}

func (KeepOrder) Shuffle(int, func(i, j int)) {}

// Reverse flips the order; mostly handy in tests that need a known, non-identity permutation.
type Reverse struct{}

func (Reverse) Shuffle(n int, swap func(i, j int)) {
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		swap(i, j)
	}
}
