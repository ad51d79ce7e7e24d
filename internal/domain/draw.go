package domain

import "fmt"

// Shuffle returns a uniformly random permutation of s using Fisher-Yates.
// The input slice is left untouched.
func Shuffle[T any](s []T, rng RNG) []T {
	out := make([]T, len(s))
	copy(out, s)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// SelectRandom draws count distinct cards from pool without replacement.
func SelectRandom(pool []Card, count int, rng RNG) ([]Card, error) {
	if count < 1 || count > len(pool) {
		return nil, fmt.Errorf("%w: requested %d cards but only %d are available",
			ErrInvalidRequest, count, len(pool))
	}
	return Shuffle(pool, rng)[:count], nil
}

// Orient tags each card with an orientation. When includeReversed is false
// every card is upright; otherwise each card is flipped independently 50/50.
func Orient(cards []Card, includeReversed bool, rng RNG) []DrawnCard {
	out := make([]DrawnCard, len(cards))
	for i, c := range cards {
		reversed := includeReversed && rng.Intn(2) == 1
		out[i] = DrawnCard{
			Card:        c,
			IsReversed:  reversed,
			Orientation: OrientationOf(reversed),
		}
	}
	return out
}
