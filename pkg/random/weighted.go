package random

import "errors"

// ErrNoCandidates is returned when a weighted pick is attempted over an
// empty candidate set.
var ErrNoCandidates = errors.New("weighted pick over empty candidate set")

// WeightedPick selects one element by cumulative-sum roulette: weights are
// normalized to sum to 1, a uniform draw walks the running remainder, and the
// first element that drives it to zero or below wins. Non-positive total
// weight degenerates to a uniform pick over the candidates.
//
// The last element is returned when float rounding leaves the remainder
// positive after the full walk.
func WeightedPick[T any](items []T, weight func(T) float64, rng RNG) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrNoCandidates
	}

	total := 0.0
	for _, item := range items {
		if w := weight(item); w > 0 {
			total += w
		}
	}

	r := rng.Float64()
	if total <= 0 {
		return items[int(r*float64(len(items)))%len(items)], nil
	}

	for _, item := range items {
		w := weight(item)
		if w <= 0 {
			continue
		}
		r -= w / total
		if r <= 0 {
			return item, nil
		}
	}

	return items[len(items)-1], nil
}
