package hashkit

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultK is the number of hash probes used when a filter is sized
	// explicitly and no better value is known.
	DefaultK = 3
	// ln2Squared is ln(2)^2.
	ln2Squared = math.Ln2 * math.Ln2
	// maxK bounds the probe count chosen by OptimalFilterParams.
	maxK = 30
)

var (
	// ErrInvalidSize is returned when a filter is constructed with zero slots.
	ErrInvalidSize = errors.New("hashkit: size must be positive")

	// ErrInvalidK is returned when a filter is constructed with zero probes.
	ErrInvalidK = errors.New("hashkit: k must be positive")

	// ErrInvalidSeeds is returned when an explicit seed list does not match
	// the number of probes or rows it is meant for.
	ErrInvalidSeeds = errors.New("hashkit: seed count mismatch")

	// ErrInvalidEstimate is returned when a sizing target is out of range.
	ErrInvalidEstimate = errors.New("hashkit: invalid sizing estimate")
)

// OptimalFilterParams calculates the bit-array size and probe count that hit
// fpRate once expectedItems items have been added.
// Returns the size in bits, the number of probes (k), and bits per item.
func OptimalFilterParams(expectedItems uint64, fpRate float64) (size uint64, k uint32, bitsPerItem float64, err error) {
	if expectedItems == 0 {
		return 0, 0, 0, fmt.Errorf("%w: expected items must be positive", ErrInvalidEstimate)
	}
	if fpRate <= 0 || fpRate >= 1 {
		return 0, 0, 0, fmt.Errorf("%w: false positive rate %v not in (0, 1)", ErrInvalidEstimate, fpRate)
	}

	// m = -n ln(p) / ln(2)^2
	bitsPerItem = -math.Log(fpRate) / ln2Squared
	size = uint64(math.Ceil(float64(expectedItems) * bitsPerItem))

	// k = (m/n) ln(2)
	kFloat := float64(size) / float64(expectedItems) * math.Ln2
	k = uint32(math.Round(kFloat))
	k = max(k, 1)
	k = min(k, maxK)

	return size, k, bitsPerItem, nil
}

// EstimateFalsePositiveRate estimates the false positive rate of a filter of
// size bits with k probes after itemsAdded insertions.
// Formula: (1 - e^(-kn/m))^k
func EstimateFalsePositiveRate(size uint64, k uint32, itemsAdded uint64) float64 {
	m := float64(size)
	n := float64(itemsAdded)
	kf := float64(k)

	if m == 0 || n == 0 {
		return 0
	}

	return math.Pow(1-math.Exp(-kf*n/m), kf)
}

// OptimalSketchParams returns the sketch dimensions for which an estimate
// exceeds the true count by more than epsilon*N with probability at most
// delta, where N is the total of all additions.
// width = ceil(e / epsilon), depth = ceil(ln(1 / delta)).
func OptimalSketchParams(epsilon, delta float64) (depth, width uint32, err error) {
	if epsilon <= 0 || epsilon >= 1 {
		return 0, 0, fmt.Errorf("%w: epsilon %v not in (0, 1)", ErrInvalidEstimate, epsilon)
	}
	if delta <= 0 || delta >= 1 {
		return 0, 0, fmt.Errorf("%w: delta %v not in (0, 1)", ErrInvalidEstimate, delta)
	}

	width = uint32(math.Ceil(math.E / epsilon))
	depth = uint32(math.Ceil(math.Log(1 / delta)))
	depth = max(depth, 1)

	return depth, width, nil
}
