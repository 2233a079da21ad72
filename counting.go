package hashkit

import (
	"errors"
	"math"
)

// ErrNotPresent is returned by CountingFilter.Remove when at least one of the
// item's counters is zero, meaning the item is not in the filter.
var ErrNotPresent = errors.New("hashkit: item not present")

// maxCount is the saturation value of a counter.
const maxCount = math.MaxUint32

// CountingFilter is a non-thread-safe Bloom filter that supports removal.
// It keeps a 32-bit counter per slot instead of a bit; Add increments the k
// probed counters and Remove decrements them.
//
// A counter that reaches math.MaxUint32 saturates: it is never incremented
// or decremented again, so the items that touch it can no longer be fully
// removed but are never lost.
//
// Remove is only sound for items that were added at least as many times as
// they are removed. Remove refuses items with a zero counter (those are
// certainly absent), but an item that tests positive only because other
// items cover its slots cannot be told apart from a real member: removing it
// decrements counters owned by those other items and may turn them into
// false negatives.
type CountingFilter struct {
	counts []uint32
	size   uint64
	k      uint32
	seeds  []uint64
	hash   HashFunc
	count  uint64 // Adds minus successful removes
}

// NewCountingFilter creates a counting filter with size counters and k probes.
func NewCountingFilter(size uint64, k uint32, opts ...Option) (*CountingFilter, error) {
	if size == 0 {
		return nil, ErrInvalidSize
	}
	if k == 0 {
		return nil, ErrInvalidK
	}

	o := buildOptions(opts)
	seeds, err := o.probeSeeds(int(k))
	if err != nil {
		return nil, err
	}

	return &CountingFilter{
		counts: make([]uint32, size),
		size:   size,
		k:      k,
		seeds:  seeds,
		hash:   o.hash,
	}, nil
}

// NewCountingFilterWithEstimates creates a counting filter sized for the
// expected number of items and desired false positive rate.
func NewCountingFilterWithEstimates(expectedItems uint64, fpRate float64, opts ...Option) (*CountingFilter, error) {
	size, k, _, err := OptimalFilterParams(expectedItems, fpRate)
	if err != nil {
		return nil, err
	}
	return NewCountingFilter(size, k, opts...)
}

// probe returns the counter index of data for probe i.
func (c *CountingFilter) probe(data []byte, i int) uint64 {
	return Reduce(c.hash(data, c.seeds[i]), c.size)
}

// Add adds data to the filter.
func (c *CountingFilter) Add(data []byte) {
	for i := range c.seeds {
		pos := c.probe(data, i)
		if c.counts[pos] < maxCount {
			c.counts[pos]++
		}
	}
	c.count++
}

// AddString adds a string to the filter without copying it.
func (c *CountingFilter) AddString(s string) {
	c.Add(stringBytes(s))
}

// AddValue adds the canonical form of v. See [Canonical].
func (c *CountingFilter) AddValue(v any) {
	c.Add(Canonical(v))
}

// Remove decrements the counters of data. If any of them is zero the filter
// is left unchanged and ErrNotPresent is returned. See the type documentation
// for the hazard of removing items that were never added.
func (c *CountingFilter) Remove(data []byte) error {
	positions := make([]uint64, len(c.seeds))
	for i := range c.seeds {
		positions[i] = c.probe(data, i)
		if c.counts[positions[i]] == 0 {
			return ErrNotPresent
		}
	}
	for _, pos := range positions {
		// A position probed twice is decremented twice; never wrap
		if c.counts[pos] > 0 && c.counts[pos] < maxCount {
			c.counts[pos]--
		}
	}
	if c.count > 0 {
		c.count--
	}
	return nil
}

// RemoveString removes a string from the filter.
func (c *CountingFilter) RemoveString(s string) error {
	return c.Remove(stringBytes(s))
}

// RemoveValue removes the canonical form of v.
func (c *CountingFilter) RemoveValue(v any) error {
	return c.Remove(Canonical(v))
}

// Test checks if data might be in the filter: true iff all k counters are
// non-zero.
func (c *CountingFilter) Test(data []byte) bool {
	for i := range c.seeds {
		if c.counts[c.probe(data, i)] == 0 {
			return false
		}
	}
	return true
}

// TestString checks if a string might be in the filter.
func (c *CountingFilter) TestString(s string) bool {
	return c.Test(stringBytes(s))
}

// TestValue checks if the canonical form of v might be in the filter.
func (c *CountingFilter) TestValue(v any) bool {
	return c.Test(Canonical(v))
}

// Clear zeroes every counter.
func (c *CountingFilter) Clear() {
	clear(c.counts)
	c.count = 0
}

// Cap returns the number of counters.
func (c *CountingFilter) Cap() uint64 {
	return c.size
}

// K returns the number of probes.
func (c *CountingFilter) K() uint32 {
	return c.k
}

// Count returns the number of items added minus the number removed.
func (c *CountingFilter) Count() uint64 {
	return c.count
}

// Saturated returns the number of counters stuck at their maximum.
func (c *CountingFilter) Saturated() int {
	var n int
	for _, v := range c.counts {
		if v == maxCount {
			n++
		}
	}
	return n
}

// EstimatedFalsePositiveRate estimates the current false positive rate from
// the number of items currently in the filter.
func (c *CountingFilter) EstimatedFalsePositiveRate() float64 {
	return EstimateFalsePositiveRate(c.size, c.k, c.count)
}
