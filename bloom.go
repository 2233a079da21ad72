package hashkit

import (
	"github.com/bits-and-blooms/bitset"
)

// Filter is a non-thread-safe Bloom filter over a fixed-size bit array.
//
// Each item sets k bits, one per probe, where probe i is the item's hash
// under seed i reduced into the array. Test reports true only when all k
// bits are set, so an added item is always reported present; an item never
// added is reported present with a probability governed by size, k and the
// number of items added.
//
// Bits are never cleared individually. Use [CountingFilter] when items must
// be removed.
type Filter struct {
	bits  *bitset.BitSet
	size  uint64   // Number of bits
	k     uint32   // Number of probes
	seeds []uint64 // One seed per probe
	hash  HashFunc
	count uint64 // Number of items added (approximate)
}

// NewFilter creates a Bloom filter with size bits and k probes.
// Returns ErrInvalidSize or ErrInvalidK when either is zero.
func NewFilter(size uint64, k uint32, opts ...Option) (*Filter, error) {
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

	return &Filter{
		bits:  bitset.New(uint(size)),
		size:  size,
		k:     k,
		seeds: seeds,
		hash:  o.hash,
	}, nil
}

// NewFilterWithEstimates creates a Bloom filter sized for the expected number
// of items and desired false positive rate.
func NewFilterWithEstimates(expectedItems uint64, fpRate float64, opts ...Option) (*Filter, error) {
	size, k, _, err := OptimalFilterParams(expectedItems, fpRate)
	if err != nil {
		return nil, err
	}
	return NewFilter(size, k, opts...)
}

// probe returns the bit position of data for probe i.
func (f *Filter) probe(data []byte, i int) uint {
	return uint(Reduce(f.hash(data, f.seeds[i]), f.size))
}

// Add adds data to the filter.
func (f *Filter) Add(data []byte) {
	for i := range f.seeds {
		f.bits.Set(f.probe(data, i))
	}
	f.count++
}

// AddString adds a string to the filter without copying it.
func (f *Filter) AddString(s string) {
	f.Add(stringBytes(s))
}

// AddValue adds the canonical form of v. See [Canonical].
func (f *Filter) AddValue(v any) {
	f.Add(Canonical(v))
}

// Test checks if data might be in the filter.
// Returns true if the data might be present (with false positive probability),
// or false if the data is definitely not present.
func (f *Filter) Test(data []byte) bool {
	for i := range f.seeds {
		if !f.bits.Test(f.probe(data, i)) {
			return false
		}
	}
	return true
}

// TestString checks if a string might be in the filter.
func (f *Filter) TestString(s string) bool {
	return f.Test(stringBytes(s))
}

// TestValue checks if the canonical form of v might be in the filter.
func (f *Filter) TestValue(v any) bool {
	return f.Test(Canonical(v))
}

// TestAndAdd adds data and reports whether it might have been present
// before the call.
func (f *Filter) TestAndAdd(data []byte) bool {
	present := true
	for i := range f.seeds {
		pos := f.probe(data, i)
		if !f.bits.Test(pos) {
			present = false
			f.bits.Set(pos)
		}
	}
	f.count++
	return present
}

// Clear resets every bit and the item count.
func (f *Filter) Clear() {
	f.bits.ClearAll()
	f.count = 0
}

// Cap returns the capacity of the filter in bits.
func (f *Filter) Cap() uint64 {
	return f.size
}

// K returns the number of probes.
func (f *Filter) K() uint32 {
	return f.k
}

// Count returns the number of Add calls since construction or the last Clear.
func (f *Filter) Count() uint64 {
	return f.count
}

// EstimatedFillRatio returns the proportion of bits that are set.
func (f *Filter) EstimatedFillRatio() float64 {
	return float64(f.bits.Count()) / float64(f.size)
}

// EstimatedFalsePositiveRate estimates the current false positive rate
// based on the number of items added.
func (f *Filter) EstimatedFalsePositiveRate() float64 {
	return EstimateFalsePositiveRate(f.size, f.k, f.count)
}
