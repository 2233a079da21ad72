package hashkit

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidDepth is returned when a sketch is constructed with zero rows.
	ErrInvalidDepth = errors.New("hashkit: depth must be positive")

	// ErrInvalidWidth is returned when a sketch is constructed with zero columns.
	ErrInvalidWidth = errors.New("hashkit: width must be positive")

	// ErrNotText is returned when a sketch is given a key that is not a
	// string or byte slice.
	ErrNotText = errors.New("hashkit: sketch keys must be text")
)

// rowSeedMultiplier spreads the default per-row seeds apart.
const rowSeedMultiplier = 31

// Sketch is a non-thread-safe Count-Min sketch: depth rows of width counters.
//
// Add increments one counter per row, at the column chosen by the row's
// seeded hash. Estimate returns the minimum of those counters. Every real
// occurrence of an item increments all of its counters, and other items can
// only add to them, so an estimate is never below the true count. It is above
// the true count only when every row collides with heavier items.
type Sketch struct {
	table []uint64 // depth rows × width columns, row-major
	depth uint32
	width uint32
	seeds []uint64 // One seed per row
	hash  HashFunc
	total uint64
}

// NewSketch creates a sketch with the given number of rows and columns.
// Row i is hashed with seed (i+1)*31 unless WithSeeds supplies one seed per
// row.
func NewSketch(depth, width uint32, opts ...Option) (*Sketch, error) {
	if depth == 0 {
		return nil, ErrInvalidDepth
	}
	if width == 0 {
		return nil, ErrInvalidWidth
	}

	o := buildOptions(opts)
	seeds := o.seeds
	if seeds == nil {
		seeds = make([]uint64, depth)
		for i := range seeds {
			seeds[i] = uint64(i+1) * rowSeedMultiplier
		}
	} else if len(seeds) != int(depth) {
		return nil, fmt.Errorf("%w: got %d seeds, need %d", ErrInvalidSeeds, len(seeds), depth)
	}

	return &Sketch{
		table: make([]uint64, uint64(depth)*uint64(width)),
		depth: depth,
		width: width,
		seeds: seeds,
		hash:  o.hash,
	}, nil
}

// NewSketchWithEstimates creates a sketch whose estimates exceed the true
// count by more than epsilon times the total count with probability at most
// delta.
func NewSketchWithEstimates(epsilon, delta float64, opts ...Option) (*Sketch, error) {
	depth, width, err := OptimalSketchParams(epsilon, delta)
	if err != nil {
		return nil, err
	}
	return NewSketch(depth, width, opts...)
}

// cell returns the table index of data in row.
func (s *Sketch) cell(data []byte, row uint32) uint64 {
	col := Reduce(s.hash(data, s.seeds[row]), uint64(s.width))
	return uint64(row)*uint64(s.width) + col
}

func (s *Sketch) add(data []byte, n uint64) {
	if n == 0 {
		return
	}
	for row := range s.depth {
		idx := s.cell(data, row)
		if s.table[idx] > math.MaxUint64-n {
			s.table[idx] = math.MaxUint64
		} else {
			s.table[idx] += n
		}
	}
	s.total += n
}

func (s *Sketch) estimate(data []byte) uint64 {
	est := uint64(math.MaxUint64)
	for row := range s.depth {
		est = min(est, s.table[s.cell(data, row)])
	}
	return est
}

// Add records one occurrence of item.
func (s *Sketch) Add(item string) {
	s.add(stringBytes(item), 1)
}

// AddCount records n occurrences of item. A count of zero is a no-op.
func (s *Sketch) AddCount(item string, n uint64) {
	s.add(stringBytes(item), n)
}

// Estimate returns the estimated number of occurrences of item. It is never
// less than the true count.
func (s *Sketch) Estimate(item string) uint64 {
	return s.estimate(stringBytes(item))
}

// AddValue records one occurrence of v, which must be a string or a byte
// slice. Any other type returns ErrNotText and leaves the sketch unchanged.
func (s *Sketch) AddValue(v any) error {
	data, err := textKey(v)
	if err != nil {
		return err
	}
	s.add(data, 1)
	return nil
}

// EstimateValue is Estimate for a string or byte slice key.
func (s *Sketch) EstimateValue(v any) (uint64, error) {
	data, err := textKey(v)
	if err != nil {
		return 0, err
	}
	return s.estimate(data), nil
}

func textKey(v any) ([]byte, error) {
	switch x := v.(type) {
	case string:
		return stringBytes(x), nil
	case []byte:
		return x, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrNotText, v)
	}
}

// Reset zeroes every counter.
func (s *Sketch) Reset() {
	clear(s.table)
	s.total = 0
}

// Depth returns the number of rows.
func (s *Sketch) Depth() uint32 {
	return s.depth
}

// Width returns the number of counters per row.
func (s *Sketch) Width() uint32 {
	return s.width
}

// Total returns the sum of all recorded occurrences.
func (s *Sketch) Total() uint64 {
	return s.total
}
