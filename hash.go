package hashkit

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strconv"
	"unsafe"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
)

// HashFunc maps data and a seed to a 64-bit hash. It must be deterministic,
// and distinct seeds should give uncorrelated outputs for the same data.
// Implementations must not modify or retain data.
type HashFunc func(data []byte, seed uint64) uint64

// XXH3 is the default hash family.
func XXH3(data []byte, seed uint64) uint64 {
	return xxh3.HashSeed(data, seed)
}

// XXHash hashes with the 64-bit xxHash digest initialized from seed.
func XXHash(data []byte, seed uint64) uint64 {
	d := xxhash.NewWithSeed(seed)
	_, _ = d.Write(data)
	return d.Sum64()
}

// Murmur3 hashes with 64-bit MurmurHash3. Murmur takes a 32-bit seed, so
// both halves of seed are folded together.
func Murmur3(data []byte, seed uint64) uint64 {
	return murmur3.Sum64WithSeed(data, uint32(seed^(seed>>32)))
}

// FNV1a hashes the little-endian seed followed by data with 64-bit FNV-1a.
func FNV1a(data []byte, seed uint64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], seed)
	_, _ = h.Write(buf[:])
	_, _ = h.Write(data)
	return h.Sum64()
}

// SHA256 hashes the seed followed by data with SHA-256 and keeps the first
// 8 bytes of the digest. It is far slower than the other families and only
// useful when positions must be hard to predict from the key.
func SHA256(data []byte, seed uint64) uint64 {
	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seed)
	_, _ = h.Write(buf[:])
	_, _ = h.Write(data)
	var sum [sha256.Size]byte
	return binary.BigEndian.Uint64(h.Sum(sum[:0]))
}

// Splitmix64 constants (Vigna, 2014).
const (
	seedBase      = 0x517cc1b727220a95
	seedIncrement = 0x9e3779b97f4a7c15
	mixMul1       = 0xbf58476d1ce4e5b9
	mixMul2       = 0x94d049bb133111eb
)

// splitmix64 advances state by the golden-ratio increment and returns the
// mixed output.
func splitmix64(state uint64) uint64 {
	z := state + seedIncrement
	z = (z ^ (z >> 30)) * mixMul1
	z = (z ^ (z >> 27)) * mixMul2
	return z ^ (z >> 31)
}

// Seeds returns n deterministic, pairwise distinct seeds. The same n always
// yields the same list, so structures built with default seeds agree across
// processes.
func Seeds(n int) []uint64 {
	seeds := make([]uint64, n)
	seen := make(map[uint64]struct{}, n)
	state := uint64(seedBase)
	for i := 0; i < n; {
		state = splitmix64(state)
		if _, dup := seen[state]; dup {
			continue
		}
		seen[state] = struct{}{}
		seeds[i] = state
		i++
	}
	return seeds
}

// Reduce maps h into [0, n). n must be non-zero.
func Reduce(h, n uint64) uint64 {
	return h % n
}

// stringBytes returns the bytes of s without copying. The result must not be
// modified; HashFunc implementations only read their input.
func stringBytes(s string) []byte {
	if s == "" {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// Canonical returns the byte form used to hash an arbitrary item. Byte slices
// and strings are used as is, numbers and booleans use their strconv text,
// and everything else, Stringers included, is formatted with fmt. It never
// fails. Items with equal canonical bytes are indistinguishable to the
// filters: the integer 7 and the string "7" collide.
func Canonical(v any) []byte {
	switch x := v.(type) {
	case []byte:
		return x
	case string:
		return []byte(x)
	case int:
		return strconv.AppendInt(nil, int64(x), 10)
	case int8:
		return strconv.AppendInt(nil, int64(x), 10)
	case int16:
		return strconv.AppendInt(nil, int64(x), 10)
	case int32:
		return strconv.AppendInt(nil, int64(x), 10)
	case int64:
		return strconv.AppendInt(nil, x, 10)
	case uint:
		return strconv.AppendUint(nil, uint64(x), 10)
	case uint8:
		return strconv.AppendUint(nil, uint64(x), 10)
	case uint16:
		return strconv.AppendUint(nil, uint64(x), 10)
	case uint32:
		return strconv.AppendUint(nil, uint64(x), 10)
	case uint64:
		return strconv.AppendUint(nil, x, 10)
	case float32:
		return strconv.AppendFloat(nil, float64(x), 'g', -1, 32)
	case float64:
		return strconv.AppendFloat(nil, x, 'g', -1, 64)
	case bool:
		return strconv.AppendBool(nil, x)
	default:
		// fmt calls String for Stringers and prints a nil receiver as <nil>
		return fmt.Append(nil, v)
	}
}
