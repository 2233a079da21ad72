// Package hashkit provides hashing-based approximate data structures for Go.
//
// All of them address a fixed-size array (or ring) through a deterministic,
// seeded hash and trade accuracy for memory in a way that is fixed at
// construction.
//
// # Structures
//
// [Filter] is a Bloom filter: it tests set membership with no false negatives
// and a tunable false positive rate. Items cannot be removed.
//
// [CountingFilter] replaces each bit with a 32-bit counter so that items can
// be removed. Removing an item that was never added corrupts the filter; see
// its documentation.
//
// [Sketch] is a Count-Min sketch: it estimates how often a key occurred in a
// stream. Estimates never fall below the true count.
//
// [Ring] is a consistent hashing ring with virtual nodes. It assigns keys to
// nodes so that removing a node only moves the keys that node owned.
//
// # Hashing
//
// Every structure hashes through a [HashFunc], a function of the key bytes and
// a 64-bit seed. Probes and rows use distinct seeds. The default is [XXH3];
// [XXHash], [Murmur3], [FNV1a] and [SHA256] can be selected with [WithHash],
// and explicit seeds with [WithSeeds]. Hash quality matters for distribution
// only; none of the structures relies on collision resistance.
//
// # Choosing Parameters
//
// Filters and sketches can be sized directly or from targets:
//
//	// Filter for 1 million items with 1% false positive rate
//	f, err := hashkit.NewFilterWithEstimates(1_000_000, 0.01)
//
//	// Sketch that overestimates by at most 0.1% of the stream total
//	// with probability 99%
//	s, err := hashkit.NewSketchWithEstimates(0.001, 0.01)
//
// The false positive rate of a filter after n insertions into m bits with k
// probes is approximately
//
//	(1 - e^(-kn/m))^k
//
// # Errors
//
// Constructors fail on zero capacities. [Ring.Assign] fails with
// [ErrNoNodes] on an empty ring and [Ring.AddNode] fails, leaving the ring
// unchanged, when a node cannot be placed. All other operations on valid
// input are total.
//
// # Thread Safety
//
// [Filter], [CountingFilter], [Sketch] and [Ring] are NOT thread-safe. Either
// synchronize externally, allowing concurrent reads only while no write is in
// flight, or use [SyncFilter], [SyncCountingFilter], [SyncSketch] and
// [SyncRing], which do exactly that with a read-write mutex.
//
// # References
//
//   - Count-Min sketch: http://dimacs.rutgers.edu/~graham/pubs/papers/cm-full.pdf
//   - Counting Bloom filters (Summary Cache): http://pages.cs.wisc.edu/~jussara/papers/00ton.pdf
//   - Consistent hashing: https://www.cs.princeton.edu/courses/archive/fall09/cos518/papers/chash.pdf
package hashkit
