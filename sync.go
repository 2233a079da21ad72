package hashkit

import "sync"

// The structures in this package are not safe for concurrent use: a mutation
// touches several slots non-atomically, so a reader running alongside it can
// see a partial update. The Sync types below serialize writers and let
// readers share a read lock.

// SyncFilter is a Filter guarded by a read-write mutex.
type SyncFilter struct {
	mu sync.RWMutex
	f  *Filter
}

// NewSyncFilter wraps f. f must not be used directly afterwards.
func NewSyncFilter(f *Filter) *SyncFilter {
	return &SyncFilter{f: f}
}

// Add adds data to the filter.
func (s *SyncFilter) Add(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f.Add(data)
}

// AddString adds a string to the filter.
func (s *SyncFilter) AddString(str string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f.AddString(str)
}

// AddValue adds the canonical form of v.
func (s *SyncFilter) AddValue(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f.AddValue(v)
}

// Test checks if data might be in the filter.
func (s *SyncFilter) Test(data []byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.f.Test(data)
}

// TestString checks if a string might be in the filter.
func (s *SyncFilter) TestString(str string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.f.TestString(str)
}

// TestValue checks if the canonical form of v might be in the filter.
func (s *SyncFilter) TestValue(v any) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.f.TestValue(v)
}

// TestAndAdd adds data and reports whether it might have been present. The
// test and the add happen under one lock.
func (s *SyncFilter) TestAndAdd(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.TestAndAdd(data)
}

// Count returns the number of items added.
func (s *SyncFilter) Count() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.f.Count()
}

// Clear resets every bit and the item count.
func (s *SyncFilter) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f.Clear()
}

// EstimatedFalsePositiveRate estimates the current false positive rate.
func (s *SyncFilter) EstimatedFalsePositiveRate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.f.EstimatedFalsePositiveRate()
}

// SyncCountingFilter is a CountingFilter guarded by a read-write mutex.
type SyncCountingFilter struct {
	mu sync.RWMutex
	c  *CountingFilter
}

// NewSyncCountingFilter wraps c. c must not be used directly afterwards.
func NewSyncCountingFilter(c *CountingFilter) *SyncCountingFilter {
	return &SyncCountingFilter{c: c}
}

// Add adds data to the filter.
func (s *SyncCountingFilter) Add(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Add(data)
}

// AddString adds a string to the filter.
func (s *SyncCountingFilter) AddString(str string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.AddString(str)
}

// AddValue adds the canonical form of v.
func (s *SyncCountingFilter) AddValue(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.AddValue(v)
}

// Remove removes data from the filter.
func (s *SyncCountingFilter) Remove(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Remove(data)
}

// RemoveString removes a string from the filter.
func (s *SyncCountingFilter) RemoveString(str string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.RemoveString(str)
}

// RemoveValue removes the canonical form of v.
func (s *SyncCountingFilter) RemoveValue(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.RemoveValue(v)
}

// Test checks if data might be in the filter.
func (s *SyncCountingFilter) Test(data []byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.Test(data)
}

// TestString checks if a string might be in the filter.
func (s *SyncCountingFilter) TestString(str string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.TestString(str)
}

// TestValue checks if the canonical form of v might be in the filter.
func (s *SyncCountingFilter) TestValue(v any) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.TestValue(v)
}

// Clear zeroes every counter.
func (s *SyncCountingFilter) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Clear()
}

// Count returns the number of items in the filter.
func (s *SyncCountingFilter) Count() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.Count()
}

// SyncSketch is a Sketch guarded by a read-write mutex.
type SyncSketch struct {
	mu sync.RWMutex
	s  *Sketch
}

// NewSyncSketch wraps sk. sk must not be used directly afterwards.
func NewSyncSketch(sk *Sketch) *SyncSketch {
	return &SyncSketch{s: sk}
}

// Add records one occurrence of item.
func (s *SyncSketch) Add(item string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s.Add(item)
}

// AddCount records n occurrences of item.
func (s *SyncSketch) AddCount(item string, n uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s.AddCount(item, n)
}

// AddValue records one occurrence of a string or byte slice key.
func (s *SyncSketch) AddValue(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.s.AddValue(v)
}

// Estimate returns the estimated number of occurrences of item.
func (s *SyncSketch) Estimate(item string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.s.Estimate(item)
}

// EstimateValue is Estimate for a string or byte slice key.
func (s *SyncSketch) EstimateValue(v any) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.s.EstimateValue(v)
}

// Reset zeroes every counter.
func (s *SyncSketch) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s.Reset()
}

// Total returns the sum of all recorded occurrences.
func (s *SyncSketch) Total() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.s.Total()
}

// SyncRing is a Ring guarded by a read-write mutex.
type SyncRing[N Node] struct {
	mu sync.RWMutex
	r  *Ring[N]
}

// NewSyncRing wraps r. r must not be used directly afterwards.
func NewSyncRing[N Node](r *Ring[N]) *SyncRing[N] {
	return &SyncRing[N]{r: r}
}

// AddNode places n's virtual nodes on the ring.
func (s *SyncRing[N]) AddNode(n N) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.AddNode(n)
}

// RemoveNode removes the node with the given ID.
func (s *SyncRing[N]) RemoveNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.RemoveNode(id)
}

// SetNodes replaces the membership with nodes: nodes no longer listed are
// removed, new ones added, and nodes present in both keep their positions
// while their stored value (and so Addr) is refreshed. Readers never observe
// an intermediate membership. On error the ring is left unchanged.
func (s *SyncRing[N]) SetNodes(nodes []N) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.r.clone()

	want := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		want[n.ID()] = true
	}
	for _, m := range next.Members() {
		if id := m.ID(); !want[id] {
			if err := next.RemoveNode(id); err != nil {
				return err
			}
		}
	}
	for _, n := range nodes {
		if next.replaceNode(n) {
			continue
		}
		if err := next.AddNode(n); err != nil {
			return err
		}
	}

	s.r = next
	return nil
}

// Assign returns the node responsible for key.
func (s *SyncRing[N]) Assign(key string) (N, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r.Assign(key)
}

// PreferenceList returns up to n distinct nodes for key.
func (s *SyncRing[N]) PreferenceList(key string, n int) []N {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r.PreferenceList(key, n)
}

// Members returns the nodes on the ring ordered by ID.
func (s *SyncRing[N]) Members() []N {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r.Members()
}
