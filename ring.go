package hashkit

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultVirtualNodes is the number of ring positions per node used when
	// NewRing is given a non-positive count.
	DefaultVirtualNodes = 3
	// maxProbeAttempts bounds the salted retries for one virtual node.
	maxProbeAttempts = 10
)

var (
	// ErrInvalidSlots is returned when a ring is constructed with zero slots.
	ErrInvalidSlots = errors.New("hashkit: total slots must be positive")

	// ErrNodeExists is returned when adding a node whose ID is already on the ring.
	ErrNodeExists = errors.New("hashkit: node already on ring")

	// ErrUnknownNode is returned when removing a node that is not on the ring.
	ErrUnknownNode = errors.New("hashkit: node not on ring")

	// ErrNoNodes is returned when assigning a key on an empty ring.
	ErrNoNodes = errors.New("hashkit: no nodes available")

	// ErrRingFull is returned when the slot space cannot hold another node's
	// virtual nodes.
	ErrRingFull = errors.New("hashkit: hash space is full")

	// ErrCollision is returned when a virtual node still collides after the
	// maximum number of salted retries.
	ErrCollision = errors.New("hashkit: too many hash collisions")
)

// Node is a ring member. ID must be stable and unique within a ring; it is
// the only input to the node's ring positions. Addr is carried for callers
// and listings.
type Node interface {
	ID() string
	Addr() string
}

// Endpoint is a plain Node.
type Endpoint struct {
	Name string
	Host string
}

// ID returns the endpoint name.
func (e Endpoint) ID() string { return e.Name }

// Addr returns the endpoint host.
func (e Endpoint) Addr() string { return e.Host }

// Position is one virtual node as reported by Ring.Positions.
type Position struct {
	Slot uint64
	ID   string
	Addr string
}

// vnode is a virtual node on the ring.
type vnode struct {
	slot uint64
	id   string
}

type member[N Node] struct {
	node  N
	slots []uint64 // Slots accepted at insertion, in replica order
}

// Ring is a non-thread-safe consistent hashing ring with virtual nodes.
//
// Every node owns a fixed number of positions in [0, totalSlots). A key is
// assigned to the owner of the first position at or after the key's slot,
// wrapping around to the lowest position. Adding or removing a node only
// moves the keys between its positions and their predecessors.
//
// Lookups are a binary search over the sorted positions.
type Ring[N Node] struct {
	totalSlots uint64
	replicas   int
	seed       uint64
	hash       HashFunc
	log        logrus.FieldLogger

	vnodes  []vnode // Sorted by slot, slots unique
	members map[string]*member[N]
}

// NewRing creates an empty ring over totalSlots slots with virtualNodes
// positions per node. A non-positive virtualNodes means DefaultVirtualNodes.
// Of the WithSeeds option only the first seed is used.
func NewRing[N Node](totalSlots uint64, virtualNodes int, opts ...Option) (*Ring[N], error) {
	if totalSlots == 0 {
		return nil, ErrInvalidSlots
	}
	if virtualNodes <= 0 {
		virtualNodes = DefaultVirtualNodes
	}

	o := buildOptions(opts)
	var seed uint64
	if len(o.seeds) > 0 {
		seed = o.seeds[0]
	}

	return &Ring[N]{
		totalSlots: totalSlots,
		replicas:   virtualNodes,
		seed:       seed,
		hash:       o.hash,
		log:        o.logger,
		members:    make(map[string]*member[N]),
	}, nil
}

// replicaKey returns the hash input of replica i of id on attempt t:
// "id#i", then "id#i_t" for retries.
func replicaKey(id string, i, t int) []byte {
	buf := make([]byte, 0, len(id)+8)
	buf = append(buf, id...)
	buf = append(buf, '#')
	buf = strconv.AppendInt(buf, int64(i), 10)
	if t > 0 {
		buf = append(buf, '_')
		buf = strconv.AppendInt(buf, int64(t), 10)
	}
	return buf
}

func (r *Ring[N]) slotOf(data []byte) uint64 {
	return Reduce(r.hash(data, r.seed), r.totalSlots)
}

// search returns the index of the first position with slot >= slot.
func (r *Ring[N]) search(slot uint64) int {
	return sort.Search(len(r.vnodes), func(i int) bool {
		return r.vnodes[i].slot >= slot
	})
}

func (r *Ring[N]) occupied(slot uint64) bool {
	idx := r.search(slot)
	return idx < len(r.vnodes) && r.vnodes[idx].slot == slot
}

// AddNode places n's virtual nodes on the ring. A replica whose slot is taken
// is rehashed with a salt, up to 10 attempts. The ring is left unchanged when
// AddNode fails.
func (r *Ring[N]) AddNode(n N) error {
	id := n.ID()
	if _, exists := r.members[id]; exists {
		return fmt.Errorf("%w: %s", ErrNodeExists, id)
	}
	if uint64(len(r.vnodes))+uint64(r.replicas) > r.totalSlots {
		return fmt.Errorf("%w: %d of %d slots used, node %s needs %d",
			ErrRingFull, len(r.vnodes), r.totalSlots, id, r.replicas)
	}

	placed := make([]uint64, 0, r.replicas)
	for i := 0; i < r.replicas; i++ {
		slot, attempts, ok := r.place(id, i, placed)
		if !ok {
			r.log.WithFields(logrus.Fields{
				"node":     id,
				"replica":  i,
				"attempts": attempts,
			}).Warn("could not place virtual node")
			return fmt.Errorf("%w: node %s replica %d after %d attempts", ErrCollision, id, i, attempts)
		}
		if attempts > 1 {
			r.log.WithFields(logrus.Fields{
				"node":     id,
				"replica":  i,
				"attempts": attempts,
				"slot":     slot,
			}).Debug("virtual node placed after collision")
		}
		placed = append(placed, slot)
	}

	for _, slot := range placed {
		r.vnodes = slices.Insert(r.vnodes, r.search(slot), vnode{slot: slot, id: id})
	}
	r.members[id] = &member[N]{node: n, slots: placed}

	r.log.WithFields(logrus.Fields{
		"node":      id,
		"addr":      n.Addr(),
		"positions": len(placed),
		"members":   len(r.members),
	}).Info("node joined ring")

	return nil
}

// place finds a free slot for replica i of id, avoiding the ring and the
// slots already chosen for the same node.
func (r *Ring[N]) place(id string, i int, placed []uint64) (slot uint64, attempts int, ok bool) {
	for t := 0; t < maxProbeAttempts; t++ {
		slot = r.slotOf(replicaKey(id, i, t))
		if !r.occupied(slot) && !slices.Contains(placed, slot) {
			return slot, t + 1, true
		}
	}
	return 0, maxProbeAttempts, false
}

// RemoveNode removes the node with the given ID and all of its positions.
// Only keys that were assigned to it move. Returns ErrUnknownNode if the node
// is not on the ring.
func (r *Ring[N]) RemoveNode(id string) error {
	m, exists := r.members[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}

	for _, slot := range m.slots {
		idx := r.search(slot)
		if idx < len(r.vnodes) && r.vnodes[idx].slot == slot && r.vnodes[idx].id == id {
			r.vnodes = slices.Delete(r.vnodes, idx, idx+1)
		}
	}
	delete(r.members, id)

	r.log.WithFields(logrus.Fields{
		"node":    id,
		"addr":    m.node.Addr(),
		"members": len(r.members),
	}).Info("node left ring")

	return nil
}

// replaceNode swaps the stored value of a member for n, which has the same
// ID. Positions depend only on the ID and are kept.
func (r *Ring[N]) replaceNode(n N) bool {
	m, ok := r.members[n.ID()]
	if !ok {
		return false
	}
	m.node = n
	return true
}

// clone returns an independent copy of the ring's membership. Recorded
// slot lists are never modified after insertion and are shared.
func (r *Ring[N]) clone() *Ring[N] {
	c := *r
	c.vnodes = slices.Clone(r.vnodes)
	c.members = make(map[string]*member[N], len(r.members))
	for id, m := range r.members {
		cp := *m
		c.members[id] = &cp
	}
	return &c
}

// successor returns the index of the position that owns slot.
func (r *Ring[N]) successor(slot uint64) int {
	idx := r.search(slot)
	// Wrap around past the highest position
	if idx >= len(r.vnodes) {
		idx = 0
	}
	return idx
}

// Assign returns the node responsible for key, or ErrNoNodes if the ring is
// empty.
func (r *Ring[N]) Assign(key string) (N, error) {
	return r.AssignBytes(stringBytes(key))
}

// AssignBytes is Assign for a byte slice key.
func (r *Ring[N]) AssignBytes(key []byte) (N, error) {
	if len(r.vnodes) == 0 {
		var zero N
		return zero, ErrNoNodes
	}
	idx := r.successor(r.slotOf(key))
	return r.members[r.vnodes[idx].id].node, nil
}

// PreferenceList returns up to n distinct nodes for key, starting with the
// responsible node and walking the ring clockwise.
func (r *Ring[N]) PreferenceList(key string, n int) []N {
	if len(r.vnodes) == 0 || n <= 0 {
		return nil
	}

	start := r.successor(r.slotOf(stringBytes(key)))
	seen := make(map[string]bool, n)
	result := make([]N, 0, min(n, len(r.members)))

	for i := 0; i < len(r.vnodes) && len(result) < n; i++ {
		id := r.vnodes[(start+i)%len(r.vnodes)].id
		if !seen[id] {
			seen[id] = true
			result = append(result, r.members[id].node)
		}
	}
	return result
}

// Contains reports whether a node with the given ID is on the ring.
func (r *Ring[N]) Contains(id string) bool {
	_, ok := r.members[id]
	return ok
}

// Members returns the nodes on the ring ordered by ID.
func (r *Ring[N]) Members() []N {
	ids := make([]string, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	nodes := make([]N, len(ids))
	for i, id := range ids {
		nodes[i] = r.members[id].node
	}
	return nodes
}

// Positions lists every virtual node in ring order.
func (r *Ring[N]) Positions() []Position {
	out := make([]Position, len(r.vnodes))
	for i, v := range r.vnodes {
		out[i] = Position{Slot: v.slot, ID: v.id, Addr: r.members[v.id].node.Addr()}
	}
	return out
}

// Len returns the number of nodes on the ring.
func (r *Ring[N]) Len() int {
	return len(r.members)
}

// Slots returns the size of the slot space.
func (r *Ring[N]) Slots() uint64 {
	return r.totalSlots
}

// VirtualNodes returns the number of positions per node.
func (r *Ring[N]) VirtualNodes() int {
	return r.replicas
}

// String summarizes the ring for logs.
func (r *Ring[N]) String() string {
	return fmt.Sprintf("ring(%d nodes, %d positions, %d slots)", len(r.members), len(r.vnodes), r.totalSlots)
}
