package main

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/jcalabro/hashkit"
	"github.com/sirupsen/logrus"
)

// checkEvery is how often the long loops look at the context.
const checkEvery = 4096

type filterReport struct {
	Size      uint64
	K         uint32
	Items     int
	Probes    int
	Measured  float64
	Estimated float64
}

func (r filterReport) String() string {
	return fmt.Sprintf("filter: m=%d k=%d n=%d probes=%d measured_fp=%.5f estimated_fp=%.5f",
		r.Size, r.K, r.Items, r.Probes, r.Measured, r.Estimated)
}

// analyzeFilter fills a filter with items keys and probes it with as many
// keys that were never added.
func analyzeFilter(ctx context.Context, size uint64, k uint32, items int, hash hashkit.HashFunc) (filterReport, error) {
	f, err := hashkit.NewFilter(size, k, hashkit.WithHash(hash))
	if err != nil {
		return filterReport{}, err
	}

	for i := range items {
		if i%checkEvery == 0 && ctx.Err() != nil {
			return filterReport{}, ctx.Err()
		}
		f.AddString(fmt.Sprintf("in-%d", i))
	}

	var fp int
	for i := range items {
		if i%checkEvery == 0 && ctx.Err() != nil {
			return filterReport{}, ctx.Err()
		}
		if !f.TestString(fmt.Sprintf("in-%d", i)) {
			return filterReport{}, fmt.Errorf("false negative for in-%d", i)
		}
		if f.TestString(fmt.Sprintf("out-%d", i)) {
			fp++
		}
	}

	return filterReport{
		Size:      size,
		K:         k,
		Items:     items,
		Probes:    items,
		Measured:  float64(fp) / float64(max(items, 1)),
		Estimated: f.EstimatedFalsePositiveRate(),
	}, nil
}

type sketchReport struct {
	Depth, Width uint32
	Events       int
	Keys         int
	MaxOver      uint64
	MeanOver     float64
	Bound        float64
	OverBound    int
}

func (r sketchReport) String() string {
	return fmt.Sprintf("sketch: %dx%d events=%d keys=%d max_over=%d mean_over=%.2f bound=%.1f over_bound=%d",
		r.Depth, r.Width, r.Events, r.Keys, r.MaxOver, r.MeanOver, r.Bound, r.OverBound)
}

// analyzeSketch feeds a Zipf-distributed stream into a sketch and compares
// every estimate with the exact count.
func analyzeSketch(ctx context.Context, depth, width uint32, events int, seed uint64) (sketchReport, error) {
	s, err := hashkit.NewSketch(depth, width)
	if err != nil {
		return sketchReport{}, err
	}

	const distinct = 10_000
	zipf := rand.NewZipf(rand.New(rand.NewPCG(seed, seed^0x5eed)), 1.1, 1, distinct-1)

	truth := make(map[string]uint64)
	for i := range events {
		if i%checkEvery == 0 && ctx.Err() != nil {
			return sketchReport{}, ctx.Err()
		}
		key := fmt.Sprintf("k%d", zipf.Uint64())
		truth[key]++
		s.Add(key)
	}

	rep := sketchReport{
		Depth:  depth,
		Width:  width,
		Events: events,
		Keys:   len(truth),
		Bound:  2.718281828 / float64(width) * float64(s.Total()),
	}
	var sum uint64
	for key, want := range truth {
		got := s.Estimate(key)
		if got < want {
			return sketchReport{}, fmt.Errorf("estimate for %s is %d, below true count %d", key, got, want)
		}
		over := got - want
		sum += over
		rep.MaxOver = max(rep.MaxOver, over)
		if float64(over) > rep.Bound {
			rep.OverBound++
		}
	}
	if len(truth) > 0 {
		rep.MeanOver = float64(sum) / float64(len(truth))
	}
	return rep, nil
}

type ringReport struct {
	Nodes    int
	VNodes   int
	Keys     int
	MinShare float64
	MaxShare float64
	Removed  string
	Moved    int
	Stray    int
}

func (r ringReport) String() string {
	return fmt.Sprintf("ring: nodes=%d vnodes=%d keys=%d min_share=%.3f max_share=%.3f removed=%s moved=%d stray=%d",
		r.Nodes, r.VNodes, r.Keys, r.MinShare, r.MaxShare, r.Removed, r.Moved, r.Stray)
}

// analyzeRing measures load balance across nodes and the keys that move when
// the first node leaves. Stray counts keys that moved without having belonged
// to the removed node, and must be zero.
func analyzeRing(ctx context.Context, slots uint64, vnodes int, nodes []hashkit.Endpoint, keys int, log logrus.FieldLogger) (ringReport, error) {
	if len(nodes) == 0 {
		return ringReport{}, hashkit.ErrNoNodes
	}

	r, err := hashkit.NewRing[hashkit.Endpoint](slots, vnodes, hashkit.WithLogger(log))
	if err != nil {
		return ringReport{}, err
	}
	for _, n := range nodes {
		if err := r.AddNode(n); err != nil {
			return ringReport{}, err
		}
	}

	before := make([]string, keys)
	load := make(map[string]int, len(nodes))
	for i := range keys {
		if i%checkEvery == 0 && ctx.Err() != nil {
			return ringReport{}, ctx.Err()
		}
		n, err := r.Assign(fmt.Sprintf("key-%d", i))
		if err != nil {
			return ringReport{}, err
		}
		before[i] = n.ID()
		load[n.ID()]++
	}

	rep := ringReport{
		Nodes:    len(nodes),
		VNodes:   r.VirtualNodes(),
		Keys:     keys,
		MinShare: 1,
		Removed:  nodes[0].ID(),
	}
	for _, n := range nodes {
		share := float64(load[n.ID()]) / float64(max(keys, 1))
		rep.MinShare = min(rep.MinShare, share)
		rep.MaxShare = max(rep.MaxShare, share)
	}

	if len(nodes) == 1 {
		return rep, nil
	}
	if err := r.RemoveNode(rep.Removed); err != nil {
		return ringReport{}, err
	}
	for i := range keys {
		if i%checkEvery == 0 && ctx.Err() != nil {
			return ringReport{}, ctx.Err()
		}
		n, err := r.Assign(fmt.Sprintf("key-%d", i))
		if err != nil {
			return ringReport{}, err
		}
		if n.ID() == before[i] {
			continue
		}
		if before[i] == rep.Removed {
			rep.Moved++
		} else {
			rep.Stray++
		}
	}
	return rep, nil
}
