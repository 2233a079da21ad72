// Command analysis measures the structures in hashkit against their
// analytical bounds: filter false positive rates, sketch over-estimation and
// ring balance and remapping.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/jcalabro/hashkit"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var hashFamilies = map[string]hashkit.HashFunc{
	"xxh3":    hashkit.XXH3,
	"xxhash":  hashkit.XXHash,
	"murmur3": hashkit.Murmur3,
	"fnv1a":   hashkit.FNV1a,
	"sha256":  hashkit.SHA256,
}

func main() {
	var (
		size     uint64
		k        uint
		items    int
		fpRate   float64
		depth    uint
		width    uint
		events   int
		slots    uint64
		vnodes   int
		nodeList string
		keys     int
		hashName string
		verbose  bool
	)

	flag.Uint64Var(&size, "size", 0, "filter size in bits (0 derives it from -items and -fp)")
	flag.UintVar(&k, "k", 0, "filter probes (0 derives it from -items and -fp)")
	flag.IntVar(&items, "items", 100_000, "items added to the filter")
	flag.Float64Var(&fpRate, "fp", 0.01, "target false positive rate when sizing the filter")
	flag.UintVar(&depth, "depth", 5, "sketch rows")
	flag.UintVar(&width, "width", 2719, "sketch columns")
	flag.IntVar(&events, "events", 1_000_000, "events fed to the sketch")
	flag.Uint64Var(&slots, "slots", 1<<32, "ring slot space")
	flag.IntVar(&vnodes, "vnodes", 128, "virtual nodes per ring node")
	flag.StringVar(&nodeList, "nodes", "", "ring nodes as id=addr,id=addr (defaults to 5 local nodes)")
	flag.IntVar(&keys, "keys", 100_000, "keys assigned on the ring")
	flag.StringVar(&hashName, "hash", "xxh3", "filter hash family: xxh3, xxhash, murmur3, fnv1a, sha256")
	flag.BoolVar(&verbose, "v", false, "log ring membership changes")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	hash, ok := hashFamilies[hashName]
	if !ok {
		log.WithField("hash", hashName).Error("unknown hash family")
		os.Exit(2)
	}

	if size == 0 || k == 0 {
		optSize, optK, _, err := hashkit.OptimalFilterParams(uint64(max(items, 1)), fpRate)
		if err != nil {
			log.WithError(err).Error("cannot size filter")
			os.Exit(2)
		}
		if size == 0 {
			size = optSize
		}
		if k == 0 {
			k = uint(optK)
		}
	}

	k32, err := toUint32("k", k)
	if err != nil {
		log.WithError(err).Error("invalid flag")
		os.Exit(2)
	}
	depth32, err := toUint32("depth", depth)
	if err != nil {
		log.WithError(err).Error("invalid flag")
		os.Exit(2)
	}
	width32, err := toUint32("width", width)
	if err != nil {
		log.WithError(err).Error("invalid flag")
		os.Exit(2)
	}

	nodes, err := ParseNodes(nodeList)
	if err != nil {
		log.WithError(err).Error("invalid -nodes")
		os.Exit(2)
	}
	if len(nodes) == 0 {
		nodes = defaultNodes(5)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		fr filterReport
		sr sketchReport
		rr ringReport
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fr, err = analyzeFilter(ctx, size, k32, items, hash)
		return err
	})
	g.Go(func() error {
		var err error
		sr, err = analyzeSketch(ctx, depth32, width32, events, 1)
		return err
	})
	g.Go(func() error {
		var err error
		rr, err = analyzeRing(ctx, slots, vnodes, nodes, keys, log.WithField("component", "ring"))
		return err
	})
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("analysis failed")
		os.Exit(1)
	}

	fmt.Println(fr)
	fmt.Println(sr)
	fmt.Println(rr)

	if rr.Stray > 0 {
		log.WithField("stray", rr.Stray).Error("keys moved between surviving nodes")
		os.Exit(1)
	}
}

// toUint32 narrows a flag value, rejecting values that do not fit.
func toUint32(name string, v uint) (uint32, error) {
	if uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("-%s %d exceeds %d", name, v, uint32(math.MaxUint32))
	}
	return uint32(v), nil
}
