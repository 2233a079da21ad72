package hashkit_test

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jcalabro/hashkit"
)

// This example demonstrates basic bloom filter usage for membership testing.
func Example() {
	// Create a filter for 10,000 items with 1% false positive rate
	f, err := hashkit.NewFilterWithEstimates(10_000, 0.01)
	if err != nil {
		panic(err)
	}

	f.Add([]byte("apple"))
	f.Add([]byte("banana"))
	f.AddString("cherry")

	fmt.Println("apple:", f.Test([]byte("apple")))
	fmt.Println("cherry:", f.TestString("cherry"))
	fmt.Println("bits:", f.Cap(), "probes:", f.K())

	// Output:
	// apple: true
	// cherry: true
	// bits: 95851 probes: 7
}

// This example shows how to calculate optimal parameters.
func ExampleOptimalFilterParams() {
	size, k, bitsPerItem, err := hashkit.OptimalFilterParams(1_000_000, 0.01)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Bits: %d\n", size)
	fmt.Printf("Probes: %d\n", k)
	fmt.Printf("Bits per item: %.2f\n", bitsPerItem)

	// Output:
	// Bits: 9585059
	// Probes: 7
	// Bits per item: 9.59
}

// Counting filters support removal.
func ExampleCountingFilter() {
	c, err := hashkit.NewCountingFilterWithEstimates(1000, 0.01)
	if err != nil {
		panic(err)
	}

	c.AddString("session:a1")
	fmt.Println("present:", c.TestString("session:a1"))

	if err := c.RemoveString("session:a1"); err != nil {
		panic(err)
	}
	fmt.Println("present after remove:", c.TestString("session:a1"))

	err = c.RemoveString("session:a1")
	fmt.Println("second remove:", errors.Is(err, hashkit.ErrNotPresent))

	// Output:
	// present: true
	// present after remove: false
	// second remove: true
}

// Sketches count occurrences in a stream without storing the keys.
func ExampleSketch() {
	s, err := hashkit.NewSketch(3, 1000)
	if err != nil {
		panic(err)
	}

	for _, word := range []string{"Taylor", "Taylor", "Swift"} {
		s.Add(word)
	}

	fmt.Println("Taylor >= 2:", s.Estimate("Taylor") >= 2)
	fmt.Println("Swift >= 1:", s.Estimate("Swift") >= 1)
	fmt.Println("total:", s.Total())

	err = s.AddValue(42)
	fmt.Println("numeric key rejected:", errors.Is(err, hashkit.ErrNotText))

	// Output:
	// Taylor >= 2: true
	// Swift >= 1: true
	// total: 3
	// numeric key rejected: true
}

// This example shows the sketch dimensions for an error target.
func ExampleOptimalSketchParams() {
	depth, width, err := hashkit.OptimalSketchParams(0.001, 0.01)
	if err != nil {
		panic(err)
	}
	fmt.Printf("%d rows x %d columns\n", depth, width)

	// Output:
	// 5 rows x 2719 columns
}

// A ring assigns keys to nodes.
func ExampleRing() {
	r, err := hashkit.NewRing[hashkit.Endpoint](1<<32, 64)
	if err != nil {
		panic(err)
	}

	_, err = r.Assign("user:1")
	fmt.Println("empty ring:", err)

	for _, name := range []string{"cache-a", "cache-b", "cache-c"} {
		if err := r.AddNode(hashkit.Endpoint{Name: name, Host: name + ".internal:6379"}); err != nil {
			panic(err)
		}
	}

	owner, _ := r.Assign("user:1")
	replicas := r.PreferenceList("user:1", 2)
	fmt.Println("owner leads preference list:", owner == replicas[0])
	fmt.Println("nodes:", r.Len(), "positions:", len(r.Positions()))

	// Output:
	// empty ring: hashkit: no nodes available
	// owner leads preference list: true
	// nodes: 3 positions: 192
}

// This example demonstrates using SyncFilter for concurrent access.
func ExampleSyncFilter() {
	f, err := hashkit.NewFilterWithEstimates(100_000, 0.01)
	if err != nil {
		panic(err)
	}
	sf := hashkit.NewSyncFilter(f)

	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range 1000 {
				sf.AddString(fmt.Sprintf("worker-%d-item-%d", id, j))
			}
		}(i)
	}
	wg.Wait()

	fmt.Println("worker-0-item-0 exists:", sf.TestString("worker-0-item-0"))
	fmt.Println("count:", sf.Count())

	// Output:
	// worker-0-item-0 exists: true
	// count: 4000
}
