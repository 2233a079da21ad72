package hashkit

import (
	"errors"
	"fmt"
	"testing"
)

func mustCountingFilter(t *testing.T, size uint64, k uint32, opts ...Option) *CountingFilter {
	t.Helper()
	c, err := NewCountingFilter(size, k, opts...)
	if err != nil {
		t.Fatalf("NewCountingFilter(%d, %d): %v", size, k, err)
	}
	return c
}

func TestCountingFilterBasic(t *testing.T) {
	c := mustCountingFilter(t, 10_000, DefaultK)

	c.AddString("azam")
	c.AddString("sabir")
	c.AddString("azam sabir")

	for _, item := range []string{"azam", "sabir", "azam sabir"} {
		if !c.TestString(item) {
			t.Errorf("expected %q to be present", item)
		}
	}
	if c.Count() != 3 {
		t.Errorf("expected count 3, got %d", c.Count())
	}
}

func TestCountingFilterInvalidParams(t *testing.T) {
	if _, err := NewCountingFilter(0, 3); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("size 0: got %v, want ErrInvalidSize", err)
	}
	if _, err := NewCountingFilter(10, 0); !errors.Is(err, ErrInvalidK) {
		t.Errorf("k 0: got %v, want ErrInvalidK", err)
	}
	if _, err := NewCountingFilterWithEstimates(100, 1.5); !errors.Is(err, ErrInvalidEstimate) {
		t.Errorf("fp 1.5: got %v, want ErrInvalidEstimate", err)
	}
}

func TestCountingFilterAddRemoveRoundTrip(t *testing.T) {
	c := mustCountingFilter(t, 10_000, DefaultK)

	if c.TestString("apple") {
		t.Fatal("fresh filter reports apple present")
	}

	c.AddString("apple")
	if !c.TestString("apple") {
		t.Fatal("expected apple to be present after add")
	}

	if err := c.RemoveString("apple"); err != nil {
		t.Fatalf("RemoveString: %v", err)
	}
	if c.TestString("apple") {
		t.Error("expected apple to be absent after remove")
	}
	if c.Count() != 0 {
		t.Errorf("expected count 0, got %d", c.Count())
	}
	for i, v := range c.counts {
		if v != 0 {
			t.Fatalf("counter %d = %d after balanced add/remove", i, v)
		}
	}
}

func TestCountingFilterRemoveKeepsOthers(t *testing.T) {
	c := mustCountingFilter(t, 1<<16, 4)

	for i := range 500 {
		c.AddString(fmt.Sprintf("item-%d", i))
	}
	for i := 0; i < 500; i += 2 {
		if err := c.RemoveString(fmt.Sprintf("item-%d", i)); err != nil {
			t.Fatalf("remove item-%d: %v", i, err)
		}
	}

	// Remaining items must never become false negatives
	for i := 1; i < 500; i += 2 {
		if !c.TestString(fmt.Sprintf("item-%d", i)) {
			t.Errorf("item-%d lost after removing its neighbours", i)
		}
	}
	if c.Count() != 250 {
		t.Errorf("expected count 250, got %d", c.Count())
	}
}

func TestCountingFilterRemoveAbsent(t *testing.T) {
	c := mustCountingFilter(t, 1000, DefaultK)
	c.AddString("present")

	before := append([]uint32(nil), c.counts...)

	err := c.RemoveString("never-added")
	if !errors.Is(err, ErrNotPresent) {
		// A false positive would let the removal through; that is the
		// documented hazard, not what this test exercises.
		if c.TestString("never-added") {
			t.Skip("never-added is a false positive with these seeds")
		}
		t.Fatalf("got %v, want ErrNotPresent", err)
	}

	for i := range before {
		if before[i] != c.counts[i] {
			t.Fatalf("counter %d changed from %d to %d on failed remove", i, before[i], c.counts[i])
		}
	}
	if !c.TestString("present") {
		t.Error("present item lost after failed remove")
	}
}

func TestCountingFilterMultiplicity(t *testing.T) {
	c := mustCountingFilter(t, 10_000, DefaultK)

	c.AddString("dup")
	c.AddString("dup")

	if err := c.RemoveString("dup"); err != nil {
		t.Fatal(err)
	}
	if !c.TestString("dup") {
		t.Error("expected dup to remain after one of two removes")
	}
	if err := c.RemoveString("dup"); err != nil {
		t.Fatal(err)
	}
	if c.TestString("dup") {
		t.Error("expected dup to be gone after two removes")
	}
	if err := c.RemoveString("dup"); !errors.Is(err, ErrNotPresent) {
		t.Errorf("third remove: got %v, want ErrNotPresent", err)
	}
}

func TestCountingFilterSaturation(t *testing.T) {
	c := mustCountingFilter(t, 1000, 1)

	pos := c.probe([]byte("hot"), 0)
	c.counts[pos] = maxCount - 1

	c.AddString("hot")
	c.AddString("hot")
	if c.counts[pos] != maxCount {
		t.Fatalf("counter = %d, want saturated %d", c.counts[pos], uint32(maxCount))
	}
	if c.Saturated() != 1 {
		t.Errorf("Saturated() = %d, want 1", c.Saturated())
	}

	// Saturated counters are sticky
	if err := c.RemoveString("hot"); err != nil {
		t.Fatal(err)
	}
	if c.counts[pos] != maxCount {
		t.Errorf("saturated counter decremented to %d", c.counts[pos])
	}
}

func TestCountingFilterValues(t *testing.T) {
	c := mustCountingFilter(t, 4096, DefaultK)

	c.AddValue(1234)
	if !c.TestValue("1234") {
		t.Error("expected int and string forms to collide")
	}
	if err := c.RemoveValue(int64(1234)); err != nil {
		t.Fatal(err)
	}
	if c.TestValue(1234) {
		t.Error("expected 1234 to be gone")
	}
}

func TestCountingFilterClear(t *testing.T) {
	c := mustCountingFilter(t, 1000, DefaultK)
	for i := range 100 {
		c.AddString(fmt.Sprintf("item-%d", i))
	}

	c.Clear()

	if c.Count() != 0 {
		t.Errorf("expected count 0 after clear, got %d", c.Count())
	}
	if c.TestString("item-1") {
		t.Error("expected item-1 to be absent after clear")
	}
	if c.EstimatedFalsePositiveRate() != 0 {
		t.Error("expected 0 FP rate after clear")
	}
}

func TestCountingFilterAccessors(t *testing.T) {
	c := mustCountingFilter(t, 321, 5)
	if c.Cap() != 321 {
		t.Errorf("Cap() = %d, want 321", c.Cap())
	}
	if c.K() != 5 {
		t.Errorf("K() = %d, want 5", c.K())
	}
}
