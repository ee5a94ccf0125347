package detector

import (
	"testing"
	"time"
)

func TestWindowEvictAndCompact(t *testing.T) {
	w := newTimeWindow()
	base := time.Now().UTC()
	for i := 0; i < 100; i++ {
		w.Add(base.Add(time.Duration(i) * time.Millisecond))
	}
	w.Evict(base.Add(60 * time.Millisecond))
	if got := w.Len(); got != 40 {
		t.Fatalf("len after evict: got %d, want 40", got)
	}
	// Compaction fired (60 >= 100/2), head rewound to zero.
	if w.head != 0 {
		t.Fatalf("expected compaction, head=%d", w.head)
	}
	if len(w.timestamps) != 40 {
		t.Fatalf("backing slice not compacted: %d", len(w.timestamps))
	}
}

func TestWindowEvictKeepsBoundary(t *testing.T) {
	w := newTimeWindow()
	base := time.Now().UTC()
	w.Add(base)
	w.Add(base.Add(time.Second))
	// Cutoff equal to a timestamp retains it.
	w.Evict(base)
	if got := w.Len(); got != 2 {
		t.Fatalf("boundary timestamp evicted: len=%d", got)
	}
	w.Evict(base.Add(time.Millisecond))
	if got := w.Len(); got != 1 {
		t.Fatalf("stale timestamp retained: len=%d", got)
	}
}
