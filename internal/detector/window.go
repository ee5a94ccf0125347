package detector

import "time"

// timeWindow holds the timestamps of frames seen within the trailing
// detection window, oldest first. Eviction consumes from the front via a
// head index; the backing slice is compacted once half of it is dead.
type timeWindow struct {
	timestamps []time.Time
	head       int
}

func newTimeWindow() *timeWindow {
	return &timeWindow{timestamps: make([]time.Time, 0, 128)}
}

func (w *timeWindow) Add(ts time.Time) {
	w.timestamps = append(w.timestamps, ts)
}

// Evict drops every timestamp strictly before cutoff. Timestamps arrive in
// non-decreasing order, so eviction stops at the first retained entry.
func (w *timeWindow) Evict(cutoff time.Time) {
	for w.head < len(w.timestamps) {
		if !w.timestamps[w.head].Before(cutoff) {
			break
		}
		w.head++
	}
	if w.head > 0 && w.head*2 >= len(w.timestamps) {
		w.timestamps = append([]time.Time{}, w.timestamps[w.head:]...)
		w.head = 0
	}
}

func (w *timeWindow) Len() int {
	return len(w.timestamps) - w.head
}
