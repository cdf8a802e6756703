package audio

import "sync"

// LevelWindow keeps the most recent samples of a capture so the UI can draw
// an input level while the writer keeps appending.
type LevelWindow struct {
	mu      sync.RWMutex
	samples []int16
	head    int
	count   int
}

// NewLevelWindow holds up to capacity samples.
func NewLevelWindow(capacity int) *LevelWindow {
	return &LevelWindow{samples: make([]int16, capacity)}
}

// Write appends samples, overwriting the oldest once full.
func (w *LevelWindow) Write(samples []int16) {
	if len(samples) == 0 || len(w.samples) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	size := len(w.samples)
	for _, s := range samples {
		w.samples[w.head] = s
		w.head = (w.head + 1) % size
		w.count = min(w.count+1, size)
	}
}

// Recent returns up to n of the newest samples, oldest first.
func (w *LevelWindow) Recent(n int) []int16 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	n = min(n, w.count)
	if n <= 0 {
		return nil
	}

	size := len(w.samples)
	start := (w.head - n + size) % size

	out := make([]int16, n)
	for i := range out {
		out[i] = w.samples[(start+i)%size]
	}

	return out
}

// Len is the number of samples held.
func (w *LevelWindow) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.count
}

// Reset drops all samples.
func (w *LevelWindow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.head = 0
	w.count = 0
}
