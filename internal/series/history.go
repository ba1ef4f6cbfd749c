package series

import "sync"

const defaultCapacity = 60

// History is a fixed-capacity FIFO buffer of samples. A single producer
// goroutine pushes; any goroutine may take a snapshot. Readers never see
// the backing storage, only copies.
type History struct {
	mu    sync.Mutex
	data  []Sample
	size  int
	head  int // next write position
	count int
}

// NewHistory creates a history holding at most size samples.
func NewHistory(size int) *History {
	if size <= 0 {
		size = defaultCapacity
	}

	return &History{
		data: make([]Sample, size),
		size: size,
	}
}

// Push appends a sample, evicting the oldest when full.
func (h *History) Push(s Sample) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.data[h.head] = s
	h.head = (h.head + 1) % h.size
	if h.count < h.size {
		h.count++
	}
}

// Snapshot returns all samples in insertion order (oldest first).
func (h *History) Snapshot() []Sample {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return nil
	}

	out := make([]Sample, h.count)
	start := (h.head - h.count + h.size) % h.size
	for i := 0; i < h.count; i++ {
		out[i] = h.data[(start+i)%h.size]
	}

	return out
}

// Last returns the most recently pushed sample.
func (h *History) Last() (Sample, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return Sample{}, false
	}

	last := (h.head - 1 + h.size) % h.size

	return h.data[last], true
}

// Len returns the number of samples currently held.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.count
}

// Cap returns the configured capacity.
func (h *History) Cap() int {
	return h.size
}
