package ingestion

import (
	"sync"

	"pulseguard/internal/domain"
)

// SampleRing is a bounded ring buffer of samples. The acquisition goroutine
// pushes, the pipeline tick snapshots; capacity bounds memory and the
// oldest samples are evicted as new ones arrive. All operations are O(n) at
// worst in the fixed capacity, so a tick can never block indefinitely.
type SampleRing struct {
	mu    sync.Mutex
	buf   []domain.Sample
	head  int
	count int
}

// NewSampleRing creates a ring with the given fixed capacity.
func NewSampleRing(capacity int) *SampleRing {
	if capacity < 1 {
		capacity = 1
	}
	return &SampleRing{buf: make([]domain.Sample, capacity)}
}

// Push appends a sample, evicting the oldest when full.
func (r *SampleRing) Push(s domain.Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := (r.head + r.count) % len(r.buf)
	r.buf[idx] = s
	if r.count < len(r.buf) {
		r.count++
	} else {
		r.head = (r.head + 1) % len(r.buf)
	}
}

// Len reports the number of buffered samples.
func (r *SampleRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Snapshot copies the buffered samples oldest-first. The copy is detached:
// the pipeline can process it while acquisition keeps pushing.
func (r *SampleRing) Snapshot() []domain.Sample {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Sample, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

// IRChannel extracts the infrared channel from a sample snapshot.
func IRChannel(samples []domain.Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.IR
	}
	return out
}
