// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"sync"
)

// Ring is a fixed-size circular buffer holding the most recent samples.
// The capture callback enqueues, the analysis loop retrieves; both sides
// may run on different goroutines.
type Ring struct {
	mu     sync.Mutex
	values []float64
	// pointer is the oldest element, i.e. the next one to be overwritten.
	pointer int
}

// NewRing creates a ring holding size samples, initially silent.
func NewRing(size int) *Ring {
	return &Ring{values: make([]float64, size)}
}

// Len returns the capacity of the ring.
func (r *Ring) Len() int {
	return len(r.values)
}

// EnqueueFloat32 appends samples delivered by a float32 host callback,
// overwriting the oldest ones.
func (r *Ring) EnqueueFloat32(samples []float32) {
	n := len(r.values)
	if n == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(samples) > n {
		samples = samples[len(samples)-n:]
	}
	for _, s := range samples {
		r.values[r.pointer] = float64(s)
		r.pointer++
		if r.pointer == n {
			r.pointer = 0
		}
	}
}

// Retrieve copies the whole ring into dst in chronological order. dst must
// be exactly Len samples long.
func (r *Ring) Retrieve(dst []float64) error {
	n := len(r.values)
	if len(dst) != n {
		return fmt.Errorf("audio: window of %d samples does not match ring of %d", len(dst), n)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tail := n - r.pointer
	copy(dst[:tail], r.values[r.pointer:])
	copy(dst[tail:], r.values[:r.pointer])
	return nil
}
