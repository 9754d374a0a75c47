// SPDX-License-Identifier: MIT
package analysis

import "slices"

// DefaultSmoothingWindow is the number of recent estimates the median is
// taken over.
const DefaultSmoothingWindow = 5

// Smoother keeps the last few frequency estimates and reports their median,
// which rides out single-window octave jumps better than a mean would.
// Only confident estimates should be pushed.
type Smoother struct {
	history []float64 // Oldest first.
	sorted  []float64 // Scratch space for the median.
}

// NewSmoother returns a Smoother retaining up to capacity estimates.
// Capacities below one are treated as one.
func NewSmoother(capacity int) *Smoother {
	capacity = max(capacity, 1)
	return &Smoother{
		history: make([]float64, 0, capacity),
		sorted:  make([]float64, 0, capacity),
	}
}

// Push records freq, dropping the oldest estimate when full, and returns
// the new median.
func (s *Smoother) Push(freq float64) float64 {
	if len(s.history) == cap(s.history) {
		copy(s.history, s.history[1:])
		s.history = s.history[:len(s.history)-1]
	}
	s.history = append(s.history, freq)
	m, _ := s.Value()
	return m
}

// Value returns the median of the retained estimates: the middle value for
// an odd count, the mean of the two middle values for an even count. It
// reports false when nothing has been pushed since the last Reset.
func (s *Smoother) Value() (float64, bool) {
	n := len(s.history)
	if n == 0 {
		return 0, false
	}
	s.sorted = append(s.sorted[:0], s.history...)
	slices.Sort(s.sorted)
	mid := n / 2
	if n%2 == 1 {
		return s.sorted[mid], true
	}
	return (s.sorted[mid-1] + s.sorted[mid]) / 2, true
}

// Len returns the number of retained estimates.
func (s *Smoother) Len() int { return len(s.history) }

// Capacity returns the maximum number of retained estimates.
func (s *Smoother) Capacity() int { return cap(s.history) }

// History returns a copy of the retained estimates, oldest first.
func (s *Smoother) History() []float64 {
	return slices.Clone(s.history)
}

// Reset empties the history.
func (s *Smoother) Reset() {
	s.history = s.history[:0]
}
