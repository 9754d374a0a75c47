// SPDX-License-Identifier: MIT
package audio

import (
	"sync"

	"gtuner/pkg/signal"
)

// SineAcquirer produces a steady synthetic tone. It never fails, which
// also makes it the stand-in input for demos and tests.
type SineAcquirer struct {
	Frequency float64
	Amplitude float64
}

func (a *SineAcquirer) Acquire(c Constraints) (Capture, error) {
	amp := a.Amplitude
	if amp == 0 {
		amp = 0.5
	}
	return &sineCapture{
		osc: &signal.Oscillator{
			Frequency:  a.Frequency,
			Amplitude:  amp,
			SampleRate: c.SampleRate,
		},
	}, nil
}

type sineCapture struct {
	mu     sync.Mutex
	osc    *signal.Oscillator
	closed bool
}

func (c *sineCapture) SampleRate() float64 {
	return c.osc.SampleRate
}

func (c *sineCapture) ReadWindow(dst []float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrStreamClosed
	}
	c.osc.Fill(dst)
	return nil
}

func (c *sineCapture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
