// SPDX-License-Identifier: MIT
package analysis

// Gate is an RMS noise gate. The tuner checks it before running the
// detector so quiet windows are reported as weak rather than unstable.
type Gate struct {
	threshold float64
}

// NewGate returns a gate with the given RMS threshold.
func NewGate(threshold float64) *Gate {
	g := &Gate{}
	g.SetThreshold(threshold)
	return g
}

// SetThreshold adjusts the gate threshold.
// The value is in the range of 0.0-1.0 where 0=always open, 1=closed for
// anything short of a full-scale square wave.
func (g *Gate) SetThreshold(threshold float64) {
	if threshold < 0.0 {
		threshold = 0.0
	}
	if threshold > 1.0 {
		threshold = 1.0
	}
	g.threshold = threshold
}

// Threshold returns the current RMS threshold.
func (g *Gate) Threshold() float64 {
	return g.threshold
}

// Open reports whether window is loud enough to analyze, along with its RMS.
func (g *Gate) Open(window []float64) (bool, float64) {
	rms := RMS(window)
	return rms >= g.threshold, rms
}
