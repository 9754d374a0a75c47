// SPDX-License-Identifier: MIT
// Package analysis turns time-domain windows into fundamental frequency
// estimates and smooths them over time.
package analysis

// PitchDetector estimates the fundamental frequency of one window of
// samples in [-1, 1]. It reports false when no confident pitch is found.
// Implementations must not modify window.
type PitchDetector interface {
	Detect(window []float64, sampleRate float64) (float64, bool)
}

// Compile-time checks for interface implementations.
var _ PitchDetector = (*Detector)(nil)
