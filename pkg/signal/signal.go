// SPDX-License-Identifier: MIT
// Package signal generates normalized test signals in [-1, 1]. The tuner's
// tests and the synthetic demo source share these generators.
package signal

import (
	"math"
	"math/rand/v2"
)

// Sine returns size samples of a sine wave at frequency Hz.
func Sine(size int, sampleRate, frequency, amplitude float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = amplitude * math.Sin(2*math.Pi*frequency*t)
	}
	return buffer
}

// Pluck returns a fundamental plus its second and third harmonics
// (0.5/0.3/0.2 weights), a rough stand-in for a plucked string.
func Pluck(size int, sampleRate, frequency, amplitude float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		s := math.Sin(2*math.Pi*frequency*t)*0.5 +
			math.Sin(2*math.Pi*2*frequency*t)*0.3 +
			math.Sin(2*math.Pi*3*frequency*t)*0.2
		buffer[i] = amplitude * s
	}
	return buffer
}

// Noise returns uniformly distributed noise in [-amplitude, amplitude]. The
// seed makes runs reproducible.
func Noise(size int, amplitude float64, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	buffer := make([]float64, size)
	for i := range buffer {
		buffer[i] = amplitude * (2*rng.Float64() - 1)
	}
	return buffer
}

// Offset adds a constant to every sample in place and returns buf.
func Offset(buf []float64, dc float64) []float64 {
	for i := range buf {
		buf[i] += dc
	}
	return buf
}

// Oscillator produces a continuous sine across successive Fill calls, so
// consecutive windows join without a phase jump.
type Oscillator struct {
	Frequency  float64
	Amplitude  float64
	SampleRate float64

	phase float64
}

// Fill writes the next len(dst) samples into dst.
func (o *Oscillator) Fill(dst []float64) {
	step := 2 * math.Pi * o.Frequency / o.SampleRate
	for i := range dst {
		dst[i] = o.Amplitude * math.Sin(o.phase)
		o.phase += step
		if o.phase >= 2*math.Pi {
			o.phase -= 2 * math.Pi
		}
	}
}
