// SPDX-License-Identifier: MIT
package signal

import (
	"math"
	"testing"
)

const (
	testSize       = 2048
	testSampleRate = 48000
)

func peak(buf []float64) float64 {
	var m float64
	for _, v := range buf {
		m = math.Max(m, math.Abs(v))
	}
	return m
}

func TestGeneratorsStayInRange(t *testing.T) {
	tests := []struct {
		name   string
		buffer []float64
		limit  float64
	}{
		{"Sine", Sine(testSize, testSampleRate, 110, 0.5), 0.5},
		{"Pluck", Pluck(testSize, testSampleRate, 82.41, 0.8), 0.8},
		{"Noise", Noise(testSize, 0.01, 7), 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.buffer) != testSize {
				t.Fatalf("length = %d, want %d", len(tt.buffer), testSize)
			}
			if p := peak(tt.buffer); p > tt.limit+1e-12 {
				t.Errorf("peak %.6f exceeds amplitude %.6f", p, tt.limit)
			}
		})
	}
}

func TestNoiseIsReproducible(t *testing.T) {
	a := Noise(64, 1, 42)
	b := Noise(64, 1, 42)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs between runs with the same seed", i)
		}
	}
}

func TestOffset(t *testing.T) {
	// 93.75Hz puts exactly four periods in 2048 samples at 48kHz.
	buf := Offset(Sine(testSize, testSampleRate, 93.75, 0.5), 0.25)
	var sum float64
	for _, v := range buf {
		sum += v
	}
	if mean := sum / float64(len(buf)); math.Abs(mean-0.25) > 1e-9 {
		t.Errorf("mean = %.4f, want ~0.25", mean)
	}
}

func TestOscillatorIsContinuous(t *testing.T) {
	osc := &Oscillator{Frequency: 110, Amplitude: 0.5, SampleRate: testSampleRate}
	first := make([]float64, 1000)
	second := make([]float64, 1000)
	osc.Fill(first)
	osc.Fill(second)

	want := Sine(2000, testSampleRate, 110, 0.5)
	for i, v := range append(first, second...) {
		if math.Abs(v-want[i]) > 1e-9 {
			t.Fatalf("sample %d = %.9f, want %.9f", i, v, want[i])
		}
	}
}
