// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gtuner/pkg/signal"
)

const (
	testSampleRate = 48000
	testWindow     = 2048
)

func float32s(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}

func TestRecordingStartStop(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "test_recording.wav")
	rec := NewRecorder()

	if err := rec.Start(filename, testSampleRate, 16); err != nil {
		t.Fatalf("Failed to start recording: %v", err)
	}
	if !rec.Recording() {
		t.Error("Recorder should be in recording state")
	}
	if rec.outputFile == nil || rec.wavEncoder == nil || rec.sampleBuf == nil {
		t.Fatal("Recorder resources should be initialized")
	}
	if rec.sampleBuf.Format.SampleRate != testSampleRate {
		t.Errorf("Buffer sample rate mismatch: got %d, want %d",
			rec.sampleBuf.Format.SampleRate, testSampleRate)
	}

	outputFile := rec.outputFile

	if err := rec.Stop(); err != nil {
		t.Fatalf("Failed to stop recording: %v", err)
	}
	if rec.Recording() {
		t.Error("Recorder should not be recording after Stop")
	}
	if rec.outputFile != nil || rec.wavEncoder != nil {
		t.Error("Recorder resources should be released after Stop")
	}
	if err := outputFile.Close(); err == nil {
		t.Error("File should already be closed")
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		t.Error("Recording file was not created")
	}
}

func TestRecordingErrorCases(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		desc          string
		filename      string
		bitDepth      int
		alreadyActive bool
		errorContains string
	}{
		{"Already recording", "second.wav", 16, true, "already recording"},
		{"Invalid path", "/nonexistent/path/file.wav", 16, false, "no such file"},
		{"Unsupported depth", "depth.wav", 12, false, "unsupported bit depth"},
		{"Valid path", "test.wav", 24, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			rec := NewRecorder()
			if tt.alreadyActive {
				if err := rec.Start(filepath.Join(dir, "first.wav"), testSampleRate, 16); err != nil {
					t.Fatal(err)
				}
				defer rec.Stop()
			}

			filename := tt.filename
			if !filepath.IsAbs(filename) {
				filename = filepath.Join(dir, filename)
			}
			err := rec.Start(filename, testSampleRate, tt.bitDepth)
			if tt.errorContains == "" {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				_ = rec.Stop()
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errorContains) {
				t.Errorf("error = %v, want it to contain %q", err, tt.errorContains)
			}
		})
	}
}

func TestRecordingStopWhenIdle(t *testing.T) {
	if err := NewRecorder().Stop(); err != nil {
		t.Errorf("Stop on idle recorder: %v", err)
	}
	if err := NewRecorder().Write([]float32{0.5}); err != nil {
		t.Errorf("Write on idle recorder: %v", err)
	}
}

// TestRecordingRoundTrip records a tone and replays it through the WAV
// source, which is how captured sessions are analyzed offline.
func TestRecordingRoundTrip(t *testing.T) {
	for _, depth := range []int{16, 24, 32} {
		t.Run(fmt.Sprintf("%dbit", depth), func(t *testing.T) {
			filename := filepath.Join(t.TempDir(), "roundtrip.wav")
			tone := signal.Sine(2*testWindow+100, testSampleRate, 110, 0.5)
			tone[10] = 1.5 // clipped to full scale

			rec := NewRecorder()
			if err := rec.Start(filename, testSampleRate, depth); err != nil {
				t.Fatal(err)
			}
			// Several callback-sized writes.
			in := float32s(tone)
			for off := 0; off < len(in); off += 256 {
				if err := rec.Write(in[off:min(off+256, len(in))]); err != nil {
					t.Fatalf("Write: %v", err)
				}
			}
			if err := rec.Stop(); err != nil {
				t.Fatal(err)
			}

			c, err := (&WavAcquirer{Path: filename}).Acquire(Constraints{WindowSize: testWindow})
			if err != nil {
				t.Fatalf("Acquire: %v", err)
			}
			defer c.Close()
			if c.SampleRate() != testSampleRate {
				t.Errorf("SampleRate = %v, want %v", c.SampleRate(), testSampleRate)
			}

			window := make([]float64, testWindow)
			if err := c.ReadWindow(window); err != nil {
				t.Fatal(err)
			}
			tolerance := 2.0 / float64(int64(1)<<(depth-1))
			for i := range window {
				want := math.Max(-1, math.Min(1, float64(float32(tone[i]))))
				if math.Abs(window[i]-want) > tolerance {
					t.Fatalf("sample %d = %.6f, want %.6f", i, window[i], want)
				}
			}
		})
	}
}

func BenchmarkRecordingWrite(b *testing.B) {
	filename := filepath.Join(b.TempDir(), "bench.wav")
	rec := NewRecorder()
	if err := rec.Start(filename, testSampleRate, 16); err != nil {
		b.Fatal(err)
	}
	defer rec.Stop()

	in := float32s(signal.Sine(256, testSampleRate, 110, 0.5))
	b.ReportAllocs()
	for b.Loop() {
		_ = rec.Write(in)
	}
}
