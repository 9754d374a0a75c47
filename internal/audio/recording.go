// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"math"
	"os"
	"sync"
	"sync/atomic"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Recorder writes captured mono samples to a WAV file. Write is called
// from the capture callback, Start and Stop from the control goroutine.
type Recorder struct {
	isRecording atomic.Bool

	mu         sync.Mutex
	outputFile *os.File
	wavEncoder *wav.Encoder
	sampleBuf  *audio.IntBuffer // Reusable buffer for format conversion
	scale      float64
}

// NewRecorder returns an idle recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Recording reports whether a file is open.
func (r *Recorder) Recording() bool {
	return r.isRecording.Load()
}

// Start creates filename and begins recording PCM at the given rate and
// bit depth (16, 24 or 32).
func (r *Recorder) Start(filename string, sampleRate float64, bitDepth int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isRecording.Load() {
		return fmt.Errorf("already recording")
	}
	switch bitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	r.outputFile = file
	r.wavEncoder = wav.NewEncoder(file, int(sampleRate), bitDepth, 1, 1)
	r.sampleBuf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  int(sampleRate),
		},
		Data:           make([]int, 0, 1024),
		SourceBitDepth: bitDepth,
	}
	r.scale = float64(int64(1)<<(bitDepth-1) - 1)

	r.isRecording.Store(true)
	return nil
}

// Write converts samples in [-1, 1] to PCM and appends them to the file.
// Samples outside the range are clipped. Writing while stopped is a no-op.
func (r *Recorder) Write(samples []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isRecording.Load() || r.wavEncoder == nil {
		return nil
	}

	data := r.sampleBuf.Data[:0]
	for _, s := range samples {
		v := math.Max(-1, math.Min(1, float64(s)))
		data = append(data, int(math.Round(v*r.scale)))
	}
	r.sampleBuf.Data = data

	return r.wavEncoder.Write(r.sampleBuf)
}

// Stop finalizes the WAV header and closes the file. Stopping an idle
// recorder is a no-op.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isRecording.Load() {
		return nil
	}
	r.isRecording.Store(false)

	if r.wavEncoder != nil {
		if err := r.wavEncoder.Close(); err != nil {
			r.outputFile.Close()
			r.wavEncoder, r.outputFile = nil, nil
			return err
		}
		r.wavEncoder = nil
	}

	if r.outputFile != nil {
		if err := r.outputFile.Close(); err != nil {
			r.outputFile = nil
			return err
		}
		r.outputFile = nil
	}

	return nil
}
