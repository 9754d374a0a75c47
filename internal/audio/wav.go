// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-audio/wav"
)

// WavAcquirer replays a WAV file as if it were a live input. Each
// ReadWindow returns the next window, advancing by Hop samples; once the
// file is exhausted ReadWindow returns io.EOF, or wraps around when Loop is
// set. Only the first channel is used.
type WavAcquirer struct {
	Path string
	Hop  int // Samples to advance per read; 0 means one full window.
	Loop bool
}

// Acquire decodes the whole file. The file's own sample rate wins over the
// requested one.
func (a *WavAcquirer) Acquire(c Constraints) (Capture, error) {
	f, err := os.Open(a.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", a.Path, err)
	}
	defer f.Close()

	samples, sampleRate, err := decodeMono(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", a.Path, err)
	}

	hop := a.Hop
	if hop <= 0 {
		hop = c.WindowSize
	}
	return &wavCapture{
		samples:    samples,
		sampleRate: sampleRate,
		hop:        hop,
		loop:       a.Loop,
	}, nil
}

const wavFormatPCM = 1

// decodeMono reads PCM from r and returns the first channel normalized to
// [-1, 1].
func decodeMono(r io.ReadSeeker) ([]float64, float64, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, 0, fmt.Errorf("not a valid WAV file")
	}
	if d.WavAudioFormat != wavFormatPCM {
		return nil, 0, fmt.Errorf("unsupported WAV format %d, want integer PCM", d.WavAudioFormat)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}

	channels := int(d.NumChans)
	if channels < 1 {
		channels = 1
	}
	bitDepth := int(d.BitDepth)
	if bitDepth < 8 || bitDepth > 32 {
		return nil, 0, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}
	scale := float64(int64(1)<<(bitDepth-1) - 1)
	// 8-bit WAV is unsigned with silence at 128.
	offset := 0
	if bitDepth == 8 {
		offset = 128
	}

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := range samples {
		samples[i] = float64(buf.Data[i*channels]-offset) / scale
	}
	return samples, float64(d.SampleRate), nil
}

type wavCapture struct {
	mu         sync.Mutex
	samples    []float64
	sampleRate float64
	hop        int
	loop       bool
	pos        int
	closed     bool
}

func (c *wavCapture) SampleRate() float64 {
	return c.sampleRate
}

// ReadWindow copies the window starting at the current position. A final
// partial window is zero-padded.
func (c *wavCapture) ReadWindow(dst []float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrStreamClosed
	}
	if c.pos >= len(c.samples) {
		if !c.loop || len(c.samples) == 0 {
			return io.EOF
		}
		c.pos = 0
	}

	n := copy(dst, c.samples[c.pos:])
	clear(dst[n:])
	c.pos += c.hop
	return nil
}

func (c *wavCapture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
