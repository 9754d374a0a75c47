// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"sync"
	"time"

	applog "gtuner/internal/log"

	"github.com/gordonklaus/portaudio"
)

// PortAudioAcquirer opens the microphone through PortAudio. PortAudio
// delivers raw input, so the echo, noise and gain switches in Constraints
// are satisfied as long as they are requested off. Initialize must have
// been called.
type PortAudioAcquirer struct {
	// Recorder, when set and started, receives every captured buffer.
	Recorder *Recorder
	// FramesPerBuffer is the host callback size; 0 lets PortAudio choose.
	FramesPerBuffer int
}

// Acquire opens and starts a mono input stream on the requested device.
func (a *PortAudioAcquirer) Acquire(c Constraints) (Capture, error) {
	device, err := InputDevice(c.Device)
	if err != nil {
		return nil, err
	}

	if c.EchoCancellation || c.NoiseSuppression || c.AutoGainControl {
		applog.Warnf("Capture: host processing requested but PortAudio captures raw input")
	}

	latency := device.DefaultHighInputLatency
	if c.LowLatency {
		latency = device.DefaultLowInputLatency
	}

	pc := &portAudioCapture{
		ring:       NewRing(c.WindowSize),
		recorder:   a.Recorder,
		sampleRate: c.SampleRate,
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  latency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: a.FramesPerBuffer,
		SampleRate:      c.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, pc.process)
	if err != nil {
		return nil, fmt.Errorf("failed to open input stream on %q: %w", device.Name, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start input stream on %q: %w", device.Name, err)
	}
	pc.stream = stream

	applog.Infof("Capture: %s at %.0f Hz, window %d, latency %s",
		device.Name, c.SampleRate, c.WindowSize, latency.Round(time.Millisecond))
	return pc, nil
}

type portAudioCapture struct {
	ring       *Ring
	recorder   *Recorder
	sampleRate float64

	mu     sync.Mutex
	stream *portaudio.Stream
}

// process is the PortAudio callback. It runs on the host's audio thread
// and must not block: it only copies into the ring and the recorder.
func (c *portAudioCapture) process(in []float32) {
	c.ring.EnqueueFloat32(in)
	if c.recorder != nil && c.recorder.Recording() {
		if err := c.recorder.Write(in); err != nil {
			applog.Errorf("Capture: error writing to WAV file: %v", err)
		}
	}
}

func (c *portAudioCapture) SampleRate() float64 {
	return c.sampleRate
}

// ReadWindow copies the latest window. dst must match the window size
// requested at acquisition.
func (c *portAudioCapture) ReadWindow(dst []float64) error {
	c.mu.Lock()
	closed := c.stream == nil
	c.mu.Unlock()
	if closed {
		return ErrStreamClosed
	}
	return c.ring.Retrieve(dst)
}

func (c *portAudioCapture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream == nil {
		return nil
	}
	stream := c.stream
	c.stream = nil

	if err := stream.Stop(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to stop input stream: %w", err)
	}
	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close input stream: %w", err)
	}
	applog.Infof("Capture: input stream released")
	return nil
}
