// SPDX-License-Identifier: MIT
package audio

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gordonklaus/portaudio"
)

// TestHostDevicesHardware runs against the real host API when present.
func TestHostDevicesHardware(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Skipf("PortAudio unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := Terminate(); err != nil {
			t.Errorf("Terminate: %v", err)
		}
	})

	devices, err := HostDevices()
	if err != nil {
		t.Fatalf("HostDevices: %v", err)
	}
	for i, d := range devices {
		if d.ID != i || d.Name == "" || d.DefaultSampleRate <= 0 {
			t.Errorf("device %d = %+v", i, d)
		}
	}
	if _, err := InputDevice(len(devices) + 10); err == nil {
		t.Error("out of range device accepted")
	}
}

func TestPortAudioFailures(t *testing.T) {
	mockErr := errors.New("mock failure")
	tests := []struct {
		name  string
		patch func()
		call  func() error
	}{
		{
			name:  "host devices",
			patch: func() { paDevicesFunc = func() ([]*portaudio.DeviceInfo, error) { return nil, mockErr } },
			call:  func() error { _, err := HostDevices(); return err },
		},
		{
			name:  "input device list",
			patch: func() { paDevicesFunc = func() ([]*portaudio.DeviceInfo, error) { return nil, mockErr } },
			call:  func() error { _, err := InputDevice(0); return err },
		},
		{
			name: "default input",
			patch: func() {
				paDevicesFunc = func() ([]*portaudio.DeviceInfo, error) { return nil, nil }
				paLibDefaultInputDeviceFunc = func() (*portaudio.DeviceInfo, error) { return nil, mockErr }
			},
			call: func() error { _, err := InputDevice(-1); return err },
		},
		{
			name:  "initialize",
			patch: func() { paLibInitialize = func() error { return mockErr } },
			call:  Initialize,
		},
		{
			name:  "terminate",
			patch: func() { paLibTerminate = func() error { return mockErr } },
			call:  Terminate,
		},
		{
			name:  "library devices",
			patch: func() { paLibDevicesFunc = func() ([]*portaudio.DeviceInfo, error) { return nil, mockErr } },
			call:  func() error { _, err := paDevices(); return err },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			devices, defInput := paDevicesFunc, paLibDefaultInputDeviceFunc
			initFn, termFn, libDevices := paLibInitialize, paLibTerminate, paLibDevicesFunc
			t.Cleanup(func() {
				paDevicesFunc, paLibDefaultInputDeviceFunc = devices, defInput
				paLibInitialize, paLibTerminate, paLibDevicesFunc = initFn, termFn, libDevices
			})

			tt.patch()
			if err := tt.call(); !errors.Is(err, mockErr) {
				t.Errorf("error = %v, want wrapped mock failure", err)
			}
		})
	}
}

func TestNilDeviceList(t *testing.T) {
	orig := paLibDevicesFunc
	t.Cleanup(func() { paLibDevicesFunc = orig })
	paLibDevicesFunc = func() ([]*portaudio.DeviceInfo, error) { return nil, nil }

	devices, err := paDevices()
	if err != nil || devices == nil || len(devices) != 0 {
		t.Errorf("paDevices() = %v, %v; want empty non-nil slice", devices, err)
	}
}

func mockDevices(t *testing.T, infos ...*portaudio.DeviceInfo) {
	t.Helper()
	orig := paDevicesFunc
	t.Cleanup(func() { paDevicesFunc = orig })
	paDevicesFunc = func() ([]*portaudio.DeviceInfo, error) {
		return infos, nil
	}
}

func TestListDevices(t *testing.T) {
	mockDevices(t,
		&portaudio.DeviceInfo{Name: "Speakers", MaxOutputChannels: 2, DefaultSampleRate: 44100},
		&portaudio.DeviceInfo{
			Name:                    "USB Interface",
			MaxInputChannels:        2,
			DefaultSampleRate:       48000,
			DefaultLowInputLatency:  5 * time.Millisecond,
			DefaultHighInputLatency: 20 * time.Millisecond,
		},
	)

	var buf bytes.Buffer
	if err := ListDevices(&buf); err != nil {
		t.Fatalf("ListDevices error: %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "Speakers") {
		t.Error("output-only device should not be listed")
	}
	for _, want := range []string{"[1] USB Interface", "Input channels: 2", "48000 Hz", "Low=5.00ms, High=20.00ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInputDeviceMocked(t *testing.T) {
	mockDevices(t,
		&portaudio.DeviceInfo{Name: "Speakers", MaxOutputChannels: 2},
		&portaudio.DeviceInfo{Name: "Mic", MaxInputChannels: 1},
	)

	dev, err := InputDevice(1)
	if err != nil || dev.Name != "Mic" {
		t.Fatalf("InputDevice(1) = %v, %v", dev, err)
	}
	if _, err := InputDevice(0); err == nil || !strings.Contains(err.Error(), "does not support input") {
		t.Errorf("expected non-input error, got %v", err)
	}
	if _, err := InputDevice(2); err == nil || !strings.Contains(err.Error(), "invalid device ID") {
		t.Errorf("expected invalid ID error, got %v", err)
	}
}

func TestPortAudioCaptureProcess(t *testing.T) {
	c := &portAudioCapture{ring: NewRing(4), sampleRate: 48000, stream: &portaudio.Stream{}}
	c.process([]float32{0.1, 0.2, 0.3, 0.4, 0.5})

	dst := make([]float64, 4)
	if err := c.ReadWindow(dst); err != nil {
		t.Fatal(err)
	}
	if float32(dst[0]) != 0.2 || float32(dst[3]) != 0.5 {
		t.Errorf("ReadWindow = %v, want latest four samples", dst)
	}

	c.stream = nil
	if err := c.ReadWindow(dst); err != ErrStreamClosed {
		t.Errorf("ReadWindow after close = %v, want ErrStreamClosed", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close on released capture: %v", err)
	}
}
