// SPDX-License-Identifier: MIT
package display

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	applog "gtuner/internal/log"
	"gtuner/internal/transport"
	"gtuner/internal/tuning"
)

// recorder remembers every call as a short string.
type recorder struct {
	calls []string
}

func (r *recorder) Reset()             { r.calls = append(r.calls, "reset") }
func (r *recorder) NoPitch(msg string) { r.calls = append(r.calls, "nopitch:"+msg) }
func (r *recorder) Result(rd Reading)  { r.calls = append(r.calls, "result:"+rd.Target.ID) }

func sampleReading() Reading {
	target := tuning.Standard()[1]
	return Reading{
		Frequency: 108.5,
		Detected:  "A2",
		Target:    target,
		Cents:     -23.77,
		Direction: Flat,
		Hint:      Hint(Flat, -23.77),
		Needle:    NeedleAngle(-23.77),
	}
}

func TestNeedleAngle(t *testing.T) {
	tests := []struct {
		cents, want float64
	}{
		{0, 0},
		{25, 22.5},
		{-50, -45},
		{50, 45},
		{80, 45},
		{-1200, -45},
	}
	for _, tt := range tests {
		if got := NeedleAngle(tt.cents); got != tt.want {
			t.Errorf("NeedleAngle(%v) = %v, want %v", tt.cents, got, tt.want)
		}
	}
}

func TestHint(t *testing.T) {
	tests := []struct {
		d     Direction
		cents float64
		want  string
	}{
		{Flat, -12.34, "Flat (tighten) · off by -12.3¢"},
		{Sharp, 4.06, "Sharp (loosen) · off by 4.1¢"},
		{InTune, 0.5, "In tune! · off by 0.5¢"},
	}
	for _, tt := range tests {
		if got := Hint(tt.d, tt.cents); got != tt.want {
			t.Errorf("Hint(%v, %v) = %q, want %q", tt.d, tt.cents, got, tt.want)
		}
	}
}

func TestMulti(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	m := Multi{a, b, Discard{}}

	m.Reset()
	m.NoPitch(MsgWeakSignal)
	m.Result(sampleReading())

	want := []string{"reset", "nopitch:" + MsgWeakSignal, "result:A"}
	for _, r := range []*recorder{a, b} {
		if strings.Join(r.calls, "|") != strings.Join(want, "|") {
			t.Errorf("calls = %v, want %v", r.calls, want)
		}
	}
}

func TestEventJSON(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  map[string]any
	}{
		{
			name:  "Reset",
			event: ResetEvent(),
			want:  map[string]any{"type": "reset", "message": MsgIdle, "cents": 0.0, "direction": "in_tune", "needle": 0.0},
		},
		{
			name:  "NoPitch",
			event: NoPitchEvent(MsgUnstablePitch),
			want:  map[string]any{"type": "no_pitch", "message": MsgUnstablePitch, "cents": 0.0, "direction": "in_tune", "needle": 0.0},
		},
		{
			name:  "Result",
			event: ResultEvent(sampleReading()),
			want: map[string]any{
				"type":             "result",
				"message":          Hint(Flat, -23.77),
				"frequency":        108.5,
				"detected":         "A2",
				"target":           "A",
				"target_label":     "A2",
				"target_frequency": 110.0,
				"cents":            -23.77,
				"direction":        "flat",
				"needle":           NeedleAngle(-23.77),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.event)
			if err != nil {
				t.Fatal(err)
			}
			var got map[string]any
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Errorf("got keys %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestBroadcast(t *testing.T) {
	var buf bytes.Buffer
	b := NewBroadcast(transport.NewJSONLines(&buf))

	b.Reset()
	b.Result(sampleReading())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	var e Event
	if err := json.Unmarshal([]byte(lines[1]), &e); err != nil {
		t.Fatal(err)
	}
	if e.Type != EventResult || e.Target != "A" {
		t.Errorf("decoded %+v", e)
	}
}

func TestDirectionText(t *testing.T) {
	for _, d := range []Direction{InTune, Flat, Sharp} {
		t.Run(d.String(), func(t *testing.T) {
			b, err := json.Marshal(Event{Type: EventResult, Direction: d})
			if err != nil {
				t.Fatal(err)
			}
			var e Event
			if err := json.Unmarshal(b, &e); err != nil {
				t.Fatalf("Unmarshal(%s): %v", b, err)
			}
			if e.Direction != d {
				t.Errorf("round trip = %v, want %v", e.Direction, d)
			}
		})
	}

	var d Direction
	if err := d.UnmarshalText([]byte("wobbly")); err == nil {
		t.Error("unknown direction accepted")
	}
}

func TestLogSuppressesRepeats(t *testing.T) {
	var buf bytes.Buffer
	applog.SetOutput(&buf)
	defer applog.SetOutput(os.Stderr)

	l := NewLog()
	l.NoPitch(MsgWeakSignal)
	l.NoPitch(MsgWeakSignal)
	l.NoPitch(MsgWeakSignal)
	l.Result(sampleReading())
	l.NoPitch(MsgWeakSignal)

	out := buf.String()
	if n := strings.Count(out, MsgWeakSignal); n != 2 {
		t.Errorf("weak signal logged %d times, want 2:\n%s", n, out)
	}
	if !strings.Contains(out, "108.50 Hz") || !strings.Contains(out, "flat") {
		t.Errorf("result line missing:\n%s", out)
	}
}
