// SPDX-License-Identifier: MIT
package display

import (
	"sync"

	applog "gtuner/internal/log"
)

// Log writes events to the application log for headless runs. Repeated
// no-pitch messages are written once until something else happens.
type Log struct {
	mu          sync.Mutex
	lastNoPitch string
}

// NewLog returns a logging sink.
func NewLog() *Log {
	return &Log{}
}

func (l *Log) Reset() {
	l.mu.Lock()
	l.lastNoPitch = ""
	l.mu.Unlock()
	applog.Infof("Tuner: %s", MsgIdle)
}

func (l *Log) NoPitch(msg string) {
	l.mu.Lock()
	repeated := msg == l.lastNoPitch
	l.lastNoPitch = msg
	l.mu.Unlock()

	if !repeated {
		applog.Infof("Tuner: %s", msg)
	}
}

func (l *Log) Result(r Reading) {
	l.mu.Lock()
	l.lastNoPitch = ""
	l.mu.Unlock()

	applog.Infof("Tuner: %7.2f Hz  detected %-3s  target %s (%.2f Hz)  %+6.1f¢  %s",
		r.Frequency, r.Detected, r.Target.Label, r.Target.Frequency, r.Cents, r.Direction)
}
