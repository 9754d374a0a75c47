// SPDX-License-Identifier: MIT
package display

import (
	applog "gtuner/internal/log"
	"gtuner/internal/transport"
)

// Broadcast forwards events as JSON-ready Event values to a transport.
type Broadcast struct {
	t transport.Transport
}

// NewBroadcast returns a sink writing to t.
func NewBroadcast(t transport.Transport) *Broadcast {
	return &Broadcast{t: t}
}

func (b *Broadcast) send(e Event) {
	if err := b.t.Send(e); err != nil {
		applog.Debugf("Display: dropped %s event: %v", e.Type, err)
	}
}

func (b *Broadcast) Reset()             { b.send(ResetEvent()) }
func (b *Broadcast) NoPitch(msg string) { b.send(NoPitchEvent(msg)) }
func (b *Broadcast) Result(r Reading)   { b.send(ResultEvent(r)) }
