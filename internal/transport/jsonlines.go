// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"io"
	"sync"
)

// JSONLines writes each value as one line of JSON, for piping tuner output
// into other tools. The writer is not closed.
type JSONLines struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONLines returns a transport writing to w.
func NewJSONLines(w io.Writer) *JSONLines {
	return &JSONLines{enc: json.NewEncoder(w)}
}

func (t *JSONLines) Send(data any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enc.Encode(data)
}

func (t *JSONLines) Close() error {
	return nil
}
