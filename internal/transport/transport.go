// SPDX-License-Identifier: MIT
// Package transport carries tuner events out of the process.
package transport

// Transport defines a generic interface for sending processed data or events.
// Implementations should be thread-safe.
type Transport interface {
	Send(data any) error
	Close() error
}

// Compile-time checks for interface implementations.
var (
	_ Transport = (*WebSocketTransport)(nil)
	_ Transport = (*JSONLines)(nil)
)
