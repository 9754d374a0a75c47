// SPDX-License-Identifier: MIT
// Package udp publishes tuner state as fixed-size binary packets.
package udp

import (
	"errors"
	"fmt"
	"net"
	"sync"

	applog "gtuner/internal/log"
)

// ErrSenderClosed is returned by Send after Close.
var ErrSenderClosed = errors.New("udp: sender closed")

// UDPSender writes datagrams to one connected peer.
type UDPSender struct {
	mu     sync.Mutex // guards conn and sent
	conn   *net.UDPConn
	target string
	sent   uint64
}

// NewUDPSender dials targetAddress ("host:port"). UDP is connectionless, so
// this only fails on a bad address or a missing route.
func NewUDPSender(targetAddress string) (*UDPSender, error) {
	addr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP target %q: %w", targetAddress, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP target %q: %w", targetAddress, err)
	}

	target := conn.RemoteAddr().String()
	applog.Infof("UDP Sender: sending to %s", target)
	return &UDPSender{conn: conn, target: target}, nil
}

// Target is the resolved peer address.
func (s *UDPSender) Target() string { return s.target }

// Sent counts datagrams written successfully.
func (s *UDPSender) Sent() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}

// Send writes data as one datagram.
func (s *UDPSender) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return ErrSenderClosed
	}
	if _, err := s.conn.Write(data); err != nil {
		applog.Warnf("UDP Sender: write to %s failed: %v", s.target, err)
		return fmt.Errorf("failed to send UDP packet: %w", err)
	}
	s.sent++
	return nil
}

// Close releases the socket. Closing twice is a no-op.
func (s *UDPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	applog.Debugf("UDP Sender: closed %s after %d packets", s.target, s.sent)
	if err != nil {
		return fmt.Errorf("failed to close UDP connection: %w", err)
	}
	return nil
}
