// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"gtuner/internal/display"
	applog "gtuner/internal/log"
)

// packetSender is what the publisher sends through; *UDPSender in
// production.
type packetSender interface {
	Send(data []byte) error
}

// UDPPublisher is a display sink that keeps the latest tuner state and
// sends it over UDP at a fixed interval, so listeners see a steady stream
// regardless of how often the tuner produces events.
// It runs in a separate goroutine managed by Start and Stop methods.
type UDPPublisher struct {
	sender   packetSender
	interval time.Duration

	ticker   *time.Ticker   // Ticker that triggers packet sending.
	doneChan chan struct{}  // Channel used to signal the publisher goroutine to stop.
	stopOnce sync.Once      // Ensures the stop logic runs only once per Start/Stop cycle.
	wg       sync.WaitGroup // Waits for the publisher goroutine to finish during Stop.
	mu       sync.Mutex     // Protects access to ticker and doneChan during Start/Stop.

	stateMu sync.Mutex
	state   Packet

	sequenceNum  uint32
	packetBuffer *bytes.Buffer // Reusable buffer for constructing the binary packet.
}

// Compile-time checks for interface implementations.
var (
	_ display.Sink               = (*UDPPublisher)(nil)
	_ interface{ Close() error } = (*UDPPublisher)(nil)
	_ packetSender               = (*UDPSender)(nil)
)

// NewUDPPublisher creates a publisher sending through sender.
// If the provided interval is invalid (<= 0), it defaults to 33ms (~30Hz).
func NewUDPPublisher(interval time.Duration, sender packetSender) (*UDPPublisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("UDPPublisher: UDP sender cannot be nil")
	}
	if interval <= 0 {
		interval = 33 * time.Millisecond
		applog.Warnf("UDPPublisher: Invalid interval provided, defaulting to %s", interval)
	}

	applog.Infof("UDPPublisher: Initializing (Interval: %s)", interval)
	return &UDPPublisher{
		sender:       sender,
		interval:     interval,
		state:        Packet{Kind: KindReset, StringIndex: -1},
		packetBuffer: new(bytes.Buffer),
	}, nil
}

func (p *UDPPublisher) setState(s Packet) {
	p.stateMu.Lock()
	p.state = s
	p.stateMu.Unlock()
}

func (p *UDPPublisher) Reset() {
	p.setState(Packet{Kind: KindReset, StringIndex: -1})
}

func (p *UDPPublisher) NoPitch(string) {
	p.setState(Packet{Kind: KindNoPitch, StringIndex: -1})
}

func (p *UDPPublisher) Result(r display.Reading) {
	p.setState(packetFromReading(r))
}

// Start begins the periodic publishing process.
// It is safe to call Start multiple times; subsequent calls are no-ops if already started.
func (p *UDPPublisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("UDPPublisher: Start called but already running.")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	// Capture local variables for the goroutine to avoid data races on p.ticker/p.doneChan
	ticker := p.ticker
	doneChan := p.doneChan

	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Debugf("UDPPublisher: Publisher goroutine started (Interval: %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.publish(time.Now())
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop signals the publisher goroutine to terminate and waits for it to exit.
// It is safe to call Stop multiple times; subsequent calls are no-ops.
func (p *UDPPublisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		applog.Debugf("UDPPublisher: Stop called but not running.")
		return nil
	}

	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})

	p.mu.Unlock()

	p.wg.Wait()
	applog.Debugf("UDPPublisher: Publisher goroutine finished.")
	return nil
}

// publish stamps the current state and sends it.
func (p *UDPPublisher) publish(now time.Time) {
	p.stateMu.Lock()
	pkt := p.state
	p.stateMu.Unlock()

	p.sequenceNum++
	pkt.Sequence = p.sequenceNum
	pkt.Timestamp = now.UnixNano()

	if err := pkt.AppendTo(p.packetBuffer); err != nil {
		applog.Errorf("UDPPublisher: Error packing data into binary buffer: %v", err)
		return
	}

	// Send errors are logged by the sender.
	if err := p.sender.Send(p.packetBuffer.Bytes()); err == nil {
		applog.Debugf("UDPPublisher: Sent packet %d (%d bytes)", pkt.Sequence, p.packetBuffer.Len())
	}
}

// Close implements the io.Closer interface. It stops the publisher goroutine.
func (p *UDPPublisher) Close() error {
	return p.Stop()
}
