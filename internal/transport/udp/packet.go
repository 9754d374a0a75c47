// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"gtuner/internal/display"
	"gtuner/internal/tuning"
)

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Kind              | uint8          | 1            | 0 reset, 1 none, 2 pitch|
| String Index      | int8           | 1            | Standard table, -1 none |
| Frequency         | float32        | 4            | Smoothed frequency (Hz) |
| Cents             | float32        | 4            | Deviation from string   |
| Needle            | float32        | 4            | Needle angle (degrees)  |
+-----------------------------------------------------------------------------+
*/

// PacketSize is the encoded size of a Packet.
const PacketSize = 4 + 8 + 1 + 1 + 4 + 4 + 4

// Kind is the event a packet carries.
type Kind uint8

const (
	KindReset Kind = iota
	KindNoPitch
	KindResult
)

// Packet is the state published to UDP listeners.
type Packet struct {
	Sequence    uint32
	Timestamp   int64
	Kind        Kind
	StringIndex int8
	Frequency   float32
	Cents       float32
	Needle      float32
}

// packetFromReading converts a reading into a result packet. Sequence and
// Timestamp are filled in when sending.
func packetFromReading(r display.Reading) Packet {
	return Packet{
		Kind:        KindResult,
		StringIndex: int8(tuning.MatchResult{String: r.Target}.Index()),
		Frequency:   float32(r.Frequency),
		Cents:       float32(r.Cents),
		Needle:      float32(r.Needle),
	}
}

// AppendTo packs p into buf, which is reset first.
func (p *Packet) AppendTo(buf *bytes.Buffer) error {
	buf.Reset()
	// Writes to a bytes.Buffer only fail for unsupported types.
	return binary.Write(buf, binary.BigEndian, p)
}

// ReadPacket decodes one packet from data.
func ReadPacket(data []byte) (Packet, error) {
	var p Packet
	if len(data) < PacketSize {
		return p, fmt.Errorf("short packet: %d bytes, want %d", len(data), PacketSize)
	}
	if err := binary.Read(bytes.NewReader(data), binary.BigEndian, &p); err != nil && err != io.EOF {
		return p, err
	}
	return p, nil
}
