// Package core defines core data structures with zero external dependencies.
package core

import "time"

// RawPacket is captured from a source, zero-copy reference to the source buffer.
type RawPacket struct {
	Data           []byte    // Raw frame data
	Timestamp      time.Time // Capture timestamp
	CaptureLen     uint32    // Actual captured length
	OrigLen        uint32    // Original frame length
	InterfaceIndex int       // Network interface index
}

// DecodedFrame is the result of L2-L3 decoding.
type DecodedFrame struct {
	Timestamp  time.Time
	Ethernet   EthernetHeader
	HasIPv4    bool
	IPv4       IPv4Header
	Payload    []byte // After the last decoded header, zero-copy slice
	CaptureLen uint32
	OrigLen    uint32
}
