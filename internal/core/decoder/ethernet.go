// Package decoder implements protocol decoding.
package decoder

import (
	"firestige.xyz/sniffer/internal/core"
)

const (
	// Ethernet constants
	ethernetHeaderLen = 14
)

// DecodeEthernet decodes an Ethernet II frame header.
// Returns EthernetHeader and remaining payload, which shares data's backing array.
func DecodeEthernet(data []byte) (core.EthernetHeader, []byte, error) {
	if len(data) < ethernetHeaderLen {
		return core.EthernetHeader{}, nil, core.ErrTruncatedFrame
	}

	eth := core.EthernetHeader{
		DstMAC:    readMAC(data, 0), // Destination MAC (6 bytes)
		SrcMAC:    readMAC(data, 6), // Source MAC (6 bytes)
		EtherType: readUint16(data, 12),
	}

	return eth, data[ethernetHeaderLen:], nil
}
