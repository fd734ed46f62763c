// Package decoder implements protocol decoding.
package decoder

import (
	"firestige.xyz/sniffer/internal/core"
)

const (
	ipv4HeaderMinLen = 20

	ipv4FragOffsetMask = 0x1FFF // lower 13 bits of the flags/offset word
	ipv4FlagsShift     = 13
)

// DecodeIPv4 decodes an IPv4 header from the start of data.
// Options are returned as an opaque sub-slice; the payload starts at HeaderLen.
func DecodeIPv4(data []byte) (core.IPv4Header, error) {
	if len(data) < ipv4HeaderMinLen {
		return core.IPv4Header{}, core.ErrTruncatedHeader
	}

	// IHL (Internet Header Length) - lower 4 bits of first byte, in 32-bit words
	headerLen := int(data[0]&0x0F) * 4
	if headerLen < ipv4HeaderMinLen {
		return core.IPv4Header{}, core.ErrMalformedHeader
	}
	if len(data) < headerLen {
		return core.IPv4Header{}, core.ErrTruncatedHeader
	}

	flagsOffset := readUint16(data, 6)

	ip := core.IPv4Header{
		Version:    data[0] >> 4,
		HeaderLen:  headerLen,
		TOS:        data[1],
		TotalLen:   readUint16(data, 2),
		ID:         readUint16(data, 4),
		Flags:      uint8(flagsOffset >> ipv4FlagsShift),
		FragOffset: flagsOffset & ipv4FragOffsetMask,
		TTL:        data[8],
		Protocol:   data[9],
		Checksum:   readUint16(data, 10),
		SrcIP:      readIPv4Addr(data, 12),
		DstIP:      readIPv4Addr(data, 16),
	}
	if headerLen > ipv4HeaderMinLen {
		ip.Options = data[ipv4HeaderMinLen:headerLen]
	}

	return ip, nil
}
