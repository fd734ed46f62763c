package decoder

import (
	"encoding/binary"
	"net/netip"

	"firestige.xyz/sniffer/internal/core"
)

// Fixed-width network byte order field readers. Callers bounds-check first.

func readUint16(data []byte, off int) uint16 {
	return binary.BigEndian.Uint16(data[off : off+2])
}

func readMAC(data []byte, off int) core.MAC {
	var m core.MAC
	copy(m[:], data[off:off+6])
	return m
}

func readIPv4Addr(data []byte, off int) netip.Addr {
	return netip.AddrFrom4([4]byte(data[off : off+4]))
}
