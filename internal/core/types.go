// Package core defines core types with zero external dependencies.
package core

import "net/netip"

// EtherType values understood by the decoder.
const (
	EtherTypeIPv4 uint16 = 0x0800
)

// IPv4 flag bits, as extracted into IPv4Header.Flags (top 3 bits of the flags/offset word).
const (
	IPv4FlagReserved      uint8 = 0x4
	IPv4FlagDontFragment  uint8 = 0x2
	IPv4FlagMoreFragments uint8 = 0x1
)

const hexDigits = "0123456789abcdef"

// MAC is a 48-bit hardware address in wire order.
type MAC [6]byte

// String renders the address as six colon-separated lowercase hex octets.
func (m MAC) String() string {
	var buf [17]byte
	for i, b := range m {
		if i > 0 {
			buf[i*3-1] = ':'
		}
		buf[i*3] = hexDigits[b>>4]
		buf[i*3+1] = hexDigits[b&0x0F]
	}
	return string(buf[:])
}

// EthernetHeader represents the 14-byte Ethernet II header.
type EthernetHeader struct {
	DstMAC    MAC
	SrcMAC    MAC
	EtherType uint16 // 0x0800=IPv4
}

// IPv4Header represents a decoded IPv4 header.
type IPv4Header struct {
	Version    uint8
	HeaderLen  int // IHL * 4, 20..60
	TOS        uint8
	TotalLen   uint16
	ID         uint16
	Flags      uint8  // reserved, DF, MF
	FragOffset uint16 // 8-byte units
	TTL        uint8
	Protocol   uint8 // TCP=6, UDP=17
	Checksum   uint16
	SrcIP      netip.Addr
	DstIP      netip.Addr
	Options    []byte // bytes [20:HeaderLen), not parsed
}

// DontFragment reports whether the DF flag is set.
func (h IPv4Header) DontFragment() bool { return h.Flags&IPv4FlagDontFragment != 0 }

// MoreFragments reports whether the MF flag is set.
func (h IPv4Header) MoreFragments() bool { return h.Flags&IPv4FlagMoreFragments != 0 }
