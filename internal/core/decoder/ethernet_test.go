package decoder

import (
	"errors"
	"testing"

	"firestige.xyz/sniffer/internal/core"
)

func TestDecodeEthernetBasic(t *testing.T) {
	// Simple Ethernet frame: Dst MAC, Src MAC, EtherType
	data := []byte{
		0x00, 0x11, 0x22, 0x33, 0x44, 0x55, // Dst MAC
		0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, // Src MAC
		0x08, 0x00, // EtherType: IPv4
		0x45, 0x00, // Payload (start of IP header)
	}

	eth, payload, err := DecodeEthernet(data)
	if err != nil {
		t.Fatalf("DecodeEthernet failed: %v", err)
	}

	// Check Dst MAC
	expectedDstMAC := core.MAC{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	if eth.DstMAC != expectedDstMAC {
		t.Errorf("Expected DstMAC %v, got %v", expectedDstMAC, eth.DstMAC)
	}

	// Check Src MAC
	expectedSrcMAC := core.MAC{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	if eth.SrcMAC != expectedSrcMAC {
		t.Errorf("Expected SrcMAC %v, got %v", expectedSrcMAC, eth.SrcMAC)
	}

	// Check EtherType
	if eth.EtherType != 0x0800 {
		t.Errorf("Expected EtherType 0x0800, got 0x%04x", eth.EtherType)
	}

	// Check payload
	if len(payload) != 2 || payload[0] != 0x45 {
		t.Errorf("Expected payload [0x45 0x00], got %x", payload)
	}
}

func TestDecodeEthernetExactHeader(t *testing.T) {
	data := make([]byte, 14)
	data[12], data[13] = 0x08, 0x06

	eth, payload, err := DecodeEthernet(data)
	if err != nil {
		t.Fatalf("DecodeEthernet failed: %v", err)
	}
	if eth.EtherType != 0x0806 {
		t.Errorf("Expected EtherType 0x0806, got 0x%04x", eth.EtherType)
	}
	if len(payload) != 0 {
		t.Errorf("Expected empty payload, got %d bytes", len(payload))
	}
}

func TestDecodeEthernetPayloadLength(t *testing.T) {
	for n := 14; n <= 128; n++ {
		data := make([]byte, n)
		_, payload, err := DecodeEthernet(data)
		if err != nil {
			t.Fatalf("len %d: unexpected error %v", n, err)
		}
		if len(payload) != n-14 {
			t.Errorf("len %d: expected payload length %d, got %d", n, n-14, len(payload))
		}
	}
}

func TestDecodeEthernetTooShort(t *testing.T) {
	for n := 0; n < 14; n++ {
		_, _, err := DecodeEthernet(make([]byte, n))
		if !errors.Is(err, core.ErrTruncatedFrame) {
			t.Errorf("len %d: expected ErrTruncatedFrame, got %v", n, err)
		}
	}
}

func TestMACString(t *testing.T) {
	tests := []struct {
		mac  core.MAC
		want string
	}{
		{core.MAC{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}, "01:02:03:04:05:06"},
		{core.MAC{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}, "aa:bb:cc:dd:ee:ff"},
		{core.MAC{}, "00:00:00:00:00:00"},
	}

	for _, tt := range tests {
		if got := tt.mac.String(); got != tt.want {
			t.Errorf("MAC %v: expected %q, got %q", [6]byte(tt.mac), tt.want, got)
		}
	}
}

func BenchmarkDecodeEthernet(b *testing.B) {
	data := []byte{
		0x00, 0x11, 0x22, 0x33, 0x44, 0x55,
		0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF,
		0x08, 0x00,
		0x45, 0x00,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, err := DecodeEthernet(data)
		if err != nil {
			b.Fatal(err)
		}
	}
}
