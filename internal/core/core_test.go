package core

import (
	"errors"
	"fmt"
	"testing"
)

// Test zero values of core structs
func TestStructZeroValues(t *testing.T) {
	t.Run("EthernetHeader", func(t *testing.T) {
		var eth EthernetHeader
		if eth.EtherType != 0 {
			t.Errorf("expected EtherType=0, got %d", eth.EtherType)
		}
		if eth.DstMAC.String() != "00:00:00:00:00:00" {
			t.Errorf("expected zero DstMAC, got %v", eth.DstMAC)
		}
	})

	t.Run("IPv4Header", func(t *testing.T) {
		var ip IPv4Header
		if ip.SrcIP.IsValid() {
			t.Errorf("expected invalid SrcIP, got %v", ip.SrcIP)
		}
		if ip.DstIP.IsValid() {
			t.Errorf("expected invalid DstIP, got %v", ip.DstIP)
		}
		if ip.Options != nil {
			t.Errorf("expected Options=nil, got %v", ip.Options)
		}
	})

	t.Run("DecodedFrame", func(t *testing.T) {
		var frame DecodedFrame
		if frame.HasIPv4 {
			t.Error("expected HasIPv4=false")
		}
		if frame.Payload != nil {
			t.Errorf("expected Payload=nil, got %v", frame.Payload)
		}
	})
}

func TestIPv4Flags(t *testing.T) {
	tests := []struct {
		flags uint8
		df    bool
		mf    bool
	}{
		{0, false, false},
		{IPv4FlagMoreFragments, false, true},
		{IPv4FlagDontFragment, true, false},
		{IPv4FlagDontFragment | IPv4FlagMoreFragments, true, true},
		{IPv4FlagReserved, false, false},
		{7, true, true},
	}

	for _, tt := range tests {
		h := IPv4Header{Flags: tt.flags}
		if h.DontFragment() != tt.df {
			t.Errorf("flags %03b: expected DF=%v", tt.flags, tt.df)
		}
		if h.MoreFragments() != tt.mf {
			t.Errorf("flags %03b: expected MF=%v", tt.flags, tt.mf)
		}
	}
}

func TestMACFormat(t *testing.T) {
	mac := MAC{0x02, 0x42, 0xAC, 0x11, 0x00, 0x0A}
	if got := fmt.Sprintf("%v", mac); got != "02:42:ac:11:00:0a" {
		t.Errorf("expected 02:42:ac:11:00:0a, got %s", got)
	}
}

func TestSentinelErrors(t *testing.T) {
	t.Run("Wrapped", func(t *testing.T) {
		err := fmt.Errorf("ipv4: %w", ErrMalformedHeader)
		if !errors.Is(err, ErrMalformedHeader) {
			t.Error("errors.Is failed for wrapped ErrMalformedHeader")
		}
		if errors.Is(err, ErrTruncatedHeader) {
			t.Error("ErrMalformedHeader must not match ErrTruncatedHeader")
		}
	})

	t.Run("Distinct", func(t *testing.T) {
		all := []error{
			ErrTruncatedFrame, ErrTruncatedHeader, ErrMalformedHeader,
			ErrSourceClosed, ErrUnsupportedLinkType, ErrConfigInvalid,
		}
		for i, a := range all {
			for j, b := range all {
				if i != j && errors.Is(a, b) {
					t.Errorf("%v unexpectedly matches %v", a, b)
				}
			}
		}
	})
}
