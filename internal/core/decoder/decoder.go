// Package decoder implements L2-L3 protocol stack decoding.
package decoder

import (
	"errors"
	"fmt"

	"firestige.xyz/sniffer/internal/core"
	"firestige.xyz/sniffer/internal/metrics"
)

// Decoder decodes raw packets into structured format.
type Decoder interface {
	Decode(raw core.RawPacket) (core.DecodedFrame, error)
}

// Config configures the StandardDecoder.
type Config struct {
	RecordMetrics bool // Update the sniffer_frames_total / sniffer_decode_errors_total counters
}

// StandardDecoder decodes Ethernet II and, for EtherType 0x0800, the IPv4 header.
// It holds no per-packet state and is safe for concurrent use.
type StandardDecoder struct {
	config Config
}

// NewStandardDecoder creates a new StandardDecoder.
func NewStandardDecoder(config Config) *StandardDecoder {
	return &StandardDecoder{config: config}
}

// Decode decodes raw frame bytes. Layer errors are wrapped with the layer name
// and still match the core sentinels via errors.Is.
func (d *StandardDecoder) Decode(raw core.RawPacket) (core.DecodedFrame, error) {
	frame := core.DecodedFrame{
		Timestamp:  raw.Timestamp,
		CaptureLen: raw.CaptureLen,
		OrigLen:    raw.OrigLen,
	}

	eth, payload, err := DecodeEthernet(raw.Data)
	if err != nil {
		d.recordError("ethernet", err)
		return frame, fmt.Errorf("ethernet: %w", err)
	}
	frame.Ethernet = eth
	frame.Payload = payload

	if eth.EtherType == core.EtherTypeIPv4 {
		ip, err := DecodeIPv4(payload)
		if err != nil {
			d.recordError("ipv4", err)
			return frame, fmt.Errorf("ipv4: %w", err)
		}
		frame.HasIPv4 = true
		frame.IPv4 = ip
		frame.Payload = payload[ip.HeaderLen:]
	}

	if d.config.RecordMetrics {
		metrics.FramesTotal.WithLabelValues(etherTypeLabel(eth.EtherType)).Inc()
	}
	return frame, nil
}

func (d *StandardDecoder) recordError(layer string, err error) {
	if !d.config.RecordMetrics {
		return
	}
	metrics.DecodeErrorsTotal.WithLabelValues(layer, ErrorKind(err)).Inc()
}

// ErrorKind maps a decode error to a short label value.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, core.ErrTruncatedFrame):
		return "truncated_frame"
	case errors.Is(err, core.ErrTruncatedHeader):
		return "truncated_header"
	case errors.Is(err, core.ErrMalformedHeader):
		return "malformed_header"
	default:
		return "unknown"
	}
}

// etherTypeLabel keeps the label set bounded; only IPv4 is decoded further.
func etherTypeLabel(etherType uint16) string {
	switch etherType {
	case core.EtherTypeIPv4:
		return "ipv4"
	case 0x86DD:
		return "ipv6"
	case 0x0806:
		return "arp"
	case 0x8100, 0x88A8:
		return "vlan"
	default:
		return "other"
	}
}
