// Package console writes decoded frames to a stream in text, JSON, YAML or CBOR.
package console

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"firestige.xyz/sniffer/internal/core"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCBOR = "cbor"
)

// Record is the serializable view of a decoded frame. Addresses are rendered
// as strings; CBOR falls back to the json tags.
type Record struct {
	Timestamp     time.Time   `json:"timestamp" yaml:"timestamp"`
	CaptureLen    uint32      `json:"capture_len" yaml:"capture_len"`
	OrigLen       uint32      `json:"orig_len" yaml:"orig_len"`
	DstMAC        string      `json:"dst_mac" yaml:"dst_mac"`
	SrcMAC        string      `json:"src_mac" yaml:"src_mac"`
	EtherType     uint16      `json:"ethertype" yaml:"ethertype"`
	IPv4          *IPv4Record `json:"ipv4,omitempty" yaml:"ipv4,omitempty"`
	ChecksumValid *bool       `json:"checksum_valid,omitempty" yaml:"checksum_valid,omitempty"`
	PayloadLen    int         `json:"payload_len" yaml:"payload_len"`
}

// IPv4Record mirrors core.IPv4Header.
type IPv4Record struct {
	Version    uint8  `json:"version" yaml:"version"`
	HeaderLen  int    `json:"header_len" yaml:"header_len"`
	TOS        uint8  `json:"tos" yaml:"tos"`
	TotalLen   uint16 `json:"total_len" yaml:"total_len"`
	ID         uint16 `json:"id" yaml:"id"`
	Flags      uint8  `json:"flags" yaml:"flags"`
	FragOffset uint16 `json:"frag_offset" yaml:"frag_offset"`
	TTL        uint8  `json:"ttl" yaml:"ttl"`
	Protocol   uint8  `json:"protocol" yaml:"protocol"`
	Checksum   uint16 `json:"checksum" yaml:"checksum"`
	SrcIP      string `json:"src_ip" yaml:"src_ip"`
	DstIP      string `json:"dst_ip" yaml:"dst_ip"`
	OptionsLen int    `json:"options_len,omitempty" yaml:"options_len,omitempty"`
}

// NewRecord builds a Record from a decoded frame.
func NewRecord(frame core.DecodedFrame) Record {
	rec := Record{
		Timestamp:  frame.Timestamp,
		CaptureLen: frame.CaptureLen,
		OrigLen:    frame.OrigLen,
		DstMAC:     frame.Ethernet.DstMAC.String(),
		SrcMAC:     frame.Ethernet.SrcMAC.String(),
		EtherType:  frame.Ethernet.EtherType,
		PayloadLen: len(frame.Payload),
	}
	if frame.HasIPv4 {
		ip := frame.IPv4
		rec.IPv4 = &IPv4Record{
			Version:    ip.Version,
			HeaderLen:  ip.HeaderLen,
			TOS:        ip.TOS,
			TotalLen:   ip.TotalLen,
			ID:         ip.ID,
			Flags:      ip.Flags,
			FragOffset: ip.FragOffset,
			TTL:        ip.TTL,
			Protocol:   ip.Protocol,
			Checksum:   ip.Checksum,
			SrcIP:      ip.SrcIP.String(),
			DstIP:      ip.DstIP.String(),
			OptionsLen: len(ip.Options),
		}
	}
	return rec
}

type encoder interface {
	Encode(v any) error
}

// Sink writes one Record per Send. It is not safe for concurrent use.
type Sink struct {
	format  string
	out     *bufio.Writer
	closer  io.Closer // nil for stdout
	enc     encoder
	yamlEnc *yaml.Encoder
	sent    atomic.Uint64
}

// NewSink creates a sink writing to w. If w is also an io.Closer it is
// closed by Close.
func NewSink(w io.Writer, format string) (*Sink, error) {
	s := &Sink{
		format: format,
		out:    bufio.NewWriter(w),
	}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}

	switch format {
	case FormatText:
	case FormatJSON:
		s.enc = json.NewEncoder(s.out)
	case FormatYAML:
		s.yamlEnc = yaml.NewEncoder(s.out)
		s.enc = s.yamlEnc
	case FormatCBOR:
		em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
		if err != nil {
			return nil, fmt.Errorf("cbor encoder: %w", err)
		}
		s.enc = em.NewEncoder(s.out)
	default:
		return nil, fmt.Errorf("%w: unsupported output format %q", core.ErrConfigInvalid, format)
	}
	return s, nil
}

// Open creates a sink for path; "" or "-" means stdout.
func Open(path, format string) (*Sink, error) {
	if path == "" || path == "-" {
		return NewSink(stdout{}, format)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output %s: %w", path, err)
	}
	s, err := NewSink(f, format)
	if err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// Send writes rec and flushes so live captures show up immediately.
func (s *Sink) Send(rec Record) error {
	var err error
	if s.format == FormatText {
		err = writeText(s.out, rec)
	} else {
		err = s.enc.Encode(rec)
	}
	if err != nil {
		return fmt.Errorf("%s encode failed: %w", s.format, err)
	}
	s.sent.Add(1)
	return s.out.Flush()
}

// Sent returns the number of records written.
func (s *Sink) Sent() uint64 {
	return s.sent.Load()
}

func (s *Sink) Close() error {
	if s.yamlEnc != nil {
		if err := s.yamlEnc.Close(); err != nil {
			return err
		}
	}
	if err := s.out.Flush(); err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// writeText prints the frame in labelled fields, one line per layer.
func writeText(w io.Writer, rec Record) error {
	_, err := fmt.Fprintf(w, "Dst MAC Address: %s Src MAC Address: %s Type: 0x%04x Length: %d\n",
		rec.DstMAC, rec.SrcMAC, rec.EtherType, rec.CaptureLen)
	if err != nil || rec.IPv4 == nil {
		return err
	}
	ip := rec.IPv4
	_, err = fmt.Fprintf(w, "  Version: %d Header Length: %d Type: %d Total Length: %d ID: %d Flags: %d Offset: %d TTL: %d Protocol: %d Checksum: 0x%04x",
		ip.Version, ip.HeaderLen, ip.TOS, ip.TotalLen, ip.ID, ip.Flags, ip.FragOffset, ip.TTL, ip.Protocol, ip.Checksum)
	if err != nil {
		return err
	}
	if rec.ChecksumValid != nil {
		if _, err = fmt.Fprintf(w, " Checksum Valid: %t", *rec.ChecksumValid); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, " Src IP Address: %s Dst IP Address: %s\n", ip.SrcIP, ip.DstIP)
	return err
}

// stdout writes to os.Stdout without being an io.Closer.
type stdout struct{}

func (stdout) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
