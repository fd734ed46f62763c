package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/sniffer/internal/config"
	"firestige.xyz/sniffer/internal/core"
	"firestige.xyz/sniffer/internal/sink/console"
)

// ipv4Frame is an Ethernet frame carrying the reference TCP header with a valid checksum.
const ipv4Frame = "001122334455 aabbccddeeff 0800 " +
	"4500 0028 1c46 4000 4006 9b36 c0a8 0101 c0a8 0102"

func defaultConfig(t *testing.T) *config.GlobalConfig {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestParseHexFrame(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"0800", []byte{0x08, 0x00}},
		{"0x0800", []byte{0x08, 0x00}},
		{"08 00", []byte{0x08, 0x00}},
		{"08:00-45\n00", []byte{0x08, 0x00, 0x45, 0x00}},
	}
	for _, tt := range tests {
		got, err := parseHexFrame(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseHexFrame("08z0")
	assert.Error(t, err)
	_, err = parseHexFrame("080")
	assert.Error(t, err)
}

func TestRunDecode_Hex(t *testing.T) {
	var buf bytes.Buffer
	err := runDecode(context.Background(), defaultConfig(t), nil, ipv4Frame, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Dst MAC Address: 00:11:22:33:44:55 Src MAC Address: aa:bb:cc:dd:ee:ff Type: 0x0800 Length: 34")
	assert.Contains(t, out, "TTL: 64 Protocol: 6 Checksum: 0x9b36")
	assert.Contains(t, out, "Src IP Address: 192.168.1.1 Dst IP Address: 192.168.1.2")
	assert.NotContains(t, out, "Checksum Valid")
}

func TestRunDecode_HexVerifyChecksum(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Pipeline.VerifyChecksum = true
	bad := strings.Replace(ipv4Frame, "9b36", "b1e6", 1)

	var buf bytes.Buffer
	require.NoError(t, runDecode(context.Background(), cfg, nil, bad, &buf))
	assert.Contains(t, buf.String(), "Checksum Valid: false")

	buf.Reset()
	require.NoError(t, runDecode(context.Background(), cfg, nil, ipv4Frame, &buf))
	assert.Contains(t, buf.String(), "Checksum Valid: true")
}

func TestRunDecode_HexErrors(t *testing.T) {
	var buf bytes.Buffer

	err := runDecode(context.Background(), defaultConfig(t), nil, "0011223344", &buf)
	assert.ErrorIs(t, err, core.ErrTruncatedFrame)

	badIHL := strings.Replace(ipv4Frame, "4500 0028", "4300 0028", 1)
	err = runDecode(context.Background(), defaultConfig(t), nil, badIHL, &buf)
	assert.ErrorIs(t, err, core.ErrMalformedHeader)

	assert.Empty(t, buf.String())
}

func writeCapture(t *testing.T) string {
	t.Helper()
	ipv4, err := parseHexFrame(ipv4Frame)
	require.NoError(t, err)
	arp := append([]byte{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff,
		0x08, 0x06,
	}, make([]byte, 28)...)

	path := filepath.Join(t.TempDir(), "capture.pcap")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := pcapgo.NewWriter(f)
	require.NoError(t, w.WriteFileHeader(65535, layers.LinkTypeEthernet))
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, data := range [][]byte{arp, ipv4, arp} {
		ci := gopacket.CaptureInfo{
			Timestamp:     ts.Add(time.Duration(i) * time.Millisecond),
			CaptureLength: len(data),
			Length:        len(data),
		}
		require.NoError(t, w.WritePacket(ci, data))
	}
	return path
}

func TestRunDecode_PcapJSON(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Output.Format = console.FormatJSON
	cfg.Pipeline.IPv4Only = true

	var buf bytes.Buffer
	require.NoError(t, runDecode(context.Background(), cfg, []string{writeCapture(t)}, "", &buf))

	dec := json.NewDecoder(&buf)
	var rec console.Record
	require.NoError(t, dec.Decode(&rec))
	assert.False(t, dec.More())

	assert.Equal(t, uint16(0x0800), rec.EtherType)
	require.NotNil(t, rec.IPv4)
	assert.Equal(t, "192.168.1.1", rec.IPv4.SrcIP)
	assert.Equal(t, "192.168.1.2", rec.IPv4.DstIP)
	assert.Equal(t, uint8(2), rec.IPv4.Flags)
}

func TestRunDecode_PcapFromConfig(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Source.Options = map[string]any{"file_path": writeCapture(t)}
	cfg.Pipeline.MaxPackets = 2

	var buf bytes.Buffer
	require.NoError(t, runDecode(context.Background(), cfg, nil, "", &buf))
	assert.Equal(t, 2, strings.Count(buf.String(), "Dst MAC Address:"))
}

func TestRunDecode_OutputFile(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Output.Format = console.FormatYAML
	cfg.Output.Path = filepath.Join(t.TempDir(), "frames.yaml")

	var buf bytes.Buffer
	require.NoError(t, runDecode(context.Background(), cfg, nil, ipv4Frame, &buf))
	assert.Empty(t, buf.String())

	data, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "src_ip: 192.168.1.1")
}

func TestRunDecode_NoInput(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Source.Type = afpacketSource

	err := runDecode(context.Background(), cfg, nil, "", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRunDecode_UnsupportedFormat(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Output.Format = "xml"

	err := runDecode(context.Background(), cfg, nil, ipv4Frame, &bytes.Buffer{})
	assert.ErrorIs(t, err, core.ErrConfigInvalid)
}

func TestOutputFlagsApply(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Pipeline.VerifyChecksum = true

	f := outputFlags{format: "cbor", ipv4Only: true, count: 5}
	f.apply(cfg)

	assert.Equal(t, "cbor", cfg.Output.Format)
	assert.Equal(t, "-", cfg.Output.Path)
	assert.True(t, cfg.Pipeline.IPv4Only)
	assert.True(t, cfg.Pipeline.VerifyChecksum, "unset flags keep config values")
	assert.Equal(t, 5, cfg.Pipeline.MaxPackets)
}
