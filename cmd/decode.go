package cmd

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/gopacket/layers"
	"github.com/spf13/cobra"

	"firestige.xyz/sniffer/internal/config"
	"firestige.xyz/sniffer/internal/core"
	"firestige.xyz/sniffer/internal/core/decoder"
	"firestige.xyz/sniffer/internal/source"
	"firestige.xyz/sniffer/internal/source/file"
)

var decodeCmd = &cobra.Command{
	Use:   "decode [capture-file]",
	Short: "Decode frames from a capture file or a hex string",
	Long: `Decode Ethernet II and IPv4 headers offline.

The capture file may be pcap or pcapng with an Ethernet link type. When no
file is given, the file source from the config is used.

Examples:
  sniffer decode trace.pcap
  sniffer decode trace.pcapng --ipv4-only --format json -n 10
  sniffer decode --hex "001122334455 aabbccddeeff 0800 450000281c4640004006..."`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		decodeFlags.apply(cfg)
		return runDecode(cmd.Context(), cfg, args, decodeHex, cmd.OutOrStdout())
	},
}

var (
	decodeFlags outputFlags
	decodeHex   string
)

func init() {
	decodeFlags.register(decodeCmd)
	decodeCmd.Flags().StringVar(&decodeHex, "hex", "", "decode a single frame given as hex")
}

func runDecode(ctx context.Context, cfg *config.GlobalConfig, args []string, hexFrame string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if hexFrame != "" {
		data, err := parseHexFrame(hexFrame)
		if err != nil {
			return err
		}
		// Surface the decode error itself; the pipeline only counts it.
		if _, err := decoder.NewStandardDecoder(decoder.Config{}).Decode(core.RawPacket{Data: data}); err != nil {
			return fmt.Errorf("frame could not be decoded: %w", err)
		}
		_, err = runPipeline(ctx, cfg, "hex", &frameSource{frames: [][]byte{data}}, out)
		return err
	}

	var (
		src source.Source
		err error
	)
	switch {
	case len(args) == 1:
		src, err = source.New(file.Name, map[string]any{"file_path": args[0]})
	case cfg.Source.Type == file.Name:
		src, err = source.New(cfg.Source.Type, cfg.Source.Options)
	default:
		return errors.New("decode needs a capture file argument, --hex, or a file source in the config")
	}
	if err != nil {
		return err
	}

	_, err = runPipeline(ctx, cfg, file.Name, src, out)
	return err
}

// parseHexFrame accepts hex with optional 0x prefix and whitespace, colon or dash separators.
func parseHexFrame(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ':', '-':
			return -1
		}
		return r
	}, s)
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex frame: %w", err)
	}
	return data, nil
}

// frameSource replays frames given on the command line.
type frameSource struct {
	frames [][]byte
	pos    int
}

func (s *frameSource) Start(ctx context.Context) error { return nil }

func (s *frameSource) ReadPacket() (core.RawPacket, error) {
	if s.pos >= len(s.frames) {
		return core.RawPacket{}, io.EOF
	}
	data := s.frames[s.pos]
	s.pos++
	return core.RawPacket{
		Data:       data,
		Timestamp:  time.Now(),
		CaptureLen: uint32(len(data)),
		OrigLen:    uint32(len(data)),
	}, nil
}

func (s *frameSource) LinkType() layers.LinkType { return layers.LinkTypeEthernet }

func (s *frameSource) Stop() error { return nil }
