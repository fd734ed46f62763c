//go:build linux

// Package afpacket captures frames live from a network interface over a TPACKET_V3 ring.
package afpacket

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/gopacket/afpacket"
	"github.com/google/gopacket/layers"

	"firestige.xyz/sniffer/internal/core"
	"firestige.xyz/sniffer/internal/log"
	"firestige.xyz/sniffer/internal/source"
)

const Name = "afpacket"

type AfCfg struct {
	Device       string `mapstructure:"device"`
	SnapLen      int    `mapstructure:"snap_len"`
	BufferSizeMB int    `mapstructure:"buffer_size_mb"`
	TimeoutMs    int    `mapstructure:"timeout_ms"`
	FanoutID     uint16 `mapstructure:"fanout_id"`
	IPv4Only     bool   `mapstructure:"ipv4_only"` // Install a kernel-side EtherType filter
}

type Source struct {
	handle *afpacket.TPacket
	ctx    context.Context

	device    string
	snapLen   int
	frameSize int
	blockSize int
	numBlocks int
	timeout   time.Duration
	fanoutID  uint16
	ipv4Only  bool
}

func init() {
	source.Register(Name, func(options map[string]any) (source.Source, error) {
		cfg := AfCfg{
			SnapLen:      65535,
			BufferSizeMB: 8,
			TimeoutMs:    100,
		}
		if err := source.DecodeOptions(options, &cfg); err != nil {
			return nil, err
		}
		return NewSource(&cfg)
	})
}

func NewSource(cfg *AfCfg) (*Source, error) {
	if cfg.Device == "" {
		return nil, fmt.Errorf("%w: device is required", core.ErrConfigInvalid)
	}
	frameSize, blockSize, numBlocks, err := recomputeSize(cfg.BufferSizeMB, cfg.SnapLen, os.Getpagesize())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrConfigInvalid, err)
	}
	return &Source{
		device:    cfg.Device,
		snapLen:   cfg.SnapLen,
		frameSize: frameSize,
		blockSize: blockSize,
		numBlocks: numBlocks,
		timeout:   time.Duration(cfg.TimeoutMs) * time.Millisecond,
		fanoutID:  cfg.FanoutID,
		ipv4Only:  cfg.IPv4Only,
	}, nil
}

// Start opens the ring on the configured device.
func (s *Source) Start(ctx context.Context) error {
	tp, err := afpacket.NewTPacket(
		afpacket.OptInterface(s.device),
		afpacket.OptFrameSize(s.frameSize),
		afpacket.OptBlockSize(s.blockSize),
		afpacket.OptNumBlocks(s.numBlocks),
		afpacket.OptPollTimeout(s.timeout),
		afpacket.SocketRaw,
		afpacket.TPacketVersion3,
	)
	if err != nil {
		return fmt.Errorf("failed to open af_packet on %s: %w", s.device, err)
	}

	if s.fanoutID > 0 {
		if err := tp.SetFanout(afpacket.FanoutHashWithDefrag, s.fanoutID); err != nil {
			tp.Close()
			return fmt.Errorf("failed to join fanout group %d: %w", s.fanoutID, err)
		}
	}

	if s.ipv4Only {
		prog, err := ipv4OnlyFilter(s.snapLen)
		if err != nil {
			tp.Close()
			return err
		}
		if err := tp.SetBPF(prog); err != nil {
			tp.Close()
			return fmt.Errorf("failed to attach BPF filter: %w", err)
		}
	}

	log.GetLogger().WithFields(map[string]interface{}{
		"device":     s.device,
		"frame_size": s.frameSize,
		"block_size": s.blockSize,
		"num_blocks": s.numBlocks,
	}).Info("af_packet ring opened")

	s.handle = tp
	s.ctx = ctx
	return nil
}

// ReadPacket blocks for the next frame. Poll timeouts are absorbed until ctx is done.
func (s *Source) ReadPacket() (core.RawPacket, error) {
	if s.handle == nil {
		return core.RawPacket{}, core.ErrSourceClosed
	}
	for {
		data, ci, err := s.handle.ReadPacketData()
		if err != nil {
			if errors.Is(err, afpacket.ErrTimeout) || errors.Is(err, afpacket.ErrPoll) {
				if s.ctx.Err() != nil {
					return core.RawPacket{}, core.ErrSourceClosed
				}
				continue
			}
			return core.RawPacket{}, fmt.Errorf("failed to read packet: %w", err)
		}
		return core.RawPacket{
			Data:           data,
			Timestamp:      ci.Timestamp,
			CaptureLen:     uint32(ci.CaptureLength),
			OrigLen:        uint32(ci.Length),
			InterfaceIndex: ci.InterfaceIndex,
		}, nil
	}
}

func (s *Source) LinkType() layers.LinkType {
	return layers.LinkTypeEthernet
}

func (s *Source) Stop() error {
	if s.handle != nil {
		s.handle.Close()
		s.handle = nil
	}
	return nil
}
