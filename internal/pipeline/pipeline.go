// Package pipeline implements the capture → decode → output loop.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"firestige.xyz/sniffer/internal/core"
	"firestige.xyz/sniffer/internal/core/decoder"
	"firestige.xyz/sniffer/internal/log"
	"firestige.xyz/sniffer/internal/metrics"
	"firestige.xyz/sniffer/internal/sink/console"
	"firestige.xyz/sniffer/internal/source"
)

const ethernetHeaderLen = 14

// Sink consumes decoded frame records.
type Sink interface {
	Send(rec console.Record) error
}

// Config contains pipeline configuration.
type Config struct {
	Name           string // Source name, used as metrics label
	Source         source.Source
	Decoder        decoder.Decoder
	Sink           Sink
	IPv4Only       bool
	VerifyChecksum bool
	MaxPackets     int // 0 = unlimited
	BufferSize     int // Raw packet channel buffer size
}

// Pipeline runs one source through the decoder into one sink.
type Pipeline struct {
	name           string
	source         source.Source
	decoder        decoder.Decoder
	sink           Sink
	ipv4Only       bool
	verifyChecksum bool
	maxPackets     uint64
	metrics        Metrics
	logger         log.Logger

	wg            sync.WaitGroup
	rawPacketChan chan core.RawPacket
	captureErr    error
}

// New creates a new pipeline.
func New(cfg Config) *Pipeline {
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 1024 // Default buffer size
	}
	if cfg.Decoder == nil {
		cfg.Decoder = decoder.NewStandardDecoder(decoder.Config{})
	}

	return &Pipeline{
		name:           cfg.Name,
		source:         cfg.Source,
		decoder:        cfg.Decoder,
		sink:           cfg.Sink,
		ipv4Only:       cfg.IPv4Only,
		verifyChecksum: cfg.VerifyChecksum,
		maxPackets:     uint64(cfg.MaxPackets),
		logger:         log.GetLogger().WithField("source", cfg.Name),
		rawPacketChan:  make(chan core.RawPacket, cfg.BufferSize),
	}
}

// Run starts the source and processes frames until the source is exhausted,
// MaxPackets frames were received, or ctx is cancelled. The source is
// stopped before Run returns. A clean end of input returns nil.
func (p *Pipeline) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := p.source.Start(ctx); err != nil {
		return fmt.Errorf("source start failed: %w", err)
	}
	if err := source.CheckEthernet(p.source.LinkType()); err != nil {
		p.source.Stop()
		return err
	}

	p.logger.Info("pipeline started")

	p.wg.Add(1)
	go p.captureLoop(ctx)

	p.processLoop(ctx, cancel)

	// Unblock and wait for the reader before touching the source again.
	cancel()
	p.wg.Wait()
	if err := p.source.Stop(); err != nil {
		p.logger.WithError(err).Warn("source stop failed")
	}

	st := p.Stats()
	p.logger.WithFields(map[string]interface{}{
		"received":      st.Received,
		"decoded":       st.Decoded,
		"decode_errors": st.DecodeErrors,
		"reported":      st.Reported,
	}).Info("pipeline stopped")

	return p.captureErr
}

// captureLoop reads packets from the source and hands them to processLoop.
func (p *Pipeline) captureLoop(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.rawPacketChan)

	for ctx.Err() == nil {
		raw, err := p.source.ReadPacket()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, core.ErrSourceClosed) {
				return
			}
			if ctx.Err() == nil {
				p.captureErr = fmt.Errorf("capture failed: %w", err)
			}
			return
		}
		metrics.SourcePacketsTotal.WithLabelValues(p.name).Inc()

		select {
		case p.rawPacketChan <- raw:
		case <-ctx.Done():
			return
		}
	}
}

// processLoop is the main processing loop.
func (p *Pipeline) processLoop(ctx context.Context, stop context.CancelFunc) {
	for {
		select {
		case <-ctx.Done():
			return

		case raw, ok := <-p.rawPacketChan:
			if !ok {
				return
			}

			n := p.metrics.Received.Add(1)
			if err := p.processPacket(raw); err != nil {
				p.logger.WithError(err).WithField("len", len(raw.Data)).Debug("frame skipped")
			}
			if p.maxPackets > 0 && n >= p.maxPackets {
				stop()
				return
			}
		}
	}
}

// processPacket decodes one frame and reports it.
func (p *Pipeline) processPacket(raw core.RawPacket) error {
	frame, err := p.decoder.Decode(raw)
	if err != nil {
		p.metrics.DecodeErrors.Add(1)
		return fmt.Errorf("decode failed: %w", err)
	}
	p.metrics.Decoded.Add(1)

	if p.ipv4Only && !frame.HasIPv4 {
		p.metrics.Filtered.Add(1)
		return nil
	}

	rec := console.NewRecord(frame)
	if p.verifyChecksum && frame.HasIPv4 {
		valid := ipv4ChecksumValid(raw.Data[ethernetHeaderLen : ethernetHeaderLen+frame.IPv4.HeaderLen])
		if !valid {
			p.metrics.ChecksumMismatch.Add(1)
			metrics.ChecksumMismatchTotal.Inc()
		}
		rec.ChecksumValid = &valid
	}

	if err := p.sink.Send(rec); err != nil {
		p.metrics.ReportErrors.Add(1)
		p.logger.WithError(err).Error("sink send failed")
		return nil
	}
	p.metrics.Reported.Add(1)
	return nil
}

// Stats returns pipeline statistics.
func (p *Pipeline) Stats() Stats {
	return p.metrics.snapshot()
}
