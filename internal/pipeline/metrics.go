// Package pipeline implements pipeline metrics.
package pipeline

import (
	"sync/atomic"
)

// Metrics contains per-pipeline counters.
type Metrics struct {
	Received         atomic.Uint64
	Decoded          atomic.Uint64
	DecodeErrors     atomic.Uint64
	Filtered         atomic.Uint64
	ChecksumMismatch atomic.Uint64
	Reported         atomic.Uint64
	ReportErrors     atomic.Uint64
}

// Stats represents a snapshot of pipeline counters.
type Stats struct {
	Received         uint64
	Decoded          uint64
	DecodeErrors     uint64
	Filtered         uint64
	ChecksumMismatch uint64
	Reported         uint64
	ReportErrors     uint64
}

func (m *Metrics) snapshot() Stats {
	return Stats{
		Received:         m.Received.Load(),
		Decoded:          m.Decoded.Load(),
		DecodeErrors:     m.DecodeErrors.Load(),
		Filtered:         m.Filtered.Load(),
		ChecksumMismatch: m.ChecksumMismatch.Load(),
		Reported:         m.Reported.Load(),
		ReportErrors:     m.ReportErrors.Load(),
	}
}
