// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FramesTotal counts frames decoded successfully, by EtherType class
	FramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniffer_frames_total",
			Help: "Total number of frames decoded",
		},
		[]string{"ethertype"},
	)

	// DecodeErrorsTotal counts frames rejected by the decoder
	DecodeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniffer_decode_errors_total",
			Help: "Total number of frames that failed to decode",
		},
		[]string{"layer", "kind"},
	)

	// SourcePacketsTotal counts packets read from a source
	SourcePacketsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniffer_source_packets_total",
			Help: "Total number of packets read from the capture source",
		},
		[]string{"source"},
	)

	// ChecksumMismatchTotal counts IPv4 headers whose checksum did not verify
	ChecksumMismatchTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sniffer_ipv4_checksum_mismatch_total",
			Help: "Total number of IPv4 headers with an invalid header checksum",
		},
	)
)
