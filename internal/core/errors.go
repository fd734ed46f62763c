// Package core defines sentinel errors.
package core

import "errors"

var (
	// Frame decoding errors
	ErrTruncatedFrame  = errors.New("sniffer: truncated frame")
	ErrTruncatedHeader = errors.New("sniffer: truncated header")
	ErrMalformedHeader = errors.New("sniffer: malformed header")

	// Source errors
	ErrSourceClosed        = errors.New("sniffer: source closed")
	ErrUnsupportedLinkType = errors.New("sniffer: unsupported link type")

	// Configuration errors
	ErrConfigInvalid = errors.New("sniffer: invalid configuration")
)
