//go:build linux

package cmd

import (
	_ "firestige.xyz/sniffer/internal/source/afpacket"
)
