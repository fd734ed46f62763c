package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/sniffer/internal/core"
)

func TestRunValidate_Valid(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Source.Options = map[string]any{"file_path": "/tmp/trace.pcap"}

	var buf bytes.Buffer
	require.NoError(t, runValidate(cfg, &buf))
	assert.Contains(t, buf.String(), "VALID: source=file output=text (-)")
}

func TestRunValidate_BadOptions(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Source.Options = map[string]any{"file_path": "/tmp/trace.pcap", "snap_len": 96}

	var buf bytes.Buffer
	err := runValidate(cfg, &buf)
	assert.ErrorIs(t, err, core.ErrConfigInvalid)
	assert.Contains(t, buf.String(), "INVALID")
}

func TestRunValidate_MissingFilePath(t *testing.T) {
	var buf bytes.Buffer
	err := runValidate(defaultConfig(t), &buf)
	assert.ErrorIs(t, err, core.ErrConfigInvalid)
}

func TestSniffOptions(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Source.Type = afpacketSource
	cfg.Source.Options = map[string]any{"device": "eth0", "fanout_id": 7}
	cfg.Pipeline.IPv4Only = true

	opts := sniffOptions(cfg, "eth1")
	assert.Equal(t, "eth1", opts["device"])
	assert.Equal(t, 7, opts["fanout_id"])
	assert.Equal(t, true, opts["ipv4_only"])
	assert.Equal(t, "eth0", cfg.Source.Options["device"], "config options are not mutated")

	// A file source config contributes nothing to a live capture.
	cfg.Source.Type = "file"
	opts = sniffOptions(cfg, "")
	assert.NotContains(t, opts, "device")
}
