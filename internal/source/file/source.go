// Package file replays frames from a pcap or pcapng capture file.
package file

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"firestige.xyz/sniffer/internal/core"
	"firestige.xyz/sniffer/internal/source"
)

const Name = "file"

// pcapng section header block type, little or big endian alike.
var pcapngMagic = []byte{0x0A, 0x0D, 0x0D, 0x0A}

type FileCfg struct {
	FilePath string `mapstructure:"file_path"`
}

type packetReader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

type FileSource struct {
	path   string
	file   *os.File
	reader packetReader
}

func init() {
	source.Register(Name, func(options map[string]any) (source.Source, error) {
		var cfg FileCfg
		if err := source.DecodeOptions(options, &cfg); err != nil {
			return nil, err
		}
		return NewSource(&cfg)
	})
}

func NewSource(cfg *FileCfg) (*FileSource, error) {
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("%w: file_path is required", core.ErrConfigInvalid)
	}
	return &FileSource{
		path: cfg.FilePath,
	}, nil
}

// Start opens the capture file and checks its link type.
func (fs *FileSource) Start(ctx context.Context) error {
	f, err := os.Open(fs.path)
	if err != nil {
		return fmt.Errorf("failed to open capture file %s: %w", fs.path, err)
	}

	br := bufio.NewReader(f)
	magic, err := br.Peek(len(pcapngMagic))
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to read capture file header %s: %w", fs.path, err)
	}

	var r packetReader
	if bytes.Equal(magic, pcapngMagic) {
		r, err = pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
	} else {
		r, err = pcapgo.NewReader(br)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to parse capture file %s: %w", fs.path, err)
	}

	if err := source.CheckEthernet(r.LinkType()); err != nil {
		f.Close()
		return err
	}

	fs.file = f
	fs.reader = r
	return nil
}

// ReadPacket returns the next frame, or io.EOF at end of file.
func (fs *FileSource) ReadPacket() (core.RawPacket, error) {
	if fs.reader == nil {
		return core.RawPacket{}, core.ErrSourceClosed
	}

	data, ci, err := fs.reader.ReadPacketData()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return core.RawPacket{}, io.EOF
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

func (fs *FileSource) LinkType() layers.LinkType {
	if fs.reader == nil {
		return layers.LinkTypeEthernet // default
	}
	return fs.reader.LinkType()
}

func (fs *FileSource) Stop() error {
	fs.reader = nil
	if fs.file != nil {
		err := fs.file.Close()
		fs.file = nil
		return err
	}
	return nil
}
