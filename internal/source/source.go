// Package source defines capture sources that feed raw frames to the decoder.
package source

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/gopacket/layers"
	"github.com/mitchellh/mapstructure"

	"firestige.xyz/sniffer/internal/core"
)

// Source supplies raw link-layer frames. ReadPacket blocks until a frame is
// available and returns io.EOF or core.ErrSourceClosed when no more will come.
// Stop must not be called concurrently with ReadPacket.
type Source interface {
	Start(ctx context.Context) error
	ReadPacket() (core.RawPacket, error)
	LinkType() layers.LinkType
	Stop() error
}

// Factory builds a Source from its raw options map.
type Factory func(options map[string]any) (Source, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes a source type available by name. It panics on duplicates.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[name]; dup {
		panic("source: duplicate registration of " + name)
	}
	factories[name] = f
}

// New creates a source of the named type.
func New(name string, options map[string]any) (Source, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown source type %q (registered: %v)", core.ErrConfigInvalid, name, Names())
	}
	return f(options)
}

// Names lists registered source types.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DecodeOptions decodes an options map into a mapstructure-tagged struct,
// accepting string forms of numbers and bools as env/CLI overrides produce them.
func DecodeOptions(options map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(options); err != nil {
		return fmt.Errorf("%w: %v", core.ErrConfigInvalid, err)
	}
	return nil
}

// CheckEthernet rejects link types the decoder cannot handle.
func CheckEthernet(lt layers.LinkType) error {
	if lt != layers.LinkTypeEthernet {
		return fmt.Errorf("%w: %s", core.ErrUnsupportedLinkType, lt)
	}
	return nil
}
