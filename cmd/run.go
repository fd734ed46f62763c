package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/sniffer/internal/config"
	"firestige.xyz/sniffer/internal/core/decoder"
	"firestige.xyz/sniffer/internal/log"
	"firestige.xyz/sniffer/internal/metrics"
	"firestige.xyz/sniffer/internal/pipeline"
	"firestige.xyz/sniffer/internal/sink/console"
	"firestige.xyz/sniffer/internal/source"
)

// outputFlags are shared by every command that writes decoded frames.
// Set flags override the config file.
type outputFlags struct {
	format         string
	output         string
	ipv4Only       bool
	verifyChecksum bool
	count          int
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "format", "", "output format: text, json, yaml or cbor")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file, - for stdout")
	cmd.Flags().BoolVar(&f.ipv4Only, "ipv4-only", false, "report only IPv4 frames")
	cmd.Flags().BoolVar(&f.verifyChecksum, "verify-checksum", false, "annotate IPv4 headers with checksum validity")
	cmd.Flags().IntVarP(&f.count, "count", "n", 0, "stop after n frames (0 = unlimited)")
}

func (f *outputFlags) apply(cfg *config.GlobalConfig) {
	if f.format != "" {
		cfg.Output.Format = f.format
	}
	if f.output != "" {
		cfg.Output.Path = f.output
	}
	if f.ipv4Only {
		cfg.Pipeline.IPv4Only = true
	}
	if f.verifyChecksum {
		cfg.Pipeline.VerifyChecksum = true
	}
	if f.count > 0 {
		cfg.Pipeline.MaxPackets = f.count
	}
}

func openSink(oc config.OutputConfig, out io.Writer) (*console.Sink, error) {
	if oc.Path == "" || oc.Path == "-" {
		// Hide any Close method; stdout outlives the sink.
		return console.NewSink(struct{ io.Writer }{out}, oc.Format)
	}
	return console.Open(oc.Path, oc.Format)
}

// runPipeline drives src through the decoder into the configured output.
func runPipeline(ctx context.Context, cfg *config.GlobalConfig, name string, src source.Source, out io.Writer) (st pipeline.Stats, err error) {
	sink, err := openSink(cfg.Output, out)
	if err != nil {
		return st, err
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path)
		if err := srv.Start(ctx); err != nil {
			return st, err
		}
		defer func() {
			if err := srv.Stop(context.Background()); err != nil {
				log.GetLogger().WithError(err).Warn("metrics server stop failed")
			}
		}()
	}

	p := pipeline.New(pipeline.Config{
		Name:           name,
		Source:         src,
		Decoder:        decoder.NewStandardDecoder(decoder.Config{RecordMetrics: cfg.Metrics.Enabled}),
		Sink:           sink,
		IPv4Only:       cfg.Pipeline.IPv4Only,
		VerifyChecksum: cfg.Pipeline.VerifyChecksum,
		MaxPackets:     cfg.Pipeline.MaxPackets,
	})
	err = p.Run(ctx)
	return p.Stats(), err
}
