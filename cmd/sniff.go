package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/sniffer/internal/config"
	"firestige.xyz/sniffer/internal/log"
	"firestige.xyz/sniffer/internal/source"
)

// afpacketSource is registered only on linux; see sources_linux.go.
const afpacketSource = "afpacket"

var sniffCmd = &cobra.Command{
	Use:   "sniff",
	Short: "Capture and decode frames live from an interface",
	Long: `Capture frames from a network interface over AF_PACKET and decode each one
until interrupted. Requires linux and CAP_NET_RAW.

With --ipv4-only a BPF program is also attached so the kernel drops
non-IPv4 frames before they reach the ring.

Examples:
  sniffer sniff -i eth0
  sniffer sniff -i eth0 --ipv4-only --verify-checksum
  sniffer sniff -c /etc/sniffer/config.yml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sniffFlags.apply(cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runSniff(ctx, cfg, sniffDevice, cmd.OutOrStdout())
	},
}

var (
	sniffFlags  outputFlags
	sniffDevice string
)

func init() {
	sniffFlags.register(sniffCmd)
	sniffCmd.Flags().StringVarP(&sniffDevice, "interface", "i", "", "network interface to capture on")
}

// sniffOptions merges config options for the afpacket source with command-line overrides.
func sniffOptions(cfg *config.GlobalConfig, device string) map[string]any {
	opts := make(map[string]any)
	if cfg.Source.Type == afpacketSource {
		for k, v := range cfg.Source.Options {
			opts[k] = v
		}
	}
	if device != "" {
		opts["device"] = device
	}
	if cfg.Pipeline.IPv4Only {
		opts["ipv4_only"] = true
	}
	return opts
}

func runSniff(ctx context.Context, cfg *config.GlobalConfig, device string, out io.Writer) error {
	src, err := source.New(afpacketSource, sniffOptions(cfg, device))
	if err != nil {
		return err
	}

	st, err := runPipeline(ctx, cfg, afpacketSource, src, out)
	log.GetLogger().WithFields(map[string]interface{}{
		"received":          st.Received,
		"filtered":          st.Filtered,
		"checksum_mismatch": st.ChecksumMismatch,
	}).Info("capture finished")
	return err
}
