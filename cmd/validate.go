package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/sniffer/internal/config"
	"firestige.xyz/sniffer/internal/source"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load and validate the configuration given with --config, including the
source options, without opening the source.

Examples:
  sniffer validate -c config.yml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configFile == "" {
			return fmt.Errorf("validate requires --config")
		}
		cfg, err := config.Load(configFile)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "INVALID: %v\n", err)
			return err
		}
		return runValidate(cfg, cmd.OutOrStdout())
	},
}

func runValidate(cfg *config.GlobalConfig, out io.Writer) error {
	// Building the source decodes its options; nothing is opened until Start.
	if _, err := source.New(cfg.Source.Type, cfg.Source.Options); err != nil {
		fmt.Fprintf(out, "INVALID: %v\n", err)
		return err
	}

	fmt.Fprintf(out, "VALID: source=%s output=%s (%s) ipv4_only=%t verify_checksum=%t metrics=%t\n",
		cfg.Source.Type,
		cfg.Output.Format,
		cfg.Output.Path,
		cfg.Pipeline.IPv4Only,
		cfg.Pipeline.VerifyChecksum,
		cfg.Metrics.Enabled,
	)
	return nil
}
