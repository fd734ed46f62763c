// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"firestige.xyz/sniffer/internal/config"
	"firestige.xyz/sniffer/internal/log"
)

var (
	// Global flags
	configFile string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sniffer",
	Short: "sniffer - Ethernet II and IPv4 header decoder",
	Long: `sniffer decodes the Ethernet II header of each captured frame and, for IPv4
frames, the IPv4 header that follows it.

Frames can come from a pcap/pcapng file, a hex string on the command line,
or a live AF_PACKET capture. Each decoded frame is written as text, JSON,
YAML or CBOR.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path (defaults only when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"override log level (trace/debug/info/warn/error)")

	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(sniffCmd)
	rootCmd.AddCommand(validateCmd)
}

// loadConfig reads the global config and installs the configured logger.
func loadConfig() (*config.GlobalConfig, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := log.Init(&cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return cfg, nil
}
