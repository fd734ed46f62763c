// Package config handles global configuration loading using viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"firestige.xyz/sniffer/internal/core"
	"firestige.xyz/sniffer/internal/log"
)

// GlobalConfig represents the top-level configuration.
// Maps to the `sniffer:` root key in YAML.
type GlobalConfig struct {
	Log      log.LoggerConfig `mapstructure:"log"`
	Source   SourceConfig     `mapstructure:"source"`
	Output   OutputConfig     `mapstructure:"output"`
	Pipeline PipelineConfig   `mapstructure:"pipeline"`
	Metrics  MetricsConfig    `mapstructure:"metrics"`
}

// ─── Source ───

// SourceConfig selects the capture source. Options are decoded by the
// source factory into its own config struct.
type SourceConfig struct {
	Type    string         `mapstructure:"type"` // file | afpacket
	Options map[string]any `mapstructure:"options"`
}

// ─── Output ───

// OutputConfig controls how decoded frames are written.
type OutputConfig struct {
	Format string `mapstructure:"format"` // text | json | yaml | cbor
	Path   string `mapstructure:"path"`   // Empty or "-" = stdout
}

// ─── Pipeline ───

// PipelineConfig controls frame handling between source and output.
type PipelineConfig struct {
	IPv4Only       bool `mapstructure:"ipv4_only"`       // Drop frames whose EtherType is not IPv4
	VerifyChecksum bool `mapstructure:"verify_checksum"` // Annotate frames with IPv4 header checksum validity
	MaxPackets     int  `mapstructure:"max_packets"`     // 0 = unlimited
}

// ─── Metrics ───

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

// ─── Loading ───

// configRoot is the top-level wrapper matching the YAML structure `sniffer: ...`.
type configRoot struct {
	Sniffer GlobalConfig `mapstructure:"sniffer"`
}

// Load loads configuration from file. An empty path yields defaults only.
// Env vars override file values, e.g. SNIFFER_LOG_LEVEL for sniffer.log.level.
func Load(path string) (*GlobalConfig, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Sniffer

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration.
// All keys use "sniffer." prefix to match the YAML root wrapper.
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("sniffer.log.level", "info")
	v.SetDefault("sniffer.log.pattern", log.DefaultPattern)
	v.SetDefault("sniffer.log.time", log.DefaultTime)

	// Source defaults
	v.SetDefault("sniffer.source.type", "file")

	// Output defaults
	v.SetDefault("sniffer.output.format", "text")
	v.SetDefault("sniffer.output.path", "-")

	// Pipeline defaults
	v.SetDefault("sniffer.pipeline.ipv4_only", false)
	v.SetDefault("sniffer.pipeline.verify_checksum", false)
	v.SetDefault("sniffer.pipeline.max_packets", 0)

	// Metrics defaults
	v.SetDefault("sniffer.metrics.enabled", false)
	v.SetDefault("sniffer.metrics.listen", ":9091")
	v.SetDefault("sniffer.metrics.path", "/metrics")
}

// ValidateAndApplyDefaults validates configuration and applies runtime defaults.
func (cfg *GlobalConfig) ValidateAndApplyDefaults() error {
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Log.Level)] {
		return fmt.Errorf("%w: invalid log level: %s (must be trace/debug/info/warn/error)", core.ErrConfigInvalid, cfg.Log.Level)
	}
	if len(cfg.Log.Appenders) == 0 {
		cfg.Log.Appenders = []log.AppenderConfig{{Type: "stderr"}}
	}

	switch cfg.Source.Type {
	case "file", "afpacket":
	default:
		return fmt.Errorf("%w: unsupported source.type: %s (must be file/afpacket)", core.ErrConfigInvalid, cfg.Source.Type)
	}

	cfg.Output.Format = strings.ToLower(cfg.Output.Format)
	switch cfg.Output.Format {
	case "text", "json", "yaml", "cbor":
	default:
		return fmt.Errorf("%w: unsupported output.format: %s (must be text/json/yaml/cbor)", core.ErrConfigInvalid, cfg.Output.Format)
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = "-"
	}

	if cfg.Pipeline.MaxPackets < 0 {
		return fmt.Errorf("%w: pipeline.max_packets must be >= 0", core.ErrConfigInvalid)
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		return fmt.Errorf("%w: metrics.listen is required when metrics.enabled=true", core.ErrConfigInvalid)
	}

	return nil
}
