package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/gobeaver/imagekit"
)

// FileConfig is the imagekit configuration file (~/.config/imagekit/config.yaml).
// Pointer fields distinguish "not set" from zero values. Settings in the file
// override BEAVER_IMAGEKIT_* environment variables; command-line flags
// override both.
type FileConfig struct {
	Driver string `yaml:"driver"`
	Root   string `yaml:"root"`

	// Inspection
	HeaderCacheSize *int     `yaml:"header_cache_size"`
	MaxFileSize     *int64   `yaml:"max_file_size"`
	MaxWidth        *int64   `yaml:"max_width"`
	MaxHeight       *int64   `yaml:"max_height"`
	MaxPixels       *int64   `yaml:"max_pixels"`
	Cache           *bool    `yaml:"cache"`
	CacheTTLSeconds *int     `yaml:"cache_ttl_seconds"`
	Concurrency     *int     `yaml:"concurrency"`
	Checksums       []string `yaml:"checksums"`

	// Blur
	BlurMaxRadius *int   `yaml:"blur_max_radius"`
	BlurMaxPixels *int64 `yaml:"blur_max_pixels"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "imagekit", "config.yaml")
}

// readFileConfig reads a config file. A missing default file yields a zero
// FileConfig; a missing file named with --config is an error.
func readFileConfig(path string, explicit bool) (FileConfig, error) {
	var fc FileConfig
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return fc, nil
		}
		return fc, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

// apply overlays the settings present in fc onto cfg.
func (fc FileConfig) apply(cfg *imagekit.Config) {
	if fc.Driver != "" {
		cfg.Driver = fc.Driver
	}
	if fc.Root != "" {
		cfg.LocalBasePath = fc.Root
	}
	if fc.HeaderCacheSize != nil {
		cfg.HeaderCacheSize = *fc.HeaderCacheSize
	}
	if fc.MaxFileSize != nil {
		cfg.MaxFileSize = *fc.MaxFileSize
	}
	if fc.MaxWidth != nil {
		cfg.MaxWidth = *fc.MaxWidth
	}
	if fc.MaxHeight != nil {
		cfg.MaxHeight = *fc.MaxHeight
	}
	if fc.MaxPixels != nil {
		cfg.MaxPixels = *fc.MaxPixels
	}
	if fc.Cache != nil {
		cfg.CacheEnabled = *fc.Cache
	}
	if fc.CacheTTLSeconds != nil {
		cfg.CacheTTLSeconds = *fc.CacheTTLSeconds
	}
	if fc.Concurrency != nil {
		cfg.Concurrency = *fc.Concurrency
	}
	if len(fc.Checksums) > 0 {
		cfg.Checksums = strings.Join(fc.Checksums, ",")
	}
	if fc.BlurMaxRadius != nil {
		cfg.BlurMaxRadius = *fc.BlurMaxRadius
	}
	if fc.BlurMaxPixels != nil {
		cfg.BlurMaxPixels = *fc.BlurMaxPixels
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.LogFormat != "" {
		cfg.LogFormat = fc.LogFormat
	}
	if fc.ServerAddress != "" {
		cfg.ServerAddress = fc.ServerAddress
	}
}

// loadConfig layers the environment, the config file and the global flags.
func loadConfig(cmd *cli.Command) (*imagekit.Config, error) {
	cfg, err := imagekit.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	path, explicit := configPath(), cmd.IsSet("config")
	if explicit {
		path = configFile
	}
	fc, err := readFileConfig(path, explicit)
	if err != nil {
		return nil, err
	}
	fc.apply(cfg)

	if cmd.IsSet("log-level") {
		cfg.LogLevel = logLevel
	}
	if cmd.IsSet("log-format") {
		cfg.LogFormat = logFormat
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

type configKey struct{}

func withConfig(ctx context.Context, cfg *imagekit.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// configFromContext returns the loaded config, or the environment config
// when the root Before hook did not run.
func configFromContext(ctx context.Context) (*imagekit.Config, error) {
	if cfg, ok := ctx.Value(configKey{}).(*imagekit.Config); ok {
		c := *cfg
		return &c, nil
	}
	return imagekit.GetConfig()
}
