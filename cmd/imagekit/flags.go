package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/gobeaver/imagekit"
	"github.com/gobeaver/imagekit/internal/logger"
)

var (
	configFile string
	logLevel   string
	logFormat  string
	debug      bool
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config file (default: ~/.config/imagekit/config.yaml)",
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (text, json)",
			Value:       "text",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

// inspectOptions holds the flags shared by the commands that inspect stored
// files. Flags that are not set leave the loaded config untouched.
type inspectOptions struct {
	driver      string
	root        string
	maxWidth    int64
	maxHeight   int64
	maxPixels   int64
	checksums   string
	concurrency int
	noCache     bool
	output      string
}

func (o *inspectOptions) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "driver",
			Usage:       "storage driver (local, memory, zip)",
			Destination: &o.driver,
		},
		&cli.StringFlag{
			Name:        "root",
			Aliases:     []string{"r"},
			Usage:       "root directory of the local driver, or the archive of the zip driver",
			Destination: &o.root,
		},
		&cli.Int64Flag{
			Name:        "max-width",
			Usage:       "reject images wider than this (0 = unlimited)",
			Destination: &o.maxWidth,
		},
		&cli.Int64Flag{
			Name:        "max-height",
			Usage:       "reject images taller than this (0 = unlimited)",
			Destination: &o.maxHeight,
		},
		&cli.Int64Flag{
			Name:        "max-pixels",
			Usage:       "reject images with more pixels than this (0 = unlimited)",
			Destination: &o.maxPixels,
		},
		&cli.StringFlag{
			Name:        "checksums",
			Usage:       "comma-separated checksums to compute (md5, sha256, sha512, crc32, xxhash)",
			Destination: &o.checksums,
		},
		&cli.IntFlag{
			Name:        "concurrency",
			Aliases:     []string{"j"},
			Usage:       "number of files inspected in parallel (0 = GOMAXPROCS)",
			Destination: &o.concurrency,
		},
		&cli.BoolFlag{
			Name:        "no-cache",
			Usage:       "disable the result cache",
			Destination: &o.noCache,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "output format (text, json, yaml)",
			Value:       "text",
			Destination: &o.output,
		},
	}
}

func (o *inspectOptions) apply(cmd *cli.Command, cfg *imagekit.Config) {
	if cmd.IsSet("driver") {
		cfg.Driver = o.driver
	}
	if cmd.IsSet("root") {
		cfg.LocalBasePath = o.root
	}
	if cmd.IsSet("max-width") {
		cfg.MaxWidth = o.maxWidth
	}
	if cmd.IsSet("max-height") {
		cfg.MaxHeight = o.maxHeight
	}
	if cmd.IsSet("max-pixels") {
		cfg.MaxPixels = o.maxPixels
	}
	if cmd.IsSet("checksums") {
		cfg.Checksums = o.checksums
	}
	if cmd.IsSet("concurrency") {
		cfg.Concurrency = o.concurrency
	}
	if o.noCache {
		cfg.CacheEnabled = false
	}
}

// newInspector builds an Inspector from the loaded config and the flags.
func (o *inspectOptions) newInspector(ctx context.Context, cmd *cli.Command) (*imagekit.Inspector, *imagekit.Config, error) {
	cfg, err := configFromContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	o.apply(cmd, cfg)

	log := logger.FromContext(ctx)
	in, err := imagekit.NewFromConfig(cfg, imagekit.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	log.Debug("inspector ready", "driver", cfg.Driver, "root", cfg.LocalBasePath)
	return in, cfg, nil
}

func (o *inspectOptions) reportFormat() (imagekit.ReportFormat, error) {
	return imagekit.ParseReportFormat(o.output)
}
