package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/gobeaver/imagekit"
	"github.com/gobeaver/imagekit/internal/logger"
)

func watchCmd() *cli.Command {
	var (
		opts     inspectOptions
		pattern  string
		interval time.Duration
	)

	return &cli.Command{
		Name:      "watch",
		Usage:     "Scan a directory and rescan whenever matching files change",
		ArgsUsage: "[DIR]",
		Flags: append(opts.flags(),
			&cli.StringFlag{
				Name:        "pattern",
				Aliases:     []string{"p"},
				Usage:       "glob selecting files",
				Destination: &pattern,
			},
			&cli.DurationFlag{
				Name:        "poll-interval",
				Usage:       "polling interval for drivers without change events",
				Value:       5 * time.Second,
				Destination: &interval,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			format, err := opts.reportFormat()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			cfg, err := configFromContext(ctx)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			opts.apply(cmd, cfg)
			in, err := imagekit.NewFromConfig(cfg,
				imagekit.WithLogger(log),
				imagekit.WithPollInterval(interval),
			)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			dir := cmd.Args().First()
			log.Info("watching", "root", dir, "pattern", pattern)
			return in.Watch(ctx, dir, pattern, func(rep *imagekit.Report) {
				if err := imagekit.WriteReport(os.Stdout, rep, format); err != nil {
					log.Error("write report", "error", err)
				}
			})
		},
	}
}
