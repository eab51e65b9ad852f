package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	_ "github.com/gobeaver/imagekit/driver/local"
	_ "github.com/gobeaver/imagekit/driver/memory"
	_ "github.com/gobeaver/imagekit/driver/zip"
	"github.com/gobeaver/imagekit/internal/logger"
)

func main() {
	app := &cli.Command{
		Name:  "imagekit",
		Usage: "Identify images and read their dimensions without decoding them",
		Flags: globalFlags(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return ctx, err
			}
			log := logger.Open(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			ctx = logger.WithContext(ctx, log)
			return withConfig(ctx, cfg), nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			infoCmd(),
			scanCmd(),
			watchCmd(),
			blurCmd(),
			formatsCmd(),
			serveCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
