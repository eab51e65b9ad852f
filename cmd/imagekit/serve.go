package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/gobeaver/imagekit/internal/api"
	"github.com/gobeaver/imagekit/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		opts        inspectOptions
		addr        string
		readTimeout time.Duration
		maxUpload   int64
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the inspection and blur REST API",
		Flags: append(opts.flags(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (default from IMAGEKIT_SERVER_ADDRESS)",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.Int64Flag{
				Name:        "max-upload",
				Usage:       "largest accepted request body in bytes (default: max file size)",
				Destination: &maxUpload,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			in, cfg, err := opts.newInspector(ctx, cmd)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if !cmd.IsSet("addr") {
				addr = cfg.ServerAddress
			}
			if !cmd.IsSet("max-upload") {
				maxUpload = cfg.MaxFileSize
			}

			server := api.NewServer(in, api.Config{
				MaxUploadSize: maxUpload,
				BlurMaxRadius: cfg.BlurMaxRadius,
				BlurMaxPixels: cfg.BlurMaxPixels,
			}, log)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "driver", cfg.Driver, "root", cfg.LocalBasePath)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
