package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/gobeaver/imagekit"
	"github.com/gobeaver/imagekit/blur"
	"github.com/gobeaver/imagekit/internal/logger"
)

func blurCmd() *cli.Command {
	var (
		radius  int
		rgb565  bool
		quality int
	)

	return &cli.Command{
		Name:      "blur",
		Usage:     "Stack-blur a PNG, JPEG or GIF image",
		ArgsUsage: "INPUT OUTPUT",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "radius",
				Aliases:     []string{"r"},
				Usage:       "blur radius",
				Value:       10,
				Destination: &radius,
			},
			&cli.BoolFlag{
				Name:        "rgb565",
				Usage:       "blur in 16-bit RGB565 instead of ARGB8888",
				Destination: &rgb565,
			},
			&cli.IntFlag{
				Name:        "quality",
				Usage:       "JPEG quality when OUTPUT ends in .jpg or .jpeg",
				Value:       90,
				Destination: &quality,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			if cmd.NArg() != 2 {
				return cli.Exit("error: INPUT and OUTPUT are required", 1)
			}
			input, output := cmd.Args().Get(0), cmd.Args().Get(1)

			cfg, err := configFromContext(ctx)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			data, err := os.ReadFile(input)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			// Identify before decoding so dimension limits apply.
			in := imagekit.NewInspector(nil,
				imagekit.WithLogger(log),
				imagekit.WithLimits(cfg.Limits()),
				imagekit.WithMaxFileSize(cfg.MaxFileSize),
			)
			res, err := in.InspectBytes(ctx, filepath.Base(input), data)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			maxPixels := cfg.BlurMaxPixels
			if maxPixels <= 0 {
				maxPixels = blur.DefaultMaxPixels
			}
			if err := (imagekit.Limits{MaxPixels: maxPixels}).Check(res.Size()); err != nil {
				return cli.Exit(fmt.Sprintf("error: %s: %v", input, err), 1)
			}
			if res.Compression != imagekit.CompressionNone {
				if data, err = imagekit.Inflate(bytes.NewReader(data), res.Compression, cfg.MaxFileSize); err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
			}

			img, _, err := image.Decode(bytes.NewReader(data))
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: decode %s (%s): %v", input, res.Format, err), 1)
			}

			bm := blur.FromImage(img)
			if rgb565 {
				bm = blur.FromImageRGB565(img)
			}
			out, err := blur.Apply(bm, radius, blur.WithMaxRadius(cfg.BlurMaxRadius), blur.InPlace())
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			var buf bytes.Buffer
			switch strings.ToLower(filepath.Ext(output)) {
			case ".jpg", ".jpeg":
				err = jpeg.Encode(&buf, out.Image(), &jpeg.Options{Quality: quality})
			default:
				err = png.Encode(&buf, out.Image())
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			log.Info("blurred", "input", input, "output", output, "size", res.Size(), "radius", radius, "config", out.Config)
			return nil
		},
	}
}
