package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/gobeaver/imagekit"
)

func infoCmd() *cli.Command {
	var (
		opts inspectOptions
		name string
	)

	return &cli.Command{
		Name:      "info",
		Aliases:   []string{"i"},
		Usage:     "Identify files relative to the storage root ('-' reads stdin)",
		ArgsUsage: "FILE...",
		Flags: append(opts.flags(),
			&cli.StringFlag{
				Name:        "name",
				Usage:       "file name used as a format hint for stdin",
				Destination: &name,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() == 0 {
				return cli.Exit("error: at least one FILE is required", 1)
			}
			format, err := opts.reportFormat()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			in, cfg, err := opts.newInspector(ctx, cmd)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			var (
				results []imagekit.Result
				failed  int
			)
			for _, path := range cmd.Args().Slice() {
				res, err := inspectArg(ctx, in, path, name, cfg.MaxFileSize)
				if err != nil {
					failed++
				}
				if res == nil {
					res = &imagekit.Result{Path: path, Width: -1, Height: -1, Error: err.Error()}
				}
				results = append(results, *res)
			}

			if err := imagekit.WriteResults(os.Stdout, results, format); err != nil {
				return err
			}
			if failed > 0 {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

// inspectArg inspects one command-line argument.
func inspectArg(ctx context.Context, in *imagekit.Inspector, path, name string, limit int64) (*imagekit.Result, error) {
	if path != "-" {
		return in.Inspect(ctx, path)
	}
	if name == "" {
		name = "stdin"
	}
	var src io.Reader = os.Stdin
	if limit > 0 {
		src = io.LimitReader(src, limit+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, errors.New("stdin exceeds max file size")
	}
	return in.InspectBytes(ctx, name, data)
}
