package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/gobeaver/imagekit"
)

func scanCmd() *cli.Command {
	var (
		opts    inspectOptions
		pattern string
		strict  bool
	)

	return &cli.Command{
		Name:      "scan",
		Usage:     "Identify every matching file under a directory",
		ArgsUsage: "[DIR]",
		Flags: append(opts.flags(),
			&cli.StringFlag{
				Name:        "pattern",
				Aliases:     []string{"p"},
				Usage:       "glob selecting files, e.g. '*.png' or 'photos/**/*.{jpg,jpeg}'",
				Destination: &pattern,
			},
			&cli.BoolFlag{
				Name:        "strict",
				Usage:       "exit with status 1 unless every file was recognized and within limits",
				Destination: &strict,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := opts.reportFormat()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			in, _, err := opts.newInspector(ctx, cmd)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			rep, err := in.Scan(ctx, cmd.Args().First(), pattern)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if err := imagekit.WriteReport(os.Stdout, rep, format); err != nil {
				return err
			}
			if strict && rep.Summary.Recognized != rep.Summary.Total {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}
