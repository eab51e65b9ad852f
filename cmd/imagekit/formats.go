package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/gobeaver/imagekit/imageinfo"
)

type formatEntry struct {
	Name    string `json:"name"`
	Ext     string `json:"ext"`
	FullExt string `json:"full_ext"`
	MIME    string `json:"mime"`
}

func formatsCmd() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:  "formats",
		Usage: "List the recognized image formats",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print as JSON",
				Destination: &asJSON,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			formats := imageinfo.Formats()
			entries := make([]formatEntry, 0, len(formats))
			for _, f := range formats {
				entries = append(entries, formatEntry{Name: f.String(), Ext: f.Ext(), FullExt: f.FullExt(), MIME: f.MIME()})
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tEXT\tMIME")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.FullExt, e.MIME)
			}
			return tw.Flush()
		},
	}
}
