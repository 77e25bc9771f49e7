package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"webtome/internal/download"
	"webtome/internal/history"
	"webtome/models"
)

func main() {
	app := &cli.App{
		Name:      "webtome",
		Usage:     "download web articles as clean EPUB files",
		UsageText: "webtome [options] <url>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "read URLs from `FILE`, one per line",
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "directory to write EPUB files to",
				Value:   ".",
			},
			&cli.StringFlag{
				Name:  "merge",
				Usage: "combine all articles into a single book titled `NAME`",
			},
			&cli.IntFlag{
				Name:  "max-conn",
				Usage: "maximum simultaneous connections",
				Value: models.DefaultMaxConn,
			},
			&cli.BoolFlag{
				Name:  "inline-toc",
				Usage: "add a table of contents page to a merged book",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "load defaults from a YAML config `FILE`",
			},
			&cli.StringFlag{
				Name:  "cache-dir",
				Usage: "cache fetched pages in `DIR`",
			},
			&cli.StringFlag{
				Name:  "max-age",
				Usage: "how long cached pages stay fresh",
				Value: "24h",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "do not record this run in the download history",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "only log errors",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log debug detail",
			},
		},
		Action: download.DownloadAction,
		Commands: []*cli.Command{
			{
				Name:  "history",
				Usage: "inspect past download runs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "maximum runs to list",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "failed-urls",
						Usage: "print a retry command for a run's failed URLs",
					},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() > 0 {
						return history.RunAction(c)
					}
					return history.RunsAction(c)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
