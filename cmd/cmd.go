// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/desertthunder/tracksync/internal/formatter"
	"github.com/urfave/cli/v3"
)

const defaultAuthTimeout = 2 * time.Minute

// configFlags are shared by every command that reads credentials.
func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:  "env-file",
			Usage: "Path to a dotenv file read before the process environment",
			Value: ".env",
		},
	}
}

// fetchFlags control the top-tracks request.
func fetchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Number of top tracks to fetch (1-50)",
			Value: 10,
		},
		&cli.StringFlag{
			Name:  "time-range",
			Usage: "Affinity window: short_term, medium_term, or long_term",
		},
	}
}

// syncCommand runs the full Spotify → Notion sync
func syncCommand(r *Runner) *cli.Command {
	flags := append(configFlags(), fetchFlags()...)
	flags = append(flags,
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Fetch tracks and print the Notion page payloads without writing",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output the run summary as JSON",
		},
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "Exit with an error when any record failed to sync",
		},
	)

	return &cli.Command{
		Name:   "sync",
		Usage:  "Sync your top tracks into the Notion database",
		Flags:  flags,
		Action: r.Sync,
	}
}

// tracksCommand fetches and displays top tracks without writing anything
func tracksCommand(r *Runner) *cli.Command {
	flags := append(configFlags(), fetchFlags()...)
	flags = append(flags,
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, csv, or md",
			Value:   formatter.FormatText,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the formatted tracks to a file instead of stdout",
		},
	)

	return &cli.Command{
		Name:   "tracks",
		Usage:  "List your top tracks",
		Flags:  flags,
		Action: r.Tracks,
	}
}

// tuiCommand launches the interactive sync
func tuiCommand(r *Runner) *cli.Command {
	flags := append(configFlags(), fetchFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "Where to write logs while the TUI owns the terminal",
			Value: "./tmp/tracksync-tui.log",
		},
	)

	return &cli.Command{
		Name:   "tui",
		Usage:  "Preview your top tracks and sync them interactively",
		Flags:  flags,
		Action: r.TUI,
	}
}

// authCommand handles the one-time authorization flow
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Spotify authorization",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Start a local server and authorize with Spotify to obtain a refresh token",
				Flags: append(configFlags(),
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the login page in the default browser",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the callback",
						Value: defaultAuthTimeout,
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Write the refresh token into the config file",
					},
				),
				Action: r.AuthLogin,
			},
		},
	}
}

// configCommand manages the configuration file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration file helpers",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write an example configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.ConfigInit,
			},
		},
	}
}
