package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tracksync/internal/formatter"
	"github.com/desertthunder/tracksync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Tracks lists the user's top tracks as JSON, text, CSV, or Markdown.
func (r *Runner) Tracks(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	format := cmd.String("format")
	outputFile := cmd.String("output")

	if _, err := formatter.ParseFormat(format); err != nil {
		return err
	}
	if err := r.loadConfig(cmd); err != nil {
		return err
	}
	if err := r.config.ValidateFetch(); err != nil {
		return err
	}

	spotify, err := r.spotifyService()
	if err != nil {
		return err
	}

	opts := r.topTracksOptions()
	records, err := tasks.NewSyncEngine(spotify, spotify, nil, r.logger).Fetch(ctx, opts, nil)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(records, pretty)
	}

	title := "Top Tracks"
	if opts.TimeRange != "" {
		title = fmt.Sprintf("Top Tracks (%s)", opts.TimeRange)
	}

	if outputFile != "" {
		if err := formatter.WriteExport(outputFile, format, title, records); err != nil {
			return err
		}
		r.logger.Info("tracks exported", "file", outputFile, "format", format)
		return r.writePlain("✓ Wrote %d tracks to %s\n", len(records), outputFile)
	}

	data, err := formatter.Export(format, title, records)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
