package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tracksync/internal/models"
	"github.com/desertthunder/tracksync/internal/services"
	"github.com/desertthunder/tracksync/internal/shared"
	"github.com/desertthunder/tracksync/internal/tasks"
	"github.com/desertthunder/tracksync/internal/ui"
	"github.com/urfave/cli/v3"
)

// syncFailure is one failed record in the JSON summary.
type syncFailure struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`
	Error  string `json:"error"`
}

// syncReport is the JSON form of a [models.SyncResult].
type syncReport struct {
	RunID       string        `json:"run_id"`
	Found       int           `json:"found"`
	Synced      int           `json:"synced"`
	Failed      int           `json:"failed"`
	SuccessRate string        `json:"success_rate"`
	PageIDs     []string      `json:"page_ids"`
	Failures    []syncFailure `json:"failures"`
}

func newSyncReport(result *models.SyncResult) syncReport {
	report := syncReport{
		RunID:       result.RunID,
		Found:       result.Total,
		Synced:      result.SuccessCount,
		Failed:      result.ErrorCount,
		SuccessRate: result.SuccessRate(),
		PageIDs:     []string{},
		Failures:    []syncFailure{},
	}
	for _, w := range result.Results {
		if w.OK() {
			report.PageIDs = append(report.PageIDs, w.PageID)
			continue
		}
		report.Failures = append(report.Failures, syncFailure{Name: w.Record.Name, Artist: w.Record.Artist, Error: w.Err.Error()})
	}
	return report
}

// Sync fetches the top tracks and creates one Notion page per track.
//
// A token or fetch failure is returned as an error. Failed writes are reported in the summary
// and only become an error with --strict.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	if err := r.loadConfig(cmd); err != nil {
		return err
	}
	if err := r.config.ValidateSync(); err != nil {
		return err
	}

	spotify, err := r.spotifyService()
	if err != nil {
		return err
	}
	notion, err := r.notionService()
	if err != nil {
		return err
	}

	engine := tasks.NewSyncEngine(spotify, spotify, notion, r.logger)
	opts := r.topTracksOptions()

	if cmd.Bool("dry-run") {
		return r.dryRun(ctx, engine, notion, opts)
	}

	r.logger.Info("starting sync", "limit", opts.Limit, "time_range", opts.TimeRange)

	// Room for every update of a full page: token, fetch, found, one per record, complete.
	progress := make(chan tasks.ProgressUpdate, shared.MaxTrackLimit+4)
	done := make(chan struct{})
	var progressErr error
	go func() {
		defer close(done)
		for update := range progress {
			if useJSON || progressErr != nil {
				continue
			}
			progressErr = r.writePlain("%s\n", ui.RenderProgress(update))
		}
	}()

	result, err := engine.Run(ctx, opts, progress)
	close(progress)
	<-done

	if err != nil {
		return err
	}
	if progressErr != nil {
		return progressErr
	}

	if useJSON {
		if err := r.writeJSON(newSyncReport(result), true); err != nil {
			return err
		}
	} else if err := r.writePlain("\n%s", ui.RenderSummary(result)); err != nil {
		return err
	}

	if cmd.Bool("strict") && result.ErrorCount > 0 {
		return fmt.Errorf("%w: %d of %d records failed", shared.ErrPartialSync, result.ErrorCount, result.Total)
	}
	return nil
}

// dryRun prints the page payloads a sync would send.
func (r *Runner) dryRun(ctx context.Context, engine *tasks.SyncEngine, notion *services.NotionService, opts services.TopTracksOptions) error {
	records, err := engine.Fetch(ctx, opts, nil)
	if err != nil {
		return err
	}

	payloads := make([]services.PageRequest, 0, len(records))
	for _, record := range records {
		payloads = append(payloads, notion.PageRequest(record))
	}

	r.logger.Info("dry run, nothing written", "pages", len(payloads))
	return r.writeJSON(payloads, true)
}
