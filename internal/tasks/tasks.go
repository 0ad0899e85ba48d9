// package tasks implements the Spotify → Notion sync pipeline.
//
// The core abstraction is SyncEngine, which runs the token exchange, the top-tracks fetch, and the per-record writes.
// Operations emit progress updates via channels for non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tracksync/internal/models"
	"github.com/desertthunder/tracksync/internal/services"
	"github.com/desertthunder/tracksync/internal/shared"
)

// SyncEngine runs the sync pipeline against its three collaborators.
type SyncEngine struct {
	tokens services.TokenProvider
	tracks services.TrackFetcher
	writer services.RecordWriter
	logger *log.Logger
}

// NewSyncEngine creates a SyncEngine. The writer may be nil when only [SyncEngine.Fetch] is used.
func NewSyncEngine(tokens services.TokenProvider, tracks services.TrackFetcher, writer services.RecordWriter, logger *log.Logger) *SyncEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SyncEngine{
		tokens: tokens,
		tracks: tracks,
		writer: writer,
		logger: logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *SyncEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Fetch obtains an access token and then the user's top tracks.
//
// Token failures wrap [shared.ErrAuthFailed] and fetch failures wrap [shared.ErrFetchFailed]; both are fatal.
func (e *SyncEngine) Fetch(ctx context.Context, opts services.TopTracksOptions, progress chan<- ProgressUpdate) ([]models.TrackRecord, error) {
	if e.tokens == nil || e.tracks == nil {
		return nil, fmt.Errorf("%w: spotify service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchTokenUpdate())
	token, err := e.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("access token acquired", "expiry", token.Expiry)

	e.sendProgress(progress, fetchTracksUpdate(opts.Limit))
	records, err := e.tracks.TopTracks(ctx, token.AccessToken, opts)
	if err != nil {
		return nil, err
	}

	e.logger.Info("fetched top tracks", "count", len(records))
	e.sendProgress(progress, foundTracksUpdate(records))
	return records, nil
}

// SyncRecords writes each record in order, one at a time.
//
// Every record yields exactly one [models.WriteResult]; a failed write never stops the remaining ones.
func (e *SyncEngine) SyncRecords(ctx context.Context, records []models.TrackRecord, progress chan<- ProgressUpdate) *models.SyncResult {
	result := models.NewSyncResult(shared.GenerateID())
	total := len(records)

	for i, record := range records {
		w := e.write(ctx, record)
		result.Add(w)

		if w.OK() {
			e.logger.Info("added", "name", record.Name, "artist", record.Artist, "popularity", record.Popularity)
		} else {
			e.logger.Error("failed to add", "name", record.Name, "artist", record.Artist, "error", w.Err)
		}
		e.sendProgress(progress, writeRecordUpdate(i+1, total, w))
	}

	result.FinishedAt = time.Now()
	e.sendProgress(progress, completeUpdate(result))
	return result
}

func (e *SyncEngine) write(ctx context.Context, record models.TrackRecord) models.WriteResult {
	if e.writer == nil {
		return models.WriteResult{Record: record, Err: fmt.Errorf("%w: %w: notion service not initialized", shared.ErrWriteFailed, shared.ErrServiceUnavailable)}
	}

	page, err := e.writer.CreatePage(ctx, record)
	if err != nil {
		return models.WriteResult{Record: record, Err: err}
	}
	return models.WriteResult{Record: record, PageID: page.ID}
}

// Run performs a full sync: token, top tracks, then one write per track.
//
// If the token or the fetch fails, no write is attempted and the error is returned.
// Otherwise the result is returned with a nil error, even if some writes failed.
func (e *SyncEngine) Run(ctx context.Context, opts services.TopTracksOptions, progress chan<- ProgressUpdate) (*models.SyncResult, error) {
	if e.writer == nil {
		return nil, fmt.Errorf("%w: notion service not initialized", shared.ErrServiceUnavailable)
	}

	started := time.Now()
	records, err := e.Fetch(ctx, opts, progress)
	if err != nil {
		return nil, err
	}

	result := e.SyncRecords(ctx, records, progress)
	result.StartedAt = started
	return result, nil
}
