package tasks

import (
	"fmt"

	"github.com/desertthunder/tracksync/internal/models"
)

// ProgressUpdate represents a progress event during a sync run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchToken Phase = iota
	FetchTracks
	WriteRecords
	Complete
)

func (p Phase) String() string {
	switch p {
	case FetchToken:
		return "fetch_token"
	case FetchTracks:
		return "fetch_tracks"
	case WriteRecords:
		return "write_records"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func fetchTokenUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchToken,
		Step:    1,
		Total:   1,
		Message: "Requesting Spotify access token...",
	}
}

func fetchTracksUpdate(limit int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching top %d tracks...", limit),
	}
}

func foundTracksUpdate(records []models.TrackRecord) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d top tracks", len(records)),
		Data:    records,
	}
}

func writeRecordUpdate(step, total int, w models.WriteResult) ProgressUpdate {
	mark := "✓"
	if !w.OK() {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   WriteRecords,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s", step, total, mark, w.Record),
		Data:    w,
	}
}

func completeUpdate(result *models.SyncResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    result.Total,
		Total:   result.Total,
		Message: fmt.Sprintf("Synced %d/%d tracks", result.SuccessCount, result.Total),
		Data:    result,
	}
}
