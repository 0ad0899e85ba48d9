// package models defines the data model for the track sync pipeline
package models

import (
	"fmt"
	"time"
)

// TrackRecord is a normalized representation of one top track.
type TrackRecord struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Artist               string `json:"artist"` // Artist names joined with ", "
	Album                string `json:"album"`
	SpotifyURL           string `json:"spotify_url"`
	ReleaseDate          string `json:"release_date,omitempty"` // YYYY, YYYY-MM or YYYY-MM-DD
	ReleaseDatePrecision string `json:"release_date_precision,omitempty"`
	Duration             string `json:"duration"` // m:ss
	DurationMS           int    `json:"duration_ms"`
	Popularity           int    `json:"popularity"`
	AlbumImageURL        string `json:"album_image_url,omitempty"`
	Explicit             bool   `json:"explicit"`
	PreviewURL           string `json:"preview_url,omitempty"`
	TrackNumber          int    `json:"track_number"`
	TotalTracks          int    `json:"total_tracks"`
	ISRC                 string `json:"isrc,omitempty"`
	Markets              int    `json:"markets"`
}

// HasAlbumImage reports whether the record carries an album cover URL.
func (t TrackRecord) HasAlbumImage() bool {
	return t.AlbumImageURL != ""
}

// HasReleaseDate reports whether the record carries a release date.
func (t TrackRecord) HasReleaseDate() bool {
	return t.ReleaseDate != ""
}

// String returns "Name by Artist".
func (t TrackRecord) String() string {
	return fmt.Sprintf("%s by %s", t.Name, t.Artist)
}

// WriteResult is the outcome of writing a single record to the target database.
type WriteResult struct {
	Record TrackRecord `json:"record"`
	PageID string      `json:"page_id,omitempty"`
	Err    error       `json:"-"`
}

// OK reports whether the write succeeded.
func (w WriteResult) OK() bool {
	return w.Err == nil
}

// SyncResult aggregates the write results of one run, in fetch order.
type SyncResult struct {
	RunID        string        `json:"run_id"`
	Total        int           `json:"total"`
	SuccessCount int           `json:"success_count"`
	ErrorCount   int           `json:"error_count"`
	Results      []WriteResult `json:"results"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
}

// NewSyncResult creates an empty result for a run with the given ID.
func NewSyncResult(runID string) *SyncResult {
	return &SyncResult{
		RunID:     runID,
		Results:   []WriteResult{},
		StartedAt: time.Now(),
	}
}

// Add records one write outcome and updates the counts.
func (s *SyncResult) Add(w WriteResult) {
	s.Results = append(s.Results, w)
	s.Total++
	if w.OK() {
		s.SuccessCount++
	} else {
		s.ErrorCount++
	}
}

// Failed returns the results whose write failed.
func (s *SyncResult) Failed() []WriteResult {
	var failed []WriteResult
	for _, r := range s.Results {
		if !r.OK() {
			failed = append(failed, r)
		}
	}
	return failed
}

// SuccessRate returns successes as a percentage of the total with one decimal place.
//
// A run with no tracks reports "0.0".
func (s *SyncResult) SuccessRate() string {
	if s.Total == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(s.SuccessCount)/float64(s.Total)*100)
}
