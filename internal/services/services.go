// package services defines the interfaces for the remote APIs the sync pipeline talks to
//
// Spotify (token + top tracks), Notion (page creation)
package services

import (
	"context"

	"github.com/desertthunder/tracksync/internal/models"
	"golang.org/x/oauth2"
)

// TokenProvider exchanges a long-lived refresh credential for a short-lived access token.
type TokenProvider interface {
	// AccessToken performs one token request. Failures wrap [shared.ErrAuthFailed].
	AccessToken(ctx context.Context) (*oauth2.Token, error)
}

// TrackFetcher retrieves and normalizes the user's top tracks.
type TrackFetcher interface {
	// TopTracks returns records in the order the API returned them. Failures wrap [shared.ErrFetchFailed].
	TopTracks(ctx context.Context, accessToken string, opts TopTracksOptions) ([]models.TrackRecord, error)
}

// RecordWriter creates one entry in the target database per call.
type RecordWriter interface {
	// CreatePage writes a single record. Failures wrap [shared.ErrWriteFailed].
	CreatePage(ctx context.Context, record models.TrackRecord) (*NotionPage, error)
}

// TopTracksOptions controls the top-tracks request.
type TopTracksOptions struct {
	Limit     int    // Page size, 1-50
	TimeRange string // short_term, medium_term, long_term or empty for the API default
}
