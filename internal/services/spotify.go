// Spotify API implementation of [TokenProvider] and [TrackFetcher]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/get-users-top-artists-and-tracks
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/tracksync/internal/models"
	"github.com/desertthunder/tracksync/internal/shared"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

const defaultTopTracksLimit = 10

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type externalIDs struct {
	ISRC string `json:"isrc"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	ReleaseDate          string         `json:"release_date"`
	ReleaseDatePrecision string         `json:"release_date_precision"`
	TotalTracks          int            `json:"total_tracks"`
	Images               []SpotifyImage `json:"images"`
}

// SpotifyTrack represents a full Spotify track object.
type SpotifyTrack struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Artists          []SpotifyArtist `json:"artists"`
	Album            SpotifyAlbum    `json:"album"`
	DurationMS       int             `json:"duration_ms"`
	Explicit         bool            `json:"explicit"`
	ExternalIDs      externalIDs     `json:"external_ids"`
	ExternalURLs     externalURLs    `json:"external_urls"`
	AvailableMarkets []string        `json:"available_markets"`
	Popularity       int             `json:"popularity"`
	PreviewURL       string          `json:"preview_url"`
	TrackNumber      int             `json:"track_number"`
}

// SpotifyTopTracks is the paginated response of /me/top/tracks.
type SpotifyTopTracks struct {
	Items  []SpotifyTrack `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
	Next   *string        `json:"next"`
}

// SpotifyService talks to the Spotify accounts service and Web API.
type SpotifyService struct {
	config       *oauth2.Config
	refreshToken string
	apiBaseURL   string
	httpClient   *http.Client
}

// NewSpotifyService creates a Spotify service from the configured credentials.
//
// A nil client falls back to [http.DefaultClient].
func NewSpotifyService(creds shared.SpotifyConfig, client *http.Client) (*SpotifyService, error) {
	if creds.ClientID == "" {
		return nil, fmt.Errorf("%w: missing spotify client_id", shared.ErrMissingConfig)
	}
	if creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing spotify client_secret", shared.ErrMissingConfig)
	}
	if client == nil {
		client = http.DefaultClient
	}

	authURL, tokenURL := creds.AuthURL, creds.TokenURL
	if authURL == "" {
		authURL = spotifyauth.AuthURL
	}
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}

	apiBase := strings.TrimRight(creds.APIBaseURL, "/")
	if apiBase == "" {
		apiBase = "https://api.spotify.com/v1"
	}

	return &SpotifyService{
		config: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURI,
			Scopes:       []string{spotifyauth.ScopeUserTopRead},
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		refreshToken: creds.RefreshToken,
		apiBaseURL:   apiBase,
		httpClient:   client,
	}, nil
}

// OAuthConfig returns the OAuth2 configuration used for both grants.
func (s *SpotifyService) OAuthConfig() *oauth2.Config {
	return s.config
}

// AuthURL returns the consent page URL for the authorization-code flow.
func (s *SpotifyService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state)
}

// Client returns the HTTP client used for outbound calls.
func (s *SpotifyService) Client() *http.Client {
	return s.httpClient
}

// AccessToken exchanges the configured refresh token for a fresh access token.
func (s *SpotifyService) AccessToken(ctx context.Context) (*oauth2.Token, error) {
	if s.refreshToken == "" {
		return nil, fmt.Errorf("%w: missing refresh token", shared.ErrAuthFailed)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.config.TokenSource(ctx, &oauth2.Token{RefreshToken: s.refreshToken}).Token()
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			return nil, fmt.Errorf("%w: status %d: %s", shared.ErrAuthFailed, re.Response.StatusCode, strings.TrimSpace(string(re.Body)))
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	return token, nil
}

// TopTracks fetches the current user's top tracks and maps each item to a [models.TrackRecord].
func (s *SpotifyService) TopTracks(ctx context.Context, accessToken string, opts TopTracksOptions) ([]models.TrackRecord, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultTopTracksLimit
	}
	if opts.Limit > shared.MaxTrackLimit {
		opts.Limit = shared.MaxTrackLimit
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(opts.Limit))
	if opts.TimeRange != "" {
		query.Set("time_range", opts.TimeRange)
	}
	endpoint := s.apiBaseURL + "/me/top/tracks?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrFetchFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", shared.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrFetchFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: spotify API error: status %d, body: %s", shared.ErrFetchFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var page SpotifyTopTracks
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", shared.ErrFetchFailed, err)
	}
	if page.Items == nil {
		return nil, fmt.Errorf("%w: response has no items", shared.ErrFetchFailed)
	}

	records := make([]models.TrackRecord, 0, len(page.Items))
	for _, item := range page.Items {
		records = append(records, ToTrackRecord(item))
	}

	return records, nil
}

// ToTrackRecord maps a raw Spotify track to a [models.TrackRecord].
func ToTrackRecord(t SpotifyTrack) models.TrackRecord {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}

	record := models.TrackRecord{
		ID:                   t.ID,
		Name:                 t.Name,
		Artist:               strings.Join(names, ", "),
		Album:                t.Album.Name,
		SpotifyURL:           t.ExternalURLs.Spotify,
		ReleaseDate:          t.Album.ReleaseDate,
		ReleaseDatePrecision: t.Album.ReleaseDatePrecision,
		Duration:             shared.FormatDuration(t.DurationMS),
		DurationMS:           t.DurationMS,
		Popularity:           t.Popularity,
		Explicit:             t.Explicit,
		PreviewURL:           t.PreviewURL,
		TrackNumber:          t.TrackNumber,
		TotalTracks:          t.Album.TotalTracks,
		ISRC:                 t.ExternalIDs.ISRC,
		Markets:              len(t.AvailableMarkets),
	}

	if len(t.Album.Images) > 0 {
		record.AlbumImageURL = t.Album.Images[0].URL
	}

	return record
}
