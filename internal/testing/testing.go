// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/tracksync/internal/models"
	"github.com/desertthunder/tracksync/internal/services"
	"github.com/desertthunder/tracksync/internal/shared"
	"golang.org/x/oauth2"
)

// TokenStub is a test double for [services.TokenProvider]
type TokenStub struct {
	Token *oauth2.Token
	Err   error
	Calls int
}

func (s *TokenStub) AccessToken(ctx context.Context) (*oauth2.Token, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Token, nil
}

// TracksStub is a test double for [services.TrackFetcher]
type TracksStub struct {
	Records []models.TrackRecord
	Err     error
	Calls   int
	Token   string
	Opts    services.TopTracksOptions
}

func (s *TracksStub) TopTracks(ctx context.Context, accessToken string, opts services.TopTracksOptions) ([]models.TrackRecord, error) {
	s.Calls++
	s.Token = accessToken
	s.Opts = opts
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Records, nil
}

// WriterStub records every page write and fails for the names in FailNames.
type WriterStub struct {
	FailNames map[string]bool
	Written   []models.TrackRecord
}

func (w *WriterStub) CreatePage(ctx context.Context, r models.TrackRecord) (*services.NotionPage, error) {
	w.Written = append(w.Written, r)
	if w.FailNames[r.Name] {
		return nil, fmt.Errorf("%w: %s rejected", shared.ErrWriteFailed, r.Name)
	}
	return &services.NotionPage{ID: "page-" + r.ID}, nil
}

// SampleRecords builds n distinct track records.
func SampleRecords(n int) []models.TrackRecord {
	records := make([]models.TrackRecord, 0, n)
	for i := range n {
		records = append(records, models.TrackRecord{
			ID:         fmt.Sprintf("t%d", i+1),
			Name:       fmt.Sprintf("Song %d", i+1),
			Artist:     "Artist",
			Album:      "Album",
			SpotifyURL: fmt.Sprintf("https://open.spotify.com/track/t%d", i+1),
			Duration:   "3:30",
			DurationMS: 210000,
			Popularity: 50 + i,
		})
	}
	return records
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
