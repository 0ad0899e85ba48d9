package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/tracksync/internal/services"
	"github.com/desertthunder/tracksync/internal/shared"
	tu "github.com/desertthunder/tracksync/internal/testing"
	"golang.org/x/oauth2"
)

func newEngine(tokens *tu.TokenStub, tracks *tu.TracksStub, writer *tu.WriterStub, buf *bytes.Buffer) *SyncEngine {
	var w services.RecordWriter
	if writer != nil {
		w = writer
	}
	var out io.Writer = io.Discard
	if buf != nil {
		out = buf
	}
	return NewSyncEngine(tokens, tracks, w, shared.NewLogger(out))
}

func TestSyncEngine(t *testing.T) {
	ctx := context.Background()
	opts := services.TopTracksOptions{Limit: 10}

	t.Run("Run", func(t *testing.T) {
		t.Run("Counts Successes And Failures", func(t *testing.T) {
			var buf bytes.Buffer
			tokens := &tu.TokenStub{Token: &oauth2.Token{AccessToken: "T"}}
			tracks := &tu.TracksStub{Records: tu.SampleRecords(5)}
			writer := &tu.WriterStub{FailNames: map[string]bool{"Song 3": true}}

			result, err := newEngine(tokens, tracks, writer, &buf).Run(ctx, opts, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result.Total != 5 || result.SuccessCount != 4 || result.ErrorCount != 1 {
				t.Errorf("expected 5/4/1, got %d/%d/%d", result.Total, result.SuccessCount, result.ErrorCount)
			}
			if len(writer.Written) != 5 {
				t.Errorf("expected 5 write attempts, got %d", len(writer.Written))
			}
			for i, r := range writer.Written {
				if want := fmt.Sprintf("Song %d", i+1); r.Name != want {
					t.Errorf("write %d: expected %q, got %q", i, want, r.Name)
				}
			}
			if tracks.Token != "T" {
				t.Errorf("expected fetch with token T, got %q", tracks.Token)
			}
			if result.RunID == "" {
				t.Error("expected run ID")
			}
			if result.SuccessRate() != "80.0" {
				t.Errorf("expected 80.0, got %s", result.SuccessRate())
			}

			failed := result.Failed()
			if len(failed) != 1 || failed[0].Record.Name != "Song 3" {
				t.Errorf("expected Song 3 to fail, got %+v", failed)
			}
			if !errors.Is(failed[0].Err, shared.ErrWriteFailed) {
				t.Errorf("expected ErrWriteFailed, got %v", failed[0].Err)
			}

			logs := buf.String()
			if strings.Count(logs, "added") != 4 {
				t.Errorf("expected 4 added lines, got logs:\n%s", logs)
			}
			if !strings.Contains(logs, "failed to add") || !strings.Contains(logs, "Song 3 rejected") {
				t.Errorf("expected failure line with diagnostic, got logs:\n%s", logs)
			}
		})

		t.Run("Token Failure Skips Fetch", func(t *testing.T) {
			tokens := &tu.TokenStub{Err: fmt.Errorf("%w: status 400", shared.ErrAuthFailed)}
			tracks := &tu.TracksStub{Records: tu.SampleRecords(2)}
			writer := &tu.WriterStub{}

			result, err := newEngine(tokens, tracks, writer, nil).Run(ctx, opts, nil)
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Fatalf("expected ErrAuthFailed, got %v", err)
			}
			if result != nil {
				t.Errorf("expected nil result, got %+v", result)
			}
			if tracks.Calls != 0 {
				t.Errorf("expected no fetch, got %d calls", tracks.Calls)
			}
			if len(writer.Written) != 0 {
				t.Errorf("expected no writes, got %d", len(writer.Written))
			}
		})

		t.Run("Fetch Failure Skips Writes", func(t *testing.T) {
			tokens := &tu.TokenStub{Token: &oauth2.Token{AccessToken: "T"}}
			tracks := &tu.TracksStub{Err: fmt.Errorf("%w: status 500", shared.ErrFetchFailed)}
			writer := &tu.WriterStub{}

			_, err := newEngine(tokens, tracks, writer, nil).Run(ctx, opts, nil)
			if !errors.Is(err, shared.ErrFetchFailed) {
				t.Fatalf("expected ErrFetchFailed, got %v", err)
			}
			if len(writer.Written) != 0 {
				t.Errorf("expected no writes, got %d", len(writer.Written))
			}
		})

		t.Run("Zero Tracks", func(t *testing.T) {
			tokens := &tu.TokenStub{Token: &oauth2.Token{AccessToken: "T"}}
			tracks := &tu.TracksStub{Records: nil}

			result, err := newEngine(tokens, tracks, &tu.WriterStub{}, nil).Run(ctx, opts, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Total != 0 || result.SuccessRate() != "0.0" {
				t.Errorf("expected empty result with 0.0 rate, got %d %s", result.Total, result.SuccessRate())
			}
		})

		t.Run("Missing Writer", func(t *testing.T) {
			tokens := &tu.TokenStub{Token: &oauth2.Token{AccessToken: "T"}}
			tracks := &tu.TracksStub{}

			_, err := newEngine(tokens, tracks, nil, nil).Run(ctx, opts, nil)
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
			if tokens.Calls != 0 {
				t.Errorf("expected no token request, got %d", tokens.Calls)
			}
		})

		t.Run("Passes Options", func(t *testing.T) {
			tokens := &tu.TokenStub{Token: &oauth2.Token{AccessToken: "T"}}
			tracks := &tu.TracksStub{}
			want := services.TopTracksOptions{Limit: 25, TimeRange: "long_term"}

			if _, err := newEngine(tokens, tracks, &tu.WriterStub{}, nil).Run(ctx, want, nil); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tracks.Opts != want {
				t.Errorf("expected %+v, got %+v", want, tracks.Opts)
			}
		})
	})

	t.Run("Fetch", func(t *testing.T) {
		t.Run("Missing Services", func(t *testing.T) {
			_, err := NewSyncEngine(nil, nil, nil, nil).Fetch(ctx, opts, nil)
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})

		t.Run("Does Not Need Writer", func(t *testing.T) {
			tokens := &tu.TokenStub{Token: &oauth2.Token{AccessToken: "T"}}
			tracks := &tu.TracksStub{Records: tu.SampleRecords(3)}

			records, err := newEngine(tokens, tracks, nil, nil).Fetch(ctx, opts, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(records) != 3 {
				t.Errorf("expected 3 records, got %d", len(records))
			}
		})
	})

	t.Run("SyncRecords", func(t *testing.T) {
		t.Run("Nil Writer Fails Each Record", func(t *testing.T) {
			result := newEngine(nil, nil, nil, nil).SyncRecords(ctx, tu.SampleRecords(2), nil)
			if result.ErrorCount != 2 || result.SuccessCount != 0 {
				t.Errorf("expected 0/2, got %d/%d", result.SuccessCount, result.ErrorCount)
			}
		})

		t.Run("Keeps Page IDs", func(t *testing.T) {
			result := newEngine(nil, nil, &tu.WriterStub{}, nil).SyncRecords(ctx, tu.SampleRecords(2), nil)
			for _, w := range result.Results {
				if w.PageID != "page-"+w.Record.ID {
					t.Errorf("expected page ID for %s, got %q", w.Record.ID, w.PageID)
				}
			}
		})
	})

	t.Run("Progress", func(t *testing.T) {
		t.Run("Sends Updates In Phase Order", func(t *testing.T) {
			tokens := &tu.TokenStub{Token: &oauth2.Token{AccessToken: "T"}}
			tracks := &tu.TracksStub{Records: tu.SampleRecords(2)}
			progress := make(chan ProgressUpdate, 16)

			if _, err := newEngine(tokens, tracks, &tu.WriterStub{}, nil).Run(ctx, opts, progress); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			close(progress)

			var phases []Phase
			for u := range progress {
				phases = append(phases, u.Phase)
			}
			want := []Phase{FetchToken, FetchTracks, FetchTracks, WriteRecords, WriteRecords, Complete}
			if len(phases) != len(want) {
				t.Fatalf("expected %d updates, got %d (%v)", len(want), len(phases), phases)
			}
			for i := range want {
				if phases[i] != want[i] {
					t.Errorf("update %d: expected %s, got %s", i, want[i], phases[i])
				}
			}
		})

		t.Run("Never Blocks On Full Channel", func(t *testing.T) {
			tokens := &tu.TokenStub{Token: &oauth2.Token{AccessToken: "T"}}
			tracks := &tu.TracksStub{Records: tu.SampleRecords(5)}
			progress := make(chan ProgressUpdate)

			result, err := newEngine(tokens, tracks, &tu.WriterStub{}, nil).Run(ctx, opts, progress)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.SuccessCount != 5 {
				t.Errorf("expected 5 successes, got %d", result.SuccessCount)
			}
		})
	})
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{FetchToken, "fetch_token"},
		{FetchTracks, "fetch_tracks"},
		{WriteRecords, "write_records"},
		{Complete, "complete"},
		{Phase(99), ""},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

const e2eTracksJSON = `{
  "items": [
    {
      "id": "t1",
      "name": "Song A",
      "artists": [{"name": "X"}, {"name": "Y"}],
      "album": {"name": "Alb", "release_date": "2020-01-02", "release_date_precision": "day", "total_tracks": 10, "images": [{"url": "https://i/1"}]},
      "duration_ms": 125000,
      "explicit": false,
      "external_ids": {"isrc": "I1"},
      "external_urls": {"spotify": "https://s/1"},
      "available_markets": ["US"],
      "popularity": 80,
      "track_number": 1
    },
    {
      "id": "t2",
      "name": "Song B",
      "artists": [{"name": "Z"}],
      "album": {"name": "Alb2", "release_date": "2019", "release_date_precision": "year", "total_tracks": 1, "images": []},
      "duration_ms": 59000,
      "explicit": true,
      "external_ids": {},
      "external_urls": {"spotify": "https://s/2"},
      "popularity": 10,
      "track_number": 1
    }
  ]
}`

func TestSyncEngineEndToEnd(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "refresh_token" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"T","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokenServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer T" || r.URL.Path != "/me/top/tracks" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(e2eTracksJSON))
	}))
	defer apiServer.Close()

	var (
		mu       sync.Mutex
		payloads []map[string]any
	)
	notionServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		payloads = append(payloads, body)
		n := len(payloads)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"object":"page","id":"p%d"}`, n)
	}))
	defer notionServer.Close()

	spotify, err := services.NewSpotifyService(shared.SpotifyConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		RefreshToken: "refresh",
		TokenURL:     tokenServer.URL,
		APIBaseURL:   apiServer.URL,
	}, nil)
	if err != nil {
		t.Fatalf("failed to create spotify service: %v", err)
	}
	notion, err := services.NewNotionService(shared.NotionConfig{
		Token:      "secret_n",
		DatabaseID: "db",
		BaseURL:    notionServer.URL,
	}, nil)
	if err != nil {
		t.Fatalf("failed to create notion service: %v", err)
	}

	result, err := NewSyncEngine(spotify, spotify, notion, shared.NewLogger(io.Discard)).
		Run(context.Background(), services.TopTracksOptions{Limit: 10}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Total != 2 || result.SuccessCount != 2 || result.ErrorCount != 0 {
		t.Errorf("expected 2/2/0, got %d/%d/%d", result.Total, result.SuccessCount, result.ErrorCount)
	}
	if len(payloads) != 2 {
		t.Fatalf("expected 2 payloads, got %d", len(payloads))
	}

	first := payloads[0]["properties"].(map[string]any)
	if _, ok := first["Album Cover"]; !ok {
		t.Error("expected first payload to carry Album Cover")
	}
	artist := first["Artist"].(map[string]any)["rich_text"].([]any)[0].(map[string]any)["text"].(map[string]any)["content"]
	if artist != "X, Y" {
		t.Errorf("expected joined artists, got %v", artist)
	}
	duration := first["Duration"].(map[string]any)["rich_text"].([]any)[0].(map[string]any)["text"].(map[string]any)["content"]
	if duration != "2:05" {
		t.Errorf("expected 2:05, got %v", duration)
	}

	second := payloads[1]["properties"].(map[string]any)
	if _, ok := second["Album Cover"]; ok {
		t.Error("expected second payload to omit Album Cover")
	}
	if pop := second["Popularity"].(map[string]any)["number"]; pop != float64(10) {
		t.Errorf("expected popularity 10, got %v", pop)
	}
}
