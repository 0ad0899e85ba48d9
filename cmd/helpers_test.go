package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/tracksync/internal/shared"
)

const fakeTopTracks = `{
  "items": [
    {
      "id": "t1",
      "name": "Song A",
      "artists": [{"name": "X"}, {"name": "Y"}],
      "album": {"name": "Alb", "release_date": "2020-01-02", "release_date_precision": "day", "total_tracks": 10, "images": [{"url": "https://i/1"}]},
      "duration_ms": 125000,
      "external_ids": {"isrc": "I1"},
      "external_urls": {"spotify": "https://s/1"},
      "popularity": 80,
      "track_number": 1
    },
    {
      "id": "t2",
      "name": "Song B",
      "artists": [{"name": "Z"}],
      "album": {"name": "Alb2", "release_date": "2019", "release_date_precision": "year", "total_tracks": 1, "images": []},
      "duration_ms": 59000,
      "external_ids": {},
      "external_urls": {"spotify": "https://s/2"},
      "popularity": 10,
      "track_number": 1
    }
  ]
}`

// fakeAPI stands in for the Spotify accounts service, the Spotify Web API, and the Notion API.
type fakeAPI struct {
	token  *httptest.Server
	api    *httptest.Server
	notion *httptest.Server

	mu          sync.Mutex
	tokenStatus int
	topBody     string
	topQuery    string
	failTitles  map[string]bool
	pages       []map[string]any
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{tokenStatus: http.StatusOK, topBody: fakeTopTracks, failTitles: map[string]bool{}}

	f.token = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		status := f.tokenStatus
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid refresh token"}`))
			return
		}

		switch r.PostForm.Get("grant_type") {
		case "refresh_token":
			w.Write([]byte(`{"access_token":"T","token_type":"Bearer","expires_in":3600}`))
		case "authorization_code":
			if r.PostForm.Get("code") != "good" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"invalid_grant"}`))
				return
			}
			w.Write([]byte(`{"access_token":"A","refresh_token":"NEW_REFRESH","token_type":"Bearer","expires_in":3600}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	t.Cleanup(f.token.Close)

	f.api = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer T" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		f.topQuery = r.URL.RawQuery
		body := f.topBody
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(f.api.Close)

	f.notion = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var page map[string]any
		if err := json.Unmarshal(body, &page); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		f.pages = append(f.pages, page)
		n := len(f.pages)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if f.failTitles[pageTitle(page)] {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"object":"error","status":400,"code":"validation_error","message":"Popularity is not a property that exists."}`))
			return
		}
		fmt.Fprintf(w, `{"object":"page","id":"page-%d"}`, n)
	}))
	t.Cleanup(f.notion.Close)

	return f
}

// topTracksBody builds a top-tracks response with n minimal items named "Track 1".."Track n".
func topTracksBody(n int) string {
	items := make([]map[string]any, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, map[string]any{
			"id":            fmt.Sprintf("t%d", i),
			"name":          fmt.Sprintf("Track %d", i),
			"artists":       []map[string]string{{"name": "Artist"}},
			"album":         map[string]any{"name": "Album", "images": []any{}},
			"duration_ms":   180000,
			"external_urls": map[string]string{"spotify": fmt.Sprintf("https://s/%d", i)},
			"popularity":    50,
		})
	}
	body, _ := json.Marshal(map[string]any{"items": items})
	return string(body)
}

// slowWriter delays every write, like a terminal that cannot keep up.
type slowWriter struct {
	bytes.Buffer
	delay time.Duration
}

func (w *slowWriter) Write(p []byte) (int, error) {
	time.Sleep(w.delay)
	return w.Buffer.Write(p)
}

func pageTitle(page map[string]any) string {
	props, _ := page["properties"].(map[string]any)
	title, _ := props["Title"].(map[string]any)
	parts, _ := title["title"].([]any)
	if len(parts) == 0 {
		return ""
	}
	text, _ := parts[0].(map[string]any)["text"].(map[string]any)
	content, _ := text["content"].(string)
	return content
}

func (f *fakeAPI) pageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pages)
}

func (f *fakeAPI) query() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.topQuery
}

// config returns a complete configuration pointing at the fake servers.
func (f *fakeAPI) config() *shared.Config {
	config := shared.DefaultConfig()
	config.Credentials.Spotify.ClientID = "client"
	config.Credentials.Spotify.ClientSecret = "secret"
	config.Credentials.Spotify.RefreshToken = "refresh"
	config.Credentials.Spotify.TokenURL = f.token.URL
	config.Credentials.Spotify.APIBaseURL = f.api.URL
	config.Notion.Token = "secret_notion"
	config.Notion.DatabaseID = "db123"
	config.Notion.BaseURL = f.notion.URL
	config.Server.Port = 0
	return config
}

// writeConfig saves config to a temp file and returns its path.
func writeConfig(t *testing.T, config *shared.Config) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := shared.SaveConfig(path, config); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func noEnv(string) (string, bool) { return "", false }

func newTestRunner(out *bytes.Buffer) *Runner {
	return NewRunner(RunnerOpts{
		Logger:    shared.NewLogger(io.Discard),
		Output:    out,
		LookupEnv: noEnv,
	})
}

func run(r *Runner, args ...string) error {
	return r.App().Run(context.Background(), append([]string{"tracksync"}, args...))
}
