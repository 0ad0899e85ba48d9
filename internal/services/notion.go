// Notion API implementation of [RecordWriter]
//
// Request shapes based on https://developers.notion.com/reference/post-page
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/tracksync/internal/models"
	"github.com/desertthunder/tracksync/internal/shared"
)

const defaultNotionVersion = "2022-06-28"

type textContent struct {
	Content string `json:"content"`
}

type richText struct {
	Text textContent `json:"text"`
}

func texts(s string) []richText {
	return []richText{{Text: textContent{Content: s}}}
}

// TitleProperty is a Notion title property value.
type TitleProperty struct {
	Title []richText `json:"title"`
}

// RichTextProperty is a Notion rich_text property value.
type RichTextProperty struct {
	RichText []richText `json:"rich_text"`
}

// URLProperty is a Notion url property value.
type URLProperty struct {
	URL string `json:"url"`
}

// NumberProperty is a Notion number property value.
type NumberProperty struct {
	Number int `json:"number"`
}

type dateValue struct {
	Start string `json:"start"`
}

// DateProperty is a Notion date property value.
type DateProperty struct {
	Date dateValue `json:"date"`
}

// Parent identifies the database a page is created in.
type Parent struct {
	DatabaseID string `json:"database_id"`
}

// PageRequest is the body of POST /pages.
type PageRequest struct {
	Parent     Parent         `json:"parent"`
	Properties map[string]any `json:"properties"`
}

// NotionPage is the subset of the created page object we keep.
type NotionPage struct {
	Object string `json:"object"`
	ID     string `json:"id"`
	URL    string `json:"url"`
}

// NotionError carries the diagnostic payload of a failed Notion request.
type NotionError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Body    string `json:"-"` // Raw body when it was not a Notion error object
}

func (e *NotionError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("notion API error: status %d, code %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("notion API error: status %d, body: %s", e.Status, e.Body)
}

// NotionService creates pages in a Notion database.
type NotionService struct {
	baseURL    string
	token      string
	databaseID string
	version    string
	props      shared.PropertyNames
	httpClient *http.Client
}

// NewNotionService creates a Notion service from configuration. A nil client falls back to [http.DefaultClient].
func NewNotionService(cfg shared.NotionConfig, client *http.Client) (*NotionService, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: missing notion token", shared.ErrMissingConfig)
	}
	if cfg.DatabaseID == "" {
		return nil, fmt.Errorf("%w: missing notion database_id", shared.ErrMissingConfig)
	}
	if client == nil {
		client = http.DefaultClient
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.notion.com/v1"
	}
	version := cfg.Version
	if version == "" {
		version = defaultNotionVersion
	}

	return &NotionService{
		baseURL:    baseURL,
		token:      cfg.Token,
		databaseID: cfg.DatabaseID,
		version:    version,
		props:      withDefaultNames(cfg.Properties),
		httpClient: client,
	}, nil
}

// withDefaultNames fills unset property names with the column names of the stock database template.
func withDefaultNames(p shared.PropertyNames) shared.PropertyNames {
	defaults := shared.PropertyNames{
		Title:       "Title",
		Artist:      "Artist",
		Album:       "Album",
		URL:         "Spotify URL",
		Duration:    "Duration",
		Popularity:  "Popularity",
		ReleaseDate: "Release Date",
		AlbumCover:  "Album Cover",
	}
	for _, f := range []struct{ dst, def *string }{
		{&p.Title, &defaults.Title},
		{&p.Artist, &defaults.Artist},
		{&p.Album, &defaults.Album},
		{&p.URL, &defaults.URL},
		{&p.Duration, &defaults.Duration},
		{&p.Popularity, &defaults.Popularity},
		{&p.ReleaseDate, &defaults.ReleaseDate},
		{&p.AlbumCover, &defaults.AlbumCover},
	} {
		if *f.dst == "" {
			*f.dst = *f.def
		}
	}
	return p
}

// Properties builds the property map for a record.
//
// Title, artist, album, URL, duration and popularity are always set.
// Release date and album cover are set only when the record has them.
func (n *NotionService) Properties(r models.TrackRecord) map[string]any {
	props := map[string]any{
		n.props.Title:      TitleProperty{Title: texts(r.Name)},
		n.props.Artist:     RichTextProperty{RichText: texts(r.Artist)},
		n.props.Album:      RichTextProperty{RichText: texts(r.Album)},
		n.props.URL:        URLProperty{URL: r.SpotifyURL},
		n.props.Duration:   RichTextProperty{RichText: texts(r.Duration)},
		n.props.Popularity: NumberProperty{Number: r.Popularity},
	}

	if r.HasReleaseDate() {
		props[n.props.ReleaseDate] = DateProperty{Date: dateValue{Start: ISODate(r.ReleaseDate, r.ReleaseDatePrecision)}}
	}
	if r.HasAlbumImage() {
		props[n.props.AlbumCover] = URLProperty{URL: r.AlbumImageURL}
	}

	return props
}

// PageRequest builds the full create-page body for a record.
func (n *NotionService) PageRequest(r models.TrackRecord) PageRequest {
	return PageRequest{
		Parent:     Parent{DatabaseID: n.databaseID},
		Properties: n.Properties(r),
	}
}

// CreatePage creates one database page for the record.
func (n *NotionService) CreatePage(ctx context.Context, r models.TrackRecord) (*NotionPage, error) {
	payload, err := json.Marshal(n.PageRequest(r))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode page: %v", shared.ErrWriteFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/pages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrWriteFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+n.token)
	req.Header.Set("Notion-Version", n.version)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", shared.ErrWriteFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrWriteFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %w", shared.ErrWriteFailed, parseNotionError(resp.StatusCode, body))
	}

	var page NotionPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", shared.ErrWriteFailed, err)
	}

	return &page, nil
}

func parseNotionError(status int, body []byte) *NotionError {
	var ne NotionError
	if err := json.Unmarshal(body, &ne); err != nil || ne.Code == "" {
		return &NotionError{Status: status, Body: strings.TrimSpace(string(body))}
	}
	if ne.Status == 0 {
		ne.Status = status
	}
	return &ne
}

// ISODate expands a Spotify release date to a full YYYY-MM-DD date.
//
// Year precision becomes January 1st and month precision the first of the month.
// When precision is empty it is inferred from the length of the date.
func ISODate(date, precision string) string {
	if precision == "" {
		switch len(date) {
		case 4:
			precision = "year"
		case 7:
			precision = "month"
		}
	}

	switch precision {
	case "year":
		if len(date) == 4 {
			return date + "-01-01"
		}
	case "month":
		if len(date) == 7 {
			return date + "-01"
		}
	}
	return date
}
