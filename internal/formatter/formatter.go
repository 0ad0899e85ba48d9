// package formatter renders top-track lists as CSV, Markdown, or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/tracksync/internal/models"
	"github.com/desertthunder/tracksync/internal/shared"
)

// Supported export formats
const (
	FormatText     = "text"
	FormatCSV      = "csv"
	FormatMarkdown = "md"
)

// Formats lists the values accepted by [Export].
var Formats = []string{FormatText, FormatCSV, FormatMarkdown}

// ParseFormat normalizes a format name. An empty name means [FormatText] and "markdown" means [FormatMarkdown].
func ParseFormat(name string) (string, error) {
	switch strings.ToLower(name) {
	case "", FormatText:
		return FormatText, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatMarkdown, "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want one of %s)", shared.ErrInvalidArgument, name, strings.Join(Formats, ", "))
	}
}

// Export renders records in the named format. The title heads the text and Markdown output.
func Export(format, title string, records []models.TrackRecord) ([]byte, error) {
	format, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV:
		return ExportToCSV(records)
	case FormatMarkdown:
		return ExportToMarkdown(title, records)
	default:
		return ExportToText(title, records)
	}
}

// ExportToCSV converts records to CSV with columns: Rank, ID, Name, Artist, Album, Duration, Popularity, Release Date, ISRC, URL
func ExportToCSV(records []models.TrackRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Rank", "ID", "Name", "Artist", "Album", "Duration", "Popularity", "Release Date", "ISRC", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range records {
		record := []string{
			strconv.Itoa(i + 1),
			track.ID,
			track.Name,
			track.Artist,
			track.Album,
			track.Duration,
			strconv.Itoa(track.Popularity),
			track.ReleaseDate,
			track.ISRC,
			track.SpotifyURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts records to a Markdown document with a numbered track list
func ExportToMarkdown(title string, records []models.TrackRecord) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(records))

	buf.WriteString("## Tracks\n\n")
	for i, track := range records {
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		name := track.Name
		if track.SpotifyURL != "" {
			name = fmt.Sprintf("[%s](%s)", track.Name, track.SpotifyURL)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, track.Artist, name, albumPart, track.Duration)
	}

	return buf.Bytes(), nil
}

// ExportToText converts records to plain text
func ExportToText(title string, records []models.TrackRecord) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", title)
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(records))

	for i, track := range records {
		fmt.Fprintf(&buf, "%d. %s - %s [%s] (popularity %d)\n", i+1, track.Artist, track.Name, track.Duration, track.Popularity)
	}

	return buf.Bytes(), nil
}

// WriteExport renders records and writes them to path.
func WriteExport(path, format, title string, records []models.TrackRecord) error {
	if path == "" {
		return fmt.Errorf("%w: empty output path", shared.ErrInvalidArgument)
	}

	data, err := Export(format, title, records)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
