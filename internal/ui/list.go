package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/tracksync/internal/models"
)

// trackItem adapts a [models.TrackRecord] to [list.DefaultItem].
type trackItem struct {
	rank  int
	track models.TrackRecord
}

func (i trackItem) FilterValue() string { return i.track.Name + " " + i.track.Artist }
func (i trackItem) Title() string       { return fmt.Sprintf("%d. %s", i.rank, i.track.Name) }
func (i trackItem) Description() string {
	album := ""
	if i.track.Album != "" {
		album = " • " + i.track.Album
	}
	return fmt.Sprintf("%s%s • %s • popularity %d", i.track.Artist, album, i.track.Duration, i.track.Popularity)
}

func trackItems(records []models.TrackRecord) []list.Item {
	items := make([]list.Item, len(records))
	for i, r := range records {
		items[i] = trackItem{rank: i + 1, track: r}
	}
	return items
}
