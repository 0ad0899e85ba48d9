package ui

import (
	"github.com/desertthunder/tracksync/internal/models"
	"github.com/desertthunder/tracksync/internal/tasks"
)

type tracksFetchedMsg struct {
	records []models.TrackRecord
	err     error
}

type progressUpdateMsg tasks.ProgressUpdate

type syncCompleteMsg struct {
	result *models.SyncResult
}
