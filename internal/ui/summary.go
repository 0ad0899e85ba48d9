package ui

import (
	"fmt"
	"strings"

	"github.com/desertthunder/tracksync/internal/models"
	"github.com/desertthunder/tracksync/internal/tasks"
)

// RenderSummary renders the end-of-run report: tracks found, synced, failed, and success rate,
// followed by the failed records when there are any.
func RenderSummary(result *models.SyncResult) string {
	if result == nil {
		return styles.Error("No result available")
	}

	var b strings.Builder

	if result.ErrorCount == 0 {
		b.WriteString(styles.Success("✓ Sync complete"))
	} else {
		b.WriteString(styles.Warning("⚠ Sync complete with errors"))
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Tracks found:  %d\n", result.Total)
	fmt.Fprintf(&b, "Synced:        %d\n", result.SuccessCount)
	fmt.Fprintf(&b, "Failed:        %d\n", result.ErrorCount)
	fmt.Fprintf(&b, "Success rate:  %s%%\n", result.SuccessRate())

	if failed := result.Failed(); len(failed) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.Error(fmt.Sprintf("Failed to add %d tracks:", len(failed))))
		for _, w := range failed {
			fmt.Fprintf(&b, "\n  • %s: %v", w.Record, w.Err)
		}
		b.WriteString("\n")
	}

	if result.RunID != "" {
		b.WriteString("\n")
		b.WriteString(styles.Help("run " + result.RunID))
		b.WriteString("\n")
	}

	return b.String()
}

// RenderProgress renders a single progress update as one line.
func RenderProgress(u tasks.ProgressUpdate) string {
	switch u.Phase {
	case tasks.WriteRecords:
		if w, ok := u.Data.(models.WriteResult); ok && !w.OK() {
			return styles.Error(u.Message)
		}
		return u.Message
	case tasks.Complete:
		return styles.Title(u.Message)
	default:
		return "→ " + u.Message
	}
}
