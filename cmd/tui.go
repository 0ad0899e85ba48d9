package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tracksync/internal/shared"
	"github.com/desertthunder/tracksync/internal/tasks"
	"github.com/desertthunder/tracksync/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI: preview top tracks, confirm, then watch the sync.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}
	if err := r.config.ValidateSync(); err != nil {
		return err
	}

	spotify, err := r.spotifyService()
	if err != nil {
		return err
	}
	notion, err := r.notionService()
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, closer, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer closer.Close()

	engine := tasks.NewSyncEngine(spotify, spotify, notion, fileLogger)
	model := ui.NewModel(ctx, engine, r.topTracksOptions())
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if result := model.Result(); result != nil {
		return r.writePlain("%s", ui.RenderSummary(result))
	}
	return nil
}
