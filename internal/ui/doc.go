// Package ui renders terminal output for the CLI with lipgloss styles and runs the interactive sync.
//
// [RenderSummary] prints the end-of-run report of a sync and [RenderProgress] formats the
// progress updates the sync engine emits while it runs. Styles degrade to plain text when the
// output is not a terminal.
//
// The TUI follows bubbletea's Elm architecture with four views:
//  1. [TrackListView] : Browse the fetched top tracks
//  2. [ConfirmView] : Confirm writing them to Notion
//  3. [SyncView] : Monitor per-record progress
//  4. [ResultView] : Display the summary and failed records
//
// Progress flows through a channel from [tasks.SyncEngine.SyncRecords]; the model reads one update per command.
package ui
