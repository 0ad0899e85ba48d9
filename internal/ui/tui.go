package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tracksync/internal/models"
	"github.com/desertthunder/tracksync/internal/services"
	"github.com/desertthunder/tracksync/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	TrackListView
	ConfirmView
	SyncView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.SyncEngine
	opts         services.TopTracksOptions
	width        int
	height       int
	trackList    list.Model
	records      []models.TrackRecord
	progressChan chan tasks.ProgressUpdate
	resultChan   chan *models.SyncResult
	progress     tasks.ProgressUpdate
	result       *models.SyncResult
	err          error
	spinner      spinner.Model
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model. The engine must have a writer to sync.
func NewModel(ctx context.Context, engine *tasks.SyncEngine, opts services.TopTracksOptions) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.title

	return &Model{
		ctx:     ctx,
		view:    LoadingView,
		engine:  engine,
		opts:    opts,
		spinner: s,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// State returns the current view state.
func (m *Model) State() ViewState {
	return m.view
}

// Result returns the result of the last sync, if one ran.
func (m *Model) Result() *models.SyncResult {
	return m.result
}

// Init fetches the top tracks.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchTracks())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.view != LoadingView && m.width > 4 && m.height > 8 {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LoadingView, SyncView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			if m.err != nil && key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tracksFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.records = msg.records
		m.trackList = list.New(trackItems(msg.records), list.NewDefaultDelegate(), 0, 0)
		m.trackList.Title = fmt.Sprintf("Top %d Tracks", len(msg.records))
		if m.width > 4 && m.height > 8 {
			m.trackList.SetSize(m.width-4, m.height-8)
		}
		m.view = TrackListView
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case syncCompleteMsg:
		m.result = msg.result
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.Error(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case LoadingView:
		return fmt.Sprintf("%s Fetching top tracks...", m.spinner.View())
	case TrackListView:
		return m.renderTrackList()
	case ConfirmView:
		return m.renderConfirm()
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.trackList.FilterState() == list.Filtering {
		return m.updateList(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if len(m.records) > 0 {
			m.view = ConfirmView
		}
		return m, nil
	}

	return m.updateList(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = SyncView
		return m, tea.Batch(m.spinner.Tick, m.startSync())
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.view = TrackListView
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.restart):
		m.view = TrackListView
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != TrackListView {
		return m, nil
	}
	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) fetchTracks() tea.Cmd {
	return func() tea.Msg {
		records, err := m.engine.Fetch(m.ctx, m.opts, nil)
		return tracksFetchedMsg{records: records, err: err}
	}
}

// startSync writes the previewed records in a goroutine and streams its progress back as messages.
func (m *Model) startSync() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 64)
	m.resultChan = make(chan *models.SyncResult, 1)
	m.progress = tasks.ProgressUpdate{}

	progress, results, records := m.progressChan, m.resultChan, m.records
	go func() {
		results <- m.engine.SyncRecords(m.ctx, records, progress)
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, results := m.progressChan, m.resultChan
	return func() tea.Msg {
		if progress == nil {
			return syncCompleteMsg{result: <-results}
		}

		update, ok := <-progress
		if !ok {
			return syncCompleteMsg{result: <-results}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderTrackList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.Title(fmt.Sprintf("Add %d tracks to Notion?", len(m.records)))
	info := "\nEach track becomes a new page in the database.\nExisting pages are not checked for duplicates.\n"

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderSync() string {
	title := styles.Title("Syncing Tracks")

	phase := "Starting..."
	if m.progress.Phase == tasks.WriteRecords {
		phase = fmt.Sprintf("Writing pages (%d/%d)", m.progress.Step, m.progress.Total)
	}

	line := ""
	if m.progress.Message != "" {
		line = RenderProgress(m.progress)
	}
	return fmt.Sprintf("%s\n\n%s %s\n%s", title, m.spinner.View(), phase, line)
}

func (m *Model) renderResult() string {
	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s", RenderSummary(m.result), helpView)
}
