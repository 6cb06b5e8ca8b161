package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"seqtag/internal/adapters/tui/views"
	"seqtag/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewOwners ViewState = iota
	ViewEditor
	ViewHelp
)

// App is the main TUI application model
type App struct {
	state    ViewState
	previous ViewState
	owners   *views.OwnersModel
	editor   *views.EditorModel
	help     *views.HelpModel

	width  int
	height int
}

// NewApp creates a new TUI application
func NewApp(repo ports.RecordRepository, newSession views.SessionFactory) *App {
	return &App{
		state:  ViewOwners,
		owners: views.NewOwnersModel(repo),
		editor: views.NewEditorModel(repo, newSession),
		help:   views.NewHelpModel(),
	}
}

// State returns the active view
func (a *App) State() ViewState {
	return a.state
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.owners.Init()
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.owners.SetSize(msg.Width, msg.Height)
		a.editor.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// q is left to the views so it can be typed into the filter
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}

	case views.SwitchToEditorMsg:
		a.state = ViewEditor
		return a, a.editor.Open(msg.Owner)

	case views.SwitchToOwnersMsg:
		a.state = ViewOwners
		if msg.Message != "" {
			a.owners.SetMessage(msg.Message, msg.IsErr)
		}
		return a, a.owners.Reload()

	case views.SwitchToHelpMsg:
		a.previous = a.state
		a.state = ViewHelp
		return a, nil

	case views.CloseHelpMsg:
		a.state = a.previous
		return a, nil
	}

	// Key presses go to the active view. Everything else reaches both list
	// views, so a commit that settles while help is open is not lost.
	if _, ok := msg.(tea.KeyMsg); !ok {
		_, ownersCmd := a.owners.Update(msg)
		_, editorCmd := a.editor.Update(msg)
		return a, tea.Batch(ownersCmd, editorCmd)
	}

	var cmd tea.Cmd
	switch a.state {
	case ViewOwners:
		_, cmd = a.owners.Update(msg)
	case ViewEditor:
		_, cmd = a.editor.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewEditor:
		return a.editor.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.owners.View()
	}
}
