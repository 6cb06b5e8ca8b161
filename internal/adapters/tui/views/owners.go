package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"seqtag/internal/adapters/tui/styles"
	"seqtag/internal/application/commands"
	"seqtag/internal/domain"
	"seqtag/internal/ports"
)

// OwnersKeyMap defines key bindings for the owner list
type OwnersKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Open     key.Binding
	Filter   key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var OwnersKeys = OwnersKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("h", "left", "pgup"),
		key.WithHelp("h/←", "prev page"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("l", "right", "pgdown"),
		key.WithHelp("l/→", "next page"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "edit links"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

const listPageSize = 15

// OwnersModel lists the samples whose relations can be edited
type OwnersModel struct {
	ViewState
	repo ports.RecordRepository

	all       []domain.Record
	visible   []domain.Record
	paginator *Paginator

	filter    textinput.Model
	filtering bool
	loaded    bool
}

type ownersLoadedMsg struct {
	records []domain.Record
}

// NewOwnersModel creates the owner list
func NewOwnersModel(repo ports.RecordRepository) *OwnersModel {
	input := textinput.New()
	input.Placeholder = "Filter samples..."
	input.Prompt = "/ "

	return &OwnersModel{
		repo:      repo,
		paginator: NewPaginator(listPageSize),
		filter:    input,
	}
}

// Init loads the owners
func (m *OwnersModel) Init() tea.Cmd {
	return m.load
}

// Reload fetches the owners again, keeping the filter
func (m *OwnersModel) Reload() tea.Cmd {
	return m.load
}

func (m *OwnersModel) load() tea.Msg {
	records, err := commands.NewListRecordsCommand(m.repo, domain.RecordTypeSample).Execute(context.Background())
	if err != nil {
		return errMsg{err}
	}
	return ownersLoadedMsg{records}
}

// Selected returns the owner under the cursor
func (m *OwnersModel) Selected() (domain.Record, bool) {
	i, ok := m.paginator.Index()
	if !ok {
		return domain.Record{}, false
	}
	return m.visible[i], true
}

// Filtering reports whether the filter input has focus
func (m *OwnersModel) Filtering() bool {
	return m.filtering
}

// Update handles messages for the owner list
func (m *OwnersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case ownersLoadedMsg:
		m.all = msg.records
		m.loaded = true
		m.applyFilter()
		return m, nil

	case errMsg:
		m.SetError(msg.err)
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m, m.updateFilter(msg)
		}
		return m, m.handleKey(msg)
	}

	if m.filtering {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *OwnersModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, OwnersKeys.Quit):
		return tea.Quit

	case key.Matches(msg, OwnersKeys.Up):
		m.paginator.CursorUp()

	case key.Matches(msg, OwnersKeys.Down):
		m.paginator.CursorDown()

	case key.Matches(msg, OwnersKeys.PrevPage):
		m.paginator.PrevPage()

	case key.Matches(msg, OwnersKeys.NextPage):
		m.paginator.NextPage()

	case key.Matches(msg, OwnersKeys.Filter):
		m.filtering = true
		m.ClearMessage()
		return m.filter.Focus()

	case key.Matches(msg, OwnersKeys.Reload):
		m.ClearMessage()
		return m.load

	case key.Matches(msg, OwnersKeys.Help):
		return func() tea.Msg { return SwitchToHelpMsg{} }

	case key.Matches(msg, OwnersKeys.Open):
		owner, ok := m.Selected()
		if !ok {
			return nil
		}
		m.ClearMessage()
		return func() tea.Msg { return SwitchToEditorMsg{Owner: owner} }
	}
	return nil
}

func (m *OwnersModel) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter()
		return nil
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return cmd
}

// applyFilter rebuilds the visible list. Queries shorter than two
// characters show every owner in ID order.
func (m *OwnersModel) applyFilter() {
	query := strings.TrimSpace(m.filter.Value())
	if len(query) < 2 {
		m.visible = m.all
	} else {
		results := commands.FuzzySort(m.all, query)
		m.visible = make([]domain.Record, len(results))
		for i, r := range results {
			m.visible[i] = r.Record
		}
	}
	m.paginator.SetTotal(len(m.visible))
	m.paginator.SetCursor(0)
}

// View renders the owner list
func (m *OwnersModel) View() string {
	v := newScreen("seqtag", styles.Subtitle.Render("Samples"))

	if m.filtering || m.filter.Value() != "" {
		v.line(styles.InputFocused.Render(m.filter.View()))
		v.blank()
	}

	switch {
	case !m.loaded:
		v.muted("Loading...")
	case len(m.all) == 0:
		v.muted("No samples yet. Create one with seqtag-cli create sample.")
	case len(m.visible) == 0:
		v.muted("No samples match the filter")
	default:
		start, end := m.paginator.VisibleRange()
		for i := start; i < end; i++ {
			v.line(renderRecordRow(m.visible[i], i == m.paginator.Cursor(), ""))
		}
		if m.paginator.TotalPages() > 1 {
			v.blank()
			v.muted(fmt.Sprintf("page %d/%d", m.paginator.CurrentPage(), m.paginator.TotalPages()))
		}
	}

	if m.filtering {
		return v.footer(m.Message, m.MessageErr, FilterHelp...)
	}
	return v.footer(m.Message, m.MessageErr, OwnersKeys.Open, OwnersKeys.Filter, OwnersKeys.Reload, OwnersKeys.Help, OwnersKeys.Quit)
}

// FilterHelp lists the keys active while the filter has focus
var FilterHelp = []key.Binding{
	key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
	key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
}
