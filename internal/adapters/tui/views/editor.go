package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"seqtag/internal/adapters/tui/styles"
	"seqtag/internal/application/commands"
	"seqtag/internal/application/session"
	"seqtag/internal/domain"
	"seqtag/internal/ports"
)

// EditorKeyMap defines key bindings for the relation editor
type EditorKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	PrevPage  key.Binding
	NextPage  key.Binding
	Toggle    key.Binding
	Range     key.Binding
	SelectAll key.Binding
	Clear     key.Binding
	SwitchTab key.Binding
	Commit    key.Binding
	Copy      key.Binding
	Reload    key.Binding
	Back      key.Binding
	Help      key.Binding
}

var EditorKeys = EditorKeyMap{
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
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "toggle"),
	),
	Range: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "select range"),
	),
	SelectAll: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "all/none"),
	),
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear"),
	),
	SwitchTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch relation"),
	),
	Commit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "save"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy ids"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "re-read links"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
}

// SessionFactory starts an edit session for one relation
type SessionFactory func(domain.Relation) *session.Session

// copyToClipboard is swapped out in tests
var copyToClipboard = clipboard.WriteAll

// EditorModel edits the links of one owner, one relation kind at a time.
// Switching kinds discards the current session and its selection.
type EditorModel struct {
	ViewState
	repo       ports.RecordRepository
	newSession SessionFactory

	owner domain.Record
	kinds []domain.RelationKind
	kind  int

	sess       *session.Session
	candidates []domain.Record
	ids        []string
	paginator  *Paginator
	loading    bool

	pending bool
	spinner spinner.Model
	failed  domain.Set[string]

	confirm ConfirmationModel
}

type relationLoadedMsg struct {
	sess       *session.Session
	candidates []domain.Record
	snapshot   domain.Set[string]
	err        error
}

type commitSettledMsg struct {
	sess    *session.Session
	outcome *session.Outcome
	err     error
}

type snapshotRefreshedMsg struct {
	sess *session.Session
	err  error
}

// NewEditorModel creates the relation editor
func NewEditorModel(repo ports.RecordRepository, newSession SessionFactory) *EditorModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Pending

	return &EditorModel{
		repo:       repo,
		newSession: newSession,
		paginator:  NewPaginator(listPageSize),
		spinner:    s,
		confirm:    NewConfirmationModel(),
	}
}

// Init satisfies tea.Model. Loading starts in Open.
func (m *EditorModel) Init() tea.Cmd {
	return nil
}

// Open points the editor at owner and loads its first relation kind
func (m *EditorModel) Open(owner domain.Record) tea.Cmd {
	m.owner = owner
	m.kinds = m.kinds[:0]
	for _, k := range domain.RelationKinds {
		if k.OwnerType() == owner.Type {
			m.kinds = append(m.kinds, k)
		}
	}
	m.kind = 0
	m.ClearMessage()
	return m.startSession()
}

// Relation returns the relation being edited
func (m *EditorModel) Relation() domain.Relation {
	if m.sess == nil {
		return domain.Relation{}
	}
	return m.sess.Relation()
}

// Pending reports whether a commit is in flight
func (m *EditorModel) Pending() bool {
	return m.pending
}

func (m *EditorModel) currentKind() domain.RelationKind {
	if len(m.kinds) == 0 {
		return domain.RelationUnknown
	}
	return m.kinds[m.kind]
}

// startSession replaces the session for the current kind. The candidate
// list changes identity, so selection and paging start over.
func (m *EditorModel) startSession() tea.Cmd {
	kind := m.currentKind()
	if kind == domain.RelationUnknown {
		m.SetMessage(fmt.Sprintf("%s records own no relations", m.owner.Type), true)
		return nil
	}

	sess := m.newSession(domain.Relation{Kind: kind, OwnerID: m.owner.ID})
	m.sess = sess
	m.candidates = nil
	m.ids = nil
	m.failed = nil
	m.loading = true
	m.paginator.Reset()

	repo := m.repo
	return func() tea.Msg {
		ctx := context.Background()
		candidates, err := commands.NewListRecordsCommand(repo, kind.ItemType()).Execute(ctx)
		if err != nil {
			return relationLoadedMsg{sess: sess, err: err}
		}
		snapshot, err := sess.Refresh(ctx)
		return relationLoadedMsg{sess: sess, candidates: candidates, snapshot: snapshot, err: err}
	}
}

// Update handles messages for the editor
func (m *EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case relationLoadedMsg:
		if msg.sess != m.sess {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.SetError(msg.err)
			return m, nil
		}
		m.candidates = msg.candidates
		m.ids = domain.RecordIDs(msg.candidates)
		m.sess.Reset(msg.snapshot)
		m.paginator.SetTotal(len(m.ids))
		return m, nil

	case commitSettledMsg:
		return m, m.settle(msg)

	case snapshotRefreshedMsg:
		if msg.sess != m.sess || msg.err == nil {
			return m, nil
		}
		text := "re-reading links failed: " + msg.err.Error()
		if m.Message != "" {
			text = m.Message + "; " + text
		}
		m.SetMessage(text, true)
		return m, nil

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if handled, cmd := m.confirm.HandleKeyMsg(msg, m.back, nil); handled {
			return m, cmd
		}
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *EditorModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, EditorKeys.Help) {
		return func() tea.Msg { return SwitchToHelpMsg{} }
	}
	if m.pending {
		if key.Matches(msg, EditorKeys.Commit, EditorKeys.SwitchTab, EditorKeys.Back) {
			m.SetMessage("Save in progress, wait for it to finish", true)
		}
		return nil
	}

	switch {
	case key.Matches(msg, EditorKeys.Back):
		if m.sess == nil || m.loading {
			return m.back
		}
		plan, known := m.changes()
		switch {
		case !known:
			m.confirm.Ask("Stored links could not be read. Discard the selection?")
			return nil
		case !plan.Empty():
			m.confirm.Ask(fmt.Sprintf("Discard %d unsaved change(s)?", plan.Len()))
			return nil
		}
		return m.back

	case key.Matches(msg, EditorKeys.SwitchTab):
		if len(m.kinds) < 2 {
			return nil
		}
		m.kind = (m.kind + 1) % len(m.kinds)
		m.ClearMessage()
		return m.startSession()
	}

	if m.loading || m.sess == nil {
		return nil
	}

	sel := m.sess.Selection()
	cursor, onRow := m.paginator.Index()

	switch {
	case key.Matches(msg, EditorKeys.Up):
		m.paginator.CursorUp()

	case key.Matches(msg, EditorKeys.Down):
		m.paginator.CursorDown()

	case key.Matches(msg, EditorKeys.PrevPage):
		m.paginator.PrevPage()

	case key.Matches(msg, EditorKeys.NextPage):
		m.paginator.NextPage()

	case key.Matches(msg, EditorKeys.Toggle):
		if onRow {
			sel.Toggle(m.ids[cursor], cursor)
		}

	case key.Matches(msg, EditorKeys.Range):
		if onRow {
			sel.RangeSelect(m.ids[cursor], cursor, m.ids)
		}

	case key.Matches(msg, EditorKeys.SelectAll):
		sel.SelectAll(m.ids)

	case key.Matches(msg, EditorKeys.Clear):
		sel.Clear()

	case key.Matches(msg, EditorKeys.Copy):
		selected := sel.SelectedIn(m.ids)
		if len(selected) == 0 {
			m.SetMessage("Nothing selected", true)
			return nil
		}
		if err := copyToClipboard(strings.Join(selected, "\n")); err != nil {
			m.SetMessage("Copy failed: "+err.Error(), true)
			return nil
		}
		m.SetMessage(fmt.Sprintf("Copied %d id(s)", len(selected)), false)

	case key.Matches(msg, EditorKeys.Reload):
		m.ClearMessage()
		return m.refresh()

	case key.Matches(msg, EditorKeys.Commit):
		return m.commit()
	}
	return nil
}

// changes previews the unsaved plan. known is false while the stored links
// are unknown, which is the case after a commit until a re-read succeeds.
func (m *EditorModel) changes() (plan domain.Plan[string], known bool) {
	if _, ok := m.sess.Snapshot(); !ok {
		return domain.Plan[string]{}, false
	}
	return m.sess.Changes(), true
}

// refresh re-reads the stored links without touching the selection
func (m *EditorModel) refresh() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		_, err := sess.Refresh(context.Background())
		return snapshotRefreshedMsg{sess: sess, err: err}
	}
}

// commit hands the desired membership to the session on a command
// goroutine. The selection itself is never touched off the update loop.
func (m *EditorModel) commit() tea.Cmd {
	sess := m.sess
	desired := sess.Selection().Selected()
	m.pending = true
	m.failed = nil
	m.ClearMessage()

	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		outcome, err := sess.Commit(context.Background(), desired)
		return commitSettledMsg{sess: sess, outcome: outcome, err: err}
	})
}

func (m *EditorModel) settle(msg commitSettledMsg) tea.Cmd {
	if msg.sess != m.sess {
		return nil
	}
	m.pending = false

	if msg.err != nil {
		m.SetError(msg.err)
		return nil
	}

	if m.sess.Settle(msg.outcome) {
		plan := msg.outcome.Plan
		text := fmt.Sprintf("Saved %s for %s: +%d -%d",
			strings.ToLower(m.currentKind().Title()), m.owner.ID, plan.ToAdd.Len(), plan.ToRemove.Len())
		return func() tea.Msg { return SwitchToOwnersMsg{Message: text} }
	}

	failures := msg.outcome.Result.Failed()
	m.failed = msg.outcome.Result.FailedIDs()
	text := fmt.Sprintf("%d of %d change(s) failed", len(failures), msg.outcome.Plan.Len())
	if len(failures) > 0 {
		text += ": " + failures[0].Error()
	}
	m.SetMessage(text, true)

	// The commit invalidated the snapshot
	return m.refresh()
}

func (m *EditorModel) back() tea.Msg {
	return SwitchToOwnersMsg{}
}

// View renders the editor
func (m *EditorModel) View() string {
	v := newScreen(fmt.Sprintf("%s  %s", m.owner.ID, m.owner.Name), renderTabs(m.kinds, m.kind))

	switch {
	case m.loading:
		v.muted("Loading...")
	case m.sess == nil:
	case len(m.ids) == 0:
		v.muted(fmt.Sprintf("No %ss to link", m.currentKind().ItemType()))
	default:
		sel := m.sess.Selection()
		start, end := m.paginator.VisibleRange()
		for i := start; i < end; i++ {
			r := m.candidates[i]
			v.line(renderCandidateRow(r, i == m.paginator.Cursor(), sel.IsSelected(r.ID), m.failed.Has(r.ID)))
		}
		v.blank()
		v.line(m.renderStatus())
	}

	if m.confirm.Active() {
		v.blank()
		v.line(m.confirm.View())
	}
	return v.footer(m.Message, m.MessageErr, EditorKeys.Toggle, EditorKeys.Range, EditorKeys.SelectAll,
		EditorKeys.SwitchTab, EditorKeys.Commit, EditorKeys.Copy, EditorKeys.Back)
}

func (m *EditorModel) renderStatus() string {
	sel := m.sess.Selection()
	_, hasAnchor := sel.Anchor()
	out := renderSelectionStatus(sel.Count(), len(m.ids), m.paginator, hasAnchor)

	if m.pending {
		done, total := m.sess.Progress()
		return out + "  " + renderProgress(m.spinner.View(), done, total)
	}
	plan, known := m.changes()
	if preview := renderChanges(plan, known); preview != "" {
		out += "  " + preview
	}
	return out
}
