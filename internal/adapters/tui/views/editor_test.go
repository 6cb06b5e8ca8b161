package views

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"seqtag/internal/adapters/memory"
	"seqtag/internal/application/session"
	"seqtag/internal/domain"
	"seqtag/internal/ports"
)

var sample = domain.Record{Type: domain.RecordTypeSample, ID: "S-1", Name: "Nasal swab"}

// rejectingStore fails adds for the listed ids
type rejectingStore struct {
	*memory.Store
	reject map[string]bool
}

func (s *rejectingStore) ApplyAdd(ctx context.Context, rel domain.Relation, id string) error {
	if s.reject[id] {
		return ports.ErrConflict
	}
	return s.Store.ApplyAdd(ctx, rel, id)
}

// flakyReadStore serves a fixed number of reads, then reports the store
// as unavailable
type flakyReadStore struct {
	*rejectingStore
	reads atomic.Int32
}

func (s *flakyReadStore) FetchCurrent(ctx context.Context, rel domain.Relation) ([]string, error) {
	if s.reads.Add(-1) < 0 {
		return nil, ports.ErrUnavailable
	}
	return s.rejectingStore.FetchCurrent(ctx, rel)
}

func newTestStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	if err := s.CreateSample(ctx, domain.Sample{ID: "S-1", Name: "Nasal swab"}); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if err := s.CreateSample(ctx, domain.Sample{ID: "S-2", Name: "Throat swab"}); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	for _, id := range []string{"f1", "f2", "f3", "f4", "f5"} {
		if err := s.CreateFile(ctx, domain.File{ID: id, Name: id + ".fastq.gz"}); err != nil {
			t.Fatalf("CreateFile failed: %v", err)
		}
	}
	for _, id := range []string{"flu-a", "rsv"} {
		if err := s.CreateLabel(ctx, domain.Label{ID: id}); err != nil {
			t.Fatalf("CreateLabel failed: %v", err)
		}
	}
	if err := s.ApplyAdd(ctx, domain.Relation{Kind: domain.RelationFileSample, OwnerID: "S-1"}, "f2"); err != nil {
		t.Fatalf("ApplyAdd failed: %v", err)
	}
	if err := s.ApplyAdd(ctx, domain.Relation{Kind: domain.RelationSampleLabel, OwnerID: "S-1"}, "rsv"); err != nil {
		t.Fatalf("ApplyAdd failed: %v", err)
	}
	return s
}

func openEditor(t *testing.T, repo ports.RecordRepository, rel ports.RelationStore) *EditorModel {
	t.Helper()
	m := NewEditorModel(repo, func(r domain.Relation) *session.Session {
		return session.New(rel, r, nil, nil)
	})
	drain(t, m, m.Open(sample))
	if m.loading {
		t.Fatal("editor still loading after open")
	}
	return m
}

// drain runs cmd and feeds editor messages back into m until nothing is
// left. Messages meant for the app are returned. Spinner ticks are dropped.
func drain(t *testing.T, m *EditorModel, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	var out []tea.Msg
	switch msg := cmd().(type) {
	case nil, spinner.TickMsg:
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, drain(t, m, c)...)
		}
	case relationLoadedMsg, commitSettledMsg, snapshotRefreshedMsg:
		_, next := m.Update(msg)
		out = append(out, drain(t, m, next)...)
	default:
		out = append(out, msg)
	}
	return out
}

func press(t *testing.T, m *EditorModel, keys ...tea.KeyMsg) []tea.Msg {
	t.Helper()
	var out []tea.Msg
	for _, k := range keys {
		_, cmd := m.Update(k)
		out = append(out, drain(t, m, cmd)...)
	}
	return out
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestEditor_OpenSeedsSelectionFromStore(t *testing.T) {
	store := newTestStore(t)
	m := openEditor(t, store, store)

	if m.Relation().Kind != domain.RelationFileSample {
		t.Errorf("expected file relation first, got %s", m.Relation().Kind)
	}
	sel := m.sess.Selection()
	if sel.Count() != 1 || !sel.IsSelected("f2") {
		t.Errorf("expected only f2 selected, got %v", sel.SelectedIn(m.ids))
	}
	if _, ok := sel.Anchor(); ok {
		t.Error("a fresh list must not have an anchor")
	}
	if !strings.Contains(m.View(), "1/5 selected") {
		t.Errorf("status line missing from view:\n%s", m.View())
	}
}

func TestEditor_SelectionKeys(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		want []string
	}{
		{
			name: "toggle adds and removes",
			keys: []tea.KeyMsg{space, down, space},
			want: []string{"f1"},
		},
		{
			name: "range from anchor to cursor",
			keys: []tea.KeyMsg{space, down, down, down, runeKey("v")},
			want: []string{"f1", "f2", "f3", "f4"},
		},
		{
			name: "range leaves out an already selected end",
			keys: []tea.KeyMsg{space, down, runeKey("v")},
			want: []string{"f1"},
		},
		{
			name: "range without anchor toggles",
			keys: []tea.KeyMsg{down, down, runeKey("v")},
			want: []string{"f2", "f3"},
		},
		{
			name: "select all",
			keys: []tea.KeyMsg{runeKey("a")},
			want: []string{"f1", "f2", "f3", "f4", "f5"},
		},
		{
			name: "select all twice clears",
			keys: []tea.KeyMsg{runeKey("a"), runeKey("a")},
			want: nil,
		},
		{
			name: "clear",
			keys: []tea.KeyMsg{space, runeKey("c")},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			m := openEditor(t, store, store)
			press(t, m, tt.keys...)

			got := m.sess.Selection().SelectedIn(m.ids)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEditor_CommitSuccessReturnsToOwners(t *testing.T) {
	store := newTestStore(t)
	m := openEditor(t, store, store)

	// select f1, unselect f2
	msgs := press(t, m, space, down, space, enter)

	if len(msgs) != 1 {
		t.Fatalf("expected one navigation message, got %v", msgs)
	}
	back, ok := msgs[0].(SwitchToOwnersMsg)
	if !ok {
		t.Fatalf("expected SwitchToOwnersMsg, got %T", msgs[0])
	}
	if !strings.Contains(back.Message, "+1 -1") {
		t.Errorf("unexpected message %q", back.Message)
	}
	if m.Pending() {
		t.Error("editor still pending after settle")
	}

	ids, err := store.FetchCurrent(context.Background(), m.Relation())
	if err != nil {
		t.Fatalf("FetchCurrent failed: %v", err)
	}
	if strings.Join(ids, ",") != "f1" {
		t.Errorf("expected [f1] stored, got %v", ids)
	}
}

func TestEditor_CommitFailureKeepsEditorOpen(t *testing.T) {
	store := newTestStore(t)
	rel := &rejectingStore{Store: store, reject: map[string]bool{"f3": true}}
	m := openEditor(t, store, rel)

	msgs := press(t, m, runeKey("a"), enter)

	if len(msgs) != 0 {
		t.Fatalf("editor must stay open on failure, got %v", msgs)
	}
	if !m.MessageErr || !strings.Contains(m.Message, "1 of 4") {
		t.Errorf("unexpected message %q", m.Message)
	}
	if !m.failed.Has("f3") || m.failed.Len() != 1 {
		t.Errorf("expected f3 marked failed, got %v", m.failed)
	}
	if m.sess.Selection().Count() != 5 {
		t.Errorf("selection must survive a failed commit, got %d", m.sess.Selection().Count())
	}
	if !strings.Contains(m.View(), "! ") {
		t.Error("failed row is not highlighted")
	}

	ids, _ := store.FetchCurrent(context.Background(), m.Relation())
	if strings.Join(ids, ",") != "f1,f2,f4,f5" {
		t.Errorf("successful adds must be kept, got %v", ids)
	}
}

func TestEditor_CommitDisabledWhilePending(t *testing.T) {
	store := newTestStore(t)
	m := openEditor(t, store, store)

	_, cmd := m.Update(space)
	drain(t, m, cmd)
	_, commit := m.Update(enter)
	if commit == nil || !m.Pending() {
		t.Fatal("expected a commit to start")
	}

	for _, k := range []tea.KeyMsg{enter, tab, esc} {
		if _, cmd := m.Update(k); cmd != nil {
			t.Errorf("%s must do nothing while a save is pending", k)
		}
	}
	if !m.MessageErr {
		t.Error("expected a pending notice")
	}

	msgs := drain(t, m, commit)
	if len(msgs) != 1 {
		t.Fatalf("expected the commit to settle, got %v", msgs)
	}
}

func TestEditor_TabSwitchesRelationAndResets(t *testing.T) {
	store := newTestStore(t)
	m := openEditor(t, store, store)

	press(t, m, space, runeKey("a"))
	press(t, m, tab)

	if m.Relation().Kind != domain.RelationSampleLabel {
		t.Fatalf("expected label relation, got %s", m.Relation().Kind)
	}
	sel := m.sess.Selection()
	if got := sel.SelectedIn(m.ids); strings.Join(got, ",") != "rsv" {
		t.Errorf("expected stored labels only, got %v", got)
	}
	if _, ok := sel.Anchor(); ok {
		t.Error("anchor must be dropped on tab switch")
	}
	if m.paginator.Cursor() != 0 {
		t.Error("cursor must reset on tab switch")
	}

	press(t, m, tab)
	if m.Relation().Kind != domain.RelationFileSample {
		t.Errorf("expected tab to wrap around, got %s", m.Relation().Kind)
	}
}

func TestEditor_StaleLoadIsIgnored(t *testing.T) {
	store := newTestStore(t)
	m := openEditor(t, store, store)

	stale := m.startSession()
	press(t, m, tab)
	drain(t, m, stale)

	if m.Relation().Kind != domain.RelationSampleLabel {
		t.Fatalf("expected label relation, got %s", m.Relation().Kind)
	}
	if len(m.ids) != 2 {
		t.Errorf("stale file list replaced labels: %v", m.ids)
	}
}

func TestEditor_Copy(t *testing.T) {
	store := newTestStore(t)
	m := openEditor(t, store, store)

	orig := copyToClipboard
	t.Cleanup(func() { copyToClipboard = orig })

	var copied string
	copyToClipboard = func(s string) error {
		copied = s
		return nil
	}

	press(t, m, space, runeKey("y"))
	if copied != "f1\nf2" {
		t.Errorf("expected ids in list order, got %q", copied)
	}

	copyToClipboard = func(string) error { return errors.New("no clipboard") }
	press(t, m, runeKey("y"))
	if !m.MessageErr {
		t.Error("expected copy error to be shown")
	}
}

func TestEditor_BackConfirmsUnsavedChanges(t *testing.T) {
	store := newTestStore(t)
	m := openEditor(t, store, store)

	if msgs := press(t, m, esc); len(msgs) != 1 {
		t.Fatalf("clean editor should close at once, got %v", msgs)
	}

	press(t, m, space)
	if msgs := press(t, m, esc); len(msgs) != 0 {
		t.Fatalf("expected a confirmation prompt, got %v", msgs)
	}
	if !m.confirm.Active() {
		t.Fatal("confirmation not shown")
	}

	// n keeps editing, a second esc asks again, y discards
	press(t, m, runeKey("n"))
	if m.confirm.Active() {
		t.Error("prompt should close on n")
	}
	press(t, m, esc)
	msgs := press(t, m, runeKey("y"))
	if len(msgs) != 1 {
		t.Fatalf("expected SwitchToOwnersMsg, got %v", msgs)
	}
	if _, ok := msgs[0].(SwitchToOwnersMsg); !ok {
		t.Errorf("expected SwitchToOwnersMsg, got %T", msgs[0])
	}
}

var (
	_ tea.Model = (*EditorModel)(nil)
	_ tea.Model = (*OwnersModel)(nil)
	_ tea.Model = (*HelpModel)(nil)
)

func TestEditor_InitStartsNothing(t *testing.T) {
	if cmd := NewEditorModel(nil, nil).Init(); cmd != nil {
		t.Error("loading starts in Open, Init must return nil")
	}
}

func TestEditor_FailedReReadAfterCommitIsReported(t *testing.T) {
	store := newTestStore(t)
	rel := &flakyReadStore{rejectingStore: &rejectingStore{Store: store, reject: map[string]bool{"f3": true}}}
	rel.reads.Store(1)
	m := openEditor(t, store, rel)

	// The commit's own read succeeds, the re-read after the failed add does not
	rel.reads.Store(1)
	if msgs := press(t, m, runeKey("a"), enter); len(msgs) != 0 {
		t.Fatalf("editor must stay open, got %v", msgs)
	}

	if !m.MessageErr {
		t.Fatal("expected an error message")
	}
	for _, want := range []string{"1 of 4", "re-reading links failed", "store unavailable"} {
		if !strings.Contains(m.Message, want) {
			t.Errorf("message %q does not contain %q", m.Message, want)
		}
	}
	view := m.View()
	if strings.Contains(view, "unsaved") {
		t.Errorf("no change preview without stored links, got:\n%s", view)
	}
	if !strings.Contains(view, "stored links unknown") {
		t.Errorf("view does not flag the unknown links:\n%s", view)
	}

	if msgs := press(t, m, esc); len(msgs) != 0 {
		t.Fatalf("esc must ask before discarding, got %v", msgs)
	}
	if !m.confirm.Active() || !strings.Contains(m.confirm.View(), "could not be read") {
		t.Fatalf("unexpected prompt %q", m.confirm.View())
	}
	press(t, m, runeKey("n"))

	rel.reads.Store(10)
	press(t, m, runeKey("r"))
	if m.MessageErr {
		t.Errorf("re-read should clear the error, got %q", m.Message)
	}
	plan, known := m.changes()
	if !known {
		t.Fatal("snapshot still unknown after re-read")
	}
	if got := strings.Join(domain.Sorted(plan.ToAdd), ","); got != "f3" || plan.ToRemove.Len() != 0 {
		t.Errorf("expected only f3 pending, got +%v -%v", got, domain.Sorted(plan.ToRemove))
	}
	if !strings.Contains(m.View(), "+1 -0 unsaved") {
		t.Error("preview missing after re-read")
	}
}
