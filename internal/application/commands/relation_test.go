package commands

import (
	"context"
	"errors"
	"strings"
	"testing"

	"seqtag/internal/application"
	"seqtag/internal/application/batch"
	"seqtag/internal/domain"
	"seqtag/internal/ports"
)

var filesOfS1 = domain.Relation{Kind: domain.RelationFileSample, OwnerID: "S-1"}

func linked(t *testing.T, s ports.RelationSource, rel domain.Relation) []string {
	t.Helper()
	ids, err := s.FetchCurrent(context.Background(), rel)
	if err != nil {
		t.Fatalf("FetchCurrent failed: %v", err)
	}
	return ids
}

func TestParseRelationMode(t *testing.T) {
	tests := []struct {
		in      string
		want    RelationMode
		wantErr bool
	}{
		{"set", ModeSet, false},
		{"", ModeSet, false},
		{"ADD", ModeAdd, false},
		{"unlink", ModeRemove, false},
		{"toggle", ModeSet, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRelationMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRelationMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRelationMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetRelationCommand_Validate(t *testing.T) {
	tests := []struct {
		name   string
		rel    domain.Relation
		mode   RelationMode
		ids    []string
		errMsg string
	}{
		{name: "set to empty is allowed", rel: filesOfS1, mode: ModeSet},
		{name: "add", rel: filesOfS1, mode: ModeAdd, ids: []string{"F1"}},
		{name: "unknown kind", rel: domain.Relation{OwnerID: "S-1"}, mode: ModeSet, errMsg: "relation kind is required"},
		{name: "missing owner", rel: domain.Relation{Kind: domain.RelationSampleLabel}, mode: ModeSet, errMsg: "owner ID is required"},
		{name: "bad item", rel: filesOfS1, mode: ModeSet, ids: []string{"F1", "not valid"}, errMsg: "invalid item ID"},
		{name: "add nothing", rel: filesOfS1, mode: ModeAdd, errMsg: "at least one item ID is required to add"},
		{name: "remove nothing", rel: filesOfS1, mode: ModeRemove, errMsg: "at least one item ID is required to remove"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSetRelationCommand(nil, nil, nil, tt.rel, tt.mode, tt.ids).Validate()
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("expected error containing %q, got %v", tt.errMsg, err)
			}
		})
	}
}

func TestSetRelationCommand_Modes(t *testing.T) {
	tests := []struct {
		name        string
		initial     []string
		mode        RelationMode
		ids         []string
		wantMembers []string
		wantAdd     int
		wantRemove  int
	}{
		{
			name:        "set replaces membership",
			initial:     []string{"F1", "F2"},
			mode:        ModeSet,
			ids:         []string{"F2", "F3"},
			wantMembers: []string{"F2", "F3"},
			wantAdd:     1,
			wantRemove:  1,
		},
		{
			name:        "add keeps existing links",
			initial:     []string{"F1"},
			mode:        ModeAdd,
			ids:         []string{"F1", "F3"},
			wantMembers: []string{"F1", "F3"},
			wantAdd:     1,
		},
		{
			name:        "remove ignores unlinked ids",
			initial:     []string{"F1", "F2"},
			mode:        ModeRemove,
			ids:         []string{"F2", "F3"},
			wantMembers: []string{"F1"},
			wantRemove:  1,
		},
		{
			name:        "set to current is a no-op",
			initial:     []string{"F1"},
			mode:        ModeSet,
			ids:         []string{"F1"},
			wantMembers: []string{"F1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := seededStore(t)
			for _, id := range tt.initial {
				if err := store.ApplyAdd(ctx, filesOfS1, id); err != nil {
					t.Fatalf("seed link failed: %v", err)
				}
			}

			res, err := NewSetRelationCommand(store, nil, nil, filesOfS1, tt.mode, tt.ids).Execute(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.HasFailures() {
				t.Fatalf("unexpected failures: %v", res.Result.Failed())
			}
			if res.Plan.ToAdd.Len() != tt.wantAdd || res.Plan.ToRemove.Len() != tt.wantRemove {
				t.Errorf("expected plan +%d -%d, got +%d -%d", tt.wantAdd, tt.wantRemove,
					res.Plan.ToAdd.Len(), res.Plan.ToRemove.Len())
			}
			if got := strings.Join(res.Members, ","); got != strings.Join(tt.wantMembers, ",") {
				t.Errorf("expected members %v, got %v", tt.wantMembers, res.Members)
			}
			if got := strings.Join(linked(t, store, filesOfS1), ","); got != strings.Join(tt.wantMembers, ",") {
				t.Errorf("store has %s, want %v", got, tt.wantMembers)
			}
		})
	}
}

func TestSetRelationCommand_DryRunDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	if err := store.ApplyAdd(ctx, filesOfS1, "F1"); err != nil {
		t.Fatalf("seed link failed: %v", err)
	}

	cmd := NewSetRelationCommand(store, nil, nil, filesOfS1, ModeSet, []string{"F2", "F3"})
	cmd.DryRun = true
	res, err := cmd.Execute(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.DryRun || res.Plan.ToAdd.Len() != 2 || res.Plan.ToRemove.Len() != 1 {
		t.Errorf("unexpected dry run plan: %+v", res.Plan)
	}
	if got := strings.Join(res.Members, ","); got != "F2,F3" {
		t.Errorf("expected predicted members F2,F3, got %s", got)
	}
	if !strings.HasPrefix(res.Message, "Dry run") {
		t.Errorf("unexpected message %q", res.Message)
	}
	if got := linked(t, store, filesOfS1); len(got) != 1 || got[0] != "F1" {
		t.Errorf("dry run must not write, store has %v", got)
	}
}

// failingStore fails ApplyAdd for selected items
type failingStore struct {
	ports.Store
	fail map[string]error
}

func (f *failingStore) ApplyAdd(ctx context.Context, rel domain.Relation, id string) error {
	if err := f.fail[id]; err != nil {
		return err
	}
	return f.Store.ApplyAdd(ctx, rel, id)
}

func TestSetRelationCommand_PartialFailure(t *testing.T) {
	for _, mode := range []RelationMode{ModeSet, ModeAdd} {
		t.Run(mode.String(), func(t *testing.T) {
			ctx := context.Background()
			store := &failingStore{
				Store: seededStore(t),
				fail:  map[string]error{"F2": ports.ErrUnavailable},
			}

			exec := batch.NewExecutor[string](batch.WithChunkSize(1))
			res, err := NewSetRelationCommand(store, exec, nil, filesOfS1, mode, []string{"F1", "F2", "F3"}).Execute(ctx)
			if err != nil {
				t.Fatalf("partial failure must not be an error: %v", err)
			}
			if !res.HasFailures() {
				t.Fatal("expected failures")
			}
			failed := res.Result.Failed()
			if len(failed) != 1 || failed[0].ID != "F2" || failed[0].Kind != batch.KindUnavailable {
				t.Errorf("unexpected failures %v", failed)
			}
			if res.Members != nil {
				t.Errorf("members are only re-read after full success, got %v", res.Members)
			}
			if !strings.Contains(res.Message, "(1 failed)") {
				t.Errorf("unexpected message %q", res.Message)
			}
			if got := strings.Join(linked(t, store, filesOfS1), ","); got != "F1,F3" {
				t.Errorf("expected the other links to be applied, got %s", got)
			}
		})
	}
}

func TestSetRelationCommand_UnknownOwner(t *testing.T) {
	store := seededStore(t)
	rel := domain.Relation{Kind: domain.RelationSampleLabel, OwnerID: "S-404"}

	_, err := NewSetRelationCommand(store, nil, nil, rel, ModeAdd, []string{"rsv"}).Execute(context.Background())
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	var relErr *application.RelationError
	if !errors.As(err, &relErr) {
		t.Errorf("expected RelationError, got %T", err)
	}
}

func TestShowRelationCommand(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	rel := domain.Relation{Kind: domain.RelationSampleLabel, OwnerID: "S-1"}
	for _, id := range []string{"rsv", "flu-a"} {
		if err := store.ApplyAdd(ctx, rel, id); err != nil {
			t.Fatalf("seed link failed: %v", err)
		}
	}

	res, err := NewShowRelationCommand(store, rel).Execute(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 2 || res.Items[0].ID != "flu-a" || res.Items[0].Name != "Influenza A" {
		t.Errorf("unexpected items %v", res.Items)
	}
	if res.Message != "2 label(s) linked to sample S-1" {
		t.Errorf("unexpected message %q", res.Message)
	}

	if _, err := NewShowRelationCommand(store, domain.Relation{Kind: domain.RelationSampleLabel}).Execute(ctx); err == nil {
		t.Error("expected validation error for missing owner")
	}
}
