package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/panel"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/workspace"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "workspace.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func sampleSnapshot() workspace.Snapshot {
	return workspace.Snapshot{
		LeftTabs: []workspace.TabSnapshot{
			{Title: "Campaign Overview", Path: "/campaign", Icon: "campaign"},
			{Title: "Notes", Path: "/notes"},
		},
		RightTabs:         []workspace.TabSnapshot{{Title: "Chat", Path: "/chat", Icon: "chat"}},
		LeftActiveIndex:   1,
		RightActiveIndex:  0,
		RightPanelVisible: true,
		SplitRatio:        55,
	}
}

func sampleLayout(id, name string) storage.Layout {
	now := time.Date(2026, time.March, 3, 18, 30, 0, 0, time.UTC)
	return storage.Layout{
		ID:          id,
		UserID:      "user-1",
		CampaignID:  "camp-1",
		Name:        name,
		Description: "Table setup",
		Snapshot:    sampleSnapshot(),
		Stage:       panel.StageLive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestReopenKeepsData(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "workspace.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := store.CreateLayout(context.Background(), sampleLayout("l1", "Live")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.GetLayout(context.Background(), "l1"); err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
}

func TestCreateGetLayoutRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	input := sampleLayout("l1", "  Live table  ")
	created, err := store.CreateLayout(context.Background(), input)
	if err != nil {
		t.Fatalf("create layout: %v", err)
	}
	if created.Name != "Live table" {
		t.Fatalf("name = %q, want trimmed", created.Name)
	}
	if created.Kind != storage.KindCustom {
		t.Fatalf("kind = %q, want custom", created.Kind)
	}

	got, err := store.GetLayout(context.Background(), "l1")
	if err != nil {
		t.Fatalf("get layout: %v", err)
	}
	if diff := cmp.Diff(created, got); diff != "" {
		t.Fatalf("layout mismatch (-created +got):\n%s", diff)
	}
	if !got.LastUsedAt.IsZero() {
		t.Fatalf("last used = %v, want zero", got.LastUsedAt)
	}
}

func TestCreateLayoutEmptySnapshotStoresEmptyLists(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	layout := sampleLayout("l1", "Empty")
	layout.Snapshot = workspace.Snapshot{SplitRatio: 50}
	if _, err := store.CreateLayout(context.Background(), layout); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := store.GetLayout(context.Background(), "l1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Snapshot.LeftTabs == nil || len(got.Snapshot.LeftTabs) != 0 {
		t.Fatalf("left tabs = %#v, want empty list", got.Snapshot.LeftTabs)
	}
}

func TestCreateLayoutValidation(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	tests := map[string]func(*storage.Layout){
		"missing id":   func(l *storage.Layout) { l.ID = " " },
		"missing user": func(l *storage.Layout) { l.UserID = "" },
		"missing name": func(l *storage.Layout) { l.Name = "  " },
	}
	for name, mutate := range tests {
		layout := sampleLayout("l1", "Live")
		mutate(&layout)
		if _, err := store.CreateLayout(context.Background(), layout); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestCreateLayoutDuplicateName(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if _, err := store.CreateLayout(ctx, sampleLayout("l1", "Live")); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := store.CreateLayout(ctx, sampleLayout("l2", "Live"))
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate name error = %v, want ErrAlreadyExists", err)
	}
	_, err = store.CreateLayout(ctx, sampleLayout("l1", "Other"))
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate id error = %v, want ErrAlreadyExists", err)
	}

	otherCampaign := sampleLayout("l3", "Live")
	otherCampaign.CampaignID = "camp-2"
	if _, err := store.CreateLayout(ctx, otherCampaign); err != nil {
		t.Fatalf("same name in another campaign: %v", err)
	}
}

func TestGetLayoutNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.GetLayout(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get missing = %v, want ErrNotFound", err)
	}
	if _, err := store.GetLayout(context.Background(), ""); err == nil {
		t.Fatal("expected empty id error")
	}
}

func TestListLayoutsOrderAndScope(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	for _, layout := range []storage.Layout{
		sampleLayout("a", "Alpha"),
		sampleLayout("b", "Bravo"),
		sampleLayout("c", "Charlie"),
	} {
		if _, err := store.CreateLayout(ctx, layout); err != nil {
			t.Fatalf("create %s: %v", layout.ID, err)
		}
	}
	foreign := sampleLayout("f", "Foreign")
	foreign.UserID = "user-2"
	if _, err := store.CreateLayout(ctx, foreign); err != nil {
		t.Fatalf("create foreign: %v", err)
	}
	now := time.Now()
	for i := 0; i < 2; i++ {
		if err := store.RecordLayoutUse(ctx, "b", now); err != nil {
			t.Fatalf("record use: %v", err)
		}
	}
	isDefault := true
	if _, err := store.UpdateLayout(ctx, "c", storage.LayoutPatch{IsDefault: &isDefault}); err != nil {
		t.Fatalf("set default: %v", err)
	}

	layouts, err := store.ListLayouts(ctx, storage.Scope{UserID: "user-1", CampaignID: "camp-1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got []string
	for _, layout := range layouts {
		got = append(got, layout.ID)
	}
	if diff := cmp.Diff([]string{"c", "b", "a"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	empty, err := store.ListLayouts(ctx, storage.Scope{UserID: "user-1"})
	if err != nil {
		t.Fatalf("list user scope: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("user scope layouts = %d, want 0", len(empty))
	}
	if _, err := store.ListLayouts(ctx, storage.Scope{}); err == nil {
		t.Fatal("expected user id error")
	}
}

func TestDefaultToggleIsExclusivePerScopeAndStage(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	first := sampleLayout("first", "First")
	first.IsDefault = true
	if _, err := store.CreateLayout(ctx, first); err != nil {
		t.Fatalf("create first: %v", err)
	}
	prep := sampleLayout("prep", "Prep")
	prep.Stage = panel.StagePrep
	prep.IsDefault = true
	if _, err := store.CreateLayout(ctx, prep); err != nil {
		t.Fatalf("create prep: %v", err)
	}
	second := sampleLayout("second", "Second")
	second.IsDefault = true
	if _, err := store.CreateLayout(ctx, second); err != nil {
		t.Fatalf("create second: %v", err)
	}

	assertDefault := func(id string, want bool) {
		t.Helper()
		layout, err := store.GetLayout(ctx, id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if layout.IsDefault != want {
			t.Fatalf("%s is_default = %v, want %v", id, layout.IsDefault, want)
		}
	}
	assertDefault("first", false)
	assertDefault("second", true)
	assertDefault("prep", true)

	isDefault := true
	if _, err := store.UpdateLayout(ctx, "first", storage.LayoutPatch{IsDefault: &isDefault}); err != nil {
		t.Fatalf("update: %v", err)
	}
	assertDefault("first", true)
	assertDefault("second", false)
	assertDefault("prep", true)
}

func TestUpdateLayout(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	created, err := store.CreateLayout(ctx, sampleLayout("l1", "Live"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	later := created.UpdatedAt.Add(time.Hour)
	store.now = func() time.Time { return later }

	name := "  Renamed "
	description := "New description"
	snapshot := workspace.Snapshot{LeftTabs: []workspace.TabSnapshot{{Title: "Map", Path: "/battle-map"}}, SplitRatio: 70}
	updated, err := store.UpdateLayout(ctx, "l1", storage.LayoutPatch{
		Name:        &name,
		Description: &description,
		Snapshot:    &snapshot,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Renamed" || updated.Description != description {
		t.Fatalf("updated = %+v", updated)
	}
	if !updated.UpdatedAt.Equal(later) {
		t.Fatalf("updated_at = %v, want %v", updated.UpdatedAt, later)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatal("created_at must not change")
	}

	got, err := store.GetLayout(ctx, "l1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(updated, got); diff != "" {
		t.Fatalf("stored mismatch (-updated +got):\n%s", diff)
	}
}

func TestUpdateLayoutErrors(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if _, err := store.CreateLayout(ctx, sampleLayout("l1", "One")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.CreateLayout(ctx, sampleLayout("l2", "Two")); err != nil {
		t.Fatalf("create: %v", err)
	}

	taken := "One"
	if _, err := store.UpdateLayout(ctx, "l2", storage.LayoutPatch{Name: &taken}); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("rename to taken = %v, want ErrAlreadyExists", err)
	}
	blank := " "
	if _, err := store.UpdateLayout(ctx, "l2", storage.LayoutPatch{Name: &blank}); err == nil {
		t.Fatal("expected blank name error")
	}
	if _, err := store.UpdateLayout(ctx, "missing", storage.LayoutPatch{}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("update missing = %v, want ErrNotFound", err)
	}
}

func TestDeleteLayout(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if _, err := store.CreateLayout(ctx, sampleLayout("l1", "Live")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.DeleteLayout(ctx, "l1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetLayout(ctx, "l1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get deleted = %v, want ErrNotFound", err)
	}
	if err := store.DeleteLayout(ctx, "l1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("delete twice = %v, want ErrNotFound", err)
	}
}

func TestRecordLayoutUse(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if _, err := store.CreateLayout(ctx, sampleLayout("l1", "Live")); err != nil {
		t.Fatalf("create: %v", err)
	}
	usedAt := time.Date(2026, time.March, 4, 20, 0, 0, 0, time.UTC)
	if err := store.RecordLayoutUse(ctx, "l1", usedAt); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.RecordLayoutUse(ctx, "l1", usedAt.Add(time.Minute)); err != nil {
		t.Fatalf("record: %v", err)
	}
	got, err := store.GetLayout(ctx, "l1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UsageCount != 2 {
		t.Fatalf("usage = %d, want 2", got.UsageCount)
	}
	if !got.LastUsedAt.Equal(usedAt.Add(time.Minute)) {
		t.Fatalf("last used = %v, want %v", got.LastUsedAt, usedAt.Add(time.Minute))
	}
	if err := store.RecordLayoutUse(ctx, "missing", usedAt); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("record missing = %v, want ErrNotFound", err)
	}
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.ListLayouts(ctx, storage.Scope{UserID: "user-1"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("list canceled = %v, want context.Canceled", err)
	}
	if _, err := store.CreateLayout(ctx, sampleLayout("l1", "Live")); !errors.Is(err, context.Canceled) {
		t.Fatalf("create canceled = %v, want context.Canceled", err)
	}
}

func TestNilStore(t *testing.T) {
	t.Parallel()

	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
	if _, err := store.GetLayout(context.Background(), "l1"); err == nil {
		t.Fatal("expected unconfigured error")
	}
}
