package panel

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/louisbranch/gmworkspace/internal/platform/i18n/catalog"
	"github.com/louisbranch/gmworkspace/internal/platform/icons"
)

func TestRegistryEntriesAreUnique(t *testing.T) {
	t.Parallel()

	ids := map[ID]bool{}
	paths := map[string]bool{}
	for _, def := range All() {
		if ids[def.ID] {
			t.Fatalf("duplicate panel id %q", def.ID)
		}
		if paths[def.Path] {
			t.Fatalf("duplicate panel path %q", def.Path)
		}
		ids[def.ID] = true
		paths[def.Path] = true
		if !strings.HasPrefix(def.Path, "/") {
			t.Fatalf("panel %q path %q must be absolute", def.ID, def.Path)
		}
		if len(def.Stages) == 0 {
			t.Fatalf("panel %q has no stages", def.ID)
		}
		if !icons.Known(def.Icon) {
			t.Fatalf("panel %q uses unknown icon %q", def.ID, def.Icon)
		}
	}
	if len(ids) != 14 {
		t.Fatalf("registry size = %d, want 14", len(ids))
	}
}

func TestTitleKeysExistInCatalog(t *testing.T) {
	t.Parallel()

	bundle := catalog.Default()
	for _, def := range All() {
		got, ok := bundle.Message(catalog.BaseLocale, def.TitleKey)
		if !ok {
			t.Fatalf("missing catalog key %q", def.TitleKey)
		}
		if got != def.Title {
			t.Fatalf("catalog title for %q = %q, want %q", def.ID, got, def.Title)
		}
	}
}

func TestForStage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		stage Stage
		want  []ID
	}{
		{StagePrep, []ID{CampaignOverview, Characters, NPCs, Locations, Encounters, Notes, AIGenerator, Timeline}},
		{StageLive, []ID{CampaignOverview, Characters, NPCs, Locations, Encounters, Notes, BattleMap, Initiative, DiceRoller, Chat, SessionLog}},
		{StageRecap, []ID{CampaignOverview, Characters, Notes, AIGenerator, SessionLog, Timeline, RecapSummary}},
		{Stage("combat"), nil},
	}
	for _, tt := range tests {
		var got []ID
		for _, def := range ForStage(tt.stage) {
			got = append(got, def.ID)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ForStage(%q) mismatch (-want +got):\n%s", tt.stage, diff)
		}
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	def, ok := Lookup(BattleMap)
	if !ok {
		t.Fatal("expected battle map definition")
	}
	if def.Path != "/battle-map" || def.Title != "Battle Map" {
		t.Fatalf("Lookup(BattleMap) = %+v", def)
	}
	byPath, ok := LookupPath("/battle-map")
	if !ok || byPath.ID != BattleMap {
		t.Fatalf("LookupPath = %+v, %v", byPath, ok)
	}
	if _, ok := Lookup("missing"); ok {
		t.Fatal("expected unknown id lookup to fail")
	}
	if _, ok := LookupPath("/missing"); ok {
		t.Fatal("expected unknown path lookup to fail")
	}
}

func TestReturnedDefinitionsAreCopies(t *testing.T) {
	t.Parallel()

	def, _ := Lookup(Notes)
	def.Stages[0] = Stage("mutated")
	all := All()
	all[0].Stages[0] = Stage("mutated")
	ForStage(StageLive)[0].Stages[0] = Stage("mutated")

	fresh, _ := Lookup(Notes)
	if diff := cmp.Diff([]Stage{StagePrep, StageLive, StageRecap}, fresh.Stages); diff != "" {
		t.Fatalf("registry corrupted (-want +got):\n%s", diff)
	}
	if !ValidIn(CampaignOverview, StagePrep) {
		t.Fatal("registry corrupted through All()")
	}
}

func TestValidIn(t *testing.T) {
	t.Parallel()

	if !ValidIn(Initiative, StageLive) {
		t.Fatal("initiative should be valid live")
	}
	if ValidIn(Initiative, StagePrep) {
		t.Fatal("initiative should not be valid in prep")
	}
	if ValidIn("missing", StageLive) {
		t.Fatal("unknown panel should never be valid")
	}
}

func TestParseStage(t *testing.T) {
	t.Parallel()

	tests := map[string]Stage{"prep": StagePrep, " LIVE ": StageLive, "Recap": StageRecap}
	for input, want := range tests {
		got, err := ParseStage(input)
		if err != nil {
			t.Fatalf("ParseStage(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseStage(%q) = %q, want %q", input, got, want)
		}
	}
	if _, err := ParseStage("combat"); err == nil {
		t.Fatal("expected error for unknown stage")
	}
	if !StageLive.Valid() || Stage("LIVE").Valid() || Stage("").Valid() {
		t.Fatal("unexpected Valid result")
	}
	if diff := cmp.Diff([]Stage{StagePrep, StageLive, StageRecap}, Stages()); diff != "" {
		t.Fatalf("Stages mismatch (-want +got):\n%s", diff)
	}
}
