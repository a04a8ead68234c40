// Package panel is the static registry of workspace panels and the campaign
// stages in which each one may be opened.
package panel

import (
	"github.com/louisbranch/gmworkspace/internal/platform/icons"
)

// ID identifies a panel kind.
type ID string

const (
	CampaignOverview ID = "campaign-overview"
	Characters       ID = "characters"
	NPCs             ID = "npcs"
	Locations        ID = "locations"
	Encounters       ID = "encounters"
	Notes            ID = "notes"
	AIGenerator      ID = "ai-generator"
	BattleMap        ID = "battle-map"
	Initiative       ID = "initiative"
	DiceRoller       ID = "dice-roller"
	Chat             ID = "chat"
	SessionLog       ID = "session-log"
	Timeline         ID = "timeline"
	RecapSummary     ID = "recap-summary"
)

// Definition is the display metadata of a panel.
type Definition struct {
	ID       ID
	Title    string
	TitleKey string
	Icon     icons.ID
	// Path is the logical address used as the tab path.
	Path   string
	Stages []Stage
}

// ValidIn reports whether the panel may be opened during stage.
func (d Definition) ValidIn(stage Stage) bool {
	for _, s := range d.Stages {
		if s == stage {
			return true
		}
	}
	return false
}

func (d Definition) clone() Definition {
	d.Stages = append([]Stage(nil), d.Stages...)
	return d
}

var (
	allStages = []Stage{StagePrep, StageLive, StageRecap}
	prepLive  = []Stage{StagePrep, StageLive}
	liveOnly  = []Stage{StageLive}
)

var registry = []Definition{
	define(CampaignOverview, "Campaign Overview", icons.Campaign, "/campaign", allStages),
	define(Characters, "Characters", icons.Character, "/characters", allStages),
	define(NPCs, "NPCs", icons.NPC, "/npcs", prepLive),
	define(Locations, "Locations", icons.Location, "/locations", prepLive),
	define(Encounters, "Encounters", icons.Encounter, "/encounters", prepLive),
	define(Notes, "Notes", icons.Note, "/notes", allStages),
	define(AIGenerator, "AI Generator", icons.AI, "/ai", []Stage{StagePrep, StageRecap}),
	define(BattleMap, "Battle Map", icons.Map, "/battle-map", liveOnly),
	define(Initiative, "Initiative", icons.Initiative, "/initiative", liveOnly),
	define(DiceRoller, "Dice Roller", icons.Roll, "/dice", liveOnly),
	define(Chat, "Chat", icons.Chat, "/chat", liveOnly),
	define(SessionLog, "Session Log", icons.SessionLog, "/session-log", []Stage{StageLive, StageRecap}),
	define(Timeline, "Timeline", icons.Timeline, "/timeline", []Stage{StagePrep, StageRecap}),
	define(RecapSummary, "Recap Summary", icons.Recap, "/recap", []Stage{StageRecap}),
}

func define(id ID, title string, icon icons.ID, path string, valid []Stage) Definition {
	return Definition{
		ID:       id,
		Title:    title,
		TitleKey: "panel." + string(id) + ".title",
		Icon:     icon,
		Path:     path,
		Stages:   valid,
	}
}

// Lookup returns the definition for id.
func Lookup(id ID) (Definition, bool) {
	for _, def := range registry {
		if def.ID == id {
			return def.clone(), true
		}
	}
	return Definition{}, false
}

// LookupPath returns the definition whose Path equals path.
func LookupPath(path string) (Definition, bool) {
	for _, def := range registry {
		if def.Path == path {
			return def.clone(), true
		}
	}
	return Definition{}, false
}

// All returns every definition in registry order.
func All() []Definition {
	out := make([]Definition, 0, len(registry))
	for _, def := range registry {
		out = append(out, def.clone())
	}
	return out
}

// ForStage returns the panels valid during stage, in registry order.
func ForStage(stage Stage) []Definition {
	var out []Definition
	for _, def := range registry {
		if def.ValidIn(stage) {
			out = append(out, def.clone())
		}
	}
	return out
}

// ValidIn reports whether panel id exists and may be opened during stage.
func ValidIn(id ID, stage Stage) bool {
	def, ok := Lookup(id)
	return ok && def.ValidIn(stage)
}
