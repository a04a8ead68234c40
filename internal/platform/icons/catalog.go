package icons

import (
	"strings"
)

// ID is a stable icon identifier.
type ID string

const (
	Generic    ID = "generic"
	Campaign   ID = "campaign"
	Character  ID = "character"
	NPC        ID = "npc"
	Location   ID = "location"
	Encounter  ID = "encounter"
	Note       ID = "note"
	AI         ID = "ai"
	Map        ID = "map"
	Initiative ID = "initiative"
	Roll       ID = "roll"
	Chat       ID = "chat"
	SessionLog ID = "session-log"
	Timeline   ID = "timeline"
	Recap      ID = "recap"
	Layout     ID = "layout"
)

// Definition describes a core icon entry.
type Definition struct {
	ID          ID
	Name        string
	Description string
}

var catalog = []Definition{
	{ID: Generic, Name: "Generic", Description: "Default icon for uncategorized entries."},
	{ID: Campaign, Name: "Campaign", Description: "Campaign overview and metadata."},
	{ID: Character, Name: "Character", Description: "Player characters."},
	{ID: NPC, Name: "NPC", Description: "Non-player characters."},
	{ID: Location, Name: "Location", Description: "Places in the setting."},
	{ID: Encounter, Name: "Encounter", Description: "Planned and running encounters."},
	{ID: Note, Name: "Note", Description: "Notes, canon, and story annotations."},
	{ID: AI, Name: "AI", Description: "Generated content and assistant tools."},
	{ID: Map, Name: "Map", Description: "Battle maps and scene maps."},
	{ID: Initiative, Name: "Initiative", Description: "Turn order tracking."},
	{ID: Roll, Name: "Roll", Description: "Dice rolls and resolution."},
	{ID: Chat, Name: "Chat", Description: "Table chat and communication."},
	{ID: SessionLog, Name: "Session Log", Description: "Chronological session events."},
	{ID: Timeline, Name: "Timeline", Description: "Campaign timeline."},
	{ID: Recap, Name: "Recap", Description: "Post-session summaries."},
	{ID: Layout, Name: "Layout", Description: "Saved workspace layouts."},
}

// Catalog returns a copy of the icon catalog definitions.
func Catalog() []Definition {
	result := make([]Definition, len(catalog))
	copy(result, catalog)
	return result
}

// Known reports whether id is part of the catalog.
func Known(id ID) bool {
	for _, def := range catalog {
		if def.ID == id {
			return true
		}
	}
	return false
}

// CatalogMarkdown renders the icon catalog as markdown.
func CatalogMarkdown() string {
	var builder strings.Builder
	builder.WriteString("# Icon Catalog\n\n")
	builder.WriteString("| Icon ID | Lucide | Name | Description |\n")
	builder.WriteString("| --- | --- | --- | --- |\n")
	for _, def := range catalog {
		builder.WriteString("| ")
		builder.WriteString(string(def.ID))
		builder.WriteString(" | ")
		builder.WriteString(LucideNameOrDefault(def.ID))
		builder.WriteString(" | ")
		builder.WriteString(def.Name)
		builder.WriteString(" | ")
		builder.WriteString(def.Description)
		builder.WriteString(" |\n")
	}
	return builder.String()
}
