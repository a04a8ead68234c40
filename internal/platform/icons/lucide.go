package icons

const lucideSymbolPrefix = "lucide-"

var lucideIconNames = map[ID]string{
	Generic:    "sparkle",
	Campaign:   "book-open",
	Character:  "square-user",
	NPC:        "users",
	Location:   "map-pin",
	Encounter:  "swords",
	Note:       "scroll",
	AI:         "bot",
	Map:        "map",
	Initiative: "list-ordered",
	Roll:       "dices",
	Chat:       "message-circle",
	SessionLog: "notebook-pen",
	Timeline:   "clock",
	Recap:      "book-check",
	Layout:     "layout-panel-left",
}

// LucideName returns the Lucide icon name for a core icon identifier.
func LucideName(id ID) (string, bool) {
	name, ok := lucideIconNames[id]
	return name, ok
}

// LucideNameOrDefault provides a stable Lucide name even when the icon ID is unknown.
func LucideNameOrDefault(id ID) string {
	if name, ok := lucideIconNames[id]; ok {
		return name
	}
	return "sparkle"
}

// LucideSymbolID returns the sprite symbol ID for a Lucide icon name.
func LucideSymbolID(name string) string {
	return lucideSymbolPrefix + name
}
