package tools

import (
	"time"

	"github.com/a-h/templ"

	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/panel"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/workspace"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/session"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/storage"
)

// TabResult describes one open tab.
type TabResult struct {
	ID        string `json:"id" jsonschema:"tab identifier"`
	Title     string `json:"title" jsonschema:"tab title"`
	Path      string `json:"path" jsonschema:"logical path of the view"`
	Icon      string `json:"icon,omitempty" jsonschema:"icon identifier"`
	Closeable bool   `json:"closeable" jsonschema:"false for pinned tabs"`
}

// PanelResult describes one side of the workspace.
type PanelResult struct {
	Tabs        []TabResult `json:"tabs" jsonschema:"tabs in display order"`
	ActiveTabID string      `json:"active_tab_id,omitempty" jsonschema:"active tab identifier, empty when the panel has no tabs"`
}

// StateResult describes the whole workspace.
type StateResult struct {
	Stage             string      `json:"stage" jsonschema:"campaign stage (prep, live, recap)"`
	Left              PanelResult `json:"left" jsonschema:"left panel"`
	Right             PanelResult `json:"right" jsonschema:"right panel"`
	FocusedPanel      string      `json:"focused_panel" jsonschema:"focused side (left, right)"`
	RightPanelVisible bool        `json:"right_panel_visible" jsonschema:"whether the right panel is shown"`
	SplitRatio        float64     `json:"split_ratio" jsonschema:"percent of the width given to the left panel"`
	LayoutVersion     int         `json:"layout_version" jsonschema:"increases on every layout restore"`
}

// TabSnapshotResult is the persisted form of a tab.
type TabSnapshotResult struct {
	Title string `json:"title" jsonschema:"tab title"`
	Path  string `json:"path" jsonschema:"logical path of the view"`
	Icon  string `json:"icon,omitempty" jsonschema:"icon identifier"`
}

// SnapshotResult is the persisted arrangement of a layout.
type SnapshotResult struct {
	LeftTabs          []TabSnapshotResult `json:"left_tabs" jsonschema:"left panel tabs"`
	RightTabs         []TabSnapshotResult `json:"right_tabs" jsonschema:"right panel tabs"`
	LeftActiveIndex   int                 `json:"left_active_index" jsonschema:"index of the active left tab"`
	RightActiveIndex  int                 `json:"right_active_index" jsonschema:"index of the active right tab"`
	RightPanelVisible bool                `json:"right_panel_visible" jsonschema:"whether the right panel is shown"`
	SplitRatio        float64             `json:"split_ratio" jsonschema:"percent of the width given to the left panel"`
}

// LayoutResult describes a saved layout.
type LayoutResult struct {
	ID          string         `json:"id,omitempty" jsonschema:"layout identifier, empty for templates"`
	Name        string         `json:"name" jsonschema:"layout name"`
	Description string         `json:"description,omitempty" jsonschema:"layout description"`
	CampaignID  string         `json:"campaign_id,omitempty" jsonschema:"campaign identifier"`
	Stage       string         `json:"stage,omitempty" jsonschema:"stage the layout belongs to, empty for any stage"`
	Kind        string         `json:"kind" jsonschema:"custom or template"`
	IsDefault   bool           `json:"is_default" jsonschema:"whether the layout is the default of its scope and stage"`
	UsageCount  int            `json:"usage_count" jsonschema:"number of times the layout was loaded"`
	CreatedAt   string         `json:"created_at,omitempty" jsonschema:"RFC3339 creation time"`
	UpdatedAt   string         `json:"updated_at,omitempty" jsonschema:"RFC3339 update time"`
	LastUsedAt  string         `json:"last_used_at,omitempty" jsonschema:"RFC3339 time of the last load"`
	Snapshot    SnapshotResult `json:"snapshot" jsonschema:"stored arrangement"`
}

// PanelDefinitionResult describes a registered panel.
type PanelDefinitionResult struct {
	ID     string   `json:"id" jsonschema:"panel identifier"`
	Title  string   `json:"title" jsonschema:"localized panel title"`
	Path   string   `json:"path" jsonschema:"logical path opened by the panel"`
	Icon   string   `json:"icon" jsonschema:"icon identifier"`
	Stages []string `json:"stages" jsonschema:"stages where the panel is available"`
}

// NewStateResult converts a session event to its wire form.
func NewStateResult(event session.Event) StateResult {
	return StateResult{
		Stage:             string(event.Stage),
		Left:              panelResult(event.State.Left),
		Right:             panelResult(event.State.Right),
		FocusedPanel:      string(event.State.FocusedPanel),
		RightPanelVisible: event.State.RightPanelVisible,
		SplitRatio:        event.State.SplitRatio,
		LayoutVersion:     event.State.LayoutVersion,
	}
}

func panelResult(p workspace.Panel[templ.Component]) PanelResult {
	tabs := make([]TabResult, 0, len(p.Tabs))
	for _, tab := range p.Tabs {
		tabs = append(tabs, TabResult{
			ID:        tab.ID,
			Title:     tab.Title,
			Path:      tab.Path,
			Icon:      tab.Icon,
			Closeable: tab.Closeable,
		})
	}
	return PanelResult{Tabs: tabs, ActiveTabID: p.ActiveTabID}
}

func snapshotResult(s workspace.Snapshot) SnapshotResult {
	return SnapshotResult{
		LeftTabs:          tabSnapshotResults(s.LeftTabs),
		RightTabs:         tabSnapshotResults(s.RightTabs),
		LeftActiveIndex:   s.LeftActiveIndex,
		RightActiveIndex:  s.RightActiveIndex,
		RightPanelVisible: s.RightPanelVisible,
		SplitRatio:        s.SplitRatio,
	}
}

func tabSnapshotResults(tabs []workspace.TabSnapshot) []TabSnapshotResult {
	out := make([]TabSnapshotResult, 0, len(tabs))
	for _, tab := range tabs {
		out = append(out, TabSnapshotResult{Title: tab.Title, Path: tab.Path, Icon: tab.Icon})
	}
	return out
}

// NewLayoutResult converts a stored layout to its wire form.
func NewLayoutResult(l storage.Layout) LayoutResult {
	return LayoutResult{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		CampaignID:  l.CampaignID,
		Stage:       string(l.Stage),
		Kind:        string(l.Kind),
		IsDefault:   l.IsDefault,
		UsageCount:  l.UsageCount,
		CreatedAt:   formatTime(l.CreatedAt),
		UpdatedAt:   formatTime(l.UpdatedAt),
		LastUsedAt:  formatTime(l.LastUsedAt),
		Snapshot:    snapshotResult(l.Snapshot),
	}
}

func panelDefinitionResult(def panel.Definition, title string) PanelDefinitionResult {
	stages := make([]string, 0, len(def.Stages))
	for _, stage := range def.Stages {
		stages = append(stages, string(stage))
	}
	return PanelDefinitionResult{
		ID:     string(def.ID),
		Title:  title,
		Path:   def.Path,
		Icon:   string(def.Icon),
		Stages: stages,
	}
}

func formatTime(value time.Time) string {
	if value.IsZero() || value.UnixMilli() == 0 {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
