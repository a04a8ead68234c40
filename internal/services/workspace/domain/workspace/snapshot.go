package workspace

import (
	"errors"
	"fmt"
)

// TabSnapshot is the persisted form of a tab. Ids, content and pinning are
// re-derived on restore.
type TabSnapshot struct {
	Title string `json:"title"`
	Path  string `json:"path"`
	Icon  string `json:"icon,omitempty"`
}

// Snapshot is the persisted arrangement of a workspace.
type Snapshot struct {
	LeftTabs          []TabSnapshot `json:"left_tabs"`
	RightTabs         []TabSnapshot `json:"right_tabs"`
	LeftActiveIndex   int           `json:"left_active_index"`
	RightActiveIndex  int           `json:"right_active_index"`
	RightPanelVisible bool          `json:"right_panel_visible"`
	SplitRatio        float64       `json:"split_ratio"`
}

// Clone returns a copy of s that shares no slices with it.
func (s Snapshot) Clone() Snapshot {
	s.LeftTabs = append([]TabSnapshot{}, s.LeftTabs...)
	s.RightTabs = append([]TabSnapshot{}, s.RightTabs...)
	return s
}

// ContentResolver regenerates the content handle of a restored tab.
type ContentResolver[C any] func(path, title string) (C, error)

// Capture projects state onto a snapshot. A panel without an active tab
// records index 0.
func Capture[C any](state State[C]) Snapshot {
	return Snapshot{
		LeftTabs:          captureTabs(state.Left),
		RightTabs:         captureTabs(state.Right),
		LeftActiveIndex:   max(0, state.Left.ActiveIndex()),
		RightActiveIndex:  max(0, state.Right.ActiveIndex()),
		RightPanelVisible: state.RightPanelVisible,
		SplitRatio:        state.SplitRatio,
	}
}

func captureTabs[C any](p Panel[C]) []TabSnapshot {
	out := make([]TabSnapshot, 0, len(p.Tabs))
	for _, tab := range p.Tabs {
		out = append(out, TabSnapshot{Title: tab.Title, Path: tab.Path, Icon: tab.Icon})
	}
	return out
}

// CaptureLayout returns a snapshot of the current workspace.
func (w *Workspace[C]) CaptureLayout() Snapshot {
	return Capture(w.state)
}

// RestoreLayout replaces both panels with the snapshot's tabs. Every tab gets
// a fresh id and is closeable; content comes from resolve. Focus stays where
// it was unless the right panel ends up hidden. If resolve fails the error is
// returned and the workspace is unchanged.
func (w *Workspace[C]) RestoreLayout(snapshot Snapshot, resolve ContentResolver[C]) error {
	if resolve == nil {
		return errors.New("content resolver is required")
	}
	left, err := w.restorePanel(snapshot.LeftTabs, snapshot.LeftActiveIndex, resolve)
	if err != nil {
		return fmt.Errorf("restore left panel: %w", err)
	}
	right, err := w.restorePanel(snapshot.RightTabs, snapshot.RightActiveIndex, resolve)
	if err != nil {
		return fmt.Errorf("restore right panel: %w", err)
	}

	w.state.Left = left
	w.state.Right = right
	w.state.RightPanelVisible = snapshot.RightPanelVisible
	w.state.SplitRatio = snapshot.SplitRatio
	w.state.LayoutVersion++
	w.normalize()
	return nil
}

// restorePanel builds a panel from snapshot tabs. A repeated path keeps its
// first occurrence; the active entry is tracked by path so it survives the
// collapse. An out-of-range index leaves no active tab here, and normalize
// then activates the first tab so a non-empty panel always has one.
func (w *Workspace[C]) restorePanel(tabs []TabSnapshot, activeIndex int, resolve ContentResolver[C]) (Panel[C], error) {
	activePath, hasActive := "", false
	if activeIndex >= 0 && activeIndex < len(tabs) {
		activePath, hasActive = tabs[activeIndex].Path, true
	}

	var p Panel[C]
	for _, snap := range tabs {
		if p.FindPath(snap.Path) >= 0 {
			continue
		}
		content, err := resolve(snap.Path, snap.Title)
		if err != nil {
			return Panel[C]{}, fmt.Errorf("resolve %q: %w", snap.Path, err)
		}
		tab := Tab[C]{
			ID:        w.newID(),
			Title:     snap.Title,
			Path:      snap.Path,
			Content:   content,
			Icon:      snap.Icon,
			Closeable: true,
		}
		p.Tabs = append(p.Tabs, tab)
		if hasActive && snap.Path == activePath {
			p.ActiveTabID = tab.ID
		}
	}
	return p, nil
}
