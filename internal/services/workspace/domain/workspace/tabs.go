package workspace

import "math"

// OpenLeftTab opens t in the left panel. See Open.
func (w *Workspace[C]) OpenLeftTab(t NewTab[C]) string {
	return w.Open(Left, t)
}

// OpenRightTab opens t in the right panel and shows it. See Open.
func (w *Workspace[C]) OpenRightTab(t NewTab[C]) string {
	return w.Open(Right, t)
}

// Open activates the tab with t.Path on side, appending a new tab at the end
// of the panel when none exists. Focus moves to side. It returns the id of
// the active tab.
func (w *Workspace[C]) Open(side Side, t NewTab[C]) string {
	p := w.panel(side)
	if i := p.FindPath(t.Path); i >= 0 {
		p.ActiveTabID = p.Tabs[i].ID
	} else {
		tab := Tab[C]{
			ID:        w.newID(),
			Title:     t.Title,
			Path:      t.Path,
			Content:   t.Content,
			Icon:      t.Icon,
			Closeable: t.Closeable == nil || *t.Closeable,
		}
		p.Tabs = append(p.Tabs, tab)
		p.ActiveTabID = tab.ID
	}
	w.state.FocusedPanel = side
	w.normalize()
	return p.ActiveTabID
}

// OpenTab opens t where the user is working. An existing tab with the same
// path is activated, searching the left panel before the right. Otherwise
// the tab goes to the right panel only when it is visible and focused, and
// to the left panel in every other case.
func (w *Workspace[C]) OpenTab(t NewTab[C]) string {
	switch {
	case w.state.Left.FindPath(t.Path) >= 0:
		return w.Open(Left, t)
	case w.state.Right.FindPath(t.Path) >= 0:
		return w.Open(Right, t)
	case w.state.RightPanelVisible && w.state.FocusedPanel == Right:
		return w.Open(Right, t)
	default:
		return w.Open(Left, t)
	}
}

// CloseLeftTab closes a left tab. See Close.
func (w *Workspace[C]) CloseLeftTab(tabID string) {
	w.Close(Left, tabID)
}

// CloseRightTab closes a right tab. See Close.
func (w *Workspace[C]) CloseRightTab(tabID string) {
	w.Close(Right, tabID)
}

// Close removes a closeable tab. When it was active, its left neighbour
// becomes active. Pinned and unknown tabs are left alone.
func (w *Workspace[C]) Close(side Side, tabID string) {
	p := w.panel(side)
	i := p.Find(tabID)
	if i < 0 || !p.Tabs[i].Closeable {
		return
	}
	wasActive := p.ActiveTabID == tabID
	p.Tabs = append(p.Tabs[:i:i], p.Tabs[i+1:]...)
	if wasActive {
		p.ActiveTabID = ""
		if len(p.Tabs) > 0 {
			p.ActiveTabID = p.Tabs[max(0, i-1)].ID
		}
	}
	w.normalize()
}

// CloseOtherLeftTabs keeps only tabID and pinned tabs on the left.
func (w *Workspace[C]) CloseOtherLeftTabs(tabID string) {
	w.CloseOthers(Left, tabID)
}

// CloseOtherRightTabs keeps only tabID and pinned tabs on the right.
func (w *Workspace[C]) CloseOtherRightTabs(tabID string) {
	w.CloseOthers(Right, tabID)
}

// CloseOthers keeps tabID and every pinned tab on side. tabID becomes active
// when the previously active tab was discarded. Unknown ids are a no-op.
func (w *Workspace[C]) CloseOthers(side Side, tabID string) {
	p := w.panel(side)
	if p.Find(tabID) < 0 {
		return
	}
	kept := make([]Tab[C], 0, len(p.Tabs))
	for _, tab := range p.Tabs {
		if tab.ID == tabID || !tab.Closeable {
			kept = append(kept, tab)
		}
	}
	p.Tabs = kept
	if p.ActiveIndex() < 0 {
		p.ActiveTabID = tabID
	}
	w.normalize()
}

// CloseAllLeftTabs keeps only pinned tabs on the left.
func (w *Workspace[C]) CloseAllLeftTabs() {
	w.CloseAll(Left)
}

// CloseAllRightTabs keeps only pinned tabs on the right.
func (w *Workspace[C]) CloseAllRightTabs() {
	w.CloseAll(Right)
}

// CloseAll keeps only pinned tabs on side; the first survivor becomes
// active.
func (w *Workspace[C]) CloseAll(side Side) {
	p := w.panel(side)
	var kept []Tab[C]
	for _, tab := range p.Tabs {
		if !tab.Closeable {
			kept = append(kept, tab)
		}
	}
	p.Tabs = kept
	p.ActiveTabID = ""
	if len(kept) > 0 {
		p.ActiveTabID = kept[0].ID
	}
	w.normalize()
}

// ActivateLeftTab activates a left tab. See Activate.
func (w *Workspace[C]) ActivateLeftTab(tabID string) {
	w.Activate(Left, tabID)
}

// ActivateRightTab activates a right tab. See Activate.
func (w *Workspace[C]) ActivateRightTab(tabID string) {
	w.Activate(Right, tabID)
}

// Activate makes tabID the active tab of side and focuses side.
func (w *Workspace[C]) Activate(side Side, tabID string) {
	p := w.panel(side)
	if p.Find(tabID) < 0 {
		return
	}
	p.ActiveTabID = tabID
	w.state.FocusedPanel = side
	w.normalize()
}

// SetFocusedPanel moves focus to side. Focusing a hidden right panel is
// ignored.
func (w *Workspace[C]) SetFocusedPanel(side Side) {
	if side != Left && side != Right {
		return
	}
	if side == Right && !w.state.RightPanelVisible {
		return
	}
	w.state.FocusedPanel = side
	w.normalize()
}

// SetSplitRatio sets the left panel's share of the width, clamped to
// [0, 100]. NaN is ignored.
func (w *Workspace[C]) SetSplitRatio(ratio float64) {
	if math.IsNaN(ratio) {
		return
	}
	w.state.SplitRatio = ratio
	w.normalize()
}
