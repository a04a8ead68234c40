package workspace

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestWorkspace() *Workspace[string] {
	return New[string](WithIDGenerator(NewCounterIDGenerator("tab-")))
}

func tab(path string) NewTab[string] {
	return NewTab[string]{Title: "Title " + path, Path: path, Content: "content " + path}
}

func pinned(path string) NewTab[string] {
	closeable := false
	t := tab(path)
	t.Closeable = &closeable
	return t
}

func paths(p Panel[string]) []string {
	out := []string{}
	for _, tab := range p.Tabs {
		out = append(out, tab.Path)
	}
	return out
}

func activePath(t *testing.T, p Panel[string]) string {
	t.Helper()
	active, ok := p.Active()
	if !ok {
		return ""
	}
	return active.Path
}

func TestNewWorkspace(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace()
	state := w.State()
	if state.FocusedPanel != Left {
		t.Fatalf("focus = %q, want left", state.FocusedPanel)
	}
	if state.RightPanelVisible {
		t.Fatal("right panel should start hidden")
	}
	if state.SplitRatio != DefaultSplitRatio {
		t.Fatalf("split = %v, want %v", state.SplitRatio, DefaultSplitRatio)
	}
	if got := New[string](WithSplitRatio(140)).State().SplitRatio; got != 100 {
		t.Fatalf("clamped initial split = %v, want 100", got)
	}
}

func TestDefaultIDGeneratorProducesDistinctIDs(t *testing.T) {
	t.Parallel()

	w := New[string]()
	a := w.OpenLeftTab(tab("/a"))
	b := w.OpenLeftTab(tab("/b"))
	if a == "" || b == "" || a == b {
		t.Fatalf("ids = %q, %q, want distinct non-empty", a, b)
	}
}

func TestOpenDeduplicatesByPath(t *testing.T) {
	t.Parallel()

	for _, side := range []Side{Left, Right} {
		w := newTestWorkspace()
		first := w.Open(side, tab("/a"))
		w.Open(side, tab("/b"))
		second := w.Open(side, tab("/a"))

		p := w.State().Panel(side)
		if first != second {
			t.Fatalf("%s: reopen id = %q, want %q", side, second, first)
		}
		if diff := cmp.Diff([]string{"/a", "/b"}, paths(p)); diff != "" {
			t.Fatalf("%s: tabs mismatch (-want +got):\n%s", side, diff)
		}
		if p.ActiveTabID != first {
			t.Fatalf("%s: active = %q, want %q", side, p.ActiveTabID, first)
		}
		if w.State().FocusedPanel != side {
			t.Fatalf("%s: focus = %q", side, w.State().FocusedPanel)
		}
	}
}

func TestOpenAppendsAtEnd(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace()
	a := w.OpenLeftTab(tab("/a"))
	w.OpenLeftTab(tab("/b"))
	w.ActivateLeftTab(a)
	w.OpenLeftTab(tab("/c"))

	left := w.State().Left
	if diff := cmp.Diff([]string{"/a", "/b", "/c"}, paths(left)); diff != "" {
		t.Fatalf("tabs mismatch (-want +got):\n%s", diff)
	}
	if got := activePath(t, left); got != "/c" {
		t.Fatalf("active = %q, want /c", got)
	}
}

func TestOpenCopiesTabFields(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace()
	input := tab("/notes")
	input.Icon = "note"
	w.OpenLeftTab(input)
	w.OpenLeftTab(pinned("/pinned"))

	want := []Tab[string]{
		{ID: "tab-1", Title: "Title /notes", Path: "/notes", Content: "content /notes", Icon: "note", Closeable: true},
		{ID: "tab-2", Title: "Title /pinned", Path: "/pinned", Content: "content /pinned", Closeable: false},
	}
	if diff := cmp.Diff(want, w.State().Left.Tabs); diff != "" {
		t.Fatalf("tabs mismatch (-want +got):\n%s", diff)
	}
}

func TestCloseScenarioActivatesLeftNeighbour(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace()
	w.OpenLeftTab(tab("/a"))
	b := w.OpenLeftTab(tab("/b"))
	c := w.OpenLeftTab(tab("/c"))
	if got := activePath(t, w.State().Left); got != "/c" {
		t.Fatalf("active = %q, want /c", got)
	}

	w.CloseLeftTab(b)
	left := w.State().Left
	if diff := cmp.Diff([]string{"/a", "/c"}, paths(left)); diff != "" {
		t.Fatalf("after closing /b (-want +got):\n%s", diff)
	}
	if got := activePath(t, left); got != "/c" {
		t.Fatalf("active after closing /b = %q, want /c", got)
	}

	w.CloseLeftTab(c)
	left = w.State().Left
	if diff := cmp.Diff([]string{"/a"}, paths(left)); diff != "" {
		t.Fatalf("after closing /c (-want +got):\n%s", diff)
	}
	if got := activePath(t, left); got != "/a" {
		t.Fatalf("active after closing /c = %q, want /a", got)
	}
}

func TestCloseFirstActiveTabActivatesNewFirst(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace()
	a := w.OpenLeftTab(tab("/a"))
	w.OpenLeftTab(tab("/b"))
	w.ActivateLeftTab(a)
	w.CloseLeftTab(a)

	if got := activePath(t, w.State().Left); got != "/b" {
		t.Fatalf("active = %q, want /b", got)
	}
}

func TestCloseLastTabClearsActive(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace()
	a := w.OpenLeftTab(tab("/a"))
	w.CloseLeftTab(a)
	left := w.State().Left
	if len(left.Tabs) != 0 || left.ActiveTabID != "" {
		t.Fatalf("left = %+v, want empty with no active tab", left)
	}
}

func TestClosePinnedTabIsNoop(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace()
	p := w.OpenLeftTab(pinned("/pinned"))
	w.OpenLeftTab(tab("/b"))
	before := w.State()

	w.CloseLeftTab(p)
	if diff := cmp.Diff(before, w.State()); diff != "" {
		t.Fatalf("closing pinned tab changed state (-before +after):\n%s", diff)
	}
}

func TestCloseUnknownTabIsNoop(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace()
	w.OpenLeftTab(tab("/a"))
	w.OpenRightTab(tab("/x"))
	before := w.State()

	w.CloseLeftTab("missing")
	w.CloseRightTab("")
	w.Close(Left, "tab-2") // right tab id on the wrong side
	if diff := cmp.Diff(before, w.State()); diff != "" {
		t.Fatalf("stale close changed state (-before +after):\n%s", diff)
	}
}

func TestRightPanelScenario(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace()
	x := w.OpenRightTab(tab("/x"))
	state := w.State()
	if !state.RightPanelVisible {
		t.Fatal("right panel should be visible after open")
	}
	if state.FocusedPanel != Right {
		t.Fatalf("focus = %q, want right", state.FocusedPanel)
	}

	w.CloseRightTab(x)
	state = w.State()
	if state.RightPanelVisible {
		t.Fatal("right panel should hide when its last tab closes")
	}
	if state.Right.ActiveTabID != "" {
		t.Fatalf("right active = %q, want empty", state.Right.ActiveTabID)
	}
	if state.FocusedPanel != Left {
		t.Fatalf("focus = %q, want left", state.FocusedPanel)
	}
}

func TestSmartOpenPanelSelection(t *testing.T) {
	t.Parallel()

	t.Run("focused visible right panel receives new tab", func(t *testing.T) {
		w := newTestWorkspace()
		w.OpenLeftTab(tab("/a"))
		w.OpenRightTab(tab("/x"))
		w.OpenTab(tab("/new"))
		if diff := cmp.Diff([]string{"/x", "/new"}, paths(w.State().Right)); diff != "" {
			t.Fatalf("right tabs mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("left focus keeps new tabs on the left", func(t *testing.T) {
		w := newTestWorkspace()
		w.OpenRightTab(tab("/x"))
		w.SetFocusedPanel(Left)
		w.OpenTab(tab("/new"))
		if diff := cmp.Diff([]string{"/new"}, paths(w.State().Left)); diff != "" {
			t.Fatalf("left tabs mismatch (-want +got):\n%s", diff)
		}
		if w.State().FocusedPanel != Left {
			t.Fatal("focus should stay left")
		}
	})

	t.Run("hidden right panel sends new tabs left", func(t *testing.T) {
		w := newTestWorkspace()
		w.OpenTab(tab("/new"))
		if diff := cmp.Diff([]string{"/new"}, paths(w.State().Left)); diff != "" {
			t.Fatalf("left tabs mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("existing tab is activated where it lives", func(t *testing.T) {
		w := newTestWorkspace()
		w.OpenLeftTab(tab("/a"))
		x := w.OpenRightTab(tab("/x"))
		w.OpenRightTab(tab("/y"))
		w.SetFocusedPanel(Left)

		got := w.OpenTab(tab("/x"))
		state := w.State()
		if got != x || state.Right.ActiveTabID != x {
			t.Fatalf("OpenTab(/x) = %q, right active = %q, want %q", got, state.Right.ActiveTabID, x)
		}
		if state.FocusedPanel != Right {
			t.Fatalf("focus = %q, want right", state.FocusedPanel)
		}
		if len(state.Left.Tabs) != 1 || len(state.Right.Tabs) != 2 {
			t.Fatal("smart open must not duplicate tabs")
		}
	})

	t.Run("left panel wins when both hold the path", func(t *testing.T) {
		w := newTestWorkspace()
		l := w.OpenLeftTab(tab("/shared"))
		w.OpenRightTab(tab("/shared"))
		if got := w.OpenTab(tab("/shared")); got != l {
			t.Fatalf("OpenTab = %q, want left tab %q", got, l)
		}
		if w.State().FocusedPanel != Left {
			t.Fatal("focus should move left")
		}
	})
}

func TestCloseOthers(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace()
	w.OpenLeftTab(pinned("/home"))
	w.OpenLeftTab(tab("/a"))
	b := w.OpenLeftTab(tab("/b"))
	w.OpenLeftTab(tab("/c"))

	w.CloseOtherLeftTabs(b)
	left := w.State().Left
	if diff := cmp.Diff([]string{"/home", "/b"}, paths(left)); diff != "" {
		t.Fatalf("tabs mismatch (-want +got):\n%s", diff)
	}
	if left.ActiveTabID != b {
		t.Fatalf("active = %q, want %q", left.ActiveTabID, b)
	}
}

func TestCloseOthersKeepsSurvivingActive(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace()
	home := w.OpenLeftTab(pinned("/home"))
	b := w.OpenLeftTab(tab("/b"))
	w.OpenLeftTab(tab("/c"))
	w.ActivateLeftTab(home)

	w.CloseOtherLeftTabs(b)
	if got := w.State().Left.ActiveTabID; got != home {
		t.Fatalf("active = %q, want pinned %q", got, home)
	}
}

func TestCloseOthersUnknownIsNoop(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace()
	w.OpenRightTab(tab("/x"))
	w.OpenRightTab(tab("/y"))
	before := w.State()
	w.CloseOtherRightTabs("missing")
	if diff := cmp.Diff(before, w.State()); diff != "" {
		t.Fatalf("state changed (-before +after):\n%s", diff)
	}
}

func TestCloseAll(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace()
	w.OpenLeftTab(tab("/a"))
	home := w.OpenLeftTab(pinned("/home"))
	w.OpenLeftTab(tab("/b"))
	w.OpenLeftTab(pinned("/dice"))

	w.CloseAllLeftTabs()
	left := w.State().Left
	if diff := cmp.Diff([]string{"/home", "/dice"}, paths(left)); diff != "" {
		t.Fatalf("tabs mismatch (-want +got):\n%s", diff)
	}
	if left.ActiveTabID != home {
		t.Fatalf("active = %q, want first survivor %q", left.ActiveTabID, home)
	}
}

func TestCloseAllRightHidesPanel(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace()
	w.OpenRightTab(tab("/x"))
	w.OpenRightTab(tab("/y"))
	w.CloseAllRightTabs()

	state := w.State()
	if len(state.Right.Tabs) != 0 || state.Right.ActiveTabID != "" {
		t.Fatalf("right = %+v, want empty", state.Right)
	}
	if state.RightPanelVisible || state.FocusedPanel != Left {
		t.Fatalf("visible = %v focus = %q, want hidden and left", state.RightPanelVisible, state.FocusedPanel)
	}
}

func TestCloseAllRightKeepsPinnedVisible(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace()
	w.OpenRightTab(pinned("/chat"))
	w.OpenRightTab(tab("/y"))
	w.CloseAllRightTabs()
	if !w.State().RightPanelVisible {
		t.Fatal("right panel with a pinned tab should stay visible")
	}
}

func TestSetFocusedPanel(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace()
	w.SetFocusedPanel(Right)
	if w.State().FocusedPanel != Left {
		t.Fatal("focus must not move to a hidden right panel")
	}

	w.OpenRightTab(tab("/x"))
	w.SetFocusedPanel(Left)
	if w.State().FocusedPanel != Left {
		t.Fatal("expected focus left")
	}
	w.SetFocusedPanel(Right)
	if w.State().FocusedPanel != Right {
		t.Fatal("expected focus right")
	}
	w.SetFocusedPanel(Side("middle"))
	if w.State().FocusedPanel != Right {
		t.Fatal("unknown side should be ignored")
	}
}

func TestActivate(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace()
	a := w.OpenLeftTab(tab("/a"))
	w.OpenLeftTab(tab("/b"))
	w.OpenRightTab(tab("/x"))

	w.ActivateLeftTab(a)
	state := w.State()
	if state.Left.ActiveTabID != a || state.FocusedPanel != Left {
		t.Fatalf("active = %q focus = %q", state.Left.ActiveTabID, state.FocusedPanel)
	}
	w.ActivateRightTab(a)
	if w.State().FocusedPanel != Left {
		t.Fatal("activating an id from the other panel should be a no-op")
	}
}

func TestSetSplitRatioClamps(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace()
	tests := []struct {
		in, want float64
	}{
		{55, 55},
		{-10, 0},
		{250, 100},
		{0, 0},
		{100, 100},
	}
	for _, tt := range tests {
		w.SetSplitRatio(tt.in)
		if got := w.State().SplitRatio; got != tt.want {
			t.Fatalf("SetSplitRatio(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRightPanelVisibilityFollowsTabs(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace()
	x := w.OpenRightTab(tab("/x"))
	y := w.OpenRightTab(tab("/y"))
	w.SetFocusedPanel(Left)
	if state := w.State(); !state.RightPanelVisible || state.FocusedPanel != Left {
		t.Fatalf("visible = %v focus = %q, want visible right and left focus", state.RightPanelVisible, state.FocusedPanel)
	}

	w.Close(Right, y)
	if !w.State().RightPanelVisible {
		t.Fatal("right panel with a remaining tab must stay visible")
	}
	w.Close(Right, x)
	if state := w.State(); state.RightPanelVisible || state.FocusedPanel != Left {
		t.Fatalf("visible = %v focus = %q after emptying right", state.RightPanelVisible, state.FocusedPanel)
	}
}

func TestStateIsACopy(t *testing.T) {
	t.Parallel()

	w := newTestWorkspace()
	w.OpenLeftTab(tab("/a"))
	state := w.State()
	state.Left.Tabs[0].Path = "/mutated"
	state.Left.Tabs = append(state.Left.Tabs, Tab[string]{ID: "x"})

	left := w.State().Left
	if diff := cmp.Diff([]string{"/a"}, paths(left)); diff != "" {
		t.Fatalf("internal state mutated (-want +got):\n%s", diff)
	}
}

func TestParseSide(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]Side{"left": Left, " RIGHT ": Right} {
		got, err := ParseSide(input)
		if err != nil || got != want {
			t.Fatalf("ParseSide(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := ParseSide("middle"); err == nil {
		t.Fatal("expected error")
	}
}

func TestCounterIDGeneratorsAreIndependent(t *testing.T) {
	t.Parallel()

	a := NewCounterIDGenerator("a-")
	b := NewCounterIDGenerator("b-")
	if got := []string{a(), a(), b()}; !cmp.Equal(got, []string{"a-1", "a-2", "b-1"}) {
		t.Fatalf("ids = %v", got)
	}
}
