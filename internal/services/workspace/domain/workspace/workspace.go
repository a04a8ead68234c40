// Package workspace is the two-panel tab state machine of the GM desk.
//
// A Workspace owns an ordered tab list for the left and the right panel, the
// active tab of each, which panel has focus, whether the right panel is shown
// and the split ratio between them. Every operation is total: unknown tab ids
// and out-of-range values degrade to no-ops or clamped values. After each
// mutation a single normalize step restores the invariants:
//
//   - a non-empty panel always has an active tab that is one of its tabs;
//   - an empty panel has no active tab;
//   - an empty right panel is hidden;
//   - focus is on the left panel whenever the right panel is hidden;
//   - the split ratio lies in [0, 100].
//
// Workspace is not safe for concurrent use; callers serialize access.
package workspace

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/louisbranch/gmworkspace/internal/platform/id"
)

// Side names one of the two panels.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// ParseSide parses a panel side name.
func ParseSide(value string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(value))) {
	case Left:
		return Left, nil
	case Right:
		return Right, nil
	default:
		return "", fmt.Errorf("unknown panel side %q", value)
	}
}

// DefaultSplitRatio is the share of the width given to the left panel when
// no ratio is configured.
const DefaultSplitRatio = 50

// Tab is one open view. Content is an opaque handle owned by the host.
type Tab[C any] struct {
	ID        string
	Title     string
	Path      string
	Content   C
	Icon      string
	Closeable bool
}

// NewTab is the input of the open operations. A nil Closeable means true.
type NewTab[C any] struct {
	Title     string
	Path      string
	Content   C
	Icon      string
	Closeable *bool
}

// Panel is the ordered tab list of one side.
type Panel[C any] struct {
	Tabs        []Tab[C]
	ActiveTabID string
}

// Find returns the index of the tab with id, or -1.
func (p Panel[C]) Find(tabID string) int {
	if tabID == "" {
		return -1
	}
	for i, tab := range p.Tabs {
		if tab.ID == tabID {
			return i
		}
	}
	return -1
}

// FindPath returns the index of the tab with path, or -1.
func (p Panel[C]) FindPath(path string) int {
	for i, tab := range p.Tabs {
		if tab.Path == path {
			return i
		}
	}
	return -1
}

// ActiveIndex returns the index of the active tab, or -1.
func (p Panel[C]) ActiveIndex() int {
	return p.Find(p.ActiveTabID)
}

// Active returns the active tab.
func (p Panel[C]) Active() (Tab[C], bool) {
	i := p.ActiveIndex()
	if i < 0 {
		var zero Tab[C]
		return zero, false
	}
	return p.Tabs[i], true
}

func (p Panel[C]) clone() Panel[C] {
	if p.Tabs != nil {
		p.Tabs = append([]Tab[C](nil), p.Tabs...)
	}
	return p
}

// State is a point-in-time copy of a workspace.
type State[C any] struct {
	Left              Panel[C]
	Right             Panel[C]
	FocusedPanel      Side
	// RightPanelVisible is true exactly when Right has tabs.
	RightPanelVisible bool
	SplitRatio        float64
	// LayoutVersion increases by one on every restore so consumers can
	// remount restored content.
	LayoutVersion int
}

// Panel returns the panel on side.
func (s State[C]) Panel(side Side) Panel[C] {
	if side == Right {
		return s.Right
	}
	return s.Left
}

// IDGenerator returns a fresh, never reused tab id.
type IDGenerator func() string

// NewCounterIDGenerator returns a deterministic generator producing
// prefix1, prefix2, ... Each call returns an independent counter.
func NewCounterIDGenerator(prefix string) IDGenerator {
	var counter atomic.Int64
	return func() string {
		return prefix + strconv.FormatInt(counter.Add(1), 10)
	}
}

type options struct {
	newID      IDGenerator
	splitRatio float64
}

// Option configures a Workspace.
type Option func(*options)

// WithIDGenerator replaces the random tab id generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(o *options) {
		if gen != nil {
			o.newID = gen
		}
	}
}

// WithSplitRatio sets the initial split ratio.
func WithSplitRatio(ratio float64) Option {
	return func(o *options) {
		o.splitRatio = ratio
	}
}

// Workspace is the tab state machine.
type Workspace[C any] struct {
	state State[C]
	newID IDGenerator
}

// New returns an empty workspace focused on the left panel.
func New[C any](opts ...Option) *Workspace[C] {
	o := options{
		newID:      id.MustNewID,
		splitRatio: DefaultSplitRatio,
	}
	for _, opt := range opts {
		opt(&o)
	}
	w := &Workspace[C]{
		state: State[C]{
			FocusedPanel: Left,
			SplitRatio:   o.splitRatio,
		},
		newID: o.newID,
	}
	w.normalize()
	return w
}

// State returns a copy of the current state. Mutating it does not affect w.
func (w *Workspace[C]) State() State[C] {
	s := w.state
	s.Left = s.Left.clone()
	s.Right = s.Right.clone()
	return s
}

func (w *Workspace[C]) panel(side Side) *Panel[C] {
	if side == Right {
		return &w.state.Right
	}
	return &w.state.Left
}

func (w *Workspace[C]) normalize() {
	for _, p := range []*Panel[C]{&w.state.Left, &w.state.Right} {
		switch {
		case len(p.Tabs) == 0:
			p.ActiveTabID = ""
		case p.ActiveIndex() < 0:
			p.ActiveTabID = p.Tabs[0].ID
		}
	}
	w.state.RightPanelVisible = len(w.state.Right.Tabs) > 0
	if !w.state.RightPanelVisible || w.state.FocusedPanel != Right {
		w.state.FocusedPanel = Left
	}
	w.state.SplitRatio = clampRatio(w.state.SplitRatio)
}

func clampRatio(ratio float64) float64 {
	switch {
	case math.IsNaN(ratio):
		return DefaultSplitRatio
	case ratio < 0:
		return 0
	case ratio > 100:
		return 100
	default:
		return ratio
	}
}
