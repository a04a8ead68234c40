// Package storage defines persistence contracts for workspace layouts.
package storage

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/panel"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/workspace"
)

var (
	// ErrNotFound indicates a requested layout is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a layout with the same scope and name exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// Kind distinguishes layouts saved by a user from layouts seeded from a
// stage template.
type Kind string

const (
	KindCustom   Kind = "custom"
	KindTemplate Kind = "template"
)

// Scope selects the layouts of one user, optionally narrowed to a campaign.
// An empty CampaignID is the user's campaign-independent scope.
type Scope struct {
	UserID     string
	CampaignID string
}

// Layout is a persisted, named workspace arrangement.
type Layout struct {
	ID          string
	UserID      string
	CampaignID  string
	Name        string
	Description string
	Snapshot    workspace.Snapshot
	IsDefault   bool
	UsageCount  int
	// Stage is empty for layouts usable in any stage.
	Stage      panel.Stage
	Kind       Kind
	CreatedAt  time.Time
	UpdatedAt  time.Time
	LastUsedAt time.Time
}

// Scope returns the scope that owns l.
func (l Layout) Scope() Scope {
	return Scope{UserID: l.UserID, CampaignID: l.CampaignID}
}

// LayoutPatch lists the fields to change; nil fields are left alone.
type LayoutPatch struct {
	Name        *string
	Description *string
	IsDefault   *bool
	Snapshot    *workspace.Snapshot
}

// LayoutStore persists layouts. Setting IsDefault on a layout clears the
// flag on every other layout with the same scope and stage.
type LayoutStore interface {
	ListLayouts(ctx context.Context, scope Scope) ([]Layout, error)
	CreateLayout(ctx context.Context, layout Layout) (Layout, error)
	UpdateLayout(ctx context.Context, id string, patch LayoutPatch) (Layout, error)
	DeleteLayout(ctx context.Context, id string) error
	GetLayout(ctx context.Context, id string) (Layout, error)
	RecordLayoutUse(ctx context.Context, id string, at time.Time) error
}

// SortLayouts orders layouts default first, then most used, then by name.
func SortLayouts(layouts []Layout) {
	sort.SliceStable(layouts, func(i, j int) bool {
		a, b := layouts[i], layouts[j]
		if a.IsDefault != b.IsDefault {
			return a.IsDefault
		}
		if a.UsageCount != b.UsageCount {
			return a.UsageCount > b.UsageCount
		}
		return a.Name < b.Name
	})
}
