// Package layout saves and restores named workspace arrangements through a
// layout store, falling back to the stage templates when a scope has no
// default layout.
package layout

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/gmworkspace/internal/platform/errors"
	"github.com/louisbranch/gmworkspace/internal/platform/id"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/panel"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/template"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/workspace"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/storage"
)

const tracerName = "github.com/louisbranch/gmworkspace/internal/services/workspace/layout"

// SaveInput describes a layout to create from the current workspace.
type SaveInput struct {
	UserID      string
	CampaignID  string
	Name        string
	Description string
	// Stage is optional; an empty stage makes the layout usable in any stage.
	Stage     string
	IsDefault bool
}

// UpdateInput lists the metadata to change. CaptureCurrent replaces the
// stored arrangement with the current workspace.
type UpdateInput struct {
	Name           *string
	Description    *string
	CaptureCurrent bool
}

// Loaded is the result of LoadDefault.
type Loaded struct {
	Layout       storage.Layout
	FromTemplate bool
}

type options struct {
	newID  func() (string, error)
	now    func() time.Time
	tracer trace.Tracer
}

// Option configures a Manager.
type Option func(*options)

// WithIDGenerator replaces the layout id generator.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(o *options) {
		if gen != nil {
			o.newID = gen
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithTracer replaces the tracer taken from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// Manager coordinates a workspace with a layout store. It is not safe for
// concurrent use; callers serialize access together with the workspace.
type Manager[C any] struct {
	workspace *workspace.Workspace[C]
	store     storage.LayoutStore
	resolve   workspace.ContentResolver[C]
	newID     func() (string, error)
	now       func() time.Time
	tracer    trace.Tracer
}

// NewManager builds a Manager.
func NewManager[C any](ws *workspace.Workspace[C], store storage.LayoutStore, resolve workspace.ContentResolver[C], opts ...Option) (*Manager[C], error) {
	if ws == nil {
		return nil, fmt.Errorf("workspace is required")
	}
	if store == nil {
		return nil, fmt.Errorf("layout store is required")
	}
	if resolve == nil {
		return nil, fmt.Errorf("content resolver is required")
	}
	o := options{
		newID:  id.NewID,
		now:    time.Now,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager[C]{
		workspace: ws,
		store:     store,
		resolve:   resolve,
		newID:     o.newID,
		now:       o.now,
		tracer:    o.tracer,
	}, nil
}

func (m *Manager[C]) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "layout."+name, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
	}
	span.End()
}

// SaveCurrent captures the workspace and persists it as a new layout.
func (m *Manager[C]) SaveCurrent(ctx context.Context, in SaveInput) (layout storage.Layout, err error) {
	ctx, span := m.start(ctx, "save_current",
		attribute.String("layout.user_id", in.UserID),
		attribute.String("layout.campaign_id", in.CampaignID),
	)
	defer func() { finish(span, err) }()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return storage.Layout{}, apperrors.New(apperrors.CodeLayoutNameEmpty, "layout name is required")
	}
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return storage.Layout{}, apperrors.New(apperrors.CodeLayoutUserMissing, "layout user id is required")
	}
	stage, err := parseOptionalStage(in.Stage)
	if err != nil {
		return storage.Layout{}, err
	}
	layoutID, err := m.newID()
	if err != nil {
		return storage.Layout{}, fmt.Errorf("generate layout id: %w", err)
	}

	now := m.now().UTC()
	created, err := m.store.CreateLayout(ctx, storage.Layout{
		ID:          layoutID,
		UserID:      userID,
		CampaignID:  strings.TrimSpace(in.CampaignID),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Snapshot:    m.workspace.CaptureLayout(),
		IsDefault:   in.IsDefault,
		Stage:       stage,
		Kind:        storage.KindCustom,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return storage.Layout{}, storeError("save layout", err, map[string]string{"Name": name})
	}
	span.SetAttributes(attribute.String("layout.id", created.ID))
	return created, nil
}

// Load restores a stored layout into the workspace and records the use.
// When the content resolver fails the workspace is left untouched and no
// use is recorded.
func (m *Manager[C]) Load(ctx context.Context, layoutID string) (layout storage.Layout, err error) {
	ctx, span := m.start(ctx, "load", attribute.String("layout.id", layoutID))
	defer func() { finish(span, err) }()
	return m.load(ctx, layoutID)
}

func (m *Manager[C]) load(ctx context.Context, layoutID string) (storage.Layout, error) {
	layout, err := m.store.GetLayout(ctx, layoutID)
	if err != nil {
		return storage.Layout{}, storeError("get layout", err, nil)
	}
	if err := m.workspace.RestoreLayout(layout.Snapshot, m.resolve); err != nil {
		return storage.Layout{}, apperrors.Wrap(apperrors.CodeLayoutContentUnresolved, "restore layout "+layout.ID, err)
	}

	usedAt := m.now().UTC()
	if err := m.store.RecordLayoutUse(ctx, layout.ID, usedAt); err != nil {
		log.Printf("record layout use %s: %v", layout.ID, err)
		return layout, nil
	}
	layout.UsageCount++
	layout.LastUsedAt = time.UnixMilli(usedAt.UnixMilli()).UTC()
	return layout, nil
}

// List returns the layouts of scope, default first, then most used, then by
// name.
func (m *Manager[C]) List(ctx context.Context, scope storage.Scope) (layouts []storage.Layout, err error) {
	ctx, span := m.start(ctx, "list",
		attribute.String("layout.user_id", scope.UserID),
		attribute.String("layout.campaign_id", scope.CampaignID),
	)
	defer func() { finish(span, err) }()

	if strings.TrimSpace(scope.UserID) == "" {
		return nil, apperrors.New(apperrors.CodeLayoutUserMissing, "layout user id is required")
	}
	layouts, err = m.store.ListLayouts(ctx, scope)
	if err != nil {
		return nil, storeError("list layouts", err, nil)
	}
	storage.SortLayouts(layouts)
	span.SetAttributes(attribute.Int("layout.count", len(layouts)))
	return layouts, nil
}

// SetDefault marks a layout as the default of its scope and stage.
func (m *Manager[C]) SetDefault(ctx context.Context, layoutID string) (layout storage.Layout, err error) {
	ctx, span := m.start(ctx, "set_default", attribute.String("layout.id", layoutID))
	defer func() { finish(span, err) }()

	isDefault := true
	layout, err = m.store.UpdateLayout(ctx, layoutID, storage.LayoutPatch{IsDefault: &isDefault})
	if err != nil {
		return storage.Layout{}, storeError("set default layout", err, nil)
	}
	return layout, nil
}

// Update changes layout metadata, and the stored arrangement when
// CaptureCurrent is set.
func (m *Manager[C]) Update(ctx context.Context, layoutID string, in UpdateInput) (layout storage.Layout, err error) {
	ctx, span := m.start(ctx, "update", attribute.String("layout.id", layoutID))
	defer func() { finish(span, err) }()

	patch := storage.LayoutPatch{Description: in.Description}
	var metadata map[string]string
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return storage.Layout{}, apperrors.New(apperrors.CodeLayoutNameEmpty, "layout name is required")
		}
		patch.Name = &name
		metadata = map[string]string{"Name": name}
	}
	if in.CaptureCurrent {
		snapshot := m.workspace.CaptureLayout()
		patch.Snapshot = &snapshot
	}
	layout, err = m.store.UpdateLayout(ctx, layoutID, patch)
	if err != nil {
		return storage.Layout{}, storeError("update layout", err, metadata)
	}
	return layout, nil
}

// Delete removes a layout.
func (m *Manager[C]) Delete(ctx context.Context, layoutID string) (err error) {
	ctx, span := m.start(ctx, "delete", attribute.String("layout.id", layoutID))
	defer func() { finish(span, err) }()

	if err := m.store.DeleteLayout(ctx, layoutID); err != nil {
		return storeError("delete layout", err, nil)
	}
	return nil
}

// LoadDefault restores the default layout of scope for stage. A default
// saved for the exact stage wins over a stage-less default. Without either
// the stage template is restored; template layouts are not persisted.
func (m *Manager[C]) LoadDefault(ctx context.Context, scope storage.Scope, stage panel.Stage) (loaded Loaded, err error) {
	ctx, span := m.start(ctx, "load_default",
		attribute.String("layout.user_id", scope.UserID),
		attribute.String("layout.campaign_id", scope.CampaignID),
		attribute.String("layout.stage", string(stage)),
	)
	defer func() { finish(span, err) }()

	if !stage.Valid() {
		return Loaded{}, invalidStage(string(stage))
	}
	if strings.TrimSpace(scope.UserID) != "" {
		layouts, err := m.store.ListLayouts(ctx, scope)
		if err != nil {
			return Loaded{}, storeError("list layouts", err, nil)
		}
		if chosen, ok := pickDefault(layouts, stage); ok {
			layout, err := m.load(ctx, chosen.ID)
			if err != nil {
				return Loaded{}, err
			}
			span.SetAttributes(attribute.String("layout.id", layout.ID))
			return Loaded{Layout: layout}, nil
		}
	}

	snapshot, err := TemplateSnapshot(stage)
	if err != nil {
		return Loaded{}, err
	}
	if err := m.workspace.RestoreLayout(snapshot, m.resolve); err != nil {
		return Loaded{}, apperrors.Wrap(apperrors.CodeLayoutContentUnresolved, "restore template "+string(stage), err)
	}
	span.SetAttributes(attribute.Bool("layout.from_template", true))
	return Loaded{
		Layout: storage.Layout{
			UserID:     scope.UserID,
			CampaignID: scope.CampaignID,
			Name:       string(stage),
			Snapshot:   snapshot,
			Stage:      stage,
			Kind:       storage.KindTemplate,
		},
		FromTemplate: true,
	}, nil
}

func pickDefault(layouts []storage.Layout, stage panel.Stage) (storage.Layout, bool) {
	var fallback *storage.Layout
	for i := range layouts {
		layout := &layouts[i]
		if !layout.IsDefault {
			continue
		}
		switch layout.Stage {
		case stage:
			return *layout, true
		case "":
			if fallback == nil {
				fallback = layout
			}
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return storage.Layout{}, false
}

// TemplateSnapshot converts the default tree of stage into a snapshot. The
// first tab of each panel is active and the right panel is shown when the
// template gives it any panels.
func TemplateSnapshot(stage panel.Stage) (workspace.Snapshot, error) {
	node, err := template.Default(stage)
	if err != nil {
		return workspace.Snapshot{}, invalidStage(string(stage))
	}
	left, right, ratio := template.Sides(node)
	snapshot := workspace.Snapshot{
		LeftTabs:          templateTabs(left),
		RightTabs:         templateTabs(right),
		RightPanelVisible: len(right) > 0,
		SplitRatio:        ratio,
	}
	return snapshot, nil
}

func templateTabs(ids []panel.ID) []workspace.TabSnapshot {
	tabs := make([]workspace.TabSnapshot, 0, len(ids))
	for _, panelID := range ids {
		def, ok := panel.Lookup(panelID)
		if !ok {
			continue
		}
		tabs = append(tabs, workspace.TabSnapshot{Title: def.Title, Path: def.Path, Icon: string(def.Icon)})
	}
	return tabs
}

func parseOptionalStage(value string) (panel.Stage, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	stage, err := panel.ParseStage(value)
	if err != nil {
		return "", invalidStage(value)
	}
	return stage, nil
}

func invalidStage(value string) error {
	return apperrors.WithMetadata(apperrors.CodeLayoutInvalidStage, "invalid stage "+value, map[string]string{"Stage": value})
}

// storeError maps store failures onto layout error codes. The store error
// stays in the chain so callers can still match storage sentinels.
func storeError(op string, err error, metadata map[string]string) error {
	switch {
	case stderrors.Is(err, storage.ErrNotFound):
		return apperrors.WrapWithMetadata(apperrors.CodeLayoutNotFound, op, metadata, err)
	case stderrors.Is(err, storage.ErrAlreadyExists):
		return apperrors.WrapWithMetadata(apperrors.CodeLayoutNameTaken, op, metadata, err)
	default:
		return apperrors.WrapWithMetadata(apperrors.CodeLayoutStoreUnavailable, op, metadata, err)
	}
}
