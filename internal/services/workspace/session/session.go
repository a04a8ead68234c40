// Package session hosts the single live workspace of the process. Every
// transition runs under one lock in arrival order, and subscribers receive
// the resulting state after each change.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/a-h/templ"

	apperrors "github.com/louisbranch/gmworkspace/internal/platform/errors"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/panel"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/workspace"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/layout"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/storage"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/view"
)

const defaultSubscriberBuffer = 8

// CloseMode selects which tabs a close request removes.
type CloseMode string

const (
	CloseOne    CloseMode = "one"
	CloseOthers CloseMode = "others"
	CloseAll    CloseMode = "all"
)

// ParseCloseMode parses a close mode; an empty value means CloseOne.
func ParseCloseMode(value string) (CloseMode, error) {
	switch CloseMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", CloseOne:
		return CloseOne, nil
	case CloseOthers:
		return CloseOthers, nil
	case CloseAll:
		return CloseAll, nil
	default:
		return "", fmt.Errorf("unknown close mode %q", value)
	}
}

// Event is published after every successful change.
type Event struct {
	Stage panel.Stage
	State workspace.State[templ.Component]
}

// Config defines the inputs of a Session.
type Config struct {
	Store  storage.LayoutStore
	Scope  storage.Scope
	Stage  panel.Stage
	Locale string

	// SubscriberBuffer bounds the queue of each subscriber.
	SubscriberBuffer int

	WorkspaceOptions []workspace.Option
	LayoutOptions    []layout.Option
}

// Session serializes access to a workspace and its layout manager.
type Session struct {
	mu        sync.Mutex
	workspace *workspace.Workspace[templ.Component]
	layouts   *layout.Manager[templ.Component]
	resolve   workspace.ContentResolver[templ.Component]
	scope     storage.Scope
	stage     panel.Stage
	locale    string

	subMu       sync.Mutex
	subscribers map[int]chan Event
	nextSubID   int
	buffer      int
	closed      bool
}

// New builds a session in cfg.Stage with an empty workspace.
func New(cfg Config) (*Session, error) {
	stage := cfg.Stage
	if stage == "" {
		stage = panel.StagePrep
	}
	if !stage.Valid() {
		return nil, fmt.Errorf("invalid stage %q", stage)
	}
	buffer := cfg.SubscriberBuffer
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}

	ws := workspace.New[templ.Component](cfg.WorkspaceOptions...)
	resolve := view.NewResolver(view.Printer(cfg.Locale))
	layouts, err := layout.NewManager(ws, cfg.Store, resolve, cfg.LayoutOptions...)
	if err != nil {
		return nil, fmt.Errorf("new layout manager: %w", err)
	}
	return &Session{
		workspace:   ws,
		layouts:     layouts,
		resolve:     resolve,
		scope:       cfg.Scope,
		stage:       stage,
		locale:      cfg.Locale,
		subscribers: make(map[int]chan Event),
		buffer:      buffer,
	}, nil
}

// Locale returns the locale used for restored content.
func (s *Session) Locale() string {
	return s.locale
}

// Scope returns the owner and campaign of saved layouts.
func (s *Session) Scope() storage.Scope {
	return s.scope
}

// Current returns the stage and a copy of the workspace state.
func (s *Session) Current() Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eventLocked()
}

func (s *Session) eventLocked() Event {
	return Event{Stage: s.stage, State: s.workspace.State()}
}

// Subscribe registers a listener. Sends never block: when the queue is full
// the oldest pending event is dropped so the latest state always arrives.
// After Shutdown the returned channel is already closed.
func (s *Session) Subscribe() (<-chan Event, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if s.closed {
		ch := make(chan Event)
		close(ch)
		return ch, func() {}
	}
	id := s.nextSubID
	s.nextSubID++
	ch := make(chan Event, s.buffer)
	s.subscribers[id] = ch

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if _, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(ch)
		}
	}
	return ch, cancel
}

// publishLocked runs with s.mu held so subscribers see events in
// transition order.
func (s *Session) publishLocked() {
	event := s.eventLocked()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subscribers {
		select {
		case ch <- event:
			continue
		default:
		}
		select {
		case <-ch:
			log.Printf("session subscriber %d is slow, dropped a state frame", id)
		default:
		}
		select {
		case ch <- event:
		default:
		}
	}
}

// mutate applies change under the lock and publishes the result.
func (s *Session) mutate(change func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := change(); err != nil {
		return err
	}
	s.publishLocked()
	return nil
}

// OpenPath opens the panel registered at path. An empty side lets the
// workspace choose the panel.
func (s *Session) OpenPath(side workspace.Side, path string) (string, error) {
	def, ok := panel.LookupPath(strings.TrimSpace(path))
	if !ok {
		return "", apperrors.WithMetadata(apperrors.CodePanelNotFound, "no panel at "+path, map[string]string{"Panel": path})
	}
	return s.open(side, def)
}

// OpenPanel opens a registered panel by id.
func (s *Session) OpenPanel(side workspace.Side, panelID panel.ID) (string, error) {
	def, ok := panel.Lookup(panelID)
	if !ok {
		return "", apperrors.WithMetadata(apperrors.CodePanelNotFound, "unknown panel "+string(panelID), map[string]string{"Panel": string(panelID)})
	}
	return s.open(side, def)
}

func (s *Session) open(side workspace.Side, def panel.Definition) (string, error) {
	var tabID string
	err := s.mutate(func() error {
		if !def.ValidIn(s.stage) {
			return apperrors.WithMetadata(apperrors.CodePanelNotInStage,
				fmt.Sprintf("panel %s is not available in %s", def.ID, s.stage),
				map[string]string{"Panel": string(def.ID), "Stage": string(s.stage)})
		}
		content, err := s.resolve(def.Path, def.Title)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", def.Path, err)
		}
		tab := workspace.NewTab[templ.Component]{
			Title:   def.Title,
			Path:    def.Path,
			Content: content,
			Icon:    string(def.Icon),
		}
		if side == "" {
			tabID = s.workspace.OpenTab(tab)
		} else {
			tabID = s.workspace.Open(side, tab)
		}
		return nil
	})
	return tabID, err
}

// Close removes tabs from side according to mode. Pinned tabs survive.
func (s *Session) Close(side workspace.Side, tabID string, mode CloseMode) error {
	return s.mutate(func() error {
		switch mode {
		case CloseOne, "":
			s.workspace.Close(side, tabID)
		case CloseOthers:
			s.workspace.CloseOthers(side, tabID)
		case CloseAll:
			s.workspace.CloseAll(side)
		default:
			return fmt.Errorf("unknown close mode %q", mode)
		}
		return nil
	})
}

// Activate makes tabID the active tab of side.
func (s *Session) Activate(side workspace.Side, tabID string) error {
	return s.mutate(func() error {
		s.workspace.Activate(side, tabID)
		return nil
	})
}

// Focus moves focus to side.
func (s *Session) Focus(side workspace.Side) error {
	return s.mutate(func() error {
		s.workspace.SetFocusedPanel(side)
		return nil
	})
}

// SetSplit sets the share of the width given to the left panel.
func (s *Session) SetSplit(ratio float64) error {
	return s.mutate(func() error {
		s.workspace.SetSplitRatio(ratio)
		return nil
	})
}

// SetStage switches the campaign stage and restores the default layout
// for it.
func (s *Session) SetStage(ctx context.Context, stage panel.Stage) (layout.Loaded, error) {
	var loaded layout.Loaded
	err := s.mutate(func() error {
		if !stage.Valid() {
			return apperrors.WithMetadata(apperrors.CodeLayoutInvalidStage, "invalid stage "+string(stage), map[string]string{"Stage": string(stage)})
		}
		var err error
		loaded, err = s.layouts.LoadDefault(ctx, s.scope, stage)
		if err != nil {
			return err
		}
		s.stage = stage
		return nil
	})
	return loaded, err
}

// LoadDefault restores the default layout of the current stage.
func (s *Session) LoadDefault(ctx context.Context) (layout.Loaded, error) {
	var loaded layout.Loaded
	err := s.mutate(func() error {
		var err error
		loaded, err = s.layouts.LoadDefault(ctx, s.scope, s.stage)
		return err
	})
	return loaded, err
}

// Capture returns the serializable arrangement of the workspace.
func (s *Session) Capture() workspace.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workspace.CaptureLayout()
}

// SaveLayoutInput describes a layout saved from the current workspace.
type SaveLayoutInput struct {
	Name        string
	Description string
	// ForStage saves the layout for the current stage instead of any stage.
	ForStage  bool
	IsDefault bool
}

// SaveLayout stores the current arrangement under the session scope.
func (s *Session) SaveLayout(ctx context.Context, in SaveLayoutInput) (storage.Layout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stage := ""
	if in.ForStage {
		stage = string(s.stage)
	}
	return s.layouts.SaveCurrent(ctx, layout.SaveInput{
		UserID:      s.scope.UserID,
		CampaignID:  s.scope.CampaignID,
		Name:        in.Name,
		Description: in.Description,
		Stage:       stage,
		IsDefault:   in.IsDefault,
	})
}

// LoadLayout restores a saved layout.
func (s *Session) LoadLayout(ctx context.Context, layoutID string) (storage.Layout, error) {
	var loaded storage.Layout
	err := s.mutate(func() error {
		var err error
		loaded, err = s.layouts.Load(ctx, layoutID)
		return err
	})
	return loaded, err
}

// ListLayouts returns the layouts of the session scope.
func (s *Session) ListLayouts(ctx context.Context) ([]storage.Layout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layouts.List(ctx, s.scope)
}

// SetDefaultLayout marks a layout as default.
func (s *Session) SetDefaultLayout(ctx context.Context, layoutID string) (storage.Layout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layouts.SetDefault(ctx, layoutID)
}

// UpdateLayout changes layout metadata.
func (s *Session) UpdateLayout(ctx context.Context, layoutID string, in layout.UpdateInput) (storage.Layout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layouts.Update(ctx, layoutID, in)
}

// DeleteLayout removes a layout.
func (s *Session) DeleteLayout(ctx context.Context, layoutID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layouts.Delete(ctx, layoutID)
}

// Shutdown ends every subscription and refuses new ones.
func (s *Session) Shutdown() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.closed = true
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
}

// IsNotFound reports whether err names a missing layout or panel.
func IsNotFound(err error) bool {
	var domainErr *apperrors.Error
	return errors.As(err, &domainErr) && domainErr.Code.NotFound()
}
