package layout

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/louisbranch/gmworkspace/internal/services/workspace/storage"
)

// fakeStore is an in-memory LayoutStore with per-method failure injection.
type fakeStore struct {
	layouts map[string]storage.Layout
	order   []string

	listErr   error
	createErr error
	updateErr error
	deleteErr error
	getErr    error
	useErr    error

	uses []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{layouts: map[string]storage.Layout{}}
}

func (s *fakeStore) ListLayouts(_ context.Context, scope storage.Scope) ([]storage.Layout, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []storage.Layout
	for _, id := range s.order {
		layout, ok := s.layouts[id]
		if ok && layout.Scope() == scope {
			out = append(out, layout)
		}
	}
	return out, nil
}

func (s *fakeStore) CreateLayout(_ context.Context, layout storage.Layout) (storage.Layout, error) {
	if s.createErr != nil {
		return storage.Layout{}, s.createErr
	}
	if _, ok := s.layouts[layout.ID]; ok {
		return storage.Layout{}, storage.ErrAlreadyExists
	}
	for _, existing := range s.layouts {
		if existing.Scope() == layout.Scope() && existing.Name == layout.Name {
			return storage.Layout{}, storage.ErrAlreadyExists
		}
	}
	if layout.IsDefault {
		s.clearDefaults(layout)
	}
	layout.Snapshot = layout.Snapshot.Clone()
	s.layouts[layout.ID] = layout
	s.order = append(s.order, layout.ID)
	return layout, nil
}

func (s *fakeStore) clearDefaults(keep storage.Layout) {
	for id, existing := range s.layouts {
		if id != keep.ID && existing.Scope() == keep.Scope() && existing.Stage == keep.Stage {
			existing.IsDefault = false
			s.layouts[id] = existing
		}
	}
}

func (s *fakeStore) UpdateLayout(_ context.Context, id string, patch storage.LayoutPatch) (storage.Layout, error) {
	if s.updateErr != nil {
		return storage.Layout{}, s.updateErr
	}
	layout, ok := s.layouts[id]
	if !ok {
		return storage.Layout{}, storage.ErrNotFound
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return storage.Layout{}, errors.New("name is required")
		}
		layout.Name = name
	}
	if patch.Description != nil {
		layout.Description = *patch.Description
	}
	if patch.Snapshot != nil {
		layout.Snapshot = patch.Snapshot.Clone()
	}
	if patch.IsDefault != nil {
		layout.IsDefault = *patch.IsDefault
		if layout.IsDefault {
			s.clearDefaults(layout)
		}
	}
	s.layouts[id] = layout
	return layout, nil
}

func (s *fakeStore) DeleteLayout(_ context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.layouts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.layouts, id)
	return nil
}

func (s *fakeStore) GetLayout(_ context.Context, id string) (storage.Layout, error) {
	if s.getErr != nil {
		return storage.Layout{}, s.getErr
	}
	layout, ok := s.layouts[id]
	if !ok {
		return storage.Layout{}, storage.ErrNotFound
	}
	layout.Snapshot = layout.Snapshot.Clone()
	return layout, nil
}

func (s *fakeStore) RecordLayoutUse(_ context.Context, id string, at time.Time) error {
	if s.useErr != nil {
		return s.useErr
	}
	layout, ok := s.layouts[id]
	if !ok {
		return storage.ErrNotFound
	}
	layout.UsageCount++
	layout.LastUsedAt = at
	s.layouts[id] = layout
	s.uses = append(s.uses, id)
	return nil
}

var _ storage.LayoutStore = (*fakeStore)(nil)
