package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/store"
)

// JSON-backed storage. Single file, human-readable, portable.
// The whole document is rewritten on every change; fine for a personal list.

const DefaultFileName = "shoplist.json"

type document struct {
	MaxItemID   int                `json:"max_item_id"`
	Items       map[int]model.Item `json:"items"`
	DisplayMode string             `json:"display_mode,omitempty"`
	StoreFilter string             `json:"store_filter,omitempty"`
}

type Store struct {
	mu     sync.Mutex
	path   string
	doc    document
	ids    store.IDAllocator
	closed bool
}

var _ store.Gateway = (*Store)(nil)

// Open reads path, or starts empty if it doesn't exist yet.
func Open(path string) (*Store, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getwd: %w", err)
		}
		path = filepath.Join(wd, DefaultFileName)
	}
	s := &Store{path: path, doc: document{Items: map[int]model.Item{}}}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read file: %w", err)
	default:
		if err := json.Unmarshal(b, &s.doc); err != nil {
			return nil, fmt.Errorf("json unmarshal: %w", err)
		}
		if s.doc.Items == nil {
			s.doc.Items = map[int]model.Item{}
		}
	}
	s.ids.Reset(s.doc.MaxItemID, func(id int) bool {
		_, ok := s.doc.Items[id]
		return ok
	})
	return s, nil
}

// save must be called with mu held.
func (s *Store) save() error {
	if s.closed {
		return store.ErrClosed
	}
	s.doc.MaxItemID = s.ids.Max()
	b, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func (s *Store) LoadItems(context.Context) ([]model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, store.ErrClosed
	}
	out := make([]model.Item, 0, len(s.doc.Items))
	for _, id := range slices.Sorted(maps.Keys(s.doc.Items)) {
		it := s.doc.Items[id].Clone()
		it.ID = id
		out = append(out, it)
	}
	return out, nil
}

func (s *Store) SaveItem(_ context.Context, it model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.doc.Items[it.ID]
	s.doc.Items[it.ID] = it.Clone()
	if err := s.save(); err != nil {
		if had {
			s.doc.Items[it.ID] = prev
		} else {
			delete(s.doc.Items, it.ID)
		}
		return err
	}
	return nil
}

func (s *Store) DeleteItem(_ context.Context, it model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.doc.Items[it.ID]
	before := s.ids.Clone()
	delete(s.doc.Items, it.ID)
	s.ids.Release(it.ID)
	if err := s.save(); err != nil {
		if had {
			s.doc.Items[it.ID] = prev
		}
		s.ids = before
		return err
	}
	return nil
}

func (s *Store) UnusedItemID(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.ids.Clone()
	id, grew := s.ids.Next()
	if grew {
		if err := s.save(); err != nil {
			s.ids = before
			return 0, err
		}
	}
	return id, nil
}

func (s *Store) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, before := s.doc.Items, s.ids.Clone()
	s.doc.Items = map[int]model.Item{}
	s.ids.Clear()
	if err := s.save(); err != nil {
		s.doc.Items, s.ids = items, before
		return err
	}
	return nil
}

func (s *Store) LoadDisplayMode(context.Context) (model.DisplayMode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.ParseDisplayMode(s.doc.DisplayMode)
}

func (s *Store) SaveDisplayMode(_ context.Context, mode model.DisplayMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.doc.DisplayMode
	s.doc.DisplayMode = mode.String()
	if err := s.save(); err != nil {
		s.doc.DisplayMode = prev
		return err
	}
	return nil
}

func (s *Store) LoadStoreFilter(context.Context) (model.StoreFilter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.ParseStoreFilter(s.doc.StoreFilter), nil
}

func (s *Store) SaveStoreFilter(_ context.Context, f model.StoreFilter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.doc.StoreFilter
	s.doc.StoreFilter = f.String()
	if err := s.save(); err != nil {
		s.doc.StoreFilter = prev
		return err
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
