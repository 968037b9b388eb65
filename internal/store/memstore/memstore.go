// Package memstore is a process-local store.Gateway. Nothing survives the
// process; it backs tests and --ephemeral runs.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/store"
)

type Store struct {
	mu     sync.Mutex
	items  map[int]model.Item
	ids    store.IDAllocator
	mode   model.DisplayMode
	filter model.StoreFilter
}

var _ store.Gateway = (*Store)(nil)

func New() *Store {
	return &Store{items: map[int]model.Item{}}
}

func (s *Store) LoadItems(context.Context) ([]model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Item, 0, len(s.items))
	for _, id := range slices.Sorted(maps.Keys(s.items)) {
		out = append(out, s.items[id].Clone())
	}
	return out, nil
}

func (s *Store) SaveItem(_ context.Context, it model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[it.ID] = it.Clone()
	return nil
}

func (s *Store) DeleteItem(_ context.Context, it model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, it.ID)
	s.ids.Release(it.ID)
	return nil
}

func (s *Store) UnusedItemID(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, _ := s.ids.Next()
	return id, nil
}

func (s *Store) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.items)
	s.ids.Clear()
	return nil
}

func (s *Store) LoadDisplayMode(context.Context) (model.DisplayMode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode, nil
}

func (s *Store) SaveDisplayMode(_ context.Context, mode model.DisplayMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
	return nil
}

func (s *Store) LoadStoreFilter(context.Context) (model.StoreFilter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter, nil
}

func (s *Store) SaveStoreFilter(_ context.Context, f model.StoreFilter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
	return nil
}

// Close is a no-op; the data stays readable for whoever holds the Store.
func (s *Store) Close() error { return nil }
