// Package shoplist owns the item collection. A Manager is the one place
// that mutates items, keeps the category/aisle/store indexes in step and
// talks to the store.Gateway; every operation is synchronous and atomic
// with respect to the others.
package shoplist

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/idilsaglam/shoplist/internal/display"
	"github.com/idilsaglam/shoplist/internal/index"
	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/store"
)

var (
	ErrNotFound         = errors.New("item not found")
	ErrImportInProgress = errors.New("import in progress")
	ErrWrongMode        = errors.New("not available in this display mode")
)

type Option func(*Manager)

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithClock replaces time.Now, for stamping purchases.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

type Manager struct {
	gw  store.Gateway
	log *zap.Logger
	now func() time.Time

	mu         sync.Mutex
	items      []model.Item // load order, which is also export order
	categories *index.Categories
	aisles     *index.Aisles
	stores     *index.Stores
	mode       model.DisplayMode
	filter     model.StoreFilter
	importing  bool
}

// Open loads items and preferences from gw. A persisted display mode that
// doesn't parse is returned as an error; nothing is repaired.
func Open(ctx context.Context, gw store.Gateway, opts ...Option) (*Manager, error) {
	m := &Manager{
		gw:         gw,
		log:        zap.NewNop(),
		now:        time.Now,
		categories: index.NewCategories(),
		aisles:     index.NewAisles(),
		stores:     index.NewStores(),
	}
	for _, o := range opts {
		o(m)
	}

	items, err := gw.LoadItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	m.items = items
	m.reindex()

	if m.mode, err = gw.LoadDisplayMode(ctx); err != nil {
		return nil, fmt.Errorf("load display mode: %w", err)
	}
	if m.filter, err = gw.LoadStoreFilter(ctx); err != nil {
		return nil, fmt.Errorf("load store filter: %w", err)
	}
	m.log.Debug("loaded list",
		zap.Int("items", len(m.items)),
		zap.Stringer("mode", m.mode),
		zap.Stringer("filter", m.filter))
	return m, nil
}

// reindex must be called with mu held.
func (m *Manager) reindex() {
	m.categories.Load(m.items)
	m.aisles.Load(m.items)
	m.stores.Load(m.items)
}

// indexAdd must be called with mu held.
func (m *Manager) indexAdd(it model.Item) {
	m.categories.Add(it)
	m.aisles.Add(it)
	m.stores.Add(it)
}

// find must be called with mu held.
func (m *Manager) find(id int) int {
	return slices.IndexFunc(m.items, func(it model.Item) bool { return it.ID == id })
}

// mutable must be called with mu held.
func (m *Manager) mutable() error {
	if m.importing {
		return ErrImportInProgress
	}
	return nil
}

func (m *Manager) Mode() model.DisplayMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

func (m *Manager) Filter() model.StoreFilter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter
}

// Importing reports whether a background import is running.
func (m *Manager) Importing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.importing
}

// Items returns copies of all items in collection order.
func (m *Manager) Items() []model.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Item, len(m.items))
	for i, it := range m.items {
		out[i] = it.Clone()
	}
	return out
}

func (m *Manager) Item(id int) (model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id)
	if i < 0 {
		return model.Item{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return m.items[i].Clone(), nil
}

func (m *Manager) Categories() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.categories.Values()
}

func (m *Manager) Aisles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.aisles.Values()
}

func (m *Manager) Stores() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stores.Values()
}

// View computes what to display for the current mode and filter. If the
// filter no longer matches any choice it falls back to all stores, and the
// fallback is saved.
func (m *Manager) View(ctx context.Context, search string) display.View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view(ctx, search)
}

// view must be called with mu held.
func (m *Manager) view(ctx context.Context, search string) display.View {
	v := display.Compute(m.items, display.Query{Mode: m.mode, Filter: m.filter, Search: search})
	if v.Filter != m.filter {
		m.log.Debug("store filter reset", zap.Stringer("from", m.filter), zap.Stringer("to", v.Filter))
		m.filter = v.Filter
		if err := m.gw.SaveStoreFilter(ctx, m.filter); err != nil {
			m.log.Warn("save store filter", zap.Error(err))
		}
	}
	return v
}

// Draft is the editable part of an item.
type Draft struct {
	Description string
	Category    string
	AutoDelete  bool
	StoreAisles map[string]string
}

// DraftOf returns the editable fields of it.
func DraftOf(it model.Item) Draft {
	c := it.Clone()
	return Draft{
		Description: c.Description,
		Category:    c.Category,
		AutoDelete:  c.AutoDelete,
		StoreAisles: c.StoreAisles,
	}
}

// DefaultAisle is used for a store when nothing better is known.
const DefaultAisle = "1"

// apply copies d onto it. Text fields go through model.CleanField. A store
// given without an aisle gets one picked by defaultAisle.
// apply must be called with mu held.
func (m *Manager) apply(d Draft, it *model.Item) {
	it.Description = model.CleanField(d.Description)
	it.Category = model.CleanField(d.Category)
	it.AutoDelete = d.AutoDelete

	given := map[string]string{}
	var blank []string
	for store, aisle := range d.StoreAisles {
		store, aisle = model.CleanField(store), model.CleanField(aisle)
		switch {
		case store == "":
		case aisle == "":
			blank = append(blank, store)
		default:
			given[store] = aisle
		}
	}
	it.ClearStoreAisles()
	for store, aisle := range given {
		it.SetStoreAisle(store, aisle)
	}
	for _, store := range blank {
		if _, ok := given[store]; !ok {
			it.SetStoreAisle(store, m.defaultAisle(store, given))
		}
	}
}

// defaultAisle picks an aisle for store: an aisle named like the store if
// one is known, else the first aisle of the other stores (in store order)
// that isn't just its store's name, else DefaultAisle.
// defaultAisle must be called with mu held.
func (m *Manager) defaultAisle(store string, others map[string]string) string {
	if m.aisles.Contains(store) {
		return store
	}
	for _, other := range slices.Sorted(maps.Keys(others)) {
		if aisle := others[other]; aisle != other {
			return aisle
		}
	}
	return DefaultAisle
}

// Add creates a needed item from d.
func (m *Manager) Add(ctx context.Context, d Draft) (model.Item, error) {
	if model.CleanField(d.Description) == "" {
		return model.Item{}, model.ErrEmptyDescription
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.mutable(); err != nil {
		return model.Item{}, err
	}

	id, err := m.gw.UnusedItemID(ctx)
	if err != nil {
		return model.Item{}, fmt.Errorf("allocate id: %w", err)
	}
	it := model.NewItem(id)
	m.apply(d, &it)
	if err := m.gw.SaveItem(ctx, it); err != nil {
		if derr := m.gw.DeleteItem(ctx, it); derr != nil {
			m.log.Warn("release id", zap.Int("id", id), zap.Error(derr))
		}
		return model.Item{}, fmt.Errorf("save item: %w", err)
	}
	m.items = append(m.items, it)
	m.indexAdd(it)
	m.log.Debug("added item", zap.Int("id", id), zap.String("description", it.Description))
	return it.Clone(), nil
}

// Edit replaces the editable fields of item id. State and purchase date stay.
func (m *Manager) Edit(ctx context.Context, id int, d Draft) (model.Item, error) {
	if model.CleanField(d.Description) == "" {
		return model.Item{}, model.ErrEmptyDescription
	}
	return m.update(ctx, id, func(it *model.Item) error {
		m.apply(d, it)
		return nil
	})
}

// update must not be called with mu held.
func (m *Manager) update(ctx context.Context, id int, fn func(*model.Item) error) (model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.mutable(); err != nil {
		return model.Item{}, err
	}
	i := m.find(id)
	if i < 0 {
		return model.Item{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	it := m.items[i].Clone()
	if err := fn(&it); err != nil {
		return model.Item{}, err
	}
	if err := m.gw.SaveItem(ctx, it); err != nil {
		return model.Item{}, fmt.Errorf("save item: %w", err)
	}
	m.items[i] = it
	m.indexAdd(it)
	return it.Clone(), nil
}

// Delete removes item id. The indexes keep whatever it contributed.
func (m *Manager) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.mutable(); err != nil {
		return err
	}
	i := m.find(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err := m.gw.DeleteItem(ctx, m.items[i]); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	m.items = slices.Delete(m.items, i, i+1)
	m.log.Debug("deleted item", zap.Int("id", id))
	return nil
}

// Toggle flips item id's checkbox under the current display mode.
func (m *Manager) Toggle(ctx context.Context, id int) (model.Item, error) {
	return m.update(ctx, id, func(it *model.Item) error {
		next, err := model.Toggle(m.mode, it.State)
		if err != nil {
			return err
		}
		it.State = next
		return nil
	})
}

// SetChecked sets item id's checkbox under the current display mode.
func (m *Manager) SetChecked(ctx context.Context, id int, checked bool) (model.Item, error) {
	return m.update(ctx, id, func(it *model.Item) error {
		next, err := model.SetChecked(m.mode, it.State, checked)
		if err != nil {
			return err
		}
		it.State = next
		return nil
	})
}

type ClearResult struct {
	Deleted int
	Reset   int
}

// ClearChecked empties the cart of the items currently displayed for
// search: auto-delete items go away, the rest become not needed and get
// their purchase date stamped. Shopping mode only.
func (m *Manager) ClearChecked(ctx context.Context, search string) (ClearResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res ClearResult
	if err := m.mutable(); err != nil {
		return res, err
	}
	if m.mode != model.Shopping {
		return res, fmt.Errorf("clear checked items: %w", ErrWrongMode)
	}
	now := m.now()
	for _, row := range m.view(ctx, search).Rows {
		if row.Item.State != model.InShoppingCart {
			continue
		}
		i := m.find(row.Item.ID)
		if row.Item.AutoDelete {
			if err := m.gw.DeleteItem(ctx, m.items[i]); err != nil {
				return res, fmt.Errorf("delete item: %w", err)
			}
			m.items = slices.Delete(m.items, i, i+1)
			res.Deleted++
			continue
		}
		it := m.items[i].Clone()
		it.State = model.DontNeed
		it.LastPurchased = now
		if err := m.gw.SaveItem(ctx, it); err != nil {
			return res, fmt.Errorf("save item: %w", err)
		}
		m.items[i] = it
		res.Reset++
	}
	m.log.Debug("cleared checked items", zap.Int("deleted", res.Deleted), zap.Int("reset", res.Reset))
	return res, nil
}

func (m *Manager) SetDisplayMode(ctx context.Context, mode model.DisplayMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setDisplayMode(ctx, mode)
}

// ToggleDisplayMode switches between planning and shopping and returns the new mode.
func (m *Manager) ToggleDisplayMode(ctx context.Context) (model.DisplayMode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.mode.Other()
	if err := m.setDisplayMode(ctx, next); err != nil {
		return 0, err
	}
	return next, nil
}

// setDisplayMode must be called with mu held.
func (m *Manager) setDisplayMode(ctx context.Context, mode model.DisplayMode) error {
	if err := m.mutable(); err != nil {
		return err
	}
	if mode == m.mode {
		return nil
	}
	if err := m.gw.SaveDisplayMode(ctx, mode); err != nil {
		return fmt.Errorf("save display mode: %w", err)
	}
	m.mode = mode
	return nil
}

func (m *Manager) SetStoreFilter(ctx context.Context, f model.StoreFilter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.mutable(); err != nil {
		return err
	}
	if f == m.filter {
		return nil
	}
	if err := m.gw.SaveStoreFilter(ctx, f); err != nil {
		return fmt.Errorf("save store filter: %w", err)
	}
	m.filter = f
	return nil
}
