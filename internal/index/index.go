// Package index keeps the sorted, deduplicated projections of the item
// collection that the editors offer as choices: categories, aisles and
// stores.
//
// The sets only grow between rebuilds. Deleting an item does not remove
// its category, aisles or stores; they disappear on the next Load.
// Callers own synchronization.
package index

import (
	"cmp"
	"maps"
	"slices"

	"github.com/idilsaglam/shoplist/internal/model"
)

type set struct {
	values map[string]struct{}
	order  func(a, b string) int
}

func newSet(order func(a, b string) int) set {
	return set{values: map[string]struct{}{}, order: order}
}

func (s *set) clear() {
	clear(s.values)
}

func (s *set) add(v string) {
	s.values[v] = struct{}{}
}

func (s *set) has(v string) bool {
	_, ok := s.values[v]
	return ok
}

func (s *set) len() int {
	return len(s.values)
}

func (s *set) sorted() []string {
	out := slices.Collect(maps.Keys(s.values))
	slices.SortFunc(out, s.order)
	return out
}

// Categories is the set of non-empty categories in use.
type Categories struct{ s set }

func NewCategories() *Categories { return &Categories{s: newSet(cmp.Compare[string])} }

func (c *Categories) Load(items []model.Item) {
	c.Clear()
	for _, it := range items {
		c.Add(it)
	}
}

func (c *Categories) Clear() { c.s.clear() }

func (c *Categories) Add(it model.Item) {
	if it.Category != "" {
		c.s.add(it.Category)
	}
}

func (c *Categories) Contains(category string) bool { return c.s.has(category) }
func (c *Categories) Len() int                      { return c.s.len() }
func (c *Categories) Values() []string              { return c.s.sorted() }

// Aisles is the set of aisle labels in use, in store-walk order.
type Aisles struct{ s set }

func NewAisles() *Aisles { return &Aisles{s: newSet(model.AisleLabelOrder)} }

func (a *Aisles) Load(items []model.Item) {
	a.Clear()
	for _, it := range items {
		a.Add(it)
	}
}

func (a *Aisles) Clear() { a.s.clear() }

func (a *Aisles) Add(it model.Item) {
	for _, aisle := range it.StoreAisles {
		a.s.add(aisle)
	}
}

func (a *Aisles) Contains(aisle string) bool { return a.s.has(aisle) }
func (a *Aisles) Len() int                   { return a.s.len() }
func (a *Aisles) Values() []string           { return a.s.sorted() }

// Stores is the set of stores in use. It also remembers whether any item
// added since the last Clear had no store at all.
type Stores struct {
	s       set
	missing bool
}

func NewStores() *Stores { return &Stores{s: newSet(cmp.Compare[string])} }

func (st *Stores) Load(items []model.Item) {
	st.Clear()
	for _, it := range items {
		st.Add(it)
	}
}

func (st *Stores) Clear() {
	st.s.clear()
	st.missing = false
}

func (st *Stores) Add(it model.Item) {
	if it.IsMissingStore() {
		st.missing = true
	}
	for store := range it.StoreAisles {
		st.s.add(store)
	}
}

func (st *Stores) Contains(store string) bool { return st.s.has(store) }
func (st *Stores) MissingStore() bool         { return st.missing }
func (st *Stores) Len() int                   { return st.s.len() }
func (st *Stores) Values() []string           { return st.s.sorted() }

// FilterChoices lists the store filters worth offering: all stores, the
// missing-store filter when some item has no store, then each store.
func (st *Stores) FilterChoices() []model.StoreFilter {
	out := make([]model.StoreFilter, 0, st.s.len()+2)
	out = append(out, model.AllStores())
	if st.missing {
		out = append(out, model.MissingStore())
	}
	for _, store := range st.s.sorted() {
		out = append(out, model.SpecificStore(store))
	}
	return out
}
