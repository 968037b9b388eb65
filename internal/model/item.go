package model

import (
	"errors"
	"maps"
	"slices"
	"strings"
	"time"
)

// AbsentAisle is what Aisle returns for a store that doesn't carry the item.
// It sorts after every digit and ASCII letter under CompareAisles.
const AbsentAisle = "~"

var ErrEmptyDescription = errors.New("item description is empty")

// Item is the domain model for a shopping list entry.
// IDs are handed out by the store, never by the item itself.
type Item struct {
	ID            int               `json:"id"`
	Description   string            `json:"description"`
	Category      string            `json:"category"`
	State         ItemState         `json:"state"`
	AutoDelete    bool              `json:"auto_delete"`
	LastPurchased time.Time         `json:"last_purchased,omitzero"`
	StoreAisles   map[string]string `json:"store_aisles,omitempty"`
}

// NewItem returns an empty item with the given id, needed by default.
func NewItem(id int) Item {
	return Item{ID: id, State: Need, StoreAisles: map[string]string{}}
}

// lineBreaks are the characters the line format uses as separators.
var lineBreaks = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

// CleanField makes s safe to store in a text field: separators of the line
// format become spaces and surrounding space is trimmed.
func CleanField(s string) string {
	return strings.TrimSpace(lineBreaks.Replace(s))
}

// Validate reports whether the item may enter a collection.
func (it Item) Validate() error {
	if strings.TrimSpace(it.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

// Clone returns a copy that shares no map with the receiver.
func (it Item) Clone() Item {
	out := it
	out.StoreAisles = maps.Clone(it.StoreAisles)
	if out.StoreAisles == nil {
		out.StoreAisles = map[string]string{}
	}
	return out
}

func (it *Item) SetStoreAisle(store, aisle string) {
	if it.StoreAisles == nil {
		it.StoreAisles = map[string]string{}
	}
	it.StoreAisles[store] = aisle
}

func (it *Item) ClearStoreAisles() {
	it.StoreAisles = map[string]string{}
}

func (it Item) IsMissingStore() bool { return len(it.StoreAisles) == 0 }

func (it Item) ContainsStore(store string) bool {
	_, ok := it.StoreAisles[store]
	return ok
}

// Stores returns the item's stores in sorted order.
func (it Item) Stores() []string {
	return slices.Sorted(maps.Keys(it.StoreAisles))
}

// Aisle returns the aisle of store, or AbsentAisle if the store doesn't carry it.
func (it Item) Aisle(store string) string {
	if aisle, ok := it.StoreAisles[store]; ok {
		return aisle
	}
	return AbsentAisle
}

// Aisles returns the distinct aisle labels, ordered by CompareAisles.
func (it Item) Aisles() []string {
	seen := make(map[string]struct{}, len(it.StoreAisles))
	out := make([]string, 0, len(it.StoreAisles))
	for _, aisle := range it.StoreAisles {
		if _, dup := seen[aisle]; dup {
			continue
		}
		seen[aisle] = struct{}{}
		out = append(out, aisle)
	}
	slices.SortFunc(out, AisleLabelOrder)
	return out
}

// FirstAisle is a display fallback: the aisle of the first store in key order.
func (it Item) FirstAisle() string {
	stores := it.Stores()
	if len(stores) == 0 {
		return ""
	}
	return it.StoreAisles[stores[0]]
}
