package model

import (
	"fmt"
	"strings"
)

type filterKind uint8

const (
	allStores filterKind = iota
	missingStore
	specificStore
)

// StoreFilter scopes the list to all stores, to items with no store, or
// to one named store. The zero value is AllStores.
type StoreFilter struct {
	kind  filterKind
	store string
}

func AllStores() StoreFilter    { return StoreFilter{kind: allStores} }
func MissingStore() StoreFilter { return StoreFilter{kind: missingStore} }

// SpecificStore scopes to name. An empty name means all stores.
func SpecificStore(name string) StoreFilter {
	if name == "" {
		return AllStores()
	}
	return StoreFilter{kind: specificStore, store: name}
}

func (f StoreFilter) IsAll() bool     { return f.kind == allStores }
func (f StoreFilter) IsMissing() bool { return f.kind == missingStore }

// Store returns the named store and true for a specific-store filter.
func (f StoreFilter) Store() (string, bool) {
	return f.store, f.kind == specificStore
}

// Label is the text shown in the filter picker.
func (f StoreFilter) Label() string {
	switch f.kind {
	case missingStore:
		return "<Missing Store>"
	case specificStore:
		return f.store
	}
	return "<All Stores>"
}

// Keep decides whether an item passes the store part of the filter.
// Only the missing-store filter hides items; a named store only
// changes the aisle ordering.
func (f StoreFilter) Keep(it Item) bool {
	if f.kind == missingStore {
		return it.IsMissingStore()
	}
	return true
}

const storePrefix = "store:"

// String is the persisted form: "all", "missing" or "store:<name>".
func (f StoreFilter) String() string {
	switch f.kind {
	case missingStore:
		return "missing"
	case specificStore:
		return storePrefix + f.store
	}
	return "all"
}

// ParseStoreFilter reads the persisted form. The angle-bracket labels and
// bare store names written by older versions are accepted too.
func ParseStoreFilter(s string) StoreFilter {
	switch s {
	case "", "all", "<All Stores>":
		return AllStores()
	case "missing", "<Missing Store>":
		return MissingStore()
	}
	if name, ok := strings.CutPrefix(s, storePrefix); ok {
		return SpecificStore(name)
	}
	return SpecificStore(s)
}

func (f StoreFilter) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *StoreFilter) UnmarshalText(b []byte) error {
	*f = ParseStoreFilter(string(b))
	return nil
}

func (f StoreFilter) GoString() string {
	return fmt.Sprintf("model.StoreFilter(%s)", f.String())
}
