package model

import (
	"cmp"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// CompareAisles orders aisle labels the way you walk a store: numbered
// aisles first in numeric order, then named sections alphabetically
// ignoring case.
func CompareAisles(a, b string) int {
	n1, err1 := strconv.ParseInt(a, 10, 32)
	n2, err2 := strconv.ParseInt(b, 10, 32)
	switch {
	case err1 == nil && err2 == nil:
		return cmp.Compare(n1, n2)
	case err1 == nil:
		return -1
	case err2 == nil:
		return 1
	}
	return CompareFold(a, b)
}

// CompareFold compares two strings rune by rune ignoring case.
func CompareFold(a, b string) int {
	for a != "" && b != "" {
		r1, n1 := utf8.DecodeRuneInString(a)
		r2, n2 := utf8.DecodeRuneInString(b)
		a, b = a[n1:], b[n2:]
		if r1 == r2 {
			continue
		}
		f1 := unicode.ToLower(unicode.ToUpper(r1))
		f2 := unicode.ToLower(unicode.ToUpper(r2))
		if f1 != f2 {
			return cmp.Compare(f1, f2)
		}
	}
	return cmp.Compare(len(a), len(b))
}

// PlanningOrder sorts by category, then description, then id.
func PlanningOrder(a, b Item) int {
	if c := CompareFold(a.Category, b.Category); c != 0 {
		return c
	}
	if c := CompareFold(a.Description, b.Description); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// ShoppingOrder puts needed items first. With a specific store filter the
// items are then walked in that store's aisle order, items the store
// doesn't carry last. Description and id break the remaining ties.
func ShoppingOrder(filter StoreFilter) func(a, b Item) int {
	store, byAisle := filter.Store()
	return func(a, b Item) int {
		if a.State != b.State {
			if a.State == Need {
				return -1
			}
			if b.State == Need {
				return 1
			}
		}
		if byAisle {
			if c := CompareAisles(a.Aisle(store), b.Aisle(store)); c != 0 {
				return c
			}
		}
		if c := CompareFold(a.Description, b.Description); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	}
}

// OrderFor picks the comparator for a display mode.
func OrderFor(mode DisplayMode, filter StoreFilter) func(a, b Item) int {
	if mode == Shopping {
		return ShoppingOrder(filter)
	}
	return PlanningOrder
}

// AisleLabelOrder is CompareAisles made strict: labels equal under the
// aisle rule ("bakery", "Bakery") fall back to byte order.
func AisleLabelOrder(a, b string) int {
	if c := CompareAisles(a, b); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}
