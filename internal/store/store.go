// Package store defines what the shopping list needs from persistent
// storage. Backends live in the subpackages.
package store

import (
	"context"
	"errors"

	"github.com/idilsaglam/shoplist/internal/model"
)

var ErrClosed = errors.New("store closed")

// Gateway saves items one at a time, hands out item ids and keeps the two
// view preferences. Items are encoded however the backend likes.
type Gateway interface {
	// LoadItems returns every stored item in ascending id order.
	LoadItems(ctx context.Context) ([]model.Item, error)
	SaveItem(ctx context.Context, it model.Item) error
	// DeleteItem removes the item and gives its id back for reuse.
	DeleteItem(ctx context.Context, it model.Item) error
	// UnusedItemID reuses the most recently freed id, else grows the
	// high-water mark.
	UnusedItemID(ctx context.Context) (int, error)
	// Clear drops all items and restarts id allocation.
	Clear(ctx context.Context) error

	LoadDisplayMode(ctx context.Context) (model.DisplayMode, error)
	SaveDisplayMode(ctx context.Context, mode model.DisplayMode) error
	LoadStoreFilter(ctx context.Context) (model.StoreFilter, error)
	SaveStoreFilter(ctx context.Context, f model.StoreFilter) error

	Close() error
}

// ParseDisplayMode reads a persisted mode; empty means never saved.
func ParseDisplayMode(s string) (model.DisplayMode, error) {
	if s == "" {
		return model.Planning, nil
	}
	return model.ParseDisplayMode(s)
}
