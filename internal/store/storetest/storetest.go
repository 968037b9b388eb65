// Package storetest holds the behaviour every store.Gateway backend must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/store"
)

// Opener returns a gateway over the same backing data each time it is
// called. The previous gateway is closed by the suite before reopening.
type Opener func() (store.Gateway, error)

// Run exercises a backend. newOpener must return an opener bound to fresh,
// empty storage.
func Run(t *testing.T, newOpener func(t *testing.T) Opener) {
	t.Run("Empty", func(t *testing.T) { testEmpty(t, newOpener(t)) })
	t.Run("IDs", func(t *testing.T) { testIDs(t, newOpener(t)) })
	t.Run("SaveReload", func(t *testing.T) { testSaveReload(t, newOpener(t)) })
	t.Run("HolesSurviveReopen", func(t *testing.T) { testHolesSurviveReopen(t, newOpener(t)) })
	t.Run("Prefs", func(t *testing.T) { testPrefs(t, newOpener(t)) })
	t.Run("Clear", func(t *testing.T) { testClear(t, newOpener(t)) })
}

func open(t *testing.T, o Opener) store.Gateway {
	t.Helper()
	gw, err := o()
	require.NoError(t, err)
	return gw
}

func reopen(t *testing.T, gw store.Gateway, o Opener) store.Gateway {
	t.Helper()
	require.NoError(t, gw.Close())
	return open(t, o)
}

func addItem(t *testing.T, gw store.Gateway, desc string) model.Item {
	t.Helper()
	ctx := context.Background()
	id, err := gw.UnusedItemID(ctx)
	require.NoError(t, err)
	it := model.NewItem(id)
	it.Description = desc
	require.NoError(t, gw.SaveItem(ctx, it))
	return it
}

func testEmpty(t *testing.T, o Opener) {
	ctx := context.Background()
	gw := open(t, o)
	defer gw.Close()

	items, err := gw.LoadItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	mode, err := gw.LoadDisplayMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Planning, mode)

	f, err := gw.LoadStoreFilter(ctx)
	require.NoError(t, err)
	assert.True(t, f.IsAll())
}

func testIDs(t *testing.T, o Opener) {
	ctx := context.Background()
	gw := open(t, o)
	defer gw.Close()

	a := addItem(t, gw, "a")
	b := addItem(t, gw, "b")
	c := addItem(t, gw, "c")
	assert.Equal(t, []int{1, 2, 3}, []int{a.ID, b.ID, c.ID})

	require.NoError(t, gw.DeleteItem(ctx, b))
	id, err := gw.UnusedItemID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, id, "freed id is reused")

	id, err = gw.UnusedItemID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, id)

	// Id 4 was handed out but never saved; releasing the top lowers the mark.
	require.NoError(t, gw.DeleteItem(ctx, model.Item{ID: 4}))
	id, err = gw.UnusedItemID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, id)
}

func testSaveReload(t *testing.T, o Opener) {
	ctx := context.Background()
	gw := open(t, o)

	id, err := gw.UnusedItemID(ctx)
	require.NoError(t, err)
	it := model.NewItem(id)
	it.Description = "Coffee"
	it.Category = "Pantry"
	it.State = model.InShoppingCart
	it.AutoDelete = true
	it.LastPurchased = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	it.SetStoreAisle("Acme", "9")
	it.SetStoreAisle("Corner", "Drinks")
	require.NoError(t, gw.SaveItem(ctx, it))

	other := addItem(t, gw, "Tea")

	it.Category = "Drinks"
	require.NoError(t, gw.SaveItem(ctx, it))

	gw = reopen(t, gw, o)
	defer gw.Close()

	items, err := gw.LoadItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, it.ID, items[0].ID)
	assert.Equal(t, "Drinks", items[0].Category)
	assert.Equal(t, it.StoreAisles, items[0].StoreAisles)
	assert.Equal(t, model.InShoppingCart, items[0].State)
	assert.True(t, items[0].AutoDelete)
	assert.True(t, it.LastPurchased.Equal(items[0].LastPurchased))
	assert.Equal(t, other.ID, items[1].ID)
	assert.Equal(t, "Tea", items[1].Description)

	id, err = gw.UnusedItemID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, id)
}

func testHolesSurviveReopen(t *testing.T, o Opener) {
	ctx := context.Background()
	gw := open(t, o)
	addItem(t, gw, "a")
	b := addItem(t, gw, "b")
	addItem(t, gw, "c")
	require.NoError(t, gw.DeleteItem(ctx, b))

	gw = reopen(t, gw, o)
	defer gw.Close()

	items, err := gw.LoadItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	id, err := gw.UnusedItemID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, id)
}

func testPrefs(t *testing.T, o Opener) {
	ctx := context.Background()
	gw := open(t, o)
	require.NoError(t, gw.SaveDisplayMode(ctx, model.Shopping))
	require.NoError(t, gw.SaveStoreFilter(ctx, model.SpecificStore("<All Stores>")))

	gw = reopen(t, gw, o)
	mode, err := gw.LoadDisplayMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Shopping, mode)
	f, err := gw.LoadStoreFilter(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.SpecificStore("<All Stores>"), f)

	require.NoError(t, gw.SaveStoreFilter(ctx, model.MissingStore()))
	gw = reopen(t, gw, o)
	defer gw.Close()
	f, err = gw.LoadStoreFilter(ctx)
	require.NoError(t, err)
	assert.True(t, f.IsMissing())
}

func testClear(t *testing.T, o Opener) {
	ctx := context.Background()
	gw := open(t, o)
	addItem(t, gw, "a")
	addItem(t, gw, "b")
	require.NoError(t, gw.Clear(ctx))

	gw = reopen(t, gw, o)
	defer gw.Close()
	items, err := gw.LoadItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
	id, err := gw.UnusedItemID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}
