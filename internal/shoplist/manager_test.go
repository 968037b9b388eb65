package shoplist

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/store"
	"github.com/idilsaglam/shoplist/internal/store/memstore"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	defaultWait = 2 * time.Second
	defaultTick = 10 * time.Millisecond
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newManager(t *testing.T, gw store.Gateway) *Manager {
	t.Helper()
	if gw == nil {
		gw = memstore.New()
	}
	m, err := Open(context.Background(), gw, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return m
}

func add(t *testing.T, m *Manager, desc, cat string, stores map[string]string) model.Item {
	t.Helper()
	it, err := m.Add(context.Background(), Draft{Description: desc, Category: cat, StoreAisles: stores})
	require.NoError(t, err)
	return it
}

func rowDescs(m *Manager, search string) []string {
	v := m.View(context.Background(), search)
	out := make([]string, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = r.Item.Description
	}
	return out
}

func TestAddAssignsIDsAndIndexes(t *testing.T) {
	m := newManager(t, nil)
	milk := add(t, m, "  Milk ", "Dairy", map[string]string{"Acme": "4"})
	bread := add(t, m, "Bread", "Bakery", nil)

	assert.Equal(t, 1, milk.ID)
	assert.Equal(t, 2, bread.ID)
	assert.Equal(t, "Milk", milk.Description)
	assert.Equal(t, model.Need, milk.State)
	assert.Equal(t, []string{"Bakery", "Dairy"}, m.Categories())
	assert.Equal(t, []string{"4"}, m.Aisles())
	assert.Equal(t, []string{"Acme"}, m.Stores())
	assert.Equal(t, []string{"Bread", "Milk"}, rowDescs(m, ""))
}

func TestAddRejectsEmptyDescription(t *testing.T) {
	m := newManager(t, nil)
	_, err := m.Add(context.Background(), Draft{Description: "  "})
	assert.ErrorIs(t, err, model.ErrEmptyDescription)
	assert.Empty(t, m.Items())

	it := add(t, m, "Milk", "", nil)
	assert.Equal(t, 1, it.ID, "rejected add must not burn an id")
}

func TestEditKeepsStateAndGrowsIndexes(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, nil)
	it := add(t, m, "Milk", "Dairy", map[string]string{"Acme": "4"})
	require.NoError(t, m.SetDisplayMode(ctx, model.Shopping))
	_, err := m.Toggle(ctx, it.ID)
	require.NoError(t, err)

	edited, err := m.Edit(ctx, it.ID, Draft{Description: "Oat milk", Category: "Drinks", StoreAisles: map[string]string{"Corner": "2"}})
	require.NoError(t, err)
	assert.Equal(t, model.InShoppingCart, edited.State)
	assert.Equal(t, map[string]string{"Corner": "2"}, edited.StoreAisles)

	// Old values stay in the indexes until the next full load.
	assert.Equal(t, []string{"Dairy", "Drinks"}, m.Categories())
	assert.Equal(t, []string{"Acme", "Corner"}, m.Stores())

	_, err = m.Edit(ctx, it.ID, Draft{Description: ""})
	assert.ErrorIs(t, err, model.ErrEmptyDescription)
	_, err = m.Edit(ctx, 99, Draft{Description: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteDoesNotShrinkIndexesAndFreesID(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, nil)
	add(t, m, "Milk", "Dairy", nil)
	nails := add(t, m, "Nails", "Hardware", map[string]string{"Depot": "9"})
	add(t, m, "Bread", "Bakery", nil)

	require.NoError(t, m.Delete(ctx, nails.ID))
	assert.Len(t, m.Items(), 2)
	assert.Contains(t, m.Categories(), "Hardware")
	assert.Contains(t, m.Stores(), "Depot")

	again := add(t, m, "Eggs", "Dairy", nil)
	assert.Equal(t, nails.ID, again.ID)

	assert.ErrorIs(t, m.Delete(ctx, 42), ErrNotFound)
}

func TestToggleFollowsMode(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, nil)
	it := add(t, m, "Milk", "Dairy", nil)

	got, err := m.Toggle(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DontNeed, got.State)
	got, err = m.Toggle(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Need, got.State)

	mode, err := m.ToggleDisplayMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Shopping, mode)

	got, err = m.Toggle(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InShoppingCart, got.State)

	_, err = m.ToggleDisplayMode(ctx)
	require.NoError(t, err)
	_, err = m.Toggle(ctx, it.ID)
	assert.ErrorIs(t, err, model.ErrToggleDisabled)

	got, err = m.SetChecked(ctx, it.ID, true)
	assert.ErrorIs(t, err, model.ErrToggleDisabled)
	assert.Equal(t, model.Item{}, got)
}

func TestClearChecked(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, nil)
	gone, err := m.Add(ctx, Draft{Description: "Batteries", AutoDelete: true})
	require.NoError(t, err)
	kept := add(t, m, "Milk", "Dairy", nil)
	needed := add(t, m, "Eggs", "Dairy", nil)

	_, err = m.ClearChecked(ctx, "")
	assert.ErrorIs(t, err, ErrWrongMode)

	require.NoError(t, m.SetDisplayMode(ctx, model.Shopping))
	for _, id := range []int{gone.ID, kept.ID} {
		_, err := m.SetChecked(ctx, id, true)
		require.NoError(t, err)
	}

	res, err := m.ClearChecked(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, ClearResult{Deleted: 1, Reset: 1}, res)

	_, err = m.Item(gone.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := m.Item(kept.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DontNeed, got.State)
	assert.Equal(t, fixedNow, got.LastPurchased)
	got, err = m.Item(needed.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Need, got.State)
}

func TestClearCheckedOnlyTouchesDisplayedItems(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, nil)
	milk := add(t, m, "Milk", "Dairy", nil)
	soap := add(t, m, "Soap", "Home", nil)
	require.NoError(t, m.SetDisplayMode(ctx, model.Shopping))
	for _, id := range []int{milk.ID, soap.ID} {
		_, err := m.SetChecked(ctx, id, true)
		require.NoError(t, err)
	}

	res, err := m.ClearChecked(ctx, "milk")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Reset)
	got, _ := m.Item(soap.ID)
	assert.Equal(t, model.InShoppingCart, got.State)
}

func TestViewResetsStaleFilterAndSavesIt(t *testing.T) {
	ctx := context.Background()
	gw := memstore.New()
	m := newManager(t, gw)
	add(t, m, "Milk", "Dairy", map[string]string{"Acme": "4"})
	require.NoError(t, m.SetStoreFilter(ctx, model.SpecificStore("Gone")))

	v := m.View(ctx, "")
	assert.True(t, v.Filter.IsAll())
	assert.True(t, m.Filter().IsAll())
	f, err := gw.LoadStoreFilter(ctx)
	require.NoError(t, err)
	assert.True(t, f.IsAll())
}

func TestMissingStoreScenario(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, nil)
	milk := add(t, m, "Milk", "Dairy", nil)
	add(t, m, "Bread", "Bakery", nil)
	require.NoError(t, m.SetStoreFilter(ctx, model.MissingStore()))

	assert.Equal(t, []string{"Bread", "Milk"}, rowDescs(m, ""))
	require.NoError(t, m.SetDisplayMode(ctx, model.Shopping))
	assert.Equal(t, []string{"Bread", "Milk"}, rowDescs(m, ""))

	_, err := m.Edit(ctx, milk.ID, Draft{Description: "Milk", Category: "Dairy", StoreAisles: map[string]string{"Acme": "4"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bread"}, rowDescs(m, ""))
}

func TestOpenRestoresState(t *testing.T) {
	ctx := context.Background()
	gw := memstore.New()
	m := newManager(t, gw)
	add(t, m, "Milk", "Dairy", map[string]string{"Acme": "4"})
	require.NoError(t, m.SetDisplayMode(ctx, model.Shopping))
	require.NoError(t, m.SetStoreFilter(ctx, model.SpecificStore("Acme")))

	again := newManager(t, gw)
	assert.Equal(t, model.Shopping, again.Mode())
	assert.Equal(t, model.SpecificStore("Acme"), again.Filter())
	assert.Len(t, again.Items(), 1)
	assert.Equal(t, []string{"Acme"}, again.Stores())
}

type badModeStore struct{ *memstore.Store }

func (badModeStore) LoadDisplayMode(context.Context) (model.DisplayMode, error) {
	return model.ParseDisplayMode("BROWSING")
}

func TestOpenFailsOnCorruptMode(t *testing.T) {
	_, err := Open(context.Background(), badModeStore{memstore.New()})
	assert.ErrorIs(t, err, model.ErrInvalidDisplayMode)
}

type failingSave struct {
	*memstore.Store
	after int
	saves int
}

var errDisk = errors.New("disk full")

func (f *failingSave) SaveItem(ctx context.Context, it model.Item) error {
	f.saves++
	if f.saves > f.after {
		return errDisk
	}
	return f.Store.SaveItem(ctx, it)
}

func TestAddSaveFailureReleasesID(t *testing.T) {
	gw := &failingSave{Store: memstore.New(), after: 0}
	m := newManager(t, gw)
	_, err := m.Add(context.Background(), Draft{Description: "Milk"})
	assert.ErrorIs(t, err, errDisk)
	assert.Empty(t, m.Items())

	id, err := gw.UnusedItemID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestStoreWithoutAisleGetsDefault(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, nil)
	add(t, m, "Cake", "Bakery", map[string]string{"Corner": "Bakery"})

	tests := []struct {
		name   string
		stores map[string]string
		want   map[string]string
	}{
		{"nothing known", map[string]string{"Acme": ""}, map[string]string{"Acme": DefaultAisle}},
		{"aisle named like the store", map[string]string{"Bakery": " "}, map[string]string{"Bakery": "Bakery"}},
		{"borrowed from another store", map[string]string{"Acme": "", "Depot": "7"}, map[string]string{"Acme": "7", "Depot": "7"}},
		{"store-named aisle not borrowed", map[string]string{"Acme": "", "Deli": "Deli"}, map[string]string{"Acme": DefaultAisle, "Deli": "Deli"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, err := m.Add(ctx, Draft{Description: "Milk", StoreAisles: tt.stores})
			require.NoError(t, err)
			assert.Equal(t, tt.want, it.StoreAisles)
		})
	}
}

func TestItemsFromUserInputSurviveExportImport(t *testing.T) {
	ctx := context.Background()
	src := newManager(t, nil)
	milk, err := src.Add(ctx, Draft{
		Description: "Milk\nEggs\tx",
		Category:    "Dai\try",
		StoreAisles: map[string]string{"Acme": "", "Cor\nner": "B\t2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Milk Eggs x", milk.Description)
	assert.Equal(t, "Dai ry", milk.Category)

	_, err = src.Edit(ctx, milk.ID, Draft{Description: "Oat\r\nmilk", StoreAisles: milk.StoreAisles})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = src.Export(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))

	dst := newManager(t, nil)
	res, err := dst.Import(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Zero(t, res.Skipped)

	want, err := src.Item(milk.ID)
	require.NoError(t, err)
	want.State = model.DontNeed
	if diff := cmp.Diff([]model.Item{want}, dst.Items()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, map[string]string{"Acme": "B 2", "Cor ner": "B 2"}, want.StoreAisles)
}

func TestAddRejectsDescriptionOfSeparatorsOnly(t *testing.T) {
	m := newManager(t, nil)
	_, err := m.Add(context.Background(), Draft{Description: "\n\t"})
	assert.ErrorIs(t, err, model.ErrEmptyDescription)
}

func TestConcurrentModeTogglesAlternate(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, nil)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.ToggleDisplayMode(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, model.Planning, m.Mode(), "an even number of toggles ends where it started")
}
