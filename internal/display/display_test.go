package display

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/shoplist/internal/model"
)

func mk(id int, desc, cat string, state model.ItemState, stores map[string]string) model.Item {
	it := model.NewItem(id)
	it.Description = desc
	it.Category = cat
	it.State = state
	for s, a := range stores {
		it.SetStoreAisle(s, a)
	}
	return it
}

func descs(v View) []string {
	out := make([]string, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = r.Item.Description
	}
	return out
}

func milkAndBread() []model.Item {
	return []model.Item{
		mk(1, "Milk", "Dairy", model.Need, nil),
		mk(2, "Bread", "Bakery", model.Need, nil),
	}
}

func TestPlanningOrdersByCategory(t *testing.T) {
	v := Compute(milkAndBread(), Query{Mode: model.Planning})
	if diff := cmp.Diff([]string{"Bread", "Milk"}, descs(v)); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"Bakery", "Dairy"}, []string{v.Rows[0].Detail, v.Rows[1].Detail})
	assert.Equal(t, "Category", v.Heading)
	assert.Empty(t, v.Empty)
}

func TestMissingStoreFilter(t *testing.T) {
	items := milkAndBread()
	for _, mode := range []model.DisplayMode{model.Planning, model.Shopping} {
		v := Compute(items, Query{Mode: mode, Filter: model.MissingStore()})
		assert.ElementsMatch(t, []string{"Milk", "Bread"}, descs(v), mode.String())
		assert.True(t, v.Filter.IsMissing())
	}

	items[0].SetStoreAisle("Acme", "4")
	v := Compute(items, Query{Mode: model.Planning, Filter: model.MissingStore()})
	assert.Equal(t, []string{"Bread"}, descs(v))
}

func TestMissingStoreFilterFallsBackWhenNothingIsStoreless(t *testing.T) {
	items := []model.Item{mk(1, "Milk", "Dairy", model.Need, map[string]string{"Acme": "4"})}
	v := Compute(items, Query{Mode: model.Planning, Filter: model.MissingStore()})
	assert.True(t, v.Filter.IsAll())
	assert.Equal(t, []string{"Milk"}, descs(v))
}

func TestShoppingHidesDontNeedButKeepsCart(t *testing.T) {
	items := []model.Item{
		mk(1, "Soap", "Home", model.DontNeed, map[string]string{"Hardware": "1"}),
		mk(2, "Milk", "Dairy", model.InShoppingCart, map[string]string{"Acme": "4"}),
		mk(3, "Eggs", "Dairy", model.Need, map[string]string{"Acme": "4"}),
	}
	v := Compute(items, Query{Mode: model.Shopping})
	assert.Equal(t, []string{"Eggs", "Milk"}, descs(v))
	assert.Equal(t, "Aisle", v.Heading)
	// Hardware only carries a DONT_NEED item.
	assert.Equal(t, []model.StoreFilter{model.AllStores(), model.SpecificStore("Acme")}, v.Choices)

	assert.Equal(t, model.Checkbox{Checked: false, Enabled: true}, v.Rows[0].Checkbox)
	assert.Equal(t, model.Checkbox{Checked: true, Enabled: true}, v.Rows[1].Checkbox)
}

func TestPlanningChoicesUseAllItems(t *testing.T) {
	items := []model.Item{
		mk(1, "Soap", "Home", model.DontNeed, map[string]string{"Hardware": "1"}),
		mk(2, "Tape", "Home", model.DontNeed, nil),
		mk(3, "Eggs", "Dairy", model.Need, map[string]string{"Acme": "4"}),
	}
	v := Compute(items, Query{Mode: model.Planning})
	assert.Equal(t, []model.StoreFilter{
		model.AllStores(),
		model.MissingStore(),
		model.SpecificStore("Acme"),
		model.SpecificStore("Hardware"),
	}, v.Choices)

	v = Compute(items, Query{Mode: model.Shopping})
	assert.Equal(t, []model.StoreFilter{model.AllStores(), model.SpecificStore("Acme")}, v.Choices)
}

func TestShoppingWithStoreOrdersByAisle(t *testing.T) {
	items := []model.Item{
		mk(1, "Ice cream", "Frozen", model.Need, map[string]string{"Acme": "Frozen"}),
		mk(2, "Bread", "Bakery", model.Need, map[string]string{"Acme": "10", "Corner": "1"}),
		mk(3, "Candles", "Home", model.Need, map[string]string{"Corner": "2"}),
		mk(4, "Apples", "Produce", model.Need, map[string]string{"Acme": "2"}),
		mk(5, "Pears", "Produce", model.InShoppingCart, map[string]string{"Acme": "1"}),
	}
	v := Compute(items, Query{Mode: model.Shopping, Filter: model.SpecificStore("Acme")})
	require.Len(t, v.Rows, 5)
	assert.Equal(t, []string{"Apples", "Bread", "Ice cream", "Candles", "Pears"}, descs(v))
	assert.Equal(t, []string{"2", "10", "Frozen", "", "1"}, []string{
		v.Rows[0].Detail, v.Rows[1].Detail, v.Rows[2].Detail, v.Rows[3].Detail, v.Rows[4].Detail,
	})
}

func TestSearch(t *testing.T) {
	items := []model.Item{
		mk(1, "Whole Milk", "Dairy", model.Need, nil),
		mk(2, "Almond milk", "Dairy", model.DontNeed, nil),
		mk(3, "Bread", "Bakery", model.Need, nil),
	}
	v := Compute(items, Query{Mode: model.Planning, Search: "  MILK "})
	assert.Equal(t, []string{"Almond milk", "Whole Milk"}, descs(v))

	v = Compute(items, Query{Mode: model.Shopping, Search: "milk"})
	assert.Equal(t, []string{"Whole Milk"}, descs(v))

	v = Compute(items, Query{Mode: model.Planning, Search: "   "})
	assert.Len(t, v.Rows, 3)
}

func TestSearchDoesNotNarrowChoices(t *testing.T) {
	items := []model.Item{
		mk(1, "Milk", "Dairy", model.Need, map[string]string{"Acme": "4"}),
		mk(2, "Nails", "Home", model.Need, map[string]string{"Hardware": "9"}),
	}
	v := Compute(items, Query{Mode: model.Shopping, Filter: model.SpecificStore("Hardware"), Search: "milk"})
	assert.Contains(t, v.Choices, model.SpecificStore("Hardware"))
	_, ok := v.Filter.Store()
	assert.True(t, ok)
	assert.Equal(t, []string{"Milk"}, descs(v))
}

func TestUnknownStoreFallsBackToAll(t *testing.T) {
	v := Compute(milkAndBread(), Query{Mode: model.Shopping, Filter: model.SpecificStore("Gone")})
	assert.True(t, v.Filter.IsAll())
	assert.Len(t, v.Rows, 2)
}

func TestEmptyMessages(t *testing.T) {
	assert.Equal(t, "No items", Compute(nil, Query{Mode: model.Planning}).Empty)
	assert.Equal(t, "No items needed", Compute(nil, Query{Mode: model.Shopping}).Empty)

	items := []model.Item{
		mk(1, "Milk", "Dairy", model.Need, map[string]string{"Acme": "4"}),
	}
	v := Compute(items, Query{Mode: model.Shopping, Filter: model.SpecificStore("Acme"), Search: "zzz"})
	assert.Equal(t, "No items needed at Acme", v.Empty)
}

func TestComputeLeavesInputAlone(t *testing.T) {
	items := milkAndBread()
	_ = Compute(items, Query{Mode: model.Planning})
	assert.Equal(t, "Milk", items[0].Description)
	assert.Equal(t, []model.Item{items[1], items[0]}, Compute(items, Query{}).Items())
}
