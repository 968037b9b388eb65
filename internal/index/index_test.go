package index

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/idilsaglam/shoplist/internal/model"
)

func item(id int, category string, stores map[string]string) model.Item {
	it := model.NewItem(id)
	it.Description = "item"
	it.Category = category
	for s, a := range stores {
		it.SetStoreAisle(s, a)
	}
	return it
}

func sampleItems() []model.Item {
	return []model.Item{
		item(1, "Dairy", map[string]string{"Safeway": "12", "Acme": "Dairy"}),
		item(2, "", map[string]string{"Acme": "2"}),
		item(3, "Bakery", nil),
		item(4, "Dairy", map[string]string{"Corner": "2"}),
	}
}

func TestCategories(t *testing.T) {
	c := NewCategories()
	c.Load(sampleItems())
	assert.Equal(t, []string{"Bakery", "Dairy"}, c.Values())
	assert.False(t, c.Contains(""))

	c.Add(item(5, "Frozen", nil))
	assert.Equal(t, []string{"Bakery", "Dairy", "Frozen"}, c.Values())
}

func TestAislesUseAisleOrder(t *testing.T) {
	a := NewAisles()
	a.Load(sampleItems())
	assert.Equal(t, []string{"2", "12", "Dairy"}, a.Values())

	a.Add(item(5, "", map[string]string{"X": "bakery", "Y": "Bakery", "Z": "10"}))
	assert.Equal(t, []string{"2", "10", "12", "Bakery", "bakery", "Dairy"}, a.Values())
}

func TestStores(t *testing.T) {
	s := NewStores()
	s.Load(sampleItems())
	assert.Equal(t, []string{"Acme", "Corner", "Safeway"}, s.Values())
	assert.True(t, s.MissingStore())
	assert.Equal(t, []model.StoreFilter{
		model.AllStores(),
		model.MissingStore(),
		model.SpecificStore("Acme"),
		model.SpecificStore("Corner"),
		model.SpecificStore("Safeway"),
	}, s.FilterChoices())

	s.Load(sampleItems()[:2])
	assert.False(t, s.MissingStore())
	assert.Equal(t, []model.StoreFilter{
		model.AllStores(),
		model.SpecificStore("Acme"),
		model.SpecificStore("Safeway"),
	}, s.FilterChoices())
}

func TestEmptyStoresOfferOnlyAll(t *testing.T) {
	s := NewStores()
	assert.Equal(t, []model.StoreFilter{model.AllStores()}, s.FilterChoices())
}

func TestSetsGrowOnly(t *testing.T) {
	items := sampleItems()
	c, a, s := NewCategories(), NewAisles(), NewStores()
	c.Load(items)
	a.Load(items)
	s.Load(items)

	// Adding an edited copy never drops what the old version contributed.
	edited := items[2]
	edited.Category = "Bread"
	edited.SetStoreAisle("Market", "5")
	c.Add(edited)
	a.Add(edited)
	s.Add(edited)

	assert.True(t, c.Contains("Bakery"))
	assert.True(t, c.Contains("Bread"))
	assert.True(t, a.Contains("5"))
	assert.True(t, s.Contains("Market"))
	assert.True(t, s.MissingStore())

	c.Clear()
	s.Clear()
	assert.Zero(t, c.Len())
	assert.False(t, s.MissingStore())
}
