// Package display turns the full item collection into the ordered rows a
// screen shows for a display mode, store filter and search text.
package display

import (
	"fmt"
	"slices"
	"strings"

	"github.com/idilsaglam/shoplist/internal/index"
	"github.com/idilsaglam/shoplist/internal/model"
)

// Query is everything that decides what gets shown.
type Query struct {
	Mode   model.DisplayMode
	Filter model.StoreFilter
	Search string
}

// Row is one rendered line: the item, its second column and its checkbox.
type Row struct {
	Item     model.Item
	Detail   string
	Checkbox model.Checkbox
}

type View struct {
	Mode model.DisplayMode
	// Filter is the filter actually applied. It differs from the query's
	// when the requested store isn't among Choices any more.
	Filter  model.StoreFilter
	Choices []model.StoreFilter
	Rows    []Row
	// Heading names the second column; Empty is shown instead of rows.
	Heading string
	Empty   string
}

// Items returns the displayed items in row order.
func (v View) Items() []model.Item {
	out := make([]model.Item, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = r.Item
	}
	return out
}

// NormalizeSearch trims and lowercases search text; "" means no search.
func NormalizeSearch(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Compute runs the display pipeline. items is not modified.
func Compute(items []model.Item, q Query) View {
	// Stores relevant to the mode feed the filter picker. In shopping mode
	// only items still wanted count, whether or not search hides them.
	relevant := index.NewStores()
	for _, it := range items {
		if q.Mode == model.Shopping && it.State == model.DontNeed {
			continue
		}
		relevant.Add(it)
	}

	v := View{
		Mode:    q.Mode,
		Filter:  q.Filter,
		Choices: relevant.FilterChoices(),
		Heading: "Category",
	}
	if q.Mode == model.Shopping {
		v.Heading = "Aisle"
	}
	if !slices.Contains(v.Choices, v.Filter) {
		v.Filter = model.AllStores()
	}

	search := NormalizeSearch(q.Search)
	shown := make([]model.Item, 0, len(items))
	for _, it := range items {
		if q.Mode == model.Shopping && it.State == model.DontNeed {
			continue
		}
		if !v.Filter.Keep(it) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(it.Description), search) {
			continue
		}
		shown = append(shown, it)
	}
	slices.SortFunc(shown, model.OrderFor(q.Mode, v.Filter))

	v.Rows = make([]Row, len(shown))
	for i, it := range shown {
		v.Rows[i] = Row{
			Item:     it,
			Detail:   detail(q.Mode, v.Filter, it),
			Checkbox: model.CheckboxFor(q.Mode, it.State),
		}
	}
	if len(v.Rows) == 0 {
		v.Empty = emptyMessage(q.Mode, v.Filter)
	}
	return v
}

func detail(mode model.DisplayMode, filter model.StoreFilter, it model.Item) string {
	if mode == model.Planning {
		return it.Category
	}
	store, ok := filter.Store()
	if !ok || !it.ContainsStore(store) {
		return ""
	}
	return it.Aisle(store)
}

func emptyMessage(mode model.DisplayMode, filter model.StoreFilter) string {
	if mode == model.Planning {
		return "No items"
	}
	if store, ok := filter.Store(); ok {
		return fmt.Sprintf("No items needed at %s", store)
	}
	return "No items needed"
}
