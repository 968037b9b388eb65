package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/idilsaglam/shoplist/internal/model"
)

// Purchased renders a last purchase date; the zero time is "unknown".
func Purchased(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format("Jan 2, 2006")
}

// ItemLines renders every field of it, one per line, for `shoplist show`.
func ItemLines(it model.Item) []string {
	t := Current()
	stores := "none"
	if !it.IsMissingStore() {
		pairs := make([]string, 0, len(it.StoreAisles))
		for _, store := range it.Stores() {
			pairs = append(pairs, store+": "+it.StoreAisles[store])
		}
		stores = strings.Join(pairs, ", ")
	}
	autoDelete := "no"
	if it.AutoDelete {
		autoDelete = "yes"
	}
	field := func(name, value string) string {
		return fmt.Sprintf("%s %s", C(t.Muted, fmt.Sprintf("%-14s", name)), value)
	}
	return []string{
		C(t.Title, it.Description) + " " + C(t.Muted, fmt.Sprintf("[%d]", it.ID)),
		"",
		field("Category", it.Category),
		field("State", it.State.String()),
		field("Stores", stores),
		field("Auto-delete", autoDelete),
		field("Last purchased", Purchased(it.LastPurchased)),
	}
}
