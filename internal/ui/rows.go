package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/idilsaglam/shoplist/internal/display"
	"github.com/idilsaglam/shoplist/internal/model"
)

const maxDescWidth = 48

// Box returns the themed checkbox symbol for cb.
func Box(cb model.Checkbox) string {
	t := Current()
	switch {
	case !cb.Enabled && cb.Checked:
		return t.BoxLocked
	case cb.Checked:
		return t.BoxChecked
	}
	return t.BoxUnchecked
}

// Header is the first panel line: mode, store filter and counts.
func Header(v display.View) string {
	t := Current()
	need, cart := counts(v)
	return fmt.Sprintf("%s  %s  %s %d  %s %d  %s %d",
		C(t.Title, v.Mode.Label()),
		C(t.Accent, v.Filter.Label()),
		C(t.Pending, t.SymNeed), need,
		C(t.Success, t.SymCart), cart,
		C(t.Muted, "Shown"), len(v.Rows),
	)
}

// ViewLines renders v as numbered rows. Numbers are 1-based positions
// in the view; the item id follows in brackets.
func ViewLines(v display.View) []string {
	t := Current()
	lines := []string{Header(v)}
	if v.Mode == model.Shopping {
		need, cart := counts(v)
		lines = append(lines, C(t.Muted, ProgressBar(cart, need+cart, 28)))
	}
	lines = append(lines, "")
	if len(v.Rows) == 0 {
		return append(lines, C(t.Muted, v.Empty))
	}

	descw := 0
	for _, r := range v.Rows {
		descw = max(descw, runewidth.StringWidth(r.Item.Description))
	}
	descw = min(descw, maxDescWidth)

	for i, r := range v.Rows {
		color := t.Muted
		if r.Checkbox.Checked {
			color = t.Success
		}
		desc := runewidth.Truncate(r.Item.Description, maxDescWidth, "...")
		desc = runewidth.FillRight(desc, descw)
		line := fmt.Sprintf("%s %s %s", C(dim, fmt.Sprintf("%2d.", i+1)), C(color, Box(r.Checkbox)), desc)
		if r.Detail != "" {
			line += "  " + C(t.Accent, r.Detail)
		}
		line += " " + C(t.Muted, fmt.Sprintf("[%d]", r.Item.ID))
		lines = append(lines, strings.TrimRight(line, " "))
	}
	return lines
}

func counts(v display.View) (need, cart int) {
	for _, r := range v.Rows {
		switch r.Item.State {
		case model.Need:
			need++
		case model.InShoppingCart:
			cart++
		}
	}
	return need, cart
}
