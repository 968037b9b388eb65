package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/shoplist/internal/display"
	"github.com/idilsaglam/shoplist/internal/model"
)

func mono(t *testing.T) {
	t.Helper()
	SetTheme("mono")
	t.Cleanup(func() { SetTheme("classic") })
}

func item(id int, desc string, state model.ItemState, stores map[string]string) model.Item {
	it := model.NewItem(id)
	it.Description = desc
	it.State = state
	for s, a := range stores {
		it.SetStoreAisle(s, a)
	}
	return it
}

func TestBox(t *testing.T) {
	mono(t)
	assert.Equal(t, "[x]", Box(model.Checkbox{Checked: true, Enabled: true}))
	assert.Equal(t, "[ ]", Box(model.Checkbox{Enabled: true}))
	assert.Equal(t, "[#]", Box(model.Checkbox{Checked: true}))
}

func TestViewLinesShopping(t *testing.T) {
	mono(t)
	items := []model.Item{
		item(1, "Milk", model.Need, map[string]string{"Acme": "4"}),
		item(2, "Bread", model.InShoppingCart, map[string]string{"Acme": "1"}),
		item(3, "Nails", model.DontNeed, nil),
	}
	v := display.Compute(items, display.Query{Mode: model.Shopping, Filter: model.SpecificStore("Acme")})
	lines := ViewLines(v)

	require.Len(t, lines, 5)
	assert.Equal(t, "Shopping  Acme  - 1  x 1  Shown 2", lines[0])
	assert.Contains(t, lines[1], "50%")
	assert.Equal(t, " 1. [ ] Milk   4 [1]", lines[3])
	assert.Equal(t, " 2. [x] Bread  1 [2]", lines[4])
}

func TestViewLinesEmpty(t *testing.T) {
	mono(t)
	v := display.Compute(nil, display.Query{Mode: model.Planning})
	lines := ViewLines(v)
	assert.Equal(t, "No items", lines[len(lines)-1])
}

func TestPanelFramesLines(t *testing.T) {
	mono(t)
	var out, errOut bytes.Buffer
	SetOutput(&out, &errOut)
	t.Cleanup(func() { SetOutput(os.Stdout, os.Stderr) })

	Panel([]string{"ab", "abcd"})
	assert.Equal(t, "+------+\n| ab   |\n| abcd |\n+------+\n", out.String())

	OK("added")
	Fail("boom")
	assert.True(t, strings.HasSuffix(out.String(), "✔ added\n"))
	assert.Equal(t, "✖ boom\n", errOut.String())
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░  50%", ProgressBar(1, 2, 10))
	assert.Equal(t, "░░░░░   0%", ProgressBar(0, 0, 1))
}

func TestColorForcing(t *testing.T) {
	t.Cleanup(func() {
		SetColorForcing(false, false)
		SetTheme("classic")
	})
	SetTheme("classic")
	SetColorForcing(true, false)
	assert.Equal(t, fgRed+"x"+reset, C(fgRed, "x"))

	SetColorForcing(true, true)
	assert.Equal(t, "x", C(fgRed, "x"))
}

func TestPurchased(t *testing.T) {
	assert.Equal(t, "unknown", Purchased(time.Time{}))
	assert.Equal(t, "Mar 1, 2024", Purchased(time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)))
}

func TestItemLines(t *testing.T) {
	mono(t)
	it := item(7, "Milk", model.DontNeed, map[string]string{"Corner": "B", "Acme": "4"})
	it.Category = "Dairy"
	it.AutoDelete = true
	it.LastPurchased = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, []string{
		"Milk [7]",
		"",
		"Category       Dairy",
		"State          DONT_NEED",
		"Stores         Acme: 4, Corner: B",
		"Auto-delete    yes",
		"Last purchased Jun 1, 2024",
	}, ItemLines(it))

	bare := item(8, "Foil", model.Need, nil)
	lines := ItemLines(bare)
	assert.Equal(t, "Stores         none", lines[4])
	assert.Equal(t, "Last purchased unknown", lines[6])
}
