package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedLine = errors.New("malformed item line")

// MarshalLine encodes the item for the line import/export file:
// description, category, state, autoDelete, then store/aisle pairs,
// all separated by tabs.
func (it Item) MarshalLine() string {
	var sb strings.Builder
	sb.WriteString(it.Description)
	sb.WriteByte('\t')
	sb.WriteString(it.Category)
	sb.WriteByte('\t')
	sb.WriteString(it.State.String())
	sb.WriteByte('\t')
	sb.WriteString(strconv.FormatBool(it.AutoDelete))
	for _, store := range it.Stores() {
		sb.WriteByte('\t')
		sb.WriteString(store)
		sb.WriteByte('\t')
		sb.WriteString(it.StoreAisles[store])
	}
	return sb.String()
}

// ParseLine decodes one line of an import file into an item with the
// given id. Trailing fields may be omitted; a dangling store without an
// aisle is ignored, as is any pair with an empty side.
func ParseLine(id int, line string) (Item, error) {
	parts := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	it := NewItem(id)
	it.State = DontNeed

	it.Description = strings.TrimSpace(parts[0])
	if it.Description == "" {
		return Item{}, ErrEmptyDescription
	}
	if len(parts) > 1 {
		it.Category = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		s, err := ParseItemState(strings.TrimSpace(parts[2]))
		if err != nil {
			return Item{}, fmt.Errorf("%w: %w", ErrMalformedLine, err)
		}
		it.State = s
	}
	if len(parts) > 3 {
		// Anything that isn't a boolean reads as false.
		it.AutoDelete, _ = strconv.ParseBool(strings.TrimSpace(parts[3]))
	}
	for i := 4; i+1 < len(parts); i += 2 {
		store := strings.TrimSpace(parts[i])
		aisle := strings.TrimSpace(parts[i+1])
		if store != "" && aisle != "" {
			it.SetStoreAisle(store, aisle)
		}
	}
	return it, nil
}
