package model

import (
	"errors"
	"fmt"
)

// ItemState is where an item sits between "want" and "bought".
type ItemState int

const (
	Need ItemState = iota
	DontNeed
	InShoppingCart
)

var ErrInvalidState = errors.New("invalid item state")

var stateNames = [...]string{
	Need:           "NEED",
	DontNeed:       "DONT_NEED",
	InShoppingCart: "IN_SHOPPING_CART",
}

func (s ItemState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("ItemState(%d)", int(s))
	}
	return stateNames[s]
}

// ParseItemState accepts the exact upper-case names used on disk and in line files.
func ParseItemState(s string) (ItemState, error) {
	for i, name := range stateNames {
		if s == name {
			return ItemState(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidState, s)
}

func (s ItemState) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(stateNames) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidState, int(s))
	}
	return []byte(stateNames[s]), nil
}

func (s *ItemState) UnmarshalText(b []byte) error {
	v, err := ParseItemState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// DisplayMode selects which items are listed and how they are ordered.
type DisplayMode int

const (
	// Planning lists every item, ordered by category.
	Planning DisplayMode = iota
	// Shopping hides DontNeed items and orders by aisle.
	Shopping
)

var ErrInvalidDisplayMode = errors.New("invalid display mode")

func (m DisplayMode) String() string {
	switch m {
	case Planning:
		return "PLANNING"
	case Shopping:
		return "SHOPPING"
	}
	return fmt.Sprintf("DisplayMode(%d)", int(m))
}

// Label is the human form shown in headers.
func (m DisplayMode) Label() string {
	if m == Shopping {
		return "Shopping"
	}
	return "Planning"
}

// Other returns the mode a toggle switches to.
func (m DisplayMode) Other() DisplayMode {
	if m == Shopping {
		return Planning
	}
	return Shopping
}

func ParseDisplayMode(s string) (DisplayMode, error) {
	switch s {
	case "PLANNING", "planning":
		return Planning, nil
	case "SHOPPING", "shopping":
		return Shopping, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDisplayMode, s)
}
