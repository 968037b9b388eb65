package model

import (
	"errors"
	"fmt"
)

var ErrToggleDisabled = errors.New("toggle disabled in this mode")

// Checkbox is how an item's state shows up in a given mode.
type Checkbox struct {
	Checked bool
	Enabled bool
}

type modeState struct {
	mode  DisplayMode
	state ItemState
}

type modeCheck struct {
	mode    DisplayMode
	checked bool
}

// In planning the box means "needed"; an item already in the cart can't
// be pulled back from there. In shopping it means "in the cart", and
// DontNeed items are never listed.
var checkboxes = map[modeState]Checkbox{
	{Planning, Need}:           {Checked: true, Enabled: true},
	{Planning, DontNeed}:       {Checked: false, Enabled: true},
	{Planning, InShoppingCart}: {Checked: true, Enabled: false},
	{Shopping, Need}:           {Checked: false, Enabled: true},
	{Shopping, DontNeed}:       {Checked: false, Enabled: false},
	{Shopping, InShoppingCart}: {Checked: true, Enabled: true},
}

var transitions = map[modeCheck]ItemState{
	{Planning, true}:  Need,
	{Planning, false}: DontNeed,
	{Shopping, true}:  InShoppingCart,
	{Shopping, false}: Need,
}

// CheckboxFor projects a state onto the mode's checkbox.
func CheckboxFor(mode DisplayMode, state ItemState) Checkbox {
	return checkboxes[modeState{mode, state}]
}

// SetChecked returns the state an item moves to when its box is set to
// checked in mode.
func SetChecked(mode DisplayMode, state ItemState, checked bool) (ItemState, error) {
	box, ok := checkboxes[modeState{mode, state}]
	if !ok || !box.Enabled {
		return state, fmt.Errorf("%w: %s item in %s", ErrToggleDisabled, state, mode)
	}
	return transitions[modeCheck{mode, checked}], nil
}

// Toggle flips the checkbox of an item in mode.
func Toggle(mode DisplayMode, state ItemState) (ItemState, error) {
	return SetChecked(mode, state, !CheckboxFor(mode, state).Checked)
}
