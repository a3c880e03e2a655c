// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package termui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/doodlemap/lib/remap"
)

// KeyMap binds terminal keys to the session's logical buttons.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Clear   key.Binding

	// Start finishes the session from the sender list and abandons
	// it from the picker.
	Start key.Binding
}

// DefaultKeyMap uses arrows or vim keys to move, Enter to confirm, Esc
// to back out, x to clear and q to finish.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("↓", "down"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter", " ", "a"),
		key.WithHelp("Enter", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "b", "backspace"),
		key.WithHelp("Esc", "back"),
	),
	Clear: key.NewBinding(
		key.WithKeys("x", "delete"),
		key.WithHelp("x", "clear"),
	),
	Start: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "finish"),
	),
}

func (keys KeyMap) bindings() []struct {
	binding key.Binding
	button  remap.Button
} {
	return []struct {
		binding key.Binding
		button  remap.Button
	}{
		{keys.Up, remap.ButtonUp},
		{keys.Down, remap.ButtonDown},
		{keys.Confirm, remap.ButtonConfirm},
		{keys.Cancel, remap.ButtonCancel},
		{keys.Clear, remap.ButtonClear},
		{keys.Start, remap.ButtonStart},
	}
}

// Button maps a key event to the buttons it is bound to.
func (keys KeyMap) Button(message tea.KeyMsg) remap.Button {
	var buttons remap.Button
	for _, entry := range keys.bindings() {
		if key.Matches(message, entry.binding) {
			buttons |= entry.button
		}
	}
	return buttons
}

// Label is the help text of the key bound to button, for the
// session's key hints.
func (keys KeyMap) Label(button remap.Button) string {
	for _, entry := range keys.bindings() {
		if entry.button == button {
			return entry.binding.Help().Key
		}
	}
	return button.String()
}
