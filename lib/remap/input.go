// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package remap

import "strings"

// Button is a set of logical buttons.
type Button uint8

const (
	ButtonConfirm Button = 1 << iota
	ButtonCancel
	ButtonClear
	ButtonUp
	ButtonDown
	ButtonStart
)

var buttonNames = []struct {
	button Button
	name   string
}{
	{ButtonConfirm, "confirm"},
	{ButtonCancel, "cancel"},
	{ButtonClear, "clear"},
	{ButtonUp, "up"},
	{ButtonDown, "down"},
	{ButtonStart, "start"},
}

// Has reports whether every button in other is in b.
func (b Button) Has(other Button) bool { return b&other == other && other != 0 }

func (b Button) String() string {
	if b == 0 {
		return "none"
	}
	var names []string
	for _, entry := range buttonNames {
		if b&entry.button != 0 {
			names = append(names, entry.name)
		}
	}
	return strings.Join(names, "+")
}

// Input is one frame's button state. Pressed holds buttons that went
// down since the previous frame; Held holds every button currently
// down, including the ones in Pressed.
type Input struct {
	Pressed Button
	Held    Button
}
