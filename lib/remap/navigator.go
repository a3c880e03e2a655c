// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package remap

// Default repeat timing, in frames.
const (
	DefaultRepeatDelay = 20
	DefaultRepeatRate  = 5
)

// Navigator is a hover index over a list with held-key repeat. The
// first press of up or down moves one step and waits Delay frames;
// after that a held key moves one step every Rate frames. The index
// clamps at both ends.
type Navigator struct {
	Delay int
	Rate  int

	index     int
	countdown int
}

// Index is the hovered position.
func (n *Navigator) Index() int { return n.index }

// Reset places the hover at index, clamped to length, and disarms
// repeat.
func (n *Navigator) Reset(index, length int) {
	n.index = clampIndex(index, length)
	n.countdown = 0
}

// Update applies one frame of input over a list of length entries and
// reports whether the index changed. An empty list leaves the
// navigator untouched.
func (n *Navigator) Update(input Input, length int) bool {
	if length <= 0 {
		return false
	}
	n.index = clampIndex(n.index, length)

	if step := direction(input.Pressed); step != 0 {
		n.countdown = n.Delay
		return n.move(step, length)
	}
	step := direction(input.Held)
	if step == 0 {
		n.countdown = 0
		return false
	}
	if n.countdown > 0 {
		n.countdown--
	}
	if n.countdown > 0 {
		return false
	}
	n.countdown = n.Rate
	return n.move(step, length)
}

func (n *Navigator) move(step, length int) bool {
	next := clampIndex(n.index+step, length)
	if next == n.index {
		return false
	}
	n.index = next
	return true
}

// direction maps up to -1 and down to +1. Up wins when both are set.
func direction(buttons Button) int {
	switch {
	case buttons.Has(ButtonUp):
		return -1
	case buttons.Has(ButtonDown):
		return 1
	default:
		return 0
	}
}

func clampIndex(index, length int) int {
	if length <= 0 || index < 0 {
		return 0
	}
	if index >= length {
		return length - 1
	}
	return index
}
