// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package remap

// LineKind tells the platform how to style a line.
type LineKind uint8

const (
	LineText LineKind = iota
	LineHeader
	LineHovered
	LineMarker
	LineBanner
	LineHint
)

// Line is one row of a region.
type Line struct {
	Kind LineKind
	Text string
}

// Region is a text area the session draws into. Draw replaces the
// whole contents.
type Region struct {
	lines []Line
	draws int
}

// Draw replaces the region's lines.
func (r *Region) Draw(lines []Line) {
	r.lines = lines
	r.draws++
}

// Lines returns the current contents.
func (r *Region) Lines() []Line { return r.lines }

// Draws counts how many times the region has been redrawn.
func (r *Region) Draws() int { return r.draws }

// Screen is the two-region display: Primary shows the sender list,
// Secondary shows the contact picker and key hints.
type Screen struct {
	Primary   Region
	Secondary Region
}

// Frame is everything the session sees in one display frame.
type Frame struct {
	Input  Input
	Screen *Screen
}
