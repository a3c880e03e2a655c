// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package remap is the interactive remapping session as a frame-driven
// state machine.
//
// A [Session] owns the hover positions, the picker state, and the
// dirty flags for the two display regions. The platform calls
// [Session.Step] once per display frame with a [Frame]: the input
// snapshot for that frame and the [Screen] to draw into. Step updates
// state, applies any mapping edit, and redraws only the regions whose
// dirty flag is set. Nothing in the package blocks, spawns goroutines,
// or touches a terminal; lib/termui supplies the frames.
//
// States:
//
//	Main ──confirm──▶ Picking ──confirm/cancel/clear──▶ Main
//	Main ──start──▶ Done
//	Picking ──start──▶ Cancelled
//
// The start button is checked before anything else on every frame.
package remap
