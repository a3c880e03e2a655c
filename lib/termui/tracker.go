// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package termui

import (
	"time"

	"github.com/bureau-foundation/doodlemap/lib/remap"
)

// DefaultHoldWindow spans the gap between a terminal's auto-repeat
// events and stays well under the session's repeat delay.
const DefaultHoldWindow = 100 * time.Millisecond

// buttonBits lists each single button for per-button bookkeeping.
var buttonBits = []remap.Button{
	remap.ButtonConfirm, remap.ButtonCancel, remap.ButtonClear,
	remap.ButtonUp, remap.ButtonDown, remap.ButtonStart,
}

// keyTracker derives pressed and held sets from a stream of key
// events. It is owned by the program goroutine.
//
// An event arriving within the window of the previous event for the
// same button is an auto-repeat; any other event is a press. Only
// auto-repeats make a button held, and it stays held until the window
// passes without another one. A single tap is therefore pressed for
// one frame and never held.
type keyTracker struct {
	window    time.Duration
	pending   remap.Button
	repeating remap.Button
	seen      map[remap.Button]time.Time
}

func newKeyTracker(window time.Duration) *keyTracker {
	if window <= 0 {
		window = DefaultHoldWindow
	}
	return &keyTracker{window: window, seen: make(map[remap.Button]time.Time)}
}

// observe records a key event at now.
func (t *keyTracker) observe(buttons remap.Button, now time.Time) {
	for _, button := range buttonBits {
		if buttons&button == 0 {
			continue
		}
		if t.recent(button, now) {
			t.repeating |= button
		} else {
			t.pending |= button
			t.repeating &^= button
		}
		t.seen[button] = now
	}
}

// frame returns the input for a frame at now and starts a new pressed
// set.
func (t *keyTracker) frame(now time.Time) remap.Input {
	input := remap.Input{Pressed: t.pending, Held: t.pending}
	for _, button := range buttonBits {
		if t.repeating&button == 0 {
			continue
		}
		if t.recent(button, now) {
			input.Held |= button
		} else {
			t.repeating &^= button
		}
	}
	t.pending = 0
	return input
}

// recent reports whether the last event for button is within the
// window of now.
func (t *keyTracker) recent(button remap.Button, now time.Time) bool {
	last, ok := t.seen[button]
	return ok && now.Sub(last) <= t.window
}
