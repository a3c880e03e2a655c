// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package remap

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/bureau-foundation/doodlemap/lib/frd"
	"github.com/bureau-foundation/doodlemap/lib/mii"
	"github.com/bureau-foundation/doodlemap/lib/reconcile"
)

type harness struct {
	t       *testing.T
	session *Session
	screen  *Screen
}

func newHarness(t *testing.T, roster frd.Roster, senders []reconcile.Sender, mapping *reconcile.Mapping) *harness {
	t.Helper()
	h := &harness{
		t:       t,
		session: NewSession(roster, senders, mapping, Options{}),
		screen:  &Screen{},
	}
	h.idle()
	return h
}

func (h *harness) step(input Input) State {
	return h.session.Step(Frame{Input: input, Screen: h.screen})
}

func (h *harness) press(button Button) State {
	h.t.Helper()
	state := h.step(Input{Pressed: button, Held: button})
	h.step(Input{})
	return state
}

func (h *harness) idle() { h.step(Input{}) }

func (h *harness) requireState(want State) {
	h.t.Helper()
	if got := h.session.State(); got != want {
		h.t.Fatalf("state = %v, want %v", got, want)
	}
}

func (h *harness) requirePairs(want ...reconcile.Pair) {
	h.t.Helper()
	if diff := cmp.Diff(want, h.session.Mapping().Pairs(), cmpopts.EquateEmpty()); diff != "" {
		h.t.Fatalf("mapping (-want +got):\n%s", diff)
	}
}

func rosterEntry(id frd.PrincipalID, name string, key uint64) frd.Entry {
	return frd.Entry{PrincipalID: id, Avatar: mii.Avatar{Version: mii.Version, Name: name, SystemID: key}}
}

func sender(id frd.PrincipalID, name string, key uint64) reconcile.Sender {
	return reconcile.Sender{PrincipalID: id, Avatar: &mii.Avatar{Version: mii.Version, Name: name, SystemID: key}, Letters: 1}
}

// scenario is roster {1: Alice (AA, local), 2: Bob (BB)} and senders
// 10 (AA) and 20 (CC), auto-matched to {10: 1}.
func scenario(t *testing.T) *harness {
	roster := frd.NewRoster(rosterEntry(1, "Alice", 0xAA), []frd.Entry{rosterEntry(2, "Bob", 0xBB)})
	senders := []reconcile.Sender{sender(10, "Alice", 0xAA), sender(20, "Carol", 0xCC)}
	notes := []reconcile.Note{{Sender: 10, Avatar: senders[0].Avatar}, {Sender: 20, Avatar: senders[1].Avatar}}
	h := newHarness(t, roster, senders, reconcile.AutoMatch(roster, notes))
	h.requirePairs(reconcile.Pair{Sender: 10, Contact: 1})
	return h
}

func TestClearKeyOnUnmappedSender(t *testing.T) {
	h := scenario(t)
	h.press(ButtonDown)
	h.press(ButtonConfirm)
	h.requireState(StatePicking)
	h.press(ButtonClear)
	h.requireState(StateMain)
	h.requirePairs(reconcile.Pair{Sender: 10, Contact: 1})
	if got := h.session.LastPick(); got != Cleared() {
		t.Errorf("LastPick = %v, want cleared", got)
	}
}

func TestSetThenCancelKeepsMapping(t *testing.T) {
	h := scenario(t)
	h.press(ButtonDown)
	h.press(ButtonConfirm)
	if h.session.PickerHover() != 0 {
		t.Fatalf("picker for an unmapped sender opened at row %d, want 0", h.session.PickerHover())
	}
	// Rows: <don't map>, Alice, Bob.
	h.press(ButtonDown)
	h.press(ButtonDown)
	h.press(ButtonConfirm)
	h.requireState(StateMain)
	h.requirePairs(reconcile.Pair{Sender: 10, Contact: 1}, reconcile.Pair{Sender: 20, Contact: 2})
	if got := h.session.LastPick(); got != Selected(2) {
		t.Errorf("LastPick = %v, want selected 2", got)
	}

	h.press(ButtonConfirm)
	h.requireState(StatePicking)
	if h.session.PickerHover() != 2 {
		t.Errorf("picker reopened at row %d, want the mapped contact's row 2", h.session.PickerHover())
	}
	h.press(ButtonUp)
	h.press(ButtonCancel)
	h.requireState(StateMain)
	h.requirePairs(reconcile.Pair{Sender: 10, Contact: 1}, reconcile.Pair{Sender: 20, Contact: 2})
	if got := h.session.LastPick(); got != Cancelled() {
		t.Errorf("LastPick = %v, want cancelled", got)
	}
}

func TestDontMapRowClears(t *testing.T) {
	h := scenario(t)
	h.press(ButtonConfirm)
	if h.session.PickerHover() != 1 {
		t.Fatalf("picker opened at row %d, want Alice's row 1", h.session.PickerHover())
	}
	h.press(ButtonUp)
	h.press(ButtonConfirm)
	h.requireState(StateMain)
	h.requirePairs()
}

func TestStartInMainFinishes(t *testing.T) {
	h := scenario(t)
	if state := h.step(Input{Pressed: ButtonStart | ButtonConfirm, Held: ButtonStart | ButtonConfirm}); state != StateDone {
		t.Fatalf("state = %v, want done", state)
	}
	if err := h.session.Err(); err != nil {
		t.Errorf("Err = %v, want nil", err)
	}
	h.press(ButtonConfirm)
	h.requireState(StateDone)
}

func TestStartWhilePickingCancels(t *testing.T) {
	h := scenario(t)
	h.press(ButtonDown)
	h.press(ButtonConfirm)
	h.press(ButtonDown)
	// Start and confirm in the same frame: start wins and the pending
	// choice is not applied.
	if state := h.step(Input{Pressed: ButtonStart | ButtonConfirm, Held: ButtonStart | ButtonConfirm}); state != StateCancelled {
		t.Fatalf("state = %v, want cancelled", state)
	}
	if !errors.Is(h.session.Err(), ErrCancelled) {
		t.Errorf("Err = %v, want ErrCancelled", h.session.Err())
	}
	h.requirePairs(reconcile.Pair{Sender: 10, Contact: 1})
}

func TestEmptySenderList(t *testing.T) {
	roster := frd.NewRoster(rosterEntry(1, "Alice", 0xAA), nil)
	h := newHarness(t, roster, nil, nil)
	h.press(ButtonDown)
	h.press(ButtonConfirm)
	h.requireState(StateMain)
	if h.session.Hover() != 0 {
		t.Errorf("Hover = %d", h.session.Hover())
	}
	lines := h.screen.Primary.Lines()
	if len(lines) != 1 || !strings.Contains(lines[0].Text, "No letters") {
		t.Errorf("primary = %+v", lines)
	}
	h.press(ButtonStart)
	h.requireState(StateDone)
}

func TestRedrawOnlyWhenDirty(t *testing.T) {
	h := scenario(t)
	primary, secondary := h.screen.Primary.Draws(), h.screen.Secondary.Draws()
	if primary != 1 || secondary != 1 {
		t.Fatalf("initial draws = %d, %d; want 1, 1", primary, secondary)
	}

	for range 5 {
		h.idle()
	}
	h.press(ButtonUp)
	if h.screen.Primary.Draws() != 1 || h.screen.Secondary.Draws() != 1 {
		t.Errorf("redrew without a change: %d, %d", h.screen.Primary.Draws(), h.screen.Secondary.Draws())
	}

	h.press(ButtonDown)
	if h.screen.Primary.Draws() != 2 || h.screen.Secondary.Draws() != 2 {
		t.Errorf("after move draws = %d, %d; want 2, 2", h.screen.Primary.Draws(), h.screen.Secondary.Draws())
	}

	h.press(ButtonConfirm)
	h.press(ButtonDown)
	if h.screen.Primary.Draws() != 3 {
		t.Errorf("picker navigation redrew the primary region (%d draws)", h.screen.Primary.Draws())
	}
	if h.screen.Secondary.Draws() != 4 {
		t.Errorf("secondary draws = %d, want 4", h.screen.Secondary.Draws())
	}
}

func TestPrimaryRendering(t *testing.T) {
	h := scenario(t)
	lines := h.screen.Primary.Lines()
	if len(lines) != 3 {
		t.Fatalf("primary has %d lines, want header plus 2 rows", len(lines))
	}
	if lines[0].Kind != LineHeader {
		t.Errorf("first line kind = %v, want header", lines[0].Kind)
	}
	if lines[1].Kind != LineHovered || !strings.HasPrefix(lines[1].Text, " > Alice") || !strings.HasSuffix(lines[1].Text, "Alice (you)") {
		t.Errorf("hovered row = %+v", lines[1])
	}
	if lines[2].Kind != LineText || !strings.HasSuffix(lines[2].Text, unmappedLabel) {
		t.Errorf("second row = %+v", lines[2])
	}
	if width := len(lines[1].Text); width != rowWidth {
		t.Errorf("row width = %d, want %d", width, rowWidth)
	}

	h.press(ButtonConfirm)
	lines = h.screen.Primary.Lines()
	banner := lines[len(lines)-2]
	if banner.Kind != LineBanner || strings.TrimSpace(banner.Text) != pickerBanner {
		t.Errorf("banner = %+v", banner)
	}
	secondary := h.screen.Secondary.Lines()
	if secondary[0].Text != "Map Alice to:" {
		t.Errorf("picker header = %q", secondary[0].Text)
	}
	if secondary[2].Kind != LineHovered || !strings.HasSuffix(secondary[2].Text, "Alice (you) *") {
		t.Errorf("hovered picker row = %+v", secondary[2])
	}
}

func TestPagination(t *testing.T) {
	roster := frd.NewRoster(rosterEntry(1, "Me", 0x01), nil)
	var senders []reconcile.Sender
	for index := range 30 {
		senders = append(senders, sender(frd.PrincipalID(100+index), fmt.Sprintf("S%02d", index), uint64(0x1000+index)))
	}
	h := newHarness(t, roster, senders, nil)

	lines := h.screen.Primary.Lines()
	if len(lines) != 1+DefaultPageSize+1 {
		t.Fatalf("first page has %d lines, want %d", len(lines), DefaultPageSize+2)
	}
	if marker := lines[len(lines)-1]; marker.Kind != LineMarker || !strings.Contains(marker.Text, "2 more") {
		t.Errorf("marker = %+v", marker)
	}

	for range DefaultPageSize {
		h.press(ButtonDown)
	}
	if h.session.Hover() != DefaultPageSize {
		t.Fatalf("Hover = %d", h.session.Hover())
	}
	lines = h.screen.Primary.Lines()
	if len(lines) != 3 {
		t.Fatalf("second page has %d lines, want header plus 2 rows", len(lines))
	}
	if lines[1].Kind != LineHovered || !strings.Contains(lines[1].Text, "S28") {
		t.Errorf("second page first row = %+v", lines[1])
	}
	for _, line := range lines {
		if line.Kind == LineMarker {
			t.Errorf("last page shows a marker: %+v", line)
		}
	}
}

func TestHeldKeyScrollsSenders(t *testing.T) {
	roster := frd.NewRoster(rosterEntry(1, "Me", 0x01), nil)
	var senders []reconcile.Sender
	for index := range 10 {
		senders = append(senders, sender(frd.PrincipalID(100+index), fmt.Sprintf("S%d", index), 0))
	}
	h := newHarness(t, roster, senders, nil)
	h.step(Input{Pressed: ButtonDown, Held: ButtonDown})
	for range DefaultRepeatDelay + 3*DefaultRepeatRate {
		h.step(Input{Held: ButtonDown})
	}
	if got := h.session.Hover(); got != 5 {
		t.Errorf("Hover = %d after holding down, want 5", got)
	}
}
