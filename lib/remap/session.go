// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package remap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/doodlemap/lib/frd"
	"github.com/bureau-foundation/doodlemap/lib/reconcile"
)

// ErrCancelled reports that the operator quit from inside the picker.
var ErrCancelled = errors.New("remap: cancelled by operator")

// State is the session's position in its state machine.
type State uint8

const (
	StateMain State = iota
	StatePicking
	StateDone
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateMain:
		return "main"
	case StatePicking:
		return "picking"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state-%d", uint8(s))
	}
}

// Finished reports whether the session has ended.
func (s State) Finished() bool { return s == StateDone || s == StateCancelled }

// DefaultPageSize is how many list rows a page shows.
const DefaultPageSize = 28

// Options tunes a session. Zero fields take defaults.
type Options struct {
	PageSize    int
	RepeatDelay int
	RepeatRate  int

	// Label names a button in key hints. Defaults to Button.String.
	Label func(Button) string

	Logger *slog.Logger
}

// choice is one picker row. The row with clear set is "don't map".
type choice struct {
	contact frd.PrincipalID
	clear   bool
}

// Session is one remapping session over a fixed roster and sender
// list, editing mapping in place.
type Session struct {
	roster  frd.Roster
	senders []reconcile.Sender
	mapping *reconcile.Mapping
	choices []choice
	options Options
	logger  *slog.Logger

	state  State
	main   Navigator
	picker Navigator

	// last is the outcome of the most recent picker visit.
	last PickResult

	primaryDirty   bool
	secondaryDirty bool
}

// NewSession starts a session in StateMain. Both regions draw on the
// first Step.
func NewSession(roster frd.Roster, senders []reconcile.Sender, mapping *reconcile.Mapping, options Options) *Session {
	if options.PageSize <= 0 {
		options.PageSize = DefaultPageSize
	}
	if options.RepeatDelay <= 0 {
		options.RepeatDelay = DefaultRepeatDelay
	}
	if options.RepeatRate <= 0 {
		options.RepeatRate = DefaultRepeatRate
	}
	if options.Label == nil {
		options.Label = Button.String
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if mapping == nil {
		mapping = &reconcile.Mapping{}
	}

	choices := make([]choice, 0, roster.Len()+1)
	choices = append(choices, choice{clear: true})
	for _, entry := range roster.Entries() {
		choices = append(choices, choice{contact: entry.PrincipalID})
	}

	session := &Session{
		roster:         roster,
		senders:        senders,
		mapping:        mapping,
		choices:        choices,
		options:        options,
		logger:         logger,
		state:          StateMain,
		main:           Navigator{Delay: options.RepeatDelay, Rate: options.RepeatRate},
		picker:         Navigator{Delay: options.RepeatDelay, Rate: options.RepeatRate},
		primaryDirty:   true,
		secondaryDirty: true,
	}
	return session
}

// State is the current state.
func (s *Session) State() State { return s.state }

// Err is ErrCancelled once the session is cancelled, nil otherwise.
func (s *Session) Err() error {
	if s.state == StateCancelled {
		return ErrCancelled
	}
	return nil
}

// Mapping is the mapping being edited.
func (s *Session) Mapping() *reconcile.Mapping { return s.mapping }

// Hover is the hovered sender row.
func (s *Session) Hover() int { return s.main.Index() }

// PickerHover is the hovered picker row. Row 0 is "don't map".
func (s *Session) PickerHover() int { return s.picker.Index() }

// LastPick is the outcome of the most recent picker visit.
func (s *Session) LastPick() PickResult { return s.last }

// Step runs one frame: input, state update, then redraw of dirty
// regions into frame.Screen. Steps after the session has finished do
// nothing.
func (s *Session) Step(frame Frame) State {
	if s.state.Finished() {
		return s.state
	}

	if frame.Input.Pressed.Has(ButtonStart) {
		if s.state == StateMain {
			s.state = StateDone
			s.logger.Info("remapping finished", "mapped", s.mapping.Len(), "senders", len(s.senders))
		} else {
			s.state = StateCancelled
			s.logger.Info("remapping cancelled", "state", "picking")
		}
		return s.state
	}

	switch s.state {
	case StateMain:
		s.stepMain(frame.Input)
	case StatePicking:
		s.stepPicking(frame.Input)
	}

	if frame.Screen != nil {
		s.render(frame.Screen)
	}
	return s.state
}

func (s *Session) stepMain(input Input) {
	if s.main.Update(input, len(s.senders)) {
		s.primaryDirty = true
		s.secondaryDirty = true
	}
	if input.Pressed.Has(ButtonConfirm) && len(s.senders) > 0 {
		s.openPicker()
	}
}

func (s *Session) openPicker() {
	sender := s.senders[s.main.Index()].PrincipalID
	start := 0
	if contact, ok := s.mapping.Get(sender); ok {
		for index, row := range s.choices {
			if !row.clear && row.contact == contact {
				start = index
				break
			}
		}
	}
	s.picker.Reset(start, len(s.choices))
	s.state = StatePicking
	s.primaryDirty = true
	s.secondaryDirty = true
}

func (s *Session) stepPicking(input Input) {
	switch {
	case input.Pressed.Has(ButtonConfirm):
		row := s.choices[s.picker.Index()]
		if row.clear {
			s.closePicker(Cleared())
		} else {
			s.closePicker(Selected(row.contact))
		}
	case input.Pressed.Has(ButtonCancel):
		s.closePicker(Cancelled())
	case input.Pressed.Has(ButtonClear):
		s.closePicker(Cleared())
	default:
		if s.picker.Update(input, len(s.choices)) {
			s.secondaryDirty = true
		}
	}
}

// closePicker applies result to the hovered sender and returns to
// StateMain.
func (s *Session) closePicker(result PickResult) {
	sender := s.senders[s.main.Index()].PrincipalID
	switch result.Outcome {
	case PickSelected:
		s.mapping.Set(sender, result.Contact)
		s.logger.Info("sender mapped", "sender", sender, "contact", result.Contact, "name", s.contactName(result.Contact))
	case PickCleared:
		s.mapping.Clear(sender)
		s.logger.Info("sender unmapped", "sender", sender)
	}
	s.last = result
	s.state = StateMain
	s.primaryDirty = true
	s.secondaryDirty = true
}
