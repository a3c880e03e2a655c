// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package remap

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/doodlemap/lib/frd"
	"github.com/bureau-foundation/doodlemap/lib/reconcile"
)

// Column layout of a sender row: marker, name, mapped contact.
const (
	columnWidth = 23
	rowWidth    = 3 + 2*columnWidth
)

const (
	unmappedLabel = "<don't map>"
	pickerBanner  = "Select the friend to map to."
)

// render redraws each dirty region and clears its flag.
func (s *Session) render(screen *Screen) {
	if s.primaryDirty {
		screen.Primary.Draw(s.primaryLines())
		s.primaryDirty = false
	}
	if s.secondaryDirty {
		screen.Secondary.Draw(s.secondaryLines())
		s.secondaryDirty = false
	}
}

func (s *Session) primaryLines() []Line {
	if len(s.senders) == 0 {
		return []Line{
			{Kind: LineText, Text: "No letters from other senders were found."},
		}
	}

	lines := []Line{{Kind: LineHeader, Text: "   " + fitLeft("Sender", columnWidth) + fitRight("Mapped to", columnWidth)}}
	hover := s.main.Index()
	start, end := page(len(s.senders), hover, s.options.PageSize)
	for index := start; index < end; index++ {
		sender := s.senders[index]
		contact := unmappedLabel
		if id, ok := s.mapping.Get(sender.PrincipalID); ok {
			contact = s.contactName(id)
		}
		lines = append(lines, row(index == hover, fitLeft(senderLabel(sender), columnWidth)+fitRight(contact, columnWidth)))
	}
	if remaining := len(s.senders) - end; remaining > 0 {
		lines = append(lines, Line{Kind: LineMarker, Text: fmt.Sprintf("   ... %d more", remaining)})
	}

	if s.state == StatePicking {
		lines = append(lines,
			Line{Kind: LineBanner, Text: center("", rowWidth)},
			Line{Kind: LineBanner, Text: center(pickerBanner, rowWidth)},
			Line{Kind: LineBanner, Text: center("", rowWidth)},
		)
	}
	return lines
}

func (s *Session) secondaryLines() []Line {
	label := s.options.Label
	if s.state != StatePicking {
		lines := []Line{}
		if len(s.senders) > 0 {
			sender := s.senders[s.main.Index()]
			lines = append(lines, Line{Kind: LineText, Text: fmt.Sprintf("Sender %d: %s, %s",
				sender.PrincipalID, senderName(sender), plural(sender.Letters, "letter"))})
		}
		lines = append(lines,
			Line{Kind: LineText, Text: fmt.Sprintf("%d of %d senders mapped", s.mapping.Len(), len(s.senders))},
			Line{Kind: LineHint, Text: fmt.Sprintf("%s/%s move  %s pick friend  %s finish",
				label(ButtonUp), label(ButtonDown), label(ButtonConfirm), label(ButtonStart))},
		)
		return lines
	}

	sender := s.senders[s.main.Index()]
	current, mapped := s.mapping.Get(sender.PrincipalID)
	lines := []Line{{Kind: LineHeader, Text: "Map " + senderName(sender) + " to:"}}
	hover := s.picker.Index()
	start, end := page(len(s.choices), hover, s.options.PageSize)
	for index := start; index < end; index++ {
		option := s.choices[index]
		text := unmappedLabel
		if !option.clear {
			text = s.contactName(option.contact)
			if mapped && option.contact == current {
				text += " *"
			}
		}
		lines = append(lines, row(index == hover, text))
	}
	if remaining := len(s.choices) - end; remaining > 0 {
		lines = append(lines, Line{Kind: LineMarker, Text: fmt.Sprintf("   ... %d more", remaining)})
	}
	lines = append(lines, Line{Kind: LineHint, Text: fmt.Sprintf("%s choose  %s back  %s clear  %s quit",
		label(ButtonConfirm), label(ButtonCancel), label(ButtonClear), label(ButtonStart))})
	return lines
}

// contactName is the roster name for id, marking the local identity.
func (s *Session) contactName(id frd.PrincipalID) string {
	entry, ok := s.roster.Lookup(id)
	if !ok {
		return fmt.Sprintf("#%d", id)
	}
	if entry.Local {
		return entry.Name() + " (you)"
	}
	return entry.Name()
}

func senderName(sender reconcile.Sender) string {
	if name := sender.Name(); name != "" {
		return name
	}
	return fmt.Sprintf("#%d", sender.PrincipalID)
}

func senderLabel(sender reconcile.Sender) string {
	if sender.Letters > 1 {
		return fmt.Sprintf("%s (%d)", senderName(sender), sender.Letters)
	}
	return senderName(sender)
}

func row(hovered bool, text string) Line {
	if hovered {
		return Line{Kind: LineHovered, Text: " > " + text}
	}
	return Line{Kind: LineText, Text: "   " + text}
}

// page returns the bounds of the page containing hover.
func page(length, hover, size int) (start, end int) {
	if length == 0 {
		return 0, 0
	}
	start = hover / size * size
	return start, min(start+size, length)
}

func fitLeft(text string, width int) string {
	text = ansi.Truncate(text, width, "~")
	return text + strings.Repeat(" ", width-ansi.StringWidth(text))
}

func fitRight(text string, width int) string {
	text = ansi.Truncate(text, width, "~")
	return strings.Repeat(" ", width-ansi.StringWidth(text)) + text
}

func center(text string, width int) string {
	text = ansi.Truncate(text, width, "")
	gap := width - ansi.StringWidth(text)
	return strings.Repeat(" ", gap/2) + text + strings.Repeat(" ", gap-gap/2)
}

func plural(count int, noun string) string {
	if count == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", count, noun)
}
