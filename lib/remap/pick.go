// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package remap

import (
	"fmt"

	"github.com/bureau-foundation/doodlemap/lib/frd"
)

// PickOutcome is how a picker visit ended.
type PickOutcome uint8

const (
	// PickSelected chose a contact.
	PickSelected PickOutcome = iota + 1
	// PickCleared asked for the sender to be unmapped.
	PickCleared
	// PickCancelled backed out without a change.
	PickCancelled
)

// PickResult is the tagged outcome of the picker. Contact is
// meaningful only for PickSelected.
type PickResult struct {
	Outcome PickOutcome
	Contact frd.PrincipalID
}

// Selected is the result for choosing contact.
func Selected(contact frd.PrincipalID) PickResult {
	return PickResult{Outcome: PickSelected, Contact: contact}
}

// Cleared is the result for unmapping.
func Cleared() PickResult { return PickResult{Outcome: PickCleared} }

// Cancelled is the result for backing out.
func Cancelled() PickResult { return PickResult{Outcome: PickCancelled} }

func (r PickResult) String() string {
	switch r.Outcome {
	case PickSelected:
		return fmt.Sprintf("selected %d", r.Contact)
	case PickCleared:
		return "cleared"
	case PickCancelled:
		return "cancelled"
	default:
		return "none"
	}
}
