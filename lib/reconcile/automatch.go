// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import "github.com/bureau-foundation/doodlemap/lib/frd"

// AutoMatch builds the initial mapping. For each note with a nonzero
// sender and an avatar, the roster is searched in order and the first
// contact whose avatar has the same correlation key becomes the
// sender's contact. Senders with no match stay unmapped. When several
// notes from one sender match different contacts, the last note wins.
func AutoMatch(roster frd.Roster, notes []Note) *Mapping {
	mapping := &Mapping{}
	for _, note := range notes {
		if note.Sender == 0 || note.Avatar == nil {
			continue
		}
		key := note.Avatar.CorrelationKey()
		for _, entry := range roster.Entries() {
			if entry.Avatar.CorrelationKey() == key {
				mapping.Set(note.Sender, entry.PrincipalID)
				break
			}
		}
	}
	return mapping
}
