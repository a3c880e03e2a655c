// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"maps"
	"slices"

	"github.com/bureau-foundation/doodlemap/lib/frd"
)

// Mapping assigns letter senders to roster contacts. Each sender maps
// to at most one contact; several senders may share a contact. The
// zero value is an empty mapping.
type Mapping struct {
	contacts map[frd.PrincipalID]frd.PrincipalID
}

// Pair is one sender-to-contact assignment.
type Pair struct {
	Sender  frd.PrincipalID
	Contact frd.PrincipalID
}

// Set assigns sender to contact, replacing any earlier assignment.
func (m *Mapping) Set(sender, contact frd.PrincipalID) {
	if m.contacts == nil {
		m.contacts = make(map[frd.PrincipalID]frd.PrincipalID)
	}
	m.contacts[sender] = contact
}

// Clear removes sender's assignment. Clearing an unmapped sender does
// nothing.
func (m *Mapping) Clear(sender frd.PrincipalID) {
	delete(m.contacts, sender)
}

// Get returns sender's contact.
func (m *Mapping) Get(sender frd.PrincipalID) (frd.PrincipalID, bool) {
	contact, ok := m.contacts[sender]
	return contact, ok
}

// Len is the number of mapped senders.
func (m *Mapping) Len() int { return len(m.contacts) }

// Pairs returns every assignment ordered by sender id.
func (m *Mapping) Pairs() []Pair {
	senders := slices.Sorted(maps.Keys(m.contacts))
	pairs := make([]Pair, len(senders))
	for index, sender := range senders {
		pairs[index] = Pair{Sender: sender, Contact: m.contacts[sender]}
	}
	return pairs
}

// Clone returns an independent copy.
func (m *Mapping) Clone() *Mapping {
	return &Mapping{contacts: maps.Clone(m.contacts)}
}
