// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package frd

import "github.com/bureau-foundation/doodlemap/lib/mii"

// Entry is one contact: a principal and its decoded avatar.
type Entry struct {
	PrincipalID     PrincipalID
	LocalFriendCode uint64
	Avatar          mii.Avatar

	// Local marks the operator's own identity.
	Local bool
}

// Name is the avatar's display name.
func (e Entry) Name() string { return e.Avatar.Name }

// Roster is the operator's contacts in a fixed order: the local
// identity first, then friends in the order the service enumerated
// them. The order is what makes auto-matching deterministic.
type Roster struct {
	entries []Entry
	index   map[PrincipalID]int
}

// NewRoster builds a roster from the local identity and the decoded
// friends. A friend repeating an id already present is ignored.
func NewRoster(local Entry, friends []Entry) Roster {
	local.Local = true
	roster := Roster{
		entries: make([]Entry, 0, len(friends)+1),
		index:   make(map[PrincipalID]int, len(friends)+1),
	}
	roster.add(local)
	for _, friend := range friends {
		friend.Local = false
		roster.add(friend)
	}
	return roster
}

func (r *Roster) add(entry Entry) {
	if _, exists := r.index[entry.PrincipalID]; exists {
		return
	}
	r.index[entry.PrincipalID] = len(r.entries)
	r.entries = append(r.entries, entry)
}

// Len is the number of entries including the local identity.
func (r Roster) Len() int { return len(r.entries) }

// Entries returns the entries in roster order. The slice must not be
// modified.
func (r Roster) Entries() []Entry { return r.entries }

// Lookup finds an entry by principal id.
func (r Roster) Lookup(id PrincipalID) (Entry, bool) {
	position, ok := r.index[id]
	if !ok {
		return Entry{}, false
	}
	return r.entries[position], true
}

// Contains reports whether id is in the roster.
func (r Roster) Contains(id PrincipalID) bool {
	_, ok := r.index[id]
	return ok
}

// Local returns the operator's own entry. The zero Roster has none.
func (r Roster) Local() (Entry, bool) {
	if len(r.entries) == 0 {
		return Entry{}, false
	}
	return r.entries[0], true
}
