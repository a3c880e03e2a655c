// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"iter"

	"github.com/bureau-foundation/doodlemap/lib/extdata"
	"github.com/bureau-foundation/doodlemap/lib/frd"
	"github.com/bureau-foundation/doodlemap/lib/mii"
)

// Note is a letter reduced to what reconciliation uses.
type Note struct {
	// Sender is the letter's sender principal id. Zero means the
	// letter was written locally or the sender is unknown.
	Sender frd.PrincipalID

	// Avatar is the sender avatar stored in the letter, if any.
	Avatar *mii.Avatar

	Path   string
	Digest [32]byte
}

// NoteFromRecord reduces a scanned record.
func NoteFromRecord(record extdata.Record) Note {
	return Note{
		Sender: frd.PrincipalID(record.Letter.SenderPrincipalID),
		Avatar: record.Letter.Sender,
		Path:   record.Path,
		Digest: record.Digest,
	}
}

// Collection is the result of draining a scan.
type Collection struct {
	Notes []Note

	// Duplicates counts records dropped because an earlier record had
	// the same content digest.
	Duplicates int
}

// Collect drains records into notes, keeping the first of any
// byte-identical letters. progress, if non-nil, is called after each
// record with the number read so far. The first error ends collection
// and is returned with the notes gathered up to that point.
func Collect(records iter.Seq2[extdata.Record, error], progress func(read int)) (Collection, error) {
	var collection Collection
	seen := make(map[[32]byte]struct{})
	read := 0
	for record, err := range records {
		if err != nil {
			return collection, err
		}
		read++
		if progress != nil {
			progress(read)
		}
		if _, duplicate := seen[record.Digest]; duplicate {
			collection.Duplicates++
			continue
		}
		seen[record.Digest] = struct{}{}
		collection.Notes = append(collection.Notes, NoteFromRecord(record))
	}
	return collection, nil
}

// Sender is one row of the main list: a distinct sender id with the
// letters attributed to it.
type Sender struct {
	PrincipalID frd.PrincipalID

	// Avatar is taken from the first of the sender's letters that
	// carried one. Nil when none did.
	Avatar *mii.Avatar

	Letters int
}

// Name is the sender's avatar name, or empty when there is no avatar.
func (s Sender) Name() string {
	if s.Avatar == nil {
		return ""
	}
	return s.Avatar.Name
}

// Senders groups notes by sender in first-seen order. Notes with a
// zero sender are skipped.
func Senders(notes []Note) []Sender {
	var senders []Sender
	position := make(map[frd.PrincipalID]int)
	for _, note := range notes {
		if note.Sender == 0 {
			continue
		}
		index, ok := position[note.Sender]
		if !ok {
			index = len(senders)
			position[note.Sender] = index
			senders = append(senders, Sender{PrincipalID: note.Sender})
		}
		senders[index].Letters++
		if senders[index].Avatar == nil && note.Avatar != nil {
			senders[index].Avatar = note.Avatar
		}
	}
	return senders
}
