// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"errors"
	"iter"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bureau-foundation/doodlemap/lib/extdata"
	"github.com/bureau-foundation/doodlemap/lib/frd"
	"github.com/bureau-foundation/doodlemap/lib/letter"
	"github.com/bureau-foundation/doodlemap/lib/mii"
)

func avatar(name string, systemID uint64) *mii.Avatar {
	return &mii.Avatar{Version: mii.Version, Name: name, SystemID: systemID}
}

func entry(id frd.PrincipalID, name string, systemID uint64) frd.Entry {
	return frd.Entry{PrincipalID: id, Avatar: *avatar(name, systemID)}
}

// testRoster is the local identity (id 1, Alice, key AA) and Bob (id 2, key BB).
func testRoster() frd.Roster {
	return frd.NewRoster(entry(1, "Alice", 0xAA), []frd.Entry{entry(2, "Bob", 0xBB)})
}

func TestAutoMatchExample(t *testing.T) {
	notes := []Note{
		{Sender: 10, Avatar: avatar("Alice", 0xAA)},
		{Sender: 20, Avatar: avatar("Carol", 0xCC)},
	}
	mapping := AutoMatch(testRoster(), notes)
	want := []Pair{{Sender: 10, Contact: 1}}
	if diff := cmp.Diff(want, mapping.Pairs()); diff != "" {
		t.Errorf("mapping (-want +got):\n%s", diff)
	}
}

func TestAutoMatchSkipsUnusableNotes(t *testing.T) {
	notes := []Note{
		{Sender: 0, Avatar: avatar("Alice", 0xAA)},
		{Sender: 30, Avatar: nil},
		{Sender: 40, Avatar: avatar("Bob", 0xBB)},
	}
	mapping := AutoMatch(testRoster(), notes)
	want := []Pair{{Sender: 40, Contact: 2}}
	if diff := cmp.Diff(want, mapping.Pairs()); diff != "" {
		t.Errorf("mapping (-want +got):\n%s", diff)
	}
}

func TestAutoMatchTieGoesToFirstInRosterOrder(t *testing.T) {
	roster := frd.NewRoster(entry(1, "Me", 0x11), []frd.Entry{
		entry(5, "Twin A", 0xAB),
		entry(3, "Twin B", 0xAB),
	})
	mapping := AutoMatch(roster, []Note{{Sender: 70, Avatar: avatar("Twin", 0xAB)}})
	if contact, ok := mapping.Get(70); !ok || contact != 5 {
		t.Errorf("Get(70) = %d, %v; want 5, true", contact, ok)
	}

	// The local identity precedes every friend.
	roster = frd.NewRoster(entry(1, "Me", 0xAB), []frd.Entry{entry(5, "Twin", 0xAB)})
	mapping = AutoMatch(roster, []Note{{Sender: 70, Avatar: avatar("Me", 0xAB)}})
	if contact, _ := mapping.Get(70); contact != 1 {
		t.Errorf("Get(70) = %d, want the local identity 1", contact)
	}
}

func TestAutoMatchDeterministic(t *testing.T) {
	roster := frd.NewRoster(entry(1, "Me", 0x01), []frd.Entry{
		entry(2, "A", 0x02), entry(3, "B", 0x03), entry(4, "C", 0x02),
	})
	notes := []Note{
		{Sender: 10, Avatar: avatar("a", 0x02)},
		{Sender: 11, Avatar: avatar("b", 0x03)},
		{Sender: 12, Avatar: avatar("me", 0x01)},
		{Sender: 13, Avatar: avatar("x", 0x99)},
		{Sender: 10, Avatar: avatar("b", 0x03)},
	}
	first := AutoMatch(roster, notes).Pairs()
	for range 20 {
		if diff := cmp.Diff(first, AutoMatch(roster, notes).Pairs()); diff != "" {
			t.Fatalf("AutoMatch changed between runs (-first +now):\n%s", diff)
		}
	}
	want := []Pair{{10, 3}, {11, 3}, {12, 1}}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("mapping (-want +got):\n%s", diff)
	}
}

func TestMappingSetClear(t *testing.T) {
	var mapping Mapping
	mapping.Clear(5)
	if mapping.Len() != 0 {
		t.Fatalf("Clear on empty mapping left Len = %d", mapping.Len())
	}

	mapping.Set(10, 1)
	mapping.Set(20, 1)
	mapping.Set(20, 2)
	if diff := cmp.Diff([]Pair{{10, 1}, {20, 2}}, mapping.Pairs()); diff != "" {
		t.Errorf("after Set (-want +got):\n%s", diff)
	}

	once := mapping.Clone()
	once.Clear(20)
	twice := mapping.Clone()
	twice.Clear(20)
	twice.Clear(20)
	if diff := cmp.Diff(once.Pairs(), twice.Pairs()); diff != "" {
		t.Errorf("Clear twice differs from once (-once +twice):\n%s", diff)
	}
	if _, ok := once.Get(20); ok {
		t.Error("Get(20) still mapped after Clear")
	}
	if contact, ok := mapping.Get(20); !ok || contact != 2 {
		t.Errorf("Clone shares storage: original Get(20) = %d, %v", contact, ok)
	}
}

func recordSeq(records []extdata.Record, err error) iter.Seq2[extdata.Record, error] {
	return func(yield func(extdata.Record, error) bool) {
		for _, record := range records {
			if !yield(record, nil) {
				return
			}
		}
		if err != nil {
			yield(extdata.Record{}, err)
		}
	}
}

func TestCollectDropsDuplicates(t *testing.T) {
	alice := avatar("Alice", 0xAA)
	records := []extdata.Record{
		{Path: "/letter/0000/a", Letter: letter.Letter{SenderPrincipalID: 10, Sender: alice}, Digest: [32]byte{1}},
		{Path: "/letter/0001/a", Letter: letter.Letter{SenderPrincipalID: 10, Sender: alice}, Digest: [32]byte{1}},
		{Path: "/letter/0001/b", Letter: letter.Letter{SenderPrincipalID: 20}, Digest: [32]byte{2}},
	}
	var progress []int
	collection, err := Collect(recordSeq(records, nil), func(read int) { progress = append(progress, read) })
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if collection.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", collection.Duplicates)
	}
	want := []Note{
		{Sender: 10, Avatar: alice, Path: "/letter/0000/a", Digest: [32]byte{1}},
		{Sender: 20, Path: "/letter/0001/b", Digest: [32]byte{2}},
	}
	if diff := cmp.Diff(want, collection.Notes); diff != "" {
		t.Errorf("notes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, progress); diff != "" {
		t.Errorf("progress (-want +got):\n%s", diff)
	}
}

func TestCollectStopsOnError(t *testing.T) {
	failure := errors.New("read failed")
	records := []extdata.Record{{Path: "/letter/0000/a", Letter: letter.Letter{SenderPrincipalID: 10}}}
	collection, err := Collect(recordSeq(records, failure), nil)
	if !errors.Is(err, failure) {
		t.Fatalf("Collect error = %v, want %v", err, failure)
	}
	if len(collection.Notes) != 1 {
		t.Errorf("got %d notes before the error, want 1", len(collection.Notes))
	}
}

func TestSenders(t *testing.T) {
	carol := avatar("Carol", 0xCC)
	alice := avatar("Alice", 0xAA)
	notes := []Note{
		{Sender: 20},
		{Sender: 10, Avatar: alice},
		{Sender: 0, Avatar: avatar("Me", 0x01)},
		{Sender: 20, Avatar: carol},
		{Sender: 10, Avatar: avatar("Alice again", 0xAA)},
		{Sender: 20},
	}
	want := []Sender{
		{PrincipalID: 20, Avatar: carol, Letters: 3},
		{PrincipalID: 10, Avatar: alice, Letters: 2},
	}
	got := Senders(notes)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Senders (-want +got):\n%s", diff)
	}
	if got[0].Name() != "Carol" {
		t.Errorf("Name = %q", got[0].Name())
	}
	if (Sender{}).Name() != "" {
		t.Error("Name of a sender without avatar is not empty")
	}
}
