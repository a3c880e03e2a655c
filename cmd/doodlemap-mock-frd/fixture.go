// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/doodlemap/lib/extdata"
	"github.com/bureau-foundation/doodlemap/lib/frd"
	"github.com/bureau-foundation/doodlemap/lib/frd/frdtest"
	"github.com/bureau-foundation/doodlemap/lib/letter"
	"github.com/bureau-foundation/doodlemap/lib/mii"
)

// serialBlock makes each seeded letter's content distinct, so letters
// from the same sender are not folded together as duplicates.
const serialBlock = "SERIAL"

// Fixture is the YAML roster file served by the mock.
type Fixture struct {
	Local   Person      `yaml:"local"`
	Friends []Person    `yaml:"friends"`
	Letters []LetterSet `yaml:"letters"`
}

// Person is one roster entry. SystemID is the console the avatar was
// made on; letters whose avatar shares it auto-match to this person.
type Person struct {
	PrincipalID uint32 `yaml:"principal_id"`
	FriendCode  uint64 `yaml:"friend_code"`
	Name        string `yaml:"name"`
	SystemID    uint64 `yaml:"system_id"`
}

// LetterSet is a run of letters from one sender, written by
// --seed-archive.
type LetterSet struct {
	Sender uint32 `yaml:"sender"`

	// Name and SystemID describe the sender avatar embedded in each
	// letter. An empty Name writes letters without one.
	Name     string `yaml:"name"`
	SystemID uint64 `yaml:"system_id"`

	// Count defaults to 1.
	Count int `yaml:"count"`

	// Shard is the four-digit folder under /letter. Default: 0000
	Shard string `yaml:"shard"`
}

// LoadFixture reads and checks a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := fixture.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &fixture, nil
}

// Validate reports every problem in the fixture.
func (f *Fixture) Validate() error {
	var errs []error
	if f.Local.PrincipalID == 0 || f.Local.Name == "" {
		errs = append(errs, errors.New("local needs principal_id and name"))
	}
	if len(f.Friends) > frd.MaxFriends {
		errs = append(errs, fmt.Errorf("%d friends exceeds the service limit of %d", len(f.Friends), frd.MaxFriends))
	}
	for index, friend := range f.Friends {
		if friend.PrincipalID == 0 {
			errs = append(errs, fmt.Errorf("friends[%d]: principal_id is required", index))
		}
	}
	for index, set := range f.Letters {
		if set.Count < 0 {
			errs = append(errs, fmt.Errorf("letters[%d]: negative count", index))
		}
		if set.Shard != "" && !extdata.IsShardName(set.Shard) {
			errs = append(errs, fmt.Errorf("letters[%d]: shard %q does not start with four digits", index, set.Shard))
		}
	}
	return errors.Join(errs...)
}

// Service builds the fake friend service for the fixture's roster.
func (f *Fixture) Service() (*frdtest.Service, error) {
	localAvatar, err := f.Local.avatar()
	if err != nil {
		return nil, fmt.Errorf("local: %w", err)
	}
	service := &frdtest.Service{
		Local:       f.Local.key(),
		LocalAvatar: localAvatar,
	}
	for index, friend := range f.Friends {
		avatar, err := friend.avatar()
		if err != nil {
			return nil, fmt.Errorf("friends[%d]: %w", index, err)
		}
		service.Friends = append(service.Friends, frdtest.Friend{Key: friend.key(), Avatar: avatar})
	}
	return service, nil
}

func (p Person) key() frd.FriendKey {
	return frd.FriendKey{PrincipalID: frd.PrincipalID(p.PrincipalID), LocalFriendCode: p.FriendCode}
}

// avatar encodes the person's descriptor. A person without a name has
// an empty slot, which the client drops.
func (p Person) avatar() ([mii.Size]byte, error) {
	if p.Name == "" {
		return [mii.Size]byte{}, nil
	}
	return mii.Encode(mii.Avatar{Name: p.Name, SystemID: p.SystemID})
}

// Seed writes the fixture's letters into the selected archive and
// returns how many it wrote.
func (f *Fixture) Seed(storage extdata.DirStorage, selector extdata.Selector) (int, error) {
	written := 0
	for index, set := range f.Letters {
		var sender *mii.Avatar
		if set.Name != "" {
			sender = &mii.Avatar{Name: set.Name, SystemID: set.SystemID}
		}
		shard := set.Shard
		if shard == "" {
			shard = "0000"
		}
		count := set.Count
		if count == 0 {
			count = 1
		}
		for range count {
			serial := make([]byte, 4)
			binary.LittleEndian.PutUint32(serial, uint32(written))
			data, err := letter.Encode(set.Sender, sender, letter.Block{Name: serialBlock, Data: serial})
			if err != nil {
				return written, fmt.Errorf("letters[%d]: %w", index, err)
			}
			name := fmt.Sprintf("%s/%s/%08x.bpk", extdata.LetterRoot, shard, written)
			if err := storage.Put(selector, name, data); err != nil {
				return written, err
			}
			written++
		}
	}
	return written, nil
}
