// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mii

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// Size is the length of an avatar descriptor.
const Size = 0x5C

// Version is the only descriptor version this package accepts.
const Version = 3

// Field offsets within a descriptor.
const (
	offsetVersion    = 0x00
	offsetSystemID   = 0x04
	offsetAvatarID   = 0x0C
	offsetCreatorMAC = 0x10
	offsetGeneral    = 0x18
	offsetName       = 0x1A
	offsetAuthorName = 0x48
	nameBytes        = 20
)

var (
	// ErrEmpty is returned for an all-zero descriptor, which is what
	// an unused friend slot holds.
	ErrEmpty = errors.New("mii: empty descriptor")

	// ErrNoName is returned when the descriptor's name field is blank.
	ErrNoName = errors.New("mii: descriptor has no name")
)

// Avatar is a decoded descriptor.
type Avatar struct {
	Version uint8

	// SystemID identifies the console the avatar was created on. Two
	// descriptors with the same SystemID were authored on the same
	// device, which is what letter reconciliation keys on.
	SystemID uint64

	AvatarID   uint32
	CreatorMAC [6]byte

	Female        bool
	BirthMonth    uint8
	BirthDay      uint8
	FavoriteColor uint8

	Name       string
	AuthorName string

	// Raw is the descriptor as decoded, including uninterpreted bytes.
	Raw [Size]byte
}

// CorrelationKey is the device key used for auto-matching.
func (a Avatar) CorrelationKey() uint64 { return a.SystemID }

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Decode parses a descriptor. It fails for an all-zero slot, an
// unsupported version, or a blank name.
func Decode(raw [Size]byte) (Avatar, error) {
	if raw == ([Size]byte{}) {
		return Avatar{}, ErrEmpty
	}
	if raw[offsetVersion] != Version {
		return Avatar{}, fmt.Errorf("mii: unsupported descriptor version %d", raw[offsetVersion])
	}

	avatar := Avatar{
		Version:  raw[offsetVersion],
		SystemID: binary.BigEndian.Uint64(raw[offsetSystemID:]),
		AvatarID: binary.BigEndian.Uint32(raw[offsetAvatarID:]),
		Raw:      raw,
	}
	copy(avatar.CreatorMAC[:], raw[offsetCreatorMAC:offsetCreatorMAC+6])

	general := binary.LittleEndian.Uint16(raw[offsetGeneral:])
	avatar.Female = general&0x1 != 0
	avatar.BirthMonth = uint8(general >> 1 & 0xF)
	avatar.BirthDay = uint8(general >> 5 & 0x1F)
	avatar.FavoriteColor = uint8(general >> 10 & 0xF)

	var err error
	if avatar.Name, err = decodeName(raw[offsetName : offsetName+nameBytes]); err != nil {
		return Avatar{}, fmt.Errorf("mii: name: %w", err)
	}
	if avatar.Name == "" {
		return Avatar{}, ErrNoName
	}
	if avatar.AuthorName, err = decodeName(raw[offsetAuthorName : offsetAuthorName+nameBytes]); err != nil {
		return Avatar{}, fmt.Errorf("mii: author name: %w", err)
	}
	return avatar, nil
}

// DecodeSlice is Decode for a slice that must be exactly Size bytes.
func DecodeSlice(data []byte) (Avatar, error) {
	if len(data) != Size {
		return Avatar{}, fmt.Errorf("mii: descriptor is %d bytes, want %d", len(data), Size)
	}
	return Decode([Size]byte(data))
}

// Encode builds a descriptor from the decoded fields, starting from Raw
// so uninterpreted bytes survive. Names longer than ten UTF-16 code
// units are truncated.
func Encode(avatar Avatar) ([Size]byte, error) {
	raw := avatar.Raw
	raw[offsetVersion] = avatar.Version
	if raw[offsetVersion] == 0 {
		raw[offsetVersion] = Version
	}
	binary.BigEndian.PutUint64(raw[offsetSystemID:], avatar.SystemID)
	binary.BigEndian.PutUint32(raw[offsetAvatarID:], avatar.AvatarID)
	copy(raw[offsetCreatorMAC:], avatar.CreatorMAC[:])

	var general uint16
	if avatar.Female {
		general |= 0x1
	}
	general |= uint16(avatar.BirthMonth&0xF) << 1
	general |= uint16(avatar.BirthDay&0x1F) << 5
	general |= uint16(avatar.FavoriteColor&0xF) << 10
	binary.LittleEndian.PutUint16(raw[offsetGeneral:], general)

	if err := encodeName(raw[offsetName:offsetName+nameBytes], avatar.Name); err != nil {
		return raw, fmt.Errorf("mii: name: %w", err)
	}
	if err := encodeName(raw[offsetAuthorName:offsetAuthorName+nameBytes], avatar.AuthorName); err != nil {
		return raw, fmt.Errorf("mii: author name: %w", err)
	}
	return raw, nil
}

// decodeName reads a NUL-terminated UTF-16LE field.
func decodeName(field []byte) (string, error) {
	end := len(field)
	for index := 0; index+1 < len(field); index += 2 {
		if field[index] == 0 && field[index+1] == 0 {
			end = index
			break
		}
	}
	decoded, err := utf16LE.NewDecoder().Bytes(field[:end])
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func encodeName(field []byte, name string) error {
	encoded, err := utf16LE.NewEncoder().Bytes([]byte(name))
	if err != nil {
		return err
	}
	if len(encoded) > len(field) {
		encoded = encoded[:len(field)]
	}
	clear(field)
	copy(field, encoded)
	return nil
}

// String returns the avatar's display name.
func (a Avatar) String() string {
	return a.Name
}

// Equal reports whether two avatars carry the same descriptor bytes.
func (a Avatar) Equal(other Avatar) bool {
	return bytes.Equal(a.Raw[:], other.Raw[:])
}
