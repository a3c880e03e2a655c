// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package extdata

import (
	"fmt"
	"strings"
)

// MediaType is the storage medium an archive lives on.
type MediaType uint32

const (
	MediaNAND     MediaType = 0
	MediaSD       MediaType = 1
	MediaGameCard MediaType = 2
)

func (m MediaType) String() string {
	switch m {
	case MediaNAND:
		return "nand"
	case MediaSD:
		return "sd"
	case MediaGameCard:
		return "gamecard"
	default:
		return fmt.Sprintf("media-%d", uint32(m))
	}
}

// ParseMediaType accepts the names String produces.
func ParseMediaType(name string) (MediaType, error) {
	switch strings.ToLower(name) {
	case "nand":
		return MediaNAND, nil
	case "sd", "sdmc":
		return MediaSD, nil
	case "gamecard", "card":
		return MediaGameCard, nil
	default:
		return 0, fmt.Errorf("unknown media type %q (want nand, sd or gamecard)", name)
	}
}

// ArchiveID selects the archive class to open.
type ArchiveID uint32

// ArchiveExtdata is the extended-data archive class.
const ArchiveExtdata ArchiveID = 0x00000006

// SwapdoodleProgramID is the program whose extdata holds the letters.
const SwapdoodleProgramID uint64 = 0x00040000001A2E00

// Selector picks one application's extdata archive.
type Selector struct {
	Media     MediaType
	ProgramID uint64
}

// ExtdataID is the archive id derived from the program id: the low 32
// bits shifted right by eight.
func (s Selector) ExtdataID() uint32 {
	return uint32(s.ProgramID) >> 8
}

// ArchivePath is the three-word binary path [media, extdata id, 0].
func (s Selector) ArchivePath() Path {
	return BinaryPath(uint32(s.Media), s.ExtdataID(), 0)
}

func (s Selector) String() string {
	return fmt.Sprintf("%s:%016X", s.Media, s.ProgramID)
}
