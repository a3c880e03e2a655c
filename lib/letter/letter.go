// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package letter

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/bureau-foundation/doodlemap/lib/mii"
)

const (
	magic           = "BPK1"
	tableOffset     = 0x40
	tableEntrySize  = 0x10
	blockNameLength = 8

	// maxBlocks bounds the block table. Real letters carry well under
	// twenty blocks.
	maxBlocks = 256
)

// Well-known block names.
const (
	BlockCommon = "COMMON"
	BlockSender = "SNDRMII"
)

var (
	ErrBadMagic    = errors.New("letter: not a BPK1 container")
	ErrNoCommon    = errors.New("letter: missing COMMON block")
	ErrShortCommon = errors.New("letter: COMMON block shorter than 4 bytes")
	ErrTruncated   = errors.New("letter: truncated block table")
)

// Block is one entry of the container.
type Block struct {
	Name string
	Data []byte
}

// Letter is a decoded letter.
type Letter struct {
	// SenderPrincipalID is the sender's platform id; 0 when unknown.
	SenderPrincipalID uint32

	// Sender is the sender's avatar, nil when the letter carries none
	// or it does not decode.
	Sender *mii.Avatar

	// Blocks lists every block in container order.
	Blocks []Block
}

// Decode parses a BPK1 container.
func Decode(data []byte) (Letter, error) {
	if len(data) < tableOffset || string(data[:4]) != magic {
		return Letter{}, ErrBadMagic
	}
	count := binary.LittleEndian.Uint32(data[4:])
	if count > maxBlocks {
		return Letter{}, fmt.Errorf("letter: %d blocks exceeds maximum %d", count, maxBlocks)
	}
	if uint64(tableOffset)+uint64(count)*tableEntrySize > uint64(len(data)) {
		return Letter{}, ErrTruncated
	}

	var letter Letter
	var common []byte
	for index := range count {
		entry := data[tableOffset+index*tableEntrySize:][:tableEntrySize]
		offset := binary.LittleEndian.Uint32(entry[0:])
		size := binary.LittleEndian.Uint32(entry[4:])
		name := string(bytes.TrimRight(entry[8:8+blockNameLength], "\x00"))

		if uint64(offset)+uint64(size) > uint64(len(data)) {
			return Letter{}, fmt.Errorf("letter: block %q [%#x+%#x] exceeds %d-byte file", name, offset, size, len(data))
		}
		block := Block{Name: name, Data: data[offset : offset+size]}
		letter.Blocks = append(letter.Blocks, block)

		switch name {
		case BlockCommon:
			if common == nil {
				common = block.Data
			}
		case BlockSender:
			if letter.Sender == nil {
				if avatar, err := mii.DecodeSlice(block.Data); err == nil {
					letter.Sender = &avatar
				}
			}
		}
	}

	if common == nil {
		return Letter{}, ErrNoCommon
	}
	if len(common) < 4 {
		return Letter{}, ErrShortCommon
	}
	letter.SenderPrincipalID = binary.LittleEndian.Uint32(common)
	return letter, nil
}

// Encode builds a container with a COMMON block for senderID, a SNDRMII
// block when sender is non-nil, then extra in order. Used to produce
// fixture archives.
func Encode(senderID uint32, sender *mii.Avatar, extra ...Block) ([]byte, error) {
	common := make([]byte, 8)
	binary.LittleEndian.PutUint32(common, senderID)

	blocks := []Block{{Name: BlockCommon, Data: common}}
	if sender != nil {
		raw, err := mii.Encode(*sender)
		if err != nil {
			return nil, fmt.Errorf("letter: encoding sender: %w", err)
		}
		blocks = append(blocks, Block{Name: BlockSender, Data: raw[:]})
	}
	blocks = append(blocks, extra...)

	header := make([]byte, tableOffset+len(blocks)*tableEntrySize)
	copy(header, magic)
	binary.LittleEndian.PutUint32(header[4:], uint32(len(blocks)))

	offset := len(header)
	for index, block := range blocks {
		if len(block.Name) > blockNameLength {
			return nil, fmt.Errorf("letter: block name %q longer than %d bytes", block.Name, blockNameLength)
		}
		entry := header[tableOffset+index*tableEntrySize:]
		binary.LittleEndian.PutUint32(entry[0:], uint32(offset))
		binary.LittleEndian.PutUint32(entry[4:], uint32(len(block.Data)))
		copy(entry[8:8+blockNameLength], block.Name)
		offset += len(block.Data)
	}

	encoded := make([]byte, 0, offset)
	encoded = append(encoded, header...)
	for _, block := range blocks {
		encoded = append(encoded, block.Data...)
	}
	return encoded, nil
}
