// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import "fmt"

const (
	// MessageWords is the size of the command buffer proper: the
	// header, normal parameters and translate parameters of a request
	// or response all live here.
	MessageWords = 64

	// StaticBufferWords is the size of the receive static-buffer
	// descriptor area that immediately follows the message words.
	// Word 64 of the raw thread command buffer is StaticBuffers[0].
	StaticBufferWords = 32
)

// CommandBuffer is one thread command buffer plus the buffers its
// descriptors reference. A buffer is reused across calls: the service
// overwrites Words with its response.
type CommandBuffer struct {
	Words         [MessageWords]uint32
	StaticBuffers [StaticBufferWords]uint32

	// Buffers holds the memory referenced by translate descriptors
	// and receive static-buffer descriptors, indexed by the address
	// word that follows each descriptor.
	Buffers [][]byte
}

// NewCommandBuffer returns a zeroed buffer with no attached slots.
func NewCommandBuffer() *CommandBuffer {
	return &CommandBuffer{}
}

// Reset zeroes every word and detaches all buffers.
func (b *CommandBuffer) Reset() {
	b.Words = [MessageWords]uint32{}
	b.StaticBuffers = [StaticBufferWords]uint32{}
	b.Buffers = nil
}

// Attach appends data as a new buffer slot and returns its index, for
// use as the address word after a descriptor. The slice is shared, not
// copied: services write responses straight into it.
func (b *CommandBuffer) Attach(data []byte) uint32 {
	b.Buffers = append(b.Buffers, data)
	return uint32(len(b.Buffers) - 1)
}

// Buffer returns the slot referenced by an address word.
func (b *CommandBuffer) Buffer(address uint32) ([]byte, error) {
	if int(address) >= len(b.Buffers) {
		return nil, fmt.Errorf("buffer slot %d out of range (%d attached)", address, len(b.Buffers))
	}
	return b.Buffers[address], nil
}

// Header is the decoded form of word 0.
type Header struct {
	Command        uint16
	NormalParams   uint8
	TranslateWords uint8
}

// MakeHeader encodes word 0 of a request: the command id in bits
// 16-31, the count of normal parameter words in bits 6-11, and the
// count of translate parameter words in bits 0-5.
func MakeHeader(command uint16, normalParams, translateWords uint8) uint32 {
	return uint32(command)<<16 | uint32(normalParams&0x3F)<<6 | uint32(translateWords&0x3F)
}

// ParseHeader decodes word 0.
func ParseHeader(word uint32) Header {
	return Header{
		Command:        uint16(word >> 16),
		NormalParams:   uint8(word >> 6 & 0x3F),
		TranslateWords: uint8(word & 0x3F),
	}
}

// Translate descriptor tags (low bits of the descriptor word).
const (
	staticBufferTag = 0x2
	mappedBufferTag = 0x8
)

// MappedPermission is the access a service gets to a mapped buffer.
type MappedPermission uint32

const (
	MappedRead      MappedPermission = 0x2
	MappedWrite     MappedPermission = 0x4
	MappedReadWrite MappedPermission = MappedRead | MappedWrite
)

// StaticBufferDescriptor encodes a static buffer descriptor: size in
// bits 14-31, static buffer id in bits 10-13, tag 0x2. The same
// encoding describes an input static buffer in the translate
// parameters and a receive buffer in the static-buffer area.
func StaticBufferDescriptor(size uint32, id uint8) uint32 {
	return size<<14 | uint32(id&0xF)<<10 | staticBufferTag
}

// ParseStaticBufferDescriptor decodes a static buffer descriptor.
// ok is false when the word is not tagged as one.
func ParseStaticBufferDescriptor(word uint32) (size uint32, id uint8, ok bool) {
	if word&0xF != staticBufferTag {
		return 0, 0, false
	}
	return word >> 14, uint8(word >> 10 & 0xF), true
}

// MappedBufferDescriptor encodes a mapped buffer descriptor: size in
// bits 4-31, tag bit 3, permission bits 1-2.
func MappedBufferDescriptor(size uint32, permission MappedPermission) uint32 {
	return size<<4 | mappedBufferTag | uint32(permission&MappedReadWrite)
}

// ParseMappedBufferDescriptor decodes a mapped buffer descriptor. ok is
// false when the word is not tagged as one.
func ParseMappedBufferDescriptor(word uint32) (size uint32, permission MappedPermission, ok bool) {
	if word&mappedBufferTag == 0 {
		return 0, 0, false
	}
	return word >> 4, MappedPermission(word) & MappedReadWrite, true
}
