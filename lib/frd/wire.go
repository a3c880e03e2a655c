// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package frd

import (
	"encoding/binary"
	"fmt"

	"github.com/bureau-foundation/doodlemap/lib/ipc"
	"github.com/bureau-foundation/doodlemap/lib/mii"
	"github.com/bureau-foundation/doodlemap/lib/result"
)

// ServiceName is the service the client opens a session with.
const ServiceName = "frd:a"

// Command ids.
const (
	CommandGetMyFriendKey   uint16 = 0x0005
	CommandGetMyMii         uint16 = 0x000A
	CommandGetFriendKeyList uint16 = 0x0011
	CommandGetFriendInfo    uint16 = 0x001A
)

const (
	// MaxFriends is the size of the device's friend list.
	MaxFriends = 100

	// FriendKeySize is the size of one friend key record.
	FriendKeySize = 0x10

	// FriendInfoSize is the size of one friend info record.
	FriendInfoSize = 0x100

	// FriendInfoAvatarOffset is where the avatar descriptor sits
	// inside a friend info record.
	FriendInfoAvatarOffset = 0x80

	// myMiiFirstWord and myMiiWords locate the operator's avatar in a
	// GetMyMii response: 23 words starting at word 2.
	myMiiFirstWord = 2
	myMiiWords     = mii.Size / 4
)

// PrincipalID identifies a person on the platform.
type PrincipalID uint32

// FriendKey is the 16-byte key record: principal id, four bytes of
// padding, then the local friend code.
type FriendKey struct {
	PrincipalID     PrincipalID
	LocalFriendCode uint64
}

// DecodeFriendKey reads one key record.
func DecodeFriendKey(data []byte) FriendKey {
	return FriendKey{
		PrincipalID:     PrincipalID(binary.LittleEndian.Uint32(data[0:])),
		LocalFriendCode: binary.LittleEndian.Uint64(data[8:]),
	}
}

// Encode writes the key record into data[:FriendKeySize].
func (k FriendKey) Encode(data []byte) {
	binary.LittleEndian.PutUint32(data[0:], uint32(k.PrincipalID))
	binary.LittleEndian.PutUint32(data[4:], 0)
	binary.LittleEndian.PutUint64(data[8:], k.LocalFriendCode)
}

func expectHeader(buffer *ipc.CommandBuffer, command uint16) error {
	header := ipc.ParseHeader(buffer.Words[0])
	if header.Command != command {
		return fmt.Errorf("command %#04x, want %#04x", header.Command, command)
	}
	return nil
}

// FriendKeyListRequest asks for Limit keys starting at Offset. Keys
// are returned in the receive static buffer described at static-buffer
// word 0, whose slot is KeysSlot.
type FriendKeyListRequest struct {
	Offset   uint32
	Limit    uint32
	KeysSlot uint32
}

// Encode writes the request. The caller must already have attached a
// buffer of Limit*FriendKeySize bytes at KeysSlot.
func (r FriendKeyListRequest) Encode(buffer *ipc.CommandBuffer) {
	buffer.Words[0] = ipc.MakeHeader(CommandGetFriendKeyList, 2, 0)
	buffer.Words[1] = r.Offset
	buffer.Words[2] = r.Limit
	buffer.StaticBuffers[0] = ipc.StaticBufferDescriptor(r.Limit*FriendKeySize, 0)
	buffer.StaticBuffers[1] = r.KeysSlot
}

// DecodeFriendKeyListRequest is the service-side decoder.
func DecodeFriendKeyListRequest(buffer *ipc.CommandBuffer) (FriendKeyListRequest, error) {
	if err := expectHeader(buffer, CommandGetFriendKeyList); err != nil {
		return FriendKeyListRequest{}, err
	}
	request := FriendKeyListRequest{
		Offset:   buffer.Words[1],
		Limit:    buffer.Words[2],
		KeysSlot: buffer.StaticBuffers[1],
	}
	size, _, ok := ipc.ParseStaticBufferDescriptor(buffer.StaticBuffers[0])
	if !ok || size != request.Limit*FriendKeySize {
		return FriendKeyListRequest{}, fmt.Errorf("receive buffer descriptor %#x does not cover %d keys", buffer.StaticBuffers[0], request.Limit)
	}
	return request, nil
}

// FriendKeyListResponse carries the number of keys written.
type FriendKeyListResponse struct {
	Result result.Code
	Count  uint32
}

// Encode writes the response words.
func (r FriendKeyListResponse) Encode(buffer *ipc.CommandBuffer) {
	buffer.Words[0] = ipc.MakeHeader(CommandGetFriendKeyList, 2, 2)
	buffer.Words[1] = uint32(r.Result)
	buffer.Words[2] = r.Count
}

// DecodeFriendKeyListResponse reads the response words.
func DecodeFriendKeyListResponse(buffer *ipc.CommandBuffer) FriendKeyListResponse {
	return FriendKeyListResponse{Result: result.Code(buffer.Words[1]), Count: buffer.Words[2]}
}

// FriendInfoRequest asks for one info record per key. The two flag
// words are always zero.
type FriendInfoRequest struct {
	Count      uint32
	KeysSlot   uint32
	InfosSlot  uint32
	SafetyFlag [2]uint32
}

// Encode writes the request: count, the two flags, a static input
// descriptor over Count keys, and a writable mapped descriptor over
// Count info records.
func (r FriendInfoRequest) Encode(buffer *ipc.CommandBuffer) {
	buffer.Words[0] = ipc.MakeHeader(CommandGetFriendInfo, 3, 4)
	buffer.Words[1] = r.Count
	buffer.Words[2] = r.SafetyFlag[0]
	buffer.Words[3] = r.SafetyFlag[1]
	buffer.Words[4] = ipc.StaticBufferDescriptor(r.Count*FriendKeySize, 0)
	buffer.Words[5] = r.KeysSlot
	buffer.Words[6] = ipc.MappedBufferDescriptor(r.Count*FriendInfoSize, ipc.MappedWrite)
	buffer.Words[7] = r.InfosSlot
}

// DecodeFriendInfoRequest is the service-side decoder. It validates
// both descriptors against Count.
func DecodeFriendInfoRequest(buffer *ipc.CommandBuffer) (FriendInfoRequest, error) {
	if err := expectHeader(buffer, CommandGetFriendInfo); err != nil {
		return FriendInfoRequest{}, err
	}
	request := FriendInfoRequest{
		Count:      buffer.Words[1],
		SafetyFlag: [2]uint32{buffer.Words[2], buffer.Words[3]},
		KeysSlot:   buffer.Words[5],
		InfosSlot:  buffer.Words[7],
	}
	keysSize, _, ok := ipc.ParseStaticBufferDescriptor(buffer.Words[4])
	if !ok || keysSize != request.Count*FriendKeySize {
		return FriendInfoRequest{}, fmt.Errorf("key descriptor %#x does not cover %d keys", buffer.Words[4], request.Count)
	}
	infosSize, permission, ok := ipc.ParseMappedBufferDescriptor(buffer.Words[6])
	if !ok || infosSize != request.Count*FriendInfoSize || permission&ipc.MappedWrite == 0 {
		return FriendInfoRequest{}, fmt.Errorf("info descriptor %#x is not a writable buffer of %d records", buffer.Words[6], request.Count)
	}
	return request, nil
}

// FriendInfoResponse carries only a result word; the records land in
// the mapped buffer.
type FriendInfoResponse struct {
	Result result.Code
}

func (r FriendInfoResponse) Encode(buffer *ipc.CommandBuffer) {
	buffer.Words[0] = ipc.MakeHeader(CommandGetFriendInfo, 1, 2)
	buffer.Words[1] = uint32(r.Result)
}

func DecodeFriendInfoResponse(buffer *ipc.CommandBuffer) FriendInfoResponse {
	return FriendInfoResponse{Result: result.Code(buffer.Words[1])}
}

// MyFriendKeyRequest has no parameters.
type MyFriendKeyRequest struct{}

func (MyFriendKeyRequest) Encode(buffer *ipc.CommandBuffer) {
	buffer.Words[0] = ipc.MakeHeader(CommandGetMyFriendKey, 0, 0)
}

// MyFriendKeyResponse returns the operator's key in words 2-5.
type MyFriendKeyResponse struct {
	Result result.Code
	Key    FriendKey
}

func (r MyFriendKeyResponse) Encode(buffer *ipc.CommandBuffer) {
	buffer.Words[0] = ipc.MakeHeader(CommandGetMyFriendKey, 5, 0)
	buffer.Words[1] = uint32(r.Result)
	buffer.Words[2] = uint32(r.Key.PrincipalID)
	buffer.Words[3] = 0
	buffer.Words[4] = uint32(r.Key.LocalFriendCode)
	buffer.Words[5] = uint32(r.Key.LocalFriendCode >> 32)
}

func DecodeMyFriendKeyResponse(buffer *ipc.CommandBuffer) MyFriendKeyResponse {
	return MyFriendKeyResponse{
		Result: result.Code(buffer.Words[1]),
		Key: FriendKey{
			PrincipalID:     PrincipalID(buffer.Words[2]),
			LocalFriendCode: uint64(buffer.Words[5])<<32 | uint64(buffer.Words[4]),
		},
	}
}

// MyMiiRequest has no parameters.
type MyMiiRequest struct{}

func (MyMiiRequest) Encode(buffer *ipc.CommandBuffer) {
	buffer.Words[0] = ipc.MakeHeader(CommandGetMyMii, 0, 0)
}

// MyMiiResponse returns the operator's avatar descriptor inline, read
// little-endian from words 2 through 24.
type MyMiiResponse struct {
	Result result.Code
	Avatar [mii.Size]byte
}

func (r MyMiiResponse) Encode(buffer *ipc.CommandBuffer) {
	buffer.Words[0] = ipc.MakeHeader(CommandGetMyMii, 1+myMiiWords, 0)
	buffer.Words[1] = uint32(r.Result)
	for index := range myMiiWords {
		buffer.Words[myMiiFirstWord+index] = binary.LittleEndian.Uint32(r.Avatar[index*4:])
	}
}

func DecodeMyMiiResponse(buffer *ipc.CommandBuffer) MyMiiResponse {
	response := MyMiiResponse{Result: result.Code(buffer.Words[1])}
	for index := range myMiiWords {
		binary.LittleEndian.PutUint32(response.Avatar[index*4:], buffer.Words[myMiiFirstWord+index])
	}
	return response
}
