// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package frdtest provides an in-memory friend service speaking the
// same command-buffer contract as the device. Tests wire it to a
// client with ipc.Local; cmd/doodlemap-mock-frd serves it over the
// bridge socket.
package frdtest

import (
	"github.com/bureau-foundation/doodlemap/lib/frd"
	"github.com/bureau-foundation/doodlemap/lib/ipc"
	"github.com/bureau-foundation/doodlemap/lib/mii"
	"github.com/bureau-foundation/doodlemap/lib/result"
)

// ResultInvalidRequest is what the fake answers when a request does
// not decode (wrong descriptors, unknown command).
var ResultInvalidRequest = result.MakeCode(27, 7, 50, 1007)

// Friend is one roster record held by the fake.
type Friend struct {
	Key    frd.FriendKey
	Avatar [mii.Size]byte
}

// Service is a fake frd:a. Configure the fields, then hand it to
// ipc.Local or an ipc.Server. It is not safe for concurrent sessions.
type Service struct {
	Local       frd.FriendKey
	LocalAvatar [mii.Size]byte
	Friends     []Friend

	// Failures forces a result code for a command id.
	Failures map[uint16]result.Code

	// Calls records the command id of every request received.
	Calls []uint16
}

// ServeIPC implements ipc.Handler.
func (s *Service) ServeIPC(buffer *ipc.CommandBuffer) {
	command := ipc.ParseHeader(buffer.Words[0]).Command
	s.Calls = append(s.Calls, command)

	if code, ok := s.Failures[command]; ok {
		buffer.Words = [ipc.MessageWords]uint32{}
		buffer.Words[0] = ipc.MakeHeader(command, 1, 0)
		buffer.Words[1] = uint32(code)
		return
	}

	switch command {
	case frd.CommandGetFriendKeyList:
		s.friendKeyList(buffer)
	case frd.CommandGetFriendInfo:
		s.friendInfo(buffer)
	case frd.CommandGetMyFriendKey:
		frd.MyFriendKeyResponse{Key: s.Local}.Encode(buffer)
	case frd.CommandGetMyMii:
		frd.MyMiiResponse{Avatar: s.LocalAvatar}.Encode(buffer)
	default:
		fail(buffer, command)
	}
}

func fail(buffer *ipc.CommandBuffer, command uint16) {
	buffer.Words = [ipc.MessageWords]uint32{}
	buffer.Words[0] = ipc.MakeHeader(command, 1, 0)
	buffer.Words[1] = uint32(ResultInvalidRequest)
}

func (s *Service) friendKeyList(buffer *ipc.CommandBuffer) {
	request, err := frd.DecodeFriendKeyListRequest(buffer)
	if err != nil {
		fail(buffer, frd.CommandGetFriendKeyList)
		return
	}
	keys, err := buffer.Buffer(request.KeysSlot)
	if err != nil {
		fail(buffer, frd.CommandGetFriendKeyList)
		return
	}

	var count uint32
	for position := request.Offset; position < uint32(len(s.Friends)) && count < request.Limit; position++ {
		if int(count+1)*frd.FriendKeySize > len(keys) {
			break
		}
		s.Friends[position].Key.Encode(keys[count*frd.FriendKeySize:])
		count++
	}
	frd.FriendKeyListResponse{Count: count}.Encode(buffer)
}

func (s *Service) friendInfo(buffer *ipc.CommandBuffer) {
	request, err := frd.DecodeFriendInfoRequest(buffer)
	if err != nil {
		fail(buffer, frd.CommandGetFriendInfo)
		return
	}
	keys, keysErr := buffer.Buffer(request.KeysSlot)
	infos, infosErr := buffer.Buffer(request.InfosSlot)
	if keysErr != nil || infosErr != nil ||
		len(keys) < int(request.Count)*frd.FriendKeySize ||
		len(infos) < int(request.Count)*frd.FriendInfoSize {
		fail(buffer, frd.CommandGetFriendInfo)
		return
	}

	for index := range int(request.Count) {
		key := frd.DecodeFriendKey(keys[index*frd.FriendKeySize:])
		record := infos[index*frd.FriendInfoSize : (index+1)*frd.FriendInfoSize]
		clear(record)
		for _, friend := range s.Friends {
			if friend.Key.PrincipalID == key.PrincipalID {
				friend.Key.Encode(record)
				copy(record[frd.FriendInfoAvatarOffset:], friend.Avatar[:])
				break
			}
		}
	}
	frd.FriendInfoResponse{}.Encode(buffer)
}

// Avatar encodes a minimal descriptor with the given name and
// correlation key. It panics on encoding failure, which only happens
// for names that cannot be represented in UTF-16.
func Avatar(name string, systemID uint64) [mii.Size]byte {
	raw, err := mii.Encode(mii.Avatar{Name: name, SystemID: systemID})
	if err != nil {
		panic("frdtest: " + err.Error())
	}
	return raw
}
