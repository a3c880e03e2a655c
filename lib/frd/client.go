// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package frd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/doodlemap/lib/ipc"
	"github.com/bureau-foundation/doodlemap/lib/mii"
	"github.com/bureau-foundation/doodlemap/lib/result"
)

// AvatarDecoder turns a raw descriptor into an avatar.
type AvatarDecoder func(raw [mii.Size]byte) (mii.Avatar, error)

// Dialer opens a session with the friend service.
type Dialer func(ctx context.Context) (ipc.Conn, error)

// Client loads the roster. The zero value is not usable: Dial is
// required. DecodeAvatar defaults to mii.Decode and Logger to a
// discarding logger.
type Client struct {
	Dial         Dialer
	DecodeAvatar AvatarDecoder
	Logger       *slog.Logger
}

// friendRecord pairs a key with its info record, so nothing downstream
// correlates the two arrays by index.
type friendRecord struct {
	key  FriendKey
	info []byte
}

// LoadRoster opens a session, runs the four calls in order, and closes
// the session on every path. The calls block without timeout; ctx only
// aborts between calls.
func (c *Client) LoadRoster(ctx context.Context) (Roster, error) {
	decode := c.DecodeAvatar
	if decode == nil {
		decode = mii.Decode
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	conn, err := c.Dial(ctx)
	if err != nil {
		return Roster{}, &result.ServiceError{Operation: "open " + ServiceName, Err: err}
	}
	defer conn.Close()

	buffer := ipc.NewCommandBuffer()

	records, err := fetchFriends(ctx, conn, buffer)
	if err != nil {
		return Roster{}, err
	}
	logger.Debug("friend list fetched", "friends", len(records))

	local, err := fetchLocalIdentity(ctx, conn, buffer, decode)
	if err != nil {
		return Roster{}, err
	}

	friends := make([]Entry, 0, len(records))
	for _, record := range records {
		raw := [mii.Size]byte(record.info[FriendInfoAvatarOffset : FriendInfoAvatarOffset+mii.Size])
		avatar, err := decode(raw)
		if err != nil {
			logger.Warn("dropping friend with undecodable avatar",
				"principal_id", uint32(record.key.PrincipalID),
				"error", err,
			)
			continue
		}
		friends = append(friends, Entry{
			PrincipalID:     record.key.PrincipalID,
			LocalFriendCode: record.key.LocalFriendCode,
			Avatar:          avatar,
		})
	}

	roster := NewRoster(local, friends)
	logger.Info("roster loaded",
		"local_principal_id", uint32(local.PrincipalID),
		"friends", len(friends),
		"dropped", len(records)-len(friends),
	)
	return roster, nil
}

// fetchFriends runs GetFriendKeyList then GetFriendInfo and returns
// the paired records.
func fetchFriends(ctx context.Context, conn ipc.Conn, buffer *ipc.CommandBuffer) ([]friendRecord, error) {
	keys := make([]byte, MaxFriends*FriendKeySize)

	buffer.Reset()
	FriendKeyListRequest{Offset: 0, Limit: MaxFriends, KeysSlot: buffer.Attach(keys)}.Encode(buffer)
	if err := call(ctx, conn, buffer, "GetFriendKeyList"); err != nil {
		return nil, err
	}
	list := DecodeFriendKeyListResponse(buffer)
	if err := result.Check(ServiceName+" GetFriendKeyList", list.Result); err != nil {
		return nil, err
	}
	if list.Count > MaxFriends {
		return nil, &result.ServiceError{
			Operation: ServiceName + " GetFriendKeyList",
			Err:       fmt.Errorf("service reported %d friends, limit is %d", list.Count, MaxFriends),
		}
	}
	count := list.Count
	keys = keys[:count*FriendKeySize]
	infos := make([]byte, count*FriendInfoSize)

	buffer.Reset()
	FriendInfoRequest{
		Count:     count,
		KeysSlot:  buffer.Attach(keys),
		InfosSlot: buffer.Attach(infos),
	}.Encode(buffer)
	if err := call(ctx, conn, buffer, "GetFriendInfo"); err != nil {
		return nil, err
	}
	if err := result.Check(ServiceName+" GetFriendInfo", DecodeFriendInfoResponse(buffer).Result); err != nil {
		return nil, err
	}

	records := make([]friendRecord, count)
	for index := range records {
		records[index] = friendRecord{
			key:  DecodeFriendKey(keys[index*FriendKeySize:]),
			info: infos[index*FriendInfoSize : (index+1)*FriendInfoSize],
		}
	}
	return records, nil
}

// fetchLocalIdentity runs GetMyFriendKey then GetMyMii. The session
// cannot proceed without the operator's own avatar, so a decode
// failure here is returned rather than dropped.
func fetchLocalIdentity(ctx context.Context, conn ipc.Conn, buffer *ipc.CommandBuffer, decode AvatarDecoder) (Entry, error) {
	buffer.Reset()
	MyFriendKeyRequest{}.Encode(buffer)
	if err := call(ctx, conn, buffer, "GetMyFriendKey"); err != nil {
		return Entry{}, err
	}
	key := DecodeMyFriendKeyResponse(buffer)
	if err := result.Check(ServiceName+" GetMyFriendKey", key.Result); err != nil {
		return Entry{}, err
	}

	buffer.Reset()
	MyMiiRequest{}.Encode(buffer)
	if err := call(ctx, conn, buffer, "GetMyMii"); err != nil {
		return Entry{}, err
	}
	myMii := DecodeMyMiiResponse(buffer)
	if err := result.Check(ServiceName+" GetMyMii", myMii.Result); err != nil {
		return Entry{}, err
	}

	avatar, err := decode(myMii.Avatar)
	if err != nil {
		return Entry{}, &result.DecodeError{
			Subject: fmt.Sprintf("local identity %d avatar", key.Key.PrincipalID),
			Err:     err,
		}
	}
	return Entry{
		PrincipalID:     key.Key.PrincipalID,
		LocalFriendCode: key.Key.LocalFriendCode,
		Avatar:          avatar,
		Local:           true,
	}, nil
}

func call(ctx context.Context, conn ipc.Conn, buffer *ipc.CommandBuffer, name string) error {
	if err := conn.SendSyncRequest(ctx, buffer); err != nil {
		return &result.ServiceError{Operation: ServiceName + " " + name, Err: err}
	}
	return nil
}
