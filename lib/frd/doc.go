// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package frd is a client for the device's friend service ("frd:a"),
// reduced to the four calls needed to build the operator's roster:
//
//   - GetFriendKeyList (0x0011): up to 100 friend keys
//   - GetFriendInfo (0x001A): one info record per key, avatar inside
//   - GetMyFriendKey (0x0005): the operator's own principal id
//   - GetMyMii (0x000A): the operator's own avatar
//
// wire.go holds one typed request and one typed response per call,
// each with an Encode method and a Decode function, so the bit-exact
// command-buffer contract is isolated from [Client.LoadRoster] and can
// be served by fakes (see frdtest) without a device.
//
// Any nonzero result word is a fatal *result.ServiceError. A friend
// whose avatar fails to decode is dropped with a warning; the
// operator's own avatar failing to decode is fatal.
package frd
