// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package mii decodes the fixed 0x5C-byte avatar descriptor the device
// stores for every user and embeds in friend records and letters.
//
// Only the identity-bearing fields are decoded: the format version, the
// system id of the console that created the avatar (used as the
// correlation key when matching letters to friends), the avatar id,
// creator MAC, birthday and colour bits, and the two UTF-16LE names.
// Facial feature bytes between the names are carried in Avatar.Raw but
// not interpreted.
package mii
