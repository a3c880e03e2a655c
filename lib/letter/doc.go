// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package letter decodes stored letters: BPK1 block containers holding
// a COMMON header block with the sender's principal id, an optional
// SNDRMII block with the sender's avatar descriptor, and drawing data
// this tool does not interpret.
//
// Container layout (little-endian):
//
//	0x00  "BPK1"
//	0x04  u32 block count
//	0x08  reserved, zero, up to 0x40
//	0x40  block table, one 0x10-byte entry per block:
//	        u32 offset from file start, u32 size, [8]byte NUL-padded name
//
// The COMMON block begins with the u32 sender principal id. A sender id
// of zero means the letter was written locally or its sender is
// unknown.
package letter
