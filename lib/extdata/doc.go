// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package extdata reads letters out of an application's extended-data
// archive.
//
// The archive is addressed by a [Selector] (media kind plus program
// id), reduced to the 12-byte binary path the file-system service
// expects. Inside it, letters live two levels down:
//
//	/letter/<shard>/<letter file>
//
// where a shard is any folder whose name starts with four ASCII digits.
//
// [Scanner.Records] walks that layout lazily, returning an
// iter.Seq2 that yields one decoded [Record] per file. Directory and
// file handles belong to the iteration: each is closed before the
// sequence moves on or returns, including when the consumer breaks out
// of the range loop early.
//
// The file-system service itself sits behind the [Storage] interface.
// [DirStorage] implements it over an extdata dump copied to a host
// directory.
package extdata
