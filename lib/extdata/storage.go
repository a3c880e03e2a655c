// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package extdata

import "context"

// Attribute bits of a directory entry.
const (
	AttributeDirectory uint32 = 1 << 0
	AttributeHidden    uint32 = 1 << 8
	AttributeArchive   uint32 = 1 << 16
	AttributeReadOnly  uint32 = 1 << 24
)

// Open flags for Archive.OpenFile.
const (
	OpenRead   uint32 = 1
	OpenWrite  uint32 = 2
	OpenCreate uint32 = 4
)

// DirectoryEntry is the service's per-entry metadata, kept with each
// record so callers see what the device reported.
type DirectoryEntry struct {
	Name           string
	ShortName      string
	ShortExtension string
	Attributes     uint32
	FileSize       uint64
}

// IsDirectory reports the directory attribute.
func (e DirectoryEntry) IsDirectory() bool {
	return e.Attributes&AttributeDirectory != 0
}

// Storage is the file-system service.
type Storage interface {
	OpenArchive(ctx context.Context, id ArchiveID, path Path) (Archive, error)
}

// Archive is an open archive handle.
type Archive interface {
	OpenDirectory(path Path) (Directory, error)
	OpenFile(path Path, flags, attributes uint32) (File, error)
	Close() error
}

// Directory is an open directory handle. Read fills entries and
// returns how many it wrote; zero means the listing is exhausted.
type Directory interface {
	Read(entries []DirectoryEntry) (int, error)
	Close() error
}

// File is an open file handle. Read reads at offset and returns the
// byte count, which is short only at end of file.
type File interface {
	Read(offset uint64, buffer []byte) (int, error)
	Close() error
}
