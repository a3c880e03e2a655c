// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package extdata

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bureau-foundation/doodlemap/lib/result"
)

func TestDirStorageScan(t *testing.T) {
	storage := DirStorage{Root: t.TempDir()}
	letters := map[string][]byte{
		"/letter/0000/first.bpk":  encodeLetter(t, 10, "Alice", 0xAA),
		"/letter/0000/second.bpk": encodeLetter(t, 20, "Carol", 0xCC),
		"/letter/0007/third.bpk":  encodeLetter(t, 10, "Alice", 0xAA),
		"/letter/misc/skipped":    encodeLetter(t, 99, "Zed", 0x99),
	}
	for archivePath, data := range letters {
		if err := storage.Put(testSelector, archivePath, data); err != nil {
			t.Fatalf("Put(%s): %v", archivePath, err)
		}
	}
	if _, err := os.Stat(filepath.Join(storage.Root, "sd", "00001a2e", "letter", "0000", "first.bpk")); err != nil {
		t.Fatalf("dump layout: %v", err)
	}

	var paths []string
	var senders []uint32
	for record, err := range Scan(context.Background(), storage, testSelector, nil) {
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		paths = append(paths, record.Path)
		senders = append(senders, record.Letter.SenderPrincipalID)
		if record.Entry.FileSize != uint64(len(letters[record.Path])) {
			t.Errorf("%s: FileSize = %d, want %d", record.Path, record.Entry.FileSize, len(letters[record.Path]))
		}
		if record.Entry.IsDirectory() {
			t.Errorf("%s: reported as a directory", record.Path)
		}
	}
	if diff := cmp.Diff([]string{"/letter/0000/first.bpk", "/letter/0000/second.bpk", "/letter/0007/third.bpk"}, paths); diff != "" {
		t.Errorf("paths (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint32{10, 20, 10}, senders); diff != "" {
		t.Errorf("senders (-want +got):\n%s", diff)
	}
}

func TestDirStorageMissingArchive(t *testing.T) {
	storage := DirStorage{Root: t.TempDir()}
	var got error
	for _, err := range Scan(context.Background(), storage, testSelector, nil) {
		got = err
	}
	var serviceErr *result.ServiceError
	if !errors.As(got, &serviceErr) {
		t.Fatalf("error = %v, want *result.ServiceError", got)
	}
	if !errors.Is(got, fs.ErrNotExist) {
		t.Errorf("error %v does not wrap fs.ErrNotExist", got)
	}
}

func TestDirStorageRejects(t *testing.T) {
	storage := DirStorage{Root: t.TempDir()}
	ctx := context.Background()

	if _, err := storage.OpenArchive(ctx, ArchiveID(4), testSelector.ArchivePath()); err == nil {
		t.Error("OpenArchive accepted a non-extdata archive class")
	}
	if _, err := storage.OpenArchive(ctx, ArchiveExtdata, BinaryPath(1, 2)); err == nil {
		t.Error("OpenArchive accepted a two-word path")
	}
	if err := storage.Put(testSelector, "relative/path", nil); err == nil {
		t.Error("Put accepted a relative path")
	}

	if err := storage.Put(testSelector, "/../../escape", []byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(storage.Dir(testSelector), "escape")); err != nil {
		t.Errorf("dot-dot path not confined to the archive: %v", err)
	}

	archive, err := storage.OpenArchive(ctx, ArchiveExtdata, testSelector.ArchivePath())
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	escapePath, _ := UTF16Path("/escape")
	if _, err := archive.OpenFile(escapePath, OpenRead|OpenWrite, 0); err == nil {
		t.Error("OpenFile allowed a write open")
	}
	if err := archive.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := archive.OpenFile(escapePath, OpenRead, 0); !errors.Is(err, os.ErrClosed) {
		t.Errorf("OpenFile after Close = %v, want os.ErrClosed", err)
	}
}

func TestShortNames(t *testing.T) {
	tests := []struct {
		name, base, extension string
	}{
		{"letter.bpk", "LETTER", "BPK"},
		{"averylongname.data", "AVERYLON", "DAT"},
		{"noext", "NOEXT", ""},
		{".hidden", ".HIDDEN", ""},
	}
	for _, test := range tests {
		base, extension := shortNames(test.name)
		if base != test.base || extension != test.extension {
			t.Errorf("shortNames(%q) = %q, %q; want %q, %q", test.name, base, extension, test.base, test.extension)
		}
	}
}
