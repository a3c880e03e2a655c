// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package extdata

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bureau-foundation/doodlemap/lib/letter"
	"github.com/bureau-foundation/doodlemap/lib/mii"
	"github.com/bureau-foundation/doodlemap/lib/result"
)

var testSelector = Selector{Media: MediaSD, ProgramID: SwapdoodleProgramID}

// memStorage is an in-memory file-system service that counts open
// handles.
type memStorage struct {
	files map[string][]byte
	dirs  map[string][]DirectoryEntry

	failOpen map[string]error
	failRead map[string]error

	archivePath Path
	open        int
	reads       map[string]int
}

func newMemStorage(files map[string][]byte) *memStorage {
	storage := &memStorage{
		files: files,
		dirs:  map[string][]DirectoryEntry{"/": nil},
		reads: make(map[string]int),
	}
	for filePath, data := range files {
		child := filePath
		for child != "/" {
			parent := path.Dir(child)
			entry := DirectoryEntry{Name: path.Base(child)}
			if child == filePath {
				entry.FileSize = uint64(len(data))
			} else {
				entry.Attributes = AttributeDirectory
			}
			if !slices.ContainsFunc(storage.dirs[parent], func(existing DirectoryEntry) bool {
				return existing.Name == entry.Name
			}) {
				storage.dirs[parent] = append(storage.dirs[parent], entry)
			}
			if entry.IsDirectory() {
				if _, ok := storage.dirs[child]; !ok {
					storage.dirs[child] = nil
				}
			}
			child = parent
		}
	}
	for _, entries := range storage.dirs {
		slices.SortFunc(entries, func(a, b DirectoryEntry) int { return strings.Compare(a.Name, b.Name) })
	}
	return storage
}

func (s *memStorage) OpenArchive(ctx context.Context, id ArchiveID, archivePath Path) (Archive, error) {
	if err := s.failOpen["archive"]; err != nil {
		return nil, err
	}
	if id != ArchiveExtdata {
		return nil, fmt.Errorf("unexpected archive id %d", id)
	}
	s.archivePath = archivePath
	s.open++
	return &memArchive{storage: s}, nil
}

type memArchive struct {
	storage *memStorage
	closed  bool
}

func (a *memArchive) OpenDirectory(p Path) (Directory, error) {
	text, err := p.Text()
	if err != nil {
		return nil, err
	}
	if err := a.storage.failOpen[text]; err != nil {
		return nil, err
	}
	entries, ok := a.storage.dirs[text]
	if !ok {
		return nil, &result.ServiceError{Operation: "open " + text, Code: result.MakeCode(27, 4, 17, 120)}
	}
	a.storage.open++
	return &memDirectory{storage: a.storage, entries: entries}, nil
}

func (a *memArchive) OpenFile(p Path, flags, attributes uint32) (File, error) {
	text, err := p.Text()
	if err != nil {
		return nil, err
	}
	if err := a.storage.failOpen[text]; err != nil {
		return nil, err
	}
	data, ok := a.storage.files[text]
	if !ok {
		return nil, fmt.Errorf("no file %s", text)
	}
	if flags != OpenRead || attributes != AttributeReadOnly {
		return nil, fmt.Errorf("open %s: flags %#x attributes %#x, want read-only", text, flags, attributes)
	}
	a.storage.open++
	return &memFile{storage: a.storage, path: text, data: data}, nil
}

func (a *memArchive) Close() error {
	if a.closed {
		return errors.New("archive closed twice")
	}
	a.closed = true
	a.storage.open--
	return nil
}

type memDirectory struct {
	storage *memStorage
	entries []DirectoryEntry
	next    int
	closed  bool
}

func (d *memDirectory) Read(entries []DirectoryEntry) (int, error) {
	count := copy(entries, d.entries[d.next:])
	d.next += count
	return count, nil
}

func (d *memDirectory) Close() error {
	if d.closed {
		return errors.New("directory closed twice")
	}
	d.closed = true
	d.storage.open--
	return nil
}

type memFile struct {
	storage *memStorage
	path    string
	data    []byte
	closed  bool
}

func (f *memFile) Read(offset uint64, buffer []byte) (int, error) {
	f.storage.reads[f.path]++
	if err := f.storage.failRead[f.path]; err != nil {
		return 0, err
	}
	if offset >= uint64(len(f.data)) {
		return 0, nil
	}
	return copy(buffer, f.data[offset:]), nil
}

func (f *memFile) Close() error {
	if f.closed {
		return errors.New("file closed twice")
	}
	f.closed = true
	f.storage.open--
	return nil
}

func encodeLetter(t *testing.T, senderID uint32, name string, systemID uint64) []byte {
	t.Helper()
	var sender *mii.Avatar
	if name != "" {
		sender = &mii.Avatar{Name: name, SystemID: systemID}
	}
	data, err := letter.Encode(senderID, sender)
	if err != nil {
		t.Fatalf("letter.Encode: %v", err)
	}
	return data
}

func collect(t *testing.T, storage Storage) ([]Record, error) {
	t.Helper()
	var records []Record
	for record, err := range Scan(context.Background(), storage, testSelector, nil) {
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
	return records, nil
}

func recordPaths(records []Record) []string {
	paths := make([]string, len(records))
	for index, record := range records {
		paths[index] = record.Path
	}
	return paths
}

func TestScanOnlyShardFolders(t *testing.T) {
	storage := newMemStorage(map[string][]byte{
		"/letter/0000/a":      encodeLetter(t, 10, "Alice", 0xAA),
		"/letter/0001/b":      encodeLetter(t, 20, "Carol", 0xCC),
		"/letter/0001/c":      encodeLetter(t, 0, "", 0),
		"/letter/1234_x/d":    encodeLetter(t, 30, "Dan", 0xDD),
		"/letter/abcd/e":      encodeLetter(t, 40, "Eve", 0xEE),
		"/letter/12x4/f":      encodeLetter(t, 50, "Fay", 0xFF),
		"/letter/index":       []byte("not a letter"),
		"/other/0000/g":       encodeLetter(t, 60, "Gus", 0x99),
		"/letter/0002/nested": nil,
	})
	// A directory inside a shard is skipped.
	storage.dirs["/letter/0002"] = []DirectoryEntry{{Name: "sub", Attributes: AttributeDirectory}}

	records, err := collect(t, storage)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []string{"/letter/0000/a", "/letter/0001/b", "/letter/0001/c", "/letter/1234_x/d"}
	if diff := cmp.Diff(want, recordPaths(records)); diff != "" {
		t.Errorf("paths (-want +got):\n%s", diff)
	}
	for _, record := range records {
		shard := strings.Split(record.Path, "/")[2]
		if !IsShardName(shard) {
			t.Errorf("record %s came from non-shard folder %q", record.Path, shard)
		}
	}

	if records[0].Letter.SenderPrincipalID != 10 || records[0].Letter.Sender == nil || records[0].Letter.Sender.Name != "Alice" {
		t.Errorf("first record letter = %+v", records[0].Letter)
	}
	if records[2].Letter.Sender != nil {
		t.Errorf("letter without SNDRMII decoded a sender: %+v", records[2].Letter.Sender)
	}
	if storage.open != 0 {
		t.Errorf("%d handles left open", storage.open)
	}
	if diff := cmp.Diff(testSelector.ArchivePath(), storage.archivePath); diff != "" {
		t.Errorf("archive path (-want +got):\n%s", diff)
	}
}

func TestScanEarlyBreakReleasesHandles(t *testing.T) {
	storage := newMemStorage(map[string][]byte{
		"/letter/0000/a": encodeLetter(t, 10, "Alice", 0xAA),
		"/letter/0000/b": encodeLetter(t, 20, "Bob", 0xBB),
		"/letter/0001/c": encodeLetter(t, 30, "Carol", 0xCC),
	})
	seen := 0
	for _, err := range Scan(context.Background(), storage, testSelector, nil) {
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		seen++
		break
	}
	if seen != 1 {
		t.Fatalf("saw %d records, want 1", seen)
	}
	if storage.open != 0 {
		t.Errorf("%d handles left open after break", storage.open)
	}
	if storage.reads["/letter/0000/b"] != 0 {
		t.Error("scan read past the point the consumer stopped")
	}
}

func TestScanReadsInBatches(t *testing.T) {
	base := encodeLetter(t, 10, "Alice", 0xAA)
	padded := func(total int) []byte {
		// One extra block: 16 bytes of table plus its data.
		padding := total - len(base) - tableEntryBytes
		data, err := letter.Encode(10, &mii.Avatar{Name: "Alice", SystemID: 0xAA},
			letter.Block{Name: "PAD", Data: make([]byte, padding)})
		if err != nil {
			t.Fatalf("letter.Encode: %v", err)
		}
		if len(data) != total {
			t.Fatalf("padded letter is %d bytes, want %d", len(data), total)
		}
		return data
	}
	storage := newMemStorage(map[string][]byte{
		"/letter/0000/exact": padded(2 * ReadBatchSize),
		"/letter/0000/short": padded(ReadBatchSize + 300),
	})

	records, err := collect(t, storage)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	// A file that is an exact multiple of the batch size needs one
	// trailing empty read to see the end.
	if got := storage.reads["/letter/0000/exact"]; got != 3 {
		t.Errorf("exact file took %d reads, want 3", got)
	}
	if got := storage.reads["/letter/0000/short"]; got != 2 {
		t.Errorf("short file took %d reads, want 2", got)
	}
}

const tableEntryBytes = 0x10

func TestScanDecodeErrorStops(t *testing.T) {
	storage := newMemStorage(map[string][]byte{
		"/letter/0000/a": encodeLetter(t, 10, "Alice", 0xAA),
		"/letter/0000/b": []byte("garbage"),
		"/letter/0001/c": encodeLetter(t, 30, "Carol", 0xCC),
	})
	records, err := collect(t, storage)
	if len(records) != 1 {
		t.Errorf("got %d records before the error, want 1", len(records))
	}
	var decodeErr *result.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v, want *result.DecodeError", err)
	}
	if decodeErr.Subject != "/letter/0000/b" {
		t.Errorf("Subject = %q", decodeErr.Subject)
	}
	if !errors.Is(err, letter.ErrBadMagic) {
		t.Errorf("error %v does not wrap letter.ErrBadMagic", err)
	}
	if storage.reads["/letter/0001/c"] != 0 {
		t.Error("scan continued past a decode error")
	}
	if storage.open != 0 {
		t.Errorf("%d handles left open", storage.open)
	}
}

func TestScanServiceErrors(t *testing.T) {
	cause := errors.New("media removed")
	tests := []struct {
		name      string
		configure func(*memStorage)
		operation string
	}{
		{
			name:      "open archive",
			configure: func(s *memStorage) { s.failOpen = map[string]error{"archive": cause} },
			operation: "FSUSER_OpenArchive",
		},
		{
			name:      "open shard",
			configure: func(s *memStorage) { s.failOpen = map[string]error{"/letter/0001": cause} },
			operation: "FSUSER_OpenDirectory /letter/0001",
		},
		{
			name:      "open file",
			configure: func(s *memStorage) { s.failOpen = map[string]error{"/letter/0001/b": cause} },
			operation: "FSUSER_OpenFile /letter/0001/b",
		},
		{
			name:      "read file",
			configure: func(s *memStorage) { s.failRead = map[string]error{"/letter/0001/b": cause} },
			operation: "FSFILE_Read /letter/0001/b",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			storage := newMemStorage(map[string][]byte{
				"/letter/0000/a": encodeLetter(t, 10, "Alice", 0xAA),
				"/letter/0001/b": encodeLetter(t, 20, "Bob", 0xBB),
			})
			test.configure(storage)
			_, err := collect(t, storage)
			var serviceErr *result.ServiceError
			if !errors.As(err, &serviceErr) {
				t.Fatalf("error = %v, want *result.ServiceError", err)
			}
			if !strings.HasPrefix(serviceErr.Operation, test.operation) {
				t.Errorf("Operation = %q, want prefix %q", serviceErr.Operation, test.operation)
			}
			if !errors.Is(err, cause) {
				t.Errorf("error %v does not wrap the cause", err)
			}
			if storage.open != 0 {
				t.Errorf("%d handles left open", storage.open)
			}
		})
	}
}

func TestScanMissingLetterDirectory(t *testing.T) {
	storage := newMemStorage(map[string][]byte{"/other/file": nil})
	records, err := collect(t, storage)
	if len(records) != 0 {
		t.Errorf("got %d records", len(records))
	}
	var serviceErr *result.ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("error = %v, want *result.ServiceError", err)
	}
	if !serviceErr.Code.Failed() {
		t.Errorf("Code = %v, want the service's failing code", serviceErr.Code)
	}
}

func TestScanEmptyArchive(t *testing.T) {
	storage := newMemStorage(map[string][]byte{})
	storage.dirs["/letter"] = nil
	records, err := collect(t, storage)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records", len(records))
	}
}

func TestScanDigestsAndCustomDecoder(t *testing.T) {
	same := encodeLetter(t, 10, "Alice", 0xAA)
	storage := newMemStorage(map[string][]byte{
		"/letter/0000/a": same,
		"/letter/0003/a": same,
		"/letter/0003/b": encodeLetter(t, 20, "Bob", 0xBB),
	})
	decoded := 0
	decode := func(data []byte) (letter.Letter, error) {
		decoded++
		return letter.Decode(data)
	}
	var records []Record
	for record, err := range Scan(context.Background(), storage, testSelector, decode) {
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		records = append(records, record)
	}
	if decoded != 3 {
		t.Errorf("custom decoder ran %d times, want 3", decoded)
	}
	if records[0].Digest != records[1].Digest {
		t.Error("identical letters have different digests")
	}
	if records[0].Digest == records[2].Digest {
		t.Error("different letters share a digest")
	}
}

func TestScanCancelledContext(t *testing.T) {
	storage := newMemStorage(map[string][]byte{
		"/letter/0000/a": encodeLetter(t, 10, "Alice", 0xAA),
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, err := range Scan(ctx, storage, testSelector, nil) {
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, want context.Canceled", err)
		}
	}
	if storage.open != 0 {
		t.Errorf("%d handles left open", storage.open)
	}
}
