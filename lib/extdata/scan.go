// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package extdata

import (
	"context"
	"errors"
	"iter"
	"path"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/doodlemap/lib/letter"
	"github.com/bureau-foundation/doodlemap/lib/result"
)

// LetterRoot is the archive directory holding the shard folders.
const LetterRoot = "/letter"

// ReadBatchSize is the chunk size for file reads. A read returning
// fewer bytes ends the file.
const ReadBatchSize = 1024

// listBatchSize is how many directory entries one Read requests.
const listBatchSize = 16

// Decoder turns a letter file's bytes into a Letter.
type Decoder func(data []byte) (letter.Letter, error)

// Record is one decoded letter with where it came from.
type Record struct {
	// Path is the archive-absolute path, e.g. "/letter/0003/a1b2c3".
	Path string

	// Entry is the directory metadata the service reported for the file.
	Entry DirectoryEntry

	Letter letter.Letter

	// Digest is the BLAKE3-256 hash of the file contents. Identical
	// letters copied into several shards share a digest.
	Digest [32]byte
}

// IsShardName reports whether a /letter entry is a shard folder: its
// first four characters are ASCII digits.
func IsShardName(name string) bool {
	if len(name) < 4 {
		return false
	}
	for index := range 4 {
		if name[index] < '0' || name[index] > '9' {
			return false
		}
	}
	return true
}

// Scan returns a lazy sequence over every letter in the selected
// archive. A nil decode uses letter.Decode.
//
// Open and read failures are yielded as *result.ServiceError and a
// decoder failure as *result.DecodeError; either ends the sequence,
// as does cancellation of ctx, checked before each file.
// Every handle the scan opens is closed before the sequence returns,
// whether it ran to completion, failed, or the consumer stopped early.
func Scan(ctx context.Context, storage Storage, selector Selector, decode Decoder) iter.Seq2[Record, error] {
	if decode == nil {
		decode = letter.Decode
	}
	return func(yield func(Record, error) bool) {
		walk := &scan{ctx: ctx, decode: decode, yield: yield}
		walk.run(storage, selector)
	}
}

// scan carries one iteration's state. stopped is set once the consumer
// declines a value or an error has been delivered; nothing is yielded
// after that.
type scan struct {
	ctx     context.Context
	decode  Decoder
	yield   func(Record, error) bool
	stopped bool
}

func (s *scan) emit(record Record) bool {
	if s.stopped {
		return false
	}
	if !s.yield(record, nil) {
		s.stopped = true
	}
	return !s.stopped
}

func (s *scan) fail(err error) {
	if s.stopped {
		return
	}
	s.stopped = true
	s.yield(Record{}, err)
}

// release closes a handle. A close failure is reported only while the
// consumer is still listening.
func (s *scan) release(operation string, closer interface{ Close() error }) {
	if err := closer.Close(); err != nil {
		s.fail(serviceError(operation, err))
	}
}

func (s *scan) run(storage Storage, selector Selector) {
	archive, err := storage.OpenArchive(s.ctx, ArchiveExtdata, selector.ArchivePath())
	if err != nil {
		s.fail(serviceError("FSUSER_OpenArchive "+selector.String(), err))
		return
	}
	defer s.release("FSUSER_CloseArchive "+selector.String(), archive)

	root, err := openDirectory(archive, LetterRoot)
	if err != nil {
		s.fail(err)
		return
	}
	defer s.release("FSDIR_Close "+LetterRoot, root)

	err = walkDirectory(root, func(entry DirectoryEntry) bool {
		if !IsShardName(entry.Name) {
			return true
		}
		s.scanShard(archive, path.Join(LetterRoot, entry.Name))
		return !s.stopped
	})
	if err != nil {
		s.fail(serviceError("FSDIR_Read "+LetterRoot, err))
	}
}

func (s *scan) scanShard(archive Archive, shardPath string) {
	shard, err := openDirectory(archive, shardPath)
	if err != nil {
		s.fail(err)
		return
	}
	defer s.release("FSDIR_Close "+shardPath, shard)

	err = walkDirectory(shard, func(entry DirectoryEntry) bool {
		if entry.IsDirectory() {
			return true
		}
		if err := s.ctx.Err(); err != nil {
			s.fail(err)
			return false
		}
		filePath := path.Join(shardPath, entry.Name)
		data, err := readFile(archive, filePath)
		if err != nil {
			s.fail(err)
			return false
		}
		decoded, err := s.decode(data)
		if err != nil {
			s.fail(&result.DecodeError{Subject: filePath, Err: err})
			return false
		}
		return s.emit(Record{
			Path:   filePath,
			Entry:  entry,
			Letter: decoded,
			Digest: blake3.Sum256(data),
		})
	})
	if err != nil {
		s.fail(serviceError("FSDIR_Read "+shardPath, err))
	}
}

func openDirectory(archive Archive, dirPath string) (Directory, error) {
	encoded, err := UTF16Path(dirPath)
	if err != nil {
		return nil, err
	}
	directory, err := archive.OpenDirectory(encoded)
	if err != nil {
		return nil, serviceError("FSUSER_OpenDirectory "+dirPath, err)
	}
	return directory, nil
}

// walkDirectory feeds entries to visit until the listing is exhausted
// or visit returns false.
func walkDirectory(directory Directory, visit func(DirectoryEntry) bool) error {
	batch := make([]DirectoryEntry, listBatchSize)
	for {
		count, err := directory.Read(batch)
		if err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		for _, entry := range batch[:count] {
			if !visit(entry) {
				return nil
			}
		}
	}
}

// readFile reads a whole file in ReadBatchSize chunks, stopping at the
// first short read.
func readFile(archive Archive, filePath string) (data []byte, err error) {
	encoded, err := UTF16Path(filePath)
	if err != nil {
		return nil, err
	}
	file, err := archive.OpenFile(encoded, OpenRead, AttributeReadOnly)
	if err != nil {
		return nil, serviceError("FSUSER_OpenFile "+filePath, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = serviceError("FSFILE_Close "+filePath, closeErr)
		}
	}()

	chunk := make([]byte, ReadBatchSize)
	for {
		count, err := file.Read(uint64(len(data)), chunk)
		if err != nil {
			return nil, serviceError("FSFILE_Read "+filePath, err)
		}
		data = append(data, chunk[:count]...)
		if count < ReadBatchSize {
			return data, nil
		}
	}
}

// serviceError passes an existing *result.ServiceError through and
// wraps anything else as the transport cause of one.
func serviceError(operation string, err error) error {
	var serviceErr *result.ServiceError
	if errors.As(err, &serviceErr) {
		return err
	}
	return &result.ServiceError{Operation: operation, Err: err}
}
