// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package extdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DirStorage serves extdata archives from a host directory holding
// dumps laid out as <Root>/<media>/<extdata id as %08x>/..., for
// example <Root>/sd/00001a2e/letter/0000/....
type DirStorage struct {
	Root string
}

// Dir is the host directory backing the selected archive.
func (d DirStorage) Dir(selector Selector) string {
	return filepath.Join(d.Root, selector.Media.String(), fmt.Sprintf("%08x", selector.ExtdataID()))
}

// OpenArchive opens an extdata archive addressed by its three-word
// binary path.
func (d DirStorage) OpenArchive(ctx context.Context, id ArchiveID, archivePath Path) (Archive, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id != ArchiveExtdata {
		return nil, fmt.Errorf("archive class 0x%X not supported (only extdata)", uint32(id))
	}
	words, err := archivePath.Words()
	if err != nil {
		return nil, err
	}
	if len(words) != 3 {
		return nil, fmt.Errorf("extdata archive path has %d words, want 3", len(words))
	}
	selectorDir := filepath.Join(d.Root, MediaType(words[0]).String(), fmt.Sprintf("%08x", words[1]))
	info, err := os.Stat(selectorDir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", selectorDir)
	}
	return &dirArchive{root: selectorDir}, nil
}

// Put writes a file into the selected archive, creating the archive
// and parent directories as needed. archivePath is archive-absolute.
func (d DirStorage) Put(selector Selector, archivePath string, data []byte) error {
	target, err := resolve(d.Dir(selector), archivePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.WriteFile(target, data, 0o644)
}

// resolve maps an archive-absolute slash path under root. Cleaning it
// as an absolute path keeps ".." from climbing out of root.
func resolve(root, archivePath string) (string, error) {
	if !strings.HasPrefix(archivePath, "/") {
		return "", fmt.Errorf("archive path %q is not absolute", archivePath)
	}
	return filepath.Join(root, filepath.FromSlash(path.Clean(archivePath))), nil
}

type dirArchive struct {
	root   string
	closed bool
}

func (a *dirArchive) hostPath(p Path) (string, error) {
	if a.closed {
		return "", os.ErrClosed
	}
	text, err := p.Text()
	if err != nil {
		return "", err
	}
	return resolve(a.root, text)
}

func (a *dirArchive) OpenDirectory(p Path) (Directory, error) {
	hostPath, err := a.hostPath(p)
	if err != nil {
		return nil, err
	}
	dirEntries, err := os.ReadDir(hostPath)
	if err != nil {
		return nil, err
	}
	listing := &dirListing{entries: make([]DirectoryEntry, 0, len(dirEntries))}
	for _, dirEntry := range dirEntries {
		info, err := dirEntry.Info()
		if err != nil {
			return nil, err
		}
		listing.entries = append(listing.entries, directoryEntry(info))
	}
	return listing, nil
}

func (a *dirArchive) OpenFile(p Path, flags, attributes uint32) (File, error) {
	if flags&(OpenWrite|OpenCreate) != 0 {
		return nil, fmt.Errorf("open flags 0x%X: archive is read-only", flags)
	}
	hostPath, err := a.hostPath(p)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(hostPath)
	if err != nil {
		return nil, err
	}
	return &dirFile{file: file}, nil
}

func (a *dirArchive) Close() error {
	if a.closed {
		return os.ErrClosed
	}
	a.closed = true
	return nil
}

type dirListing struct {
	entries []DirectoryEntry
	next    int
	closed  bool
}

func (l *dirListing) Read(entries []DirectoryEntry) (int, error) {
	if l.closed {
		return 0, os.ErrClosed
	}
	count := copy(entries, l.entries[l.next:])
	l.next += count
	return count, nil
}

func (l *dirListing) Close() error {
	if l.closed {
		return os.ErrClosed
	}
	l.closed = true
	return nil
}

type dirFile struct {
	file *os.File
}

func (f *dirFile) Read(offset uint64, buffer []byte) (int, error) {
	count, err := f.file.ReadAt(buffer, int64(offset))
	if errors.Is(err, io.EOF) {
		return count, nil
	}
	return count, err
}

func (f *dirFile) Close() error {
	return f.file.Close()
}

func directoryEntry(info fs.FileInfo) DirectoryEntry {
	name := info.Name()
	shortName, shortExtension := shortNames(name)
	entry := DirectoryEntry{
		Name:           name,
		ShortName:      shortName,
		ShortExtension: shortExtension,
	}
	if info.IsDir() {
		entry.Attributes |= AttributeDirectory
	} else {
		entry.Attributes |= AttributeArchive
		entry.FileSize = uint64(info.Size())
	}
	if strings.HasPrefix(name, ".") {
		entry.Attributes |= AttributeHidden
	}
	if info.Mode().Perm()&0o200 == 0 {
		entry.Attributes |= AttributeReadOnly
	}
	return entry
}

// shortNames derives the upper-case 8.3 name the service reports
// alongside the long name.
func shortNames(name string) (string, string) {
	base, extension := name, ""
	if dot := strings.LastIndexByte(name, '.'); dot > 0 {
		base, extension = name[:dot], name[dot+1:]
	}
	base = strings.ToUpper(base)
	extension = strings.ToUpper(extension)
	if len(base) > 8 {
		base = base[:8]
	}
	if len(extension) > 3 {
		extension = extension[:3]
	}
	return base, extension
}
