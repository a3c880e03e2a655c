// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package extdata

import (
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// PathType tags the encoding of a Path's data.
type PathType uint32

const (
	PathInvalid PathType = 0
	PathEmpty   PathType = 1
	PathBinary  PathType = 2
	PathASCII   PathType = 3
	PathUTF16   PathType = 4
)

// Path is a file-system service path: an encoding tag plus raw bytes.
type Path struct {
	Type PathType
	Data []byte
}

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// UTF16Path encodes a textual path as NUL-terminated UTF-16LE, the form
// the service expects for directory and file paths.
func UTF16Path(text string) (Path, error) {
	encoded, err := utf16LE.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return Path{}, fmt.Errorf("encoding path %q: %w", text, err)
	}
	return Path{Type: PathUTF16, Data: append(encoded, 0, 0)}, nil
}

// BinaryPath packs words little-endian.
func BinaryPath(words ...uint32) Path {
	data := make([]byte, 4*len(words))
	for index, word := range words {
		binary.LittleEndian.PutUint32(data[index*4:], word)
	}
	return Path{Type: PathBinary, Data: data}
}

// Text decodes a UTF-16 or ASCII path back to a string without its
// terminator.
func (p Path) Text() (string, error) {
	switch p.Type {
	case PathUTF16:
		decoded, err := utf16LE.NewDecoder().Bytes(p.Data)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(decoded), "\x00"), nil
	case PathASCII:
		return strings.TrimRight(string(p.Data), "\x00"), nil
	default:
		return "", fmt.Errorf("path type %d is not textual", p.Type)
	}
}

// Words decodes a binary path into little-endian words.
func (p Path) Words() ([]uint32, error) {
	if p.Type != PathBinary || len(p.Data)%4 != 0 {
		return nil, fmt.Errorf("not a word-aligned binary path (type %d, %d bytes)", p.Type, len(p.Data))
	}
	words := make([]uint32, len(p.Data)/4)
	for index := range words {
		words[index] = binary.LittleEndian.Uint32(p.Data[index*4:])
	}
	return words, nil
}

func (p Path) String() string {
	if text, err := p.Text(); err == nil {
		return text
	}
	return fmt.Sprintf("%x", p.Data)
}
