package grf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/klauspost/compress/zlib"

	"github.com/Faultbox/midgard-nav/pkg/encoding"
)

// Write builds a GRF 0x200 archive holding files (path -> content).
// Entries are zlib compressed, padded to 8 bytes and stored in path order
// with backslash separators.
func Write(w io.Writer, files map[string][]byte) error {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var body, table bytes.Buffer
	for _, name := range names {
		content := files[name]

		compressed, err := deflate(content)
		if err != nil {
			return fmt.Errorf("compressing %s: %w", name, err)
		}
		if len(compressed) == len(content) {
			// Equal sizes mark a stored entry.
			compressed = content
		}
		aligned := len(compressed)
		if aligned%8 != 0 {
			aligned += 8 - aligned%8
		}
		offset := uint32(body.Len())
		body.Write(compressed)
		body.Write(make([]byte, aligned-len(compressed)))

		table.Write(encoding.UTF8ToEUCKR(strings.ReplaceAll(name, "/", "\\")))
		table.WriteByte(0)
		var info [entryInfoSize]byte
		binary.LittleEndian.PutUint32(info[0:], uint32(len(compressed)))
		binary.LittleEndian.PutUint32(info[4:], uint32(aligned))
		binary.LittleEndian.PutUint32(info[8:], uint32(len(content)))
		info[12] = flagFile
		binary.LittleEndian.PutUint32(info[13:], offset)
		table.Write(info[:])
	}

	compressedTable, err := deflate(table.Bytes())
	if err != nil {
		return fmt.Errorf("compressing file table: %w", err)
	}

	header := Header{
		TableOffset: uint32(body.Len()),
		FileCount:   uint32(len(names)) + 7,
		Version:     grfVersion,
	}
	copy(header.Magic[:], grfMagic)

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return fmt.Errorf("writing entries: %w", err)
	}
	sizes := []uint32{uint32(len(compressedTable)), uint32(table.Len())}
	if err := binary.Write(w, binary.LittleEndian, sizes); err != nil {
		return fmt.Errorf("writing table sizes: %w", err)
	}
	if _, err := w.Write(compressedTable); err != nil {
		return fmt.Errorf("writing file table: %w", err)
	}
	return nil
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
