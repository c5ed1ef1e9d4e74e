// Package archive defines the on-disk container: a directory header carrying
// an offset table, followed by one self-contained record per input file. Every
// record can be decoded knowing only its byte offset, so records are
// independently readable in parallel.
package archive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrCorruptArchive reports malformed archive bytes: a truncated header
	// or record, a bad tree marker, or an implausible length field.
	ErrCorruptArchive = errors.New("archive: corrupt archive")
)

// maxNameLen bounds the dirname and filename length fields on read, so a
// corrupt length cannot drive allocation.
const maxNameLen = 4096

// maxFiles bounds the header file count on read.
const maxFiles = 1 << 24

// Header opens the archive. Layout, little-endian:
//
//	dirname_length : u64
//	dirname        : dirname_length bytes
//	num_files      : u32
//	offsets        : num_files × u64
//
// The offset table is written zeroed first and patched once every record is
// on disk; Offsets[i] is the start of the record for the i-th enumerated
// input file, regardless of the physical order records landed in.
type Header struct {
	Dirname string
	Offsets []uint64
}

// WriteTo writes the header, including the offset table as it currently is.
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.LittleEndian, uint64(len(h.Dirname))); err != nil {
		return 0, err
	}
	n := int64(8)
	m, err := io.WriteString(w, h.Dirname)
	n += int64(m)
	if err != nil {
		return n, err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(h.Offsets))); err != nil {
		return n, err
	}
	n += 4
	if err := binary.Write(w, binary.LittleEndian, h.Offsets); err != nil {
		return n, err
	}
	return n + int64(8*len(h.Offsets)), nil
}

// OffsetTablePos is the byte position of the offset table within the archive.
func (h *Header) OffsetTablePos() int64 {
	return 8 + int64(len(h.Dirname)) + 4
}

// PatchOffsets rewrites the offset table in place. It is called once, after
// all records have been appended and the table has its final values.
func (h *Header) PatchOffsets(ws io.WriteSeeker) error {
	if _, err := ws.Seek(h.OffsetTablePos(), io.SeekStart); err != nil {
		return err
	}
	return binary.Write(ws, binary.LittleEndian, h.Offsets)
}

// ReadFrom parses a header written by WriteTo.
func (h *Header) ReadFrom(r io.Reader) (int64, error) {
	var n int64
	dirnameLen, err := readU64(r, &n)
	if err != nil {
		return n, err
	}
	if dirnameLen > maxNameLen {
		return n, fmt.Errorf("%w: dirname length %d", ErrCorruptArchive, dirnameLen)
	}
	dirname := make([]byte, dirnameLen)
	m, err := io.ReadFull(r, dirname)
	n += int64(m)
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrCorruptArchive, err)
	}

	var numFiles uint32
	if err := binary.Read(r, binary.LittleEndian, &numFiles); err != nil {
		return n, fmt.Errorf("%w: %w", ErrCorruptArchive, err)
	}
	n += 4
	if numFiles > maxFiles {
		return n, fmt.Errorf("%w: %d files", ErrCorruptArchive, numFiles)
	}

	offsets := make([]uint64, numFiles)
	if err := binary.Read(r, binary.LittleEndian, offsets); err != nil {
		return n, fmt.Errorf("%w: %w", ErrCorruptArchive, err)
	}
	n += int64(8 * numFiles)

	h.Dirname = string(dirname)
	h.Offsets = offsets
	return n, nil
}

func readU64(r io.Reader, n *int64) (uint64, error) {
	var v uint64
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCorruptArchive, err)
	}
	*n += 8
	return v, nil
}
