package archive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/icza/bitio"

	"bookzip/huffman"
)

// Record is the self-contained encoding of one input file. Layout after the
// header, little-endian:
//
//	offset              : u64   (duplicates the header table entry)
//	filename_length     : u64
//	filename            : filename_length bytes, basename only
//	uncompressed_length : u64   (in code points, not bytes)
//	tree                : preorder, see huffman.Tree.WriteTo
//	bit_stream          : ceil(total_bits/8) bytes, MSB-first
//
// The leading offset is preserved for debugging; readers treat the header
// table as authoritative and only check the record is well-formed.
type Record struct {
	Offset   uint64
	Filename string
	TextLen  uint64
	Tree     *huffman.Tree
	Stream   []byte
}

// EncodeFile compresses text into an in-memory record named after the
// basename of path. The record's Offset is left zero; the compression worker
// fills it in once it holds the archive write lock and knows the position.
func EncodeFile(path string, text []rune) (*Record, error) {
	tree, err := huffman.New(huffman.Tabulate(text))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	codes, err := tree.Codes()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var stream bytes.Buffer
	w := bitio.NewWriter(&stream)
	if err := codes.Encode(w, text); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Record{
		Filename: filepath.Base(path),
		TextLen:  uint64(len(text)),
		Tree:     tree,
		Stream:   stream.Bytes(),
	}, nil
}

// WriteTo writes the record. The bit stream is already flushed, so the whole
// record goes out in one pass and a failure cannot leave a partially encoded
// symbol behind.
func (rec *Record) WriteTo(w io.Writer) (int64, error) {
	var head bytes.Buffer
	binary.Write(&head, binary.LittleEndian, rec.Offset)
	binary.Write(&head, binary.LittleEndian, uint64(len(rec.Filename)))
	head.WriteString(rec.Filename)
	binary.Write(&head, binary.LittleEndian, rec.TextLen)

	n, err := w.Write(head.Bytes())
	written := int64(n)
	if err != nil {
		return written, err
	}
	m, err := rec.Tree.WriteTo(w)
	written += m
	if err != nil {
		return written, err
	}
	n, err = w.Write(rec.Stream)
	return written + int64(n), err
}

// ReadRecord parses a record's metadata and tree from r, leaving r positioned
// at the first byte of the bit stream. The returned record has a nil Stream;
// decode the text with DecodeFrom on the same reader.
func ReadRecord(r io.Reader) (*Record, error) {
	var n int64
	offset, err := readU64(r, &n)
	if err != nil {
		return nil, err
	}
	nameLen, err := readU64(r, &n)
	if err != nil {
		return nil, err
	}
	if nameLen == 0 || nameLen > maxNameLen {
		return nil, fmt.Errorf("%w: filename length %d", ErrCorruptArchive, nameLen)
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptArchive, err)
	}
	if strings.ContainsAny(string(name), `/\`) {
		return nil, fmt.Errorf("%w: filename %q is not a basename", ErrCorruptArchive, name)
	}
	textLen, err := readU64(r, &n)
	if err != nil {
		return nil, err
	}

	tree := new(huffman.Tree)
	if _, err := tree.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptArchive, err)
	}

	return &Record{
		Offset:   offset,
		Filename: string(name),
		TextLen:  textLen,
		Tree:     tree,
	}, nil
}

// DecodeFrom decodes the record's text from the bit stream at the reader's
// current position, which must be the position ReadRecord left it at.
// Trailing padding in the stream's final byte is discarded.
func (rec *Record) DecodeFrom(r io.Reader) ([]rune, error) {
	text, err := rec.Tree.Decode(bitio.NewReader(r), rec.TextLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptArchive, err)
	}
	return text, nil
}
