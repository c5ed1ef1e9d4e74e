package huffman

import (
	"encoding/binary"
	"fmt"
	"io"
)

// On-disk node layout: one marker byte (0 absent, 1 present) followed, when
// present, by the code point and count as little-endian uint32, then the left
// and right subtrees in preorder. A leaf is the node whose two child markers
// are both 0.
const nodePayloadLen = 1 + 4 + 4

// WriteTo serializes the tree in preorder.
func (t *Tree) WriteTo(w io.Writer) (int64, error) {
	var scratch [nodePayloadLen]byte
	return writeNode(w, t.root, &scratch)
}

func writeNode(w io.Writer, n *node, scratch *[nodePayloadLen]byte) (int64, error) {
	if n == nil {
		scratch[0] = 0
		m, err := w.Write(scratch[:1])
		return int64(m), err
	}
	scratch[0] = 1
	binary.LittleEndian.PutUint32(scratch[1:5], uint32(n.sym))
	binary.LittleEndian.PutUint32(scratch[5:9], n.freq)
	m, err := w.Write(scratch[:])
	written := int64(m)
	if err != nil {
		return written, err
	}
	m2, err := writeNode(w, n.left, scratch)
	written += m2
	if err != nil {
		return written, err
	}
	m2, err = writeNode(w, n.right, scratch)
	return written + m2, err
}

// ReadFrom deserializes a preorder tree written by WriteTo into t, replacing
// its contents. Malformed bytes (a marker other than 0/1, a truncated node,
// an absent root, a node with exactly one child, or a depth past MaxCodeLen)
// yield an error wrapping ErrCorruptTree.
func (t *Tree) ReadFrom(r io.Reader) (int64, error) {
	var n int64
	root, err := readNode(r, &n, 0)
	if err != nil {
		return n, err
	}
	if root == nil {
		return n, fmt.Errorf("%w: empty tree", ErrCorruptTree)
	}
	t.root = root
	return n, nil
}

func readNode(r io.Reader, n *int64, depth int) (*node, error) {
	var buf [nodePayloadLen]byte
	m, err := io.ReadFull(r, buf[:1])
	*n += int64(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptTree, err)
	}
	switch buf[0] {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, fmt.Errorf("%w: marker byte %#x", ErrCorruptTree, buf[0])
	}
	if depth > MaxCodeLen {
		return nil, fmt.Errorf("%w: deeper than %d", ErrCorruptTree, MaxCodeLen)
	}

	m, err = io.ReadFull(r, buf[1:])
	*n += int64(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptTree, err)
	}
	nd := &node{
		sym:  rune(binary.LittleEndian.Uint32(buf[1:5])),
		freq: binary.LittleEndian.Uint32(buf[5:9]),
	}

	if nd.left, err = readNode(r, n, depth+1); err != nil {
		return nil, err
	}
	if nd.right, err = readNode(r, n, depth+1); err != nil {
		return nil, err
	}
	if (nd.left == nil) != (nd.right == nil) {
		return nil, fmt.Errorf("%w: internal node with one child", ErrCorruptTree)
	}
	return nd, nil
}
