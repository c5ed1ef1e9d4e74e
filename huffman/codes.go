package huffman

import (
	"fmt"

	"github.com/icza/bitio"
)

// Code is one prefix code as an ordered bit sequence; every element is 0 or 1.
type Code []byte

// CodeTable maps each code point of the alphabet to its code.
type CodeTable map[rune]Code

// Codes derives the code table by preorder traversal: descending left appends
// a 0, descending right a 1, and reaching a leaf assigns the accumulated
// prefix to that leaf's code point. A one-leaf tree gets the single code 0.
func (t *Tree) Codes() (CodeTable, error) {
	codes := make(CodeTable)
	if t.root.leaf() {
		codes[t.root.sym] = Code{0}
		return codes, nil
	}

	var walk func(n *node, prefix Code) error
	walk = func(n *node, prefix Code) error {
		if n.leaf() {
			if len(prefix) > MaxCodeLen {
				return fmt.Errorf("%w: symbol %q needs %d bits", ErrCodeTooLong, n.sym, len(prefix))
			}
			code := make(Code, len(prefix))
			copy(code, prefix)
			codes[n.sym] = code
			return nil
		}
		if err := walk(n.left, append(prefix, 0)); err != nil {
			return err
		}
		return walk(n.right, append(prefix, 1))
	}
	if err := walk(t.root, make(Code, 0, 64)); err != nil {
		return nil, err
	}
	return codes, nil
}

// Encode writes the code of every code point in text to w, in order. The
// caller owns the writer and its final flush; the bits of one text form a
// single logical stream with no terminator.
func (codes CodeTable) Encode(w *bitio.Writer, text []rune) error {
	for _, r := range text {
		code, ok := codes[r]
		if !ok {
			return fmt.Errorf("huffman: no code for %q", r)
		}
		for _, bit := range code {
			w.TryWriteBool(bit == 1)
		}
		if w.TryError != nil {
			return fmt.Errorf("huffman: write bit stream: %w", w.TryError)
		}
	}
	return nil
}

// Decode walks the tree over the bit stream and returns exactly n code
// points, stopping mid-byte once the count is reached; trailing padding bits
// are never consumed as symbols. A one-leaf tree consumes one bit per symbol.
func (t *Tree) Decode(r *bitio.Reader, n uint64) ([]rune, error) {
	// Cap the initial allocation: n is read from the archive and a corrupt
	// length must not drive memory use before the stream runs dry.
	out := make([]rune, 0, min(n, 1<<20))

	if t.root.leaf() {
		for uint64(len(out)) < n {
			r.TryReadBool()
			if r.TryError != nil {
				return nil, fmt.Errorf("huffman: bit stream ended after %d of %d code points: %w", len(out), n, r.TryError)
			}
			out = append(out, t.root.sym)
		}
		return out, nil
	}

	cur := t.root
	for uint64(len(out)) < n {
		right := r.TryReadBool()
		if r.TryError != nil {
			return nil, fmt.Errorf("huffman: bit stream ended after %d of %d code points: %w", len(out), n, r.TryError)
		}
		if right {
			cur = cur.right
		} else {
			cur = cur.left
		}
		if cur.leaf() {
			out = append(out, cur.sym)
			cur = t.root
		}
	}
	return out, nil
}
