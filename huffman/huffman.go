// Package huffman implements the static per-file Huffman codec used by the
// archive: frequency tabulation, prefix-code tree construction over a
// min-heap, code generation, and the bit-packed text codec.
package huffman

import (
	"container/heap"
	"errors"
)

// MaxCodeLen is the longest admissible code, in bits.
const MaxCodeLen = 255

var (
	// ErrEmptyAlphabet reports an input with no code point to encode.
	ErrEmptyAlphabet = errors.New("huffman: no symbol with non-zero frequency")
	// ErrCodeTooLong reports a frequency distribution whose optimal code
	// exceeds MaxCodeLen bits.
	ErrCodeTooLong = errors.New("huffman: code longer than 255 bits")
	// ErrCorruptTree reports malformed serialized tree bytes.
	ErrCorruptTree = errors.New("huffman: malformed serialized tree")
)

// node is a position in the code tree: a leaf carrying one code point, or an
// internal node owning exactly two children. Internal nodes keep sym zero;
// decoding distinguishes the two shapes by child presence alone.
type node struct {
	sym   rune
	freq  uint32
	left  *node
	right *node
}

func (n *node) leaf() bool { return n.left == nil && n.right == nil }

// priorityQueue implements a min-heap of nodes ordered by frequency.
type priorityQueue []*node

func (pq *priorityQueue) Len() int { return len(*pq) }
func (pq *priorityQueue) Less(i, j int) bool {
	return (*pq)[i].freq < (*pq)[j].freq
}
func (pq *priorityQueue) Swap(i, j int) { (*pq)[i], (*pq)[j] = (*pq)[j], (*pq)[i] }

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(*node))
}

func (pq *priorityQueue) Pop() any {
	n := len(*pq)
	item := (*pq)[n-1]
	*pq = (*pq)[:n-1]
	return item
}

// Tree is an optimal prefix-code tree for one frequency table.
type Tree struct {
	root *node
}

// New builds the code tree for the given frequencies: one leaf per non-zero
// entry goes into a min-heap, then the two smallest nodes are repeatedly
// merged under a fresh internal node until a single root remains. The first
// of the two extracted nodes becomes the left child.
//
// A table with a single non-zero entry yields a degenerate one-leaf tree;
// the codec gives that symbol a one-bit code rather than the zero-length
// code the classical construction would imply.
func New(freqs *FreqTable) (*Tree, error) {
	pq := &priorityQueue{}
	heap.Init(pq)
	freqs.each(func(r rune, count uint32) {
		heap.Push(pq, &node{sym: r, freq: count})
	})
	if pq.Len() == 0 {
		return nil, ErrEmptyAlphabet
	}

	for pq.Len() > 1 {
		left := heap.Pop(pq).(*node)
		right := heap.Pop(pq).(*node)
		heap.Push(pq, &node{
			freq:  left.freq + right.freq,
			left:  left,
			right: right,
		})
	}

	return &Tree{root: heap.Pop(pq).(*node)}, nil
}

// Leaves visits every leaf in preorder.
func (t *Tree) Leaves(fn func(sym rune, freq uint32)) {
	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		if n.leaf() {
			fn(n.sym, n.freq)
			return
		}
		walk(n.left)
		walk(n.right)
	}
	walk(t.root)
}
