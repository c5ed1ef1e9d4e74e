package huffman

import (
	"bytes"
	"testing"

	"github.com/icza/bitio"
	"github.com/stretchr/testify/require"
)

func testTreeRoundTrip(t *testing.T, text []rune) *Tree {
	tree, err := New(Tabulate(text))
	require.NoError(t, err)

	var bb bytes.Buffer
	n, err := tree.WriteTo(&bb)
	require.NoError(t, err)
	require.EqualValues(t, bb.Len(), n)

	var back Tree
	m, err := back.ReadFrom(&bb)
	require.NoError(t, err)
	require.Equal(t, n, m)
	requireSameShape(t, tree.root, back.root)
	return tree
}

func requireSameShape(t *testing.T, a, b *node) {
	t.Helper()
	if a == nil {
		require.Nil(t, b)
		return
	}
	require.NotNil(t, b)
	require.Equal(t, a.sym, b.sym)
	require.Equal(t, a.freq, b.freq)
	requireSameShape(t, a.left, b.left)
	requireSameShape(t, a.right, b.right)
}

func TestTreeSerializeRoundTrip(t *testing.T) {
	testTreeRoundTrip(t, []rune("aaabbc"))
	testTreeRoundTrip(t, []rune("héllo wörld\n"))
	testTreeRoundTrip(t, []rune("aaaa"))
}

func TestTreeSerializedLayout(t *testing.T) {
	// A one-leaf tree is the present marker, code point, count, and two
	// absent markers: 1 + 4 + 4 + 1 + 1 bytes.
	tree, err := New(Tabulate([]rune("aaaa")))
	require.NoError(t, err)

	var bb bytes.Buffer
	_, err = tree.WriteTo(&bb)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 'a', 0, 0, 0, 4, 0, 0, 0, 0, 0}, bb.Bytes())
}

func TestDeserializedTreeDecodes(t *testing.T) {
	text := []rune("serialization keeps the codec intact")
	tree, err := New(Tabulate(text))
	require.NoError(t, err)
	codes, err := tree.Codes()
	require.NoError(t, err)

	var treeBytes, stream bytes.Buffer
	_, err = tree.WriteTo(&treeBytes)
	require.NoError(t, err)
	w := bitio.NewWriter(&stream)
	require.NoError(t, codes.Encode(w, text))
	require.NoError(t, w.Close())

	var back Tree
	_, err = back.ReadFrom(&treeBytes)
	require.NoError(t, err)
	got, err := back.Decode(bitio.NewReader(&stream), uint64(len(text)))
	require.NoError(t, err)
	require.Equal(t, text, got)
}

func TestReadTreeTruncated(t *testing.T) {
	tree, err := New(Tabulate([]rune("truncate me")))
	require.NoError(t, err)
	var bb bytes.Buffer
	_, err = tree.WriteTo(&bb)
	require.NoError(t, err)

	full := bb.Bytes()
	for _, cut := range []int{0, 1, 5, len(full) / 2, len(full) - 1} {
		var back Tree
		_, err := back.ReadFrom(bytes.NewReader(full[:cut]))
		require.ErrorIs(t, err, ErrCorruptTree, "cut at %d", cut)
	}
}

func TestReadTreeBadMarker(t *testing.T) {
	var back Tree
	_, err := back.ReadFrom(bytes.NewReader([]byte{7}))
	require.ErrorIs(t, err, ErrCorruptTree)
}

func TestReadTreeEmpty(t *testing.T) {
	var back Tree
	_, err := back.ReadFrom(bytes.NewReader([]byte{0}))
	require.ErrorIs(t, err, ErrCorruptTree)
}
