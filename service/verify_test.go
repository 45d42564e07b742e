package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeRootFoldsSidesByParity(t *testing.T) {
	// node1 ends in an even hex digit, so it joins on the left; node2 ends
	// odd and joins on the right.
	item := "a1"
	node1 := "b2"
	node2 := "c3"

	afterNode1 := MD5Hex("b2" + "a1")
	afterNode2 := MD5Hex(afterNode1 + "c3")

	got, err := ComputeRoot(item, []string{node1}, MD5Hex)
	require.NoError(t, err)
	assert.Equal(t, afterNode1, got)

	got, err = ComputeRoot(item, []string{node1, node2}, MD5Hex)
	require.NoError(t, err)
	assert.Equal(t, afterNode2, got)

	assert.True(t, VerifyInclusion(item, []string{node1, node2}, afterNode2, MD5Hex))
	assert.False(t, VerifyInclusion(item, []string{node1, node2}, MD5Hex("something else"), MD5Hex))
}

func TestComputeRootSingleNode(t *testing.T) {
	even := "4f2e"
	got, err := ComputeRoot("tx", []string{even}, MD5Hex)
	require.NoError(t, err)
	assert.Equal(t, MD5Hex(even+"tx"), got)

	odd := "4f2d"
	got, err = ComputeRoot("tx", []string{odd}, MD5Hex)
	require.NoError(t, err)
	assert.Equal(t, MD5Hex("tx"+odd), got)
}

func TestVerifyInclusionEmptyProof(t *testing.T) {
	// with no siblings the running value stays the item itself
	assert.True(t, VerifyInclusion("root", nil, "root", MD5Hex))
	assert.False(t, VerifyInclusion("leaf", nil, "root", MD5Hex))
	assert.False(t, VerifyInclusion("leaf", []string{}, "root", MD5Hex))
}

func TestVerifyInclusionIdempotent(t *testing.T) {
	item := "a1"
	nodes := []string{"b2", "c3"}
	root, err := ComputeRoot(item, nodes, MD5Hex)
	require.NoError(t, err)

	first := VerifyInclusion(item, nodes, root, MD5Hex)
	second := VerifyInclusion(item, nodes, root, MD5Hex)
	assert.True(t, first)
	assert.Equal(t, first, second)
}

func TestComputeRootMalformedNode(t *testing.T) {
	_, err := ComputeRoot("tx", []string{"endsinz"}, MD5Hex)
	assert.Error(t, err)

	_, err = ComputeRoot("tx", []string{""}, MD5Hex)
	assert.Error(t, err)

	// a malformed proof rejects, it never panics or errors out of Verify
	assert.False(t, VerifyInclusion("tx", []string{"endsinz"}, "tx", MD5Hex))
}

func TestVerifyInclusionCustomHash(t *testing.T) {
	identity := func(s string) string { return s }
	// even node "2" prepends: running = "2" + "x"
	assert.True(t, VerifyInclusion("x", []string{"2"}, "2x", identity))
	// odd node "3" appends: running = "x" + "3"
	assert.True(t, VerifyInclusion("x", []string{"3"}, "x3", identity))
}
