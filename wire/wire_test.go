package wire

import (
	"bufio"
	"bytes"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestRoundTrip(t *testing.T) {
	framed := EncodeRequest("send nodes to validate transaction", "a1b2")
	assert.Equal(t, "send nodes to validate transaction:a1b2\n", string(framed))

	unit, rest, ok := NextUnit(framed)
	require.True(t, ok)
	assert.Empty(t, rest)

	req, err := ParseRequest(unit)
	require.NoError(t, err)
	assert.Equal(t, "send nodes to validate transaction", req.Label)
	assert.Equal(t, "a1b2", req.Item)
	assert.False(t, req.EndSession())
}

func TestParseRequestEndSession(t *testing.T) {
	req, err := ParseRequest("close session:exit")
	require.NoError(t, err)
	assert.True(t, req.EndSession())

	// the bare marker is accepted too
	req, err = ParseRequest("exit")
	require.NoError(t, err)
	assert.True(t, req.EndSession())
}

func TestParseRequestMalformed(t *testing.T) {
	_, err := ParseRequest("no delimiter here")
	assert.Error(t, err)

	_, err = ParseRequest("label only:")
	assert.Error(t, err)
}

func TestNextUnitPartialAndPadding(t *testing.T) {
	// no newline yet: not a unit, bytes stay buffered
	unit, rest, ok := NextUnit([]byte("half a requ"))
	assert.False(t, ok)
	assert.Equal(t, "half a requ", string(rest))

	// NUL padding and whitespace around a unit are not part of the value
	unit, rest, ok = NextUnit([]byte("\x00\x00 abc \x00\r\nnext"))
	require.True(t, ok)
	assert.Equal(t, "abc", unit)
	assert.Equal(t, "next", string(rest))

	// an all-zero buffer is "no data", not a value
	unit, rest, ok = NextUnit([]byte("\x00\x00\x00\n"))
	require.True(t, ok)
	assert.Empty(t, unit)
	assert.Empty(t, rest)
}

func TestProofStreamRoundTrip(t *testing.T) {
	for _, nodes := range [][]string{
		nil,
		{"5e5bdd83110e1b9aeb9bf23d89211ceb"},
		{
			"5e5bdd83110e1b9aeb9bf23d89211ceb",
			"bfdb43dcb57b4705db1608b61892d638",
			"0123456789abcdef0123456789abcdef",
			"fedcba9876543210fedcba9876543210",
			"00000000000000000000000000000000",
		},
	} {
		var buf bytes.Buffer
		require.NoError(t, WriteProofStream(&buf, nodes))

		got, err := ReadProofStream(bufio.NewReader(&buf))
		require.NoError(t, err)
		assert.Equal(t, nodes, got)
	}
}

func TestReadProofStreamShortReads(t *testing.T) {
	var buf bytes.Buffer
	nodes := []string{"5e5bdd83110e1b9aeb9bf23d89211ceb", "bfdb43dcb57b4705db1608b61892d638"}
	require.NoError(t, WriteProofStream(&buf, nodes))

	// one byte per read must not change what is decoded
	got, err := ReadProofStream(bufio.NewReader(iotest.OneByteReader(&buf)))
	require.NoError(t, err)
	assert.Equal(t, nodes, got)
}

func TestReadProofStreamSkipsBlankUnits(t *testing.T) {
	r := bufio.NewReader(bytes.NewBufferString("\x00\x00\n\naaaa\ndone\n"))
	got, err := ReadProofStream(r)
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaa"}, got)
}

func TestReadProofStreamTruncated(t *testing.T) {
	// stream ends before the terminator: the error surfaces along with
	// whatever arrived
	r := bufio.NewReader(bytes.NewBufferString("aaaa\nbbbb\n"))
	got, err := ReadProofStream(r)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []string{"aaaa", "bbbb"}, got)
}
