package blob

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPayloadHeaderLayout(t *testing.T) {
	chunks := [][]byte{[]byte("chunk-one"), []byte("chunk-two")}
	payload, err := BuildPayload(chunks)
	require.NoError(t, err)

	require.Equal(t, uint16(2), uint16(payload[0])<<8|uint16(payload[1]))
	sizesStart := 2
	require.Len(t, payload, 2+MaxNumChunks*4+len("chunk-one")+len("chunk-two"))
	require.Equal(t, byte(len("chunk-one")), payload[sizesStart+3])
	require.Equal(t, byte(len("chunk-two")), payload[sizesStart+7])
}

func TestBuildPayloadRejectsTooManyChunks(t *testing.T) {
	chunks := make([][]byte, MaxNumChunks+1)
	for i := range chunks {
		chunks[i] = []byte{1}
	}
	_, err := BuildPayload(chunks)
	require.ErrorIs(t, err, ErrTooManyChunks)
}

func TestEncodeAndPackFieldElements(t *testing.T) {
	env, err := Encode([][]byte{[]byte("a small chunk of chunk data")}, false)
	require.NoError(t, err)
	require.False(t, env.Compressed)

	b, err := env.PackFieldElements()
	require.NoError(t, err)
	require.Equal(t, byte(0), b[0]) // high byte of first field element is always zero
	require.Equal(t, byte(0), b[1]) // the 1-byte compressed flag is the first data byte
}

func TestCommitProducesVersionedHashWithV1Prefix(t *testing.T) {
	env, err := Encode([][]byte{[]byte("payload bytes for kzg commitment test")}, false)
	require.NoError(t, err)
	blob, err := env.PackFieldElements()
	require.NoError(t, err)

	c, err := Commit(blob, []byte("metadata"))
	require.NoError(t, err)
	require.Equal(t, byte(0x01), c.VersionedHash[0])
}
