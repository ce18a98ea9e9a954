package zstdcodec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompressDecompressRoundtrip(t *testing.T) {
	data := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog"), 200)
	compressed, err := Compress(data)
	require.NoError(t, err)
	require.NotEmpty(t, compressed)

	got, err := Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestCompressIsDeterministic(t *testing.T) {
	data := []byte("deterministic payload bytes for the blob codec")
	a, err := Compress(data)
	require.NoError(t, err)
	b, err := Compress(data)
	require.NoError(t, err)
	require.Equal(t, a, b)
}
