package primitives

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferWriteReadRoundtrip(t *testing.T) {
	b := NewBuffer(8 + 32)
	b.WriteU64BE(42)
	want := Hash{1, 2, 3}
	b.WriteHash(want)

	require.Equal(t, 40, b.Len())
	require.True(t, b.IsFull())

	got64, ok := b.ReadU64BE()
	require.True(t, ok)
	require.Equal(t, uint64(42), got64)

	gotHash, ok := b.ReadHash()
	require.True(t, ok)
	require.Equal(t, want, gotHash)
}

func TestBufferReadNNonDestructive(t *testing.T) {
	b := NewBuffer(4)
	b.CopyFrom([]byte{1, 2, 3, 4})
	raw, ok := b.ReadN(4)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3, 4}, raw)
	require.Equal(t, 4, b.Len(), "ReadN must not consume")
}

func TestBufferU256Roundtrip(t *testing.T) {
	b := NewBuffer(32)
	n := big.NewInt(123456789)
	b.WriteU256BE(n)
	got, ok := b.ReadU256BE()
	require.True(t, ok)
	require.Equal(t, 0, n.Cmp(got))
}

func TestBufferEndsWith(t *testing.T) {
	b := NewBuffer(4)
	b.CopyFrom([]byte{0xde, 0xad, 0xbe, 0xef})
	require.True(t, b.EndsWith([]byte{0xbe, 0xef}))
	require.False(t, b.EndsWith([]byte{0xbe, 0xee}))
}

func TestAliveShutdownPropagates(t *testing.T) {
	a := NewAlive(context.Background())
	require.True(t, a.IsLive())
	a.Shutdown()
	require.False(t, a.IsLive())
}
