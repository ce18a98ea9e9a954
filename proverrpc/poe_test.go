package proverrpc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/automata-network/sgx-prover/primitives"
)

func TestEncodeWithoutSignatureIsFixedLength(t *testing.T) {
	p := PoE{
		BatchHash:     primitives.BytesToHash([]byte("batch")),
		StateHash:     primitives.BytesToHash([]byte("state")),
		PrevStateRoot: primitives.BytesToHash([]byte("prev")),
		NewStateRoot:  primitives.BytesToHash([]byte("new")),
	}
	require.Len(t, p.EncodeWithoutSignature(), 160)
}

func TestSigningDigestIgnoresSignatureField(t *testing.T) {
	p := PoE{BatchHash: primitives.BytesToHash([]byte("x"))}
	d1 := p.SigningDigest()
	p.Signature = []byte{1, 2, 3}
	d2 := p.SigningDigest()
	require.Equal(t, d1, d2)
}

func TestMergeStateHashChangesWithOrder(t *testing.T) {
	a := primitives.BytesToHash([]byte("a"))
	b := primitives.BytesToHash([]byte("b"))
	h1 := MergeStateHash([]primitives.Hash{a, b})
	h2 := MergeStateHash([]primitives.Hash{b, a})
	require.NotEqual(t, h1, h2)
}
