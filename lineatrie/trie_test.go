package lineatrie

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/automata-network/sgx-prover/mimc"
	"github.com/automata-network/sgx-prover/primitives"
)

func mustHash(t *testing.T, msg []byte) primitives.Hash {
	t.Helper()
	h, err := mimc.Sum(msg)
	require.NoError(t, err)
	return primitives.Hash(h)
}

func TestPutGetRoundtrip(t *testing.T) {
	tr := New()
	k1 := mustHash(t, []byte("alice-key-padded-to-one-block!!"))
	v1 := mustHash(t, []byte("alice-value-padded-to-one-block"))
	tr.Put(k1, v1)

	got, ok := tr.Get(k1)
	require.True(t, ok)
	require.Equal(t, v1, got)

	_, ok = tr.Get(mustHash(t, []byte("no-such-key-padded-to-one-block")))
	require.False(t, ok)
}

func TestRootChangesOnInsert(t *testing.T) {
	tr := New()
	empty := tr.Root()
	tr.Put(mustHash(t, []byte("alice-key-padded-to-one-block!!")), mustHash(t, []byte("v")))
	require.NotEqual(t, empty, tr.Root())
}

func TestUpdateOverwritesValue(t *testing.T) {
	tr := New()
	k := mustHash(t, []byte("alice-key-padded-to-one-block!!"))
	tr.Put(k, mustHash(t, []byte("v1")))
	r1 := tr.Root()
	tr.Put(k, mustHash(t, []byte("v2")))
	r2 := tr.Root()
	require.NotEqual(t, r1, r2)

	got, ok := tr.Get(k)
	require.True(t, ok)
	require.Equal(t, mustHash(t, []byte("v2")), got)
}

func TestProveAndVerifyInclusion(t *testing.T) {
	tr := New()
	k1 := mustHash(t, []byte("alice-key-padded-to-one-block!!"))
	k2 := mustHash(t, []byte("bob-key-padded-to-one-block!!!!"))
	tr.Put(k1, mustHash(t, []byte("v1")))
	tr.Put(k2, mustHash(t, []byte("v2")))

	proof, ok := tr.Prove(k1)
	require.True(t, ok)
	require.True(t, VerifyInclusion(tr.Root(), k1, proof))
}

// keyFromUint builds a primitives.Hash whose big-endian byte order matches
// ordinary integer order, so keys built this way sort the way their
// numeric values would.
func keyFromUint(n uint64) primitives.Hash {
	var h primitives.Hash
	for i := 0; i < 8; i++ {
		h[31-i] = byte(n >> (8 * i))
	}
	return h
}

func TestDeleteRelinksPredecessorAndSuccessor(t *testing.T) {
	tr := New()
	k1, k2, k3 := keyFromUint(1), keyFromUint(2), keyFromUint(3)
	tr.Put(k3, mustHash(t, []byte("v3")))
	tr.Put(k1, mustHash(t, []byte("v1")))
	tr.Put(k2, mustHash(t, []byte("v2")))

	idx1, ok := tr.findArenaIdx(k1)
	require.True(t, ok)
	idx2, ok := tr.findArenaIdx(k2)
	require.True(t, ok)
	require.Equal(t, idx2, tr.leaves[idx1].next, "key 1's successor must be key 2 before delete")

	require.True(t, tr.Delete(k2))

	idx3, ok := tr.findArenaIdx(k3)
	require.True(t, ok)
	require.Equal(t, idx3, tr.leaves[idx1].next, "key 1's successor must be key 3 after deleting key 2")
	require.Equal(t, idx1, tr.leaves[idx3].prev)

	_, ok = tr.Get(k2)
	require.False(t, ok)

	left, right := tr.Neighbors(k2)
	require.Equal(t, k1, left.key)
	require.Equal(t, k3, right.key)
}

func TestDeleteUnknownKeyIsNoop(t *testing.T) {
	tr := New()
	k := keyFromUint(1)
	tr.Put(k, mustHash(t, []byte("v")))
	root := tr.Root()

	require.False(t, tr.Delete(keyFromUint(99)))
	require.Equal(t, root, tr.Root())
}

func TestDeleteChangesRootButNotViaK2Lookup(t *testing.T) {
	tr := New()
	k1, k2 := keyFromUint(1), keyFromUint(2)
	tr.Put(k1, mustHash(t, []byte("v1")))
	tr.Put(k2, mustHash(t, []byte("v2")))
	rootWithBoth := tr.Root()

	tr.Delete(k2)
	// Deleting k2 removes its leaf, so the root no longer matches the root
	// that held both leaves.
	require.NotEqual(t, rootWithBoth, tr.Root())

	_, ok := tr.Get(k2)
	require.False(t, ok)
}

func TestNeighborsBracketAbsentKey(t *testing.T) {
	tr := New()
	low := mustHash(t, []byte("aaa-key-padded-to-one-block!!!!"))
	high := mustHash(t, []byte("zzz-key-padded-to-one-block!!!!"))
	tr.Put(low, mustHash(t, []byte("v1")))
	tr.Put(high, mustHash(t, []byte("v2")))

	missing := mustHash(t, []byte("mmm-key-padded-to-one-block!!!!"))
	left, right := tr.Neighbors(missing)
	require.Equal(t, low, left.key)
	require.Equal(t, high, right.key)
}

func TestAccountEncodeMimcSafeSplitsKeccakHash(t *testing.T) {
	a := Account{
		Nonce:          3,
		KeccakCodeHash: primitives.Hash{0xAA, 0xBB},
	}
	enc := a.EncodeMimcSafe()
	require.Len(t, enc, 224)
	plain := a.Encode()
	require.Len(t, plain, 192)
}

func TestEmptyAccountEncodesToNil(t *testing.T) {
	var a Account
	require.Nil(t, a.Encode())
	require.Nil(t, a.EncodeMimcSafe())
}
