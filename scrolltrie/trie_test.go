package scrolltrie

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutGetRoundtrip(t *testing.T) {
	tr := New()
	tr.Put([]byte("alice"), []byte("account-bytes-1"))
	tr.Put([]byte("bob"), []byte("account-bytes-2"))

	v, ok, err := tr.Get([]byte("alice"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("account-bytes-1"), v)

	_, ok, err = tr.Get([]byte("carol"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRootChangesOnInsert(t *testing.T) {
	tr := New()
	empty := tr.Root()
	tr.Put([]byte("alice"), []byte("account-bytes"))
	require.NotEqual(t, empty, tr.Root())
}

func TestRootIndependentOfInsertionOrder(t *testing.T) {
	a := New()
	a.Put([]byte("alice"), []byte("1"))
	a.Put([]byte("bob"), []byte("2"))
	a.Put([]byte("carol"), []byte("3"))

	b := New()
	b.Put([]byte("carol"), []byte("3"))
	b.Put([]byte("alice"), []byte("1"))
	b.Put([]byte("bob"), []byte("2"))

	require.Equal(t, a.Root(), b.Root())
}

func TestUpdateOverwritesValue(t *testing.T) {
	tr := New()
	tr.Put([]byte("alice"), []byte("v1"))
	r1 := tr.Root()
	tr.Put([]byte("alice"), []byte("v2"))
	r2 := tr.Root()
	require.NotEqual(t, r1, r2)

	v, ok, err := tr.Get([]byte("alice"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v2"), v)
}

func TestProveAndVerifyInclusion(t *testing.T) {
	tr := New()
	tr.Put([]byte("alice"), []byte("v1"))
	tr.Put([]byte("bob"), []byte("v2"))

	proof, found := tr.Prove([]byte("alice"))
	require.True(t, found)
	require.True(t, Verify(tr.Root(), []byte("alice"), proof))
}

func TestProveNonInclusion(t *testing.T) {
	tr := New()
	tr.Put([]byte("alice"), []byte("v1"))

	_, found := tr.Prove([]byte("nobody"))
	require.False(t, found)
}
