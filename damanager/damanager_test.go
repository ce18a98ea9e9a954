package damanager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/automata-network/sgx-prover/primitives"
	"github.com/automata-network/sgx-prover/witness"
)

func TestTryLockThenPutThenGet(t *testing.T) {
	m := New()
	h := primitives.BytesToHash([]byte("h1"))

	statuses := m.TryLock([]primitives.Hash{h}, time.Minute)
	require.Equal(t, []Status{Locked}, statuses)

	_, ok := m.Get(h)
	require.False(t, ok)

	pob := &witness.PoB{Hash: h}
	m.Put(h, pob, time.Minute)

	got, ok := m.Get(h)
	require.True(t, ok)
	require.Equal(t, pob, got)

	statuses = m.TryLock([]primitives.Hash{h}, time.Minute)
	require.Equal(t, []Status{Exist}, statuses)
}

func TestTryLockFailsWhileLockedByOther(t *testing.T) {
	m := New()
	h := primitives.BytesToHash([]byte("h2"))

	m.TryLock([]primitives.Hash{h}, time.Minute)
	statuses := m.TryLock([]primitives.Hash{h}, time.Minute)
	require.Equal(t, []Status{Failed}, statuses)
}

func TestExpiredEntryBehavesAsAbsent(t *testing.T) {
	m := New()
	frozen := time.Now()
	m.now = func() time.Time { return frozen }

	h := primitives.BytesToHash([]byte("h3"))
	m.Put(h, &witness.PoB{Hash: h}, time.Millisecond)

	m.now = func() time.Time { return frozen.Add(time.Second) }
	_, ok := m.Get(h)
	require.False(t, ok)

	statuses := m.TryLock([]primitives.Hash{h}, time.Minute)
	require.Equal(t, []Status{Locked}, statuses)
}
