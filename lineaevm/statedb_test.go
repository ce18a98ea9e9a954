package lineaevm

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/automata-network/sgx-prover/lineatrie"
)

func TestBalanceAddSubAndSnapshotRevert(t *testing.T) {
	sdb := New(lineatrie.New())
	addr := common.HexToAddress("0x00000000000000000000000000000000000001")

	sdb.AddBalance(addr, uint256.NewInt(100), 0)
	snap := sdb.Snapshot()
	sdb.AddBalance(addr, uint256.NewInt(50), 0)
	require.Equal(t, uint256.NewInt(150), sdb.GetBalance(addr))

	sdb.RevertToSnapshot(snap)
	require.Equal(t, uint256.NewInt(100), sdb.GetBalance(addr))
}

func TestCommitIsDeterministic(t *testing.T) {
	addr := common.HexToAddress("0x00000000000000000000000000000000000002")

	sdb := New(lineatrie.New())
	sdb.AddBalance(addr, uint256.NewInt(42), 0)
	sdb.SetNonce(addr, 7, 0)
	root1, err := sdb.Commit()
	require.NoError(t, err)

	sdb2 := New(lineatrie.New())
	sdb2.AddBalance(addr, uint256.NewInt(42), 0)
	sdb2.SetNonce(addr, 7, 0)
	root2, err := sdb2.Commit()
	require.NoError(t, err)

	require.Equal(t, root1, root2)
}

func TestSelfDestructRemovesLeafFromTrie(t *testing.T) {
	addr := common.HexToAddress("0x00000000000000000000000000000000000009")
	trie := lineatrie.New()
	sdb := New(trie)
	sdb.AddBalance(addr, uint256.NewInt(10), 0)
	sdb.SetNonce(addr, 1, 0)
	_, err := sdb.Commit()
	require.NoError(t, err)
	_, ok := trie.Get(addrKey(addr))
	require.True(t, ok, "account must be present after the first commit")

	sdb.SelfDestruct(addr)
	_, err = sdb.Commit()
	require.NoError(t, err)

	_, ok = trie.Get(addrKey(addr))
	require.False(t, ok, "destructed account's leaf must be gone, not merely zeroed")
}

func TestStorageEmptyValueWriteDoesNotPersist(t *testing.T) {
	addr := common.HexToAddress("0x00000000000000000000000000000000000003")
	var slot, value common.Hash
	slot[31] = 1
	value[31] = 9

	sdb := New(lineatrie.New())
	sdb.SetState(addr, slot, value)
	sdb.SetState(addr, slot, common.Hash{})
	rootWithDelete, err := sdb.Commit()
	require.NoError(t, err)

	sdbEmpty := New(lineatrie.New())
	sdbEmpty.CreateAccount(addr)
	rootNoSlot, err := sdbEmpty.Commit()
	require.NoError(t, err)

	require.Equal(t, rootWithDelete, rootNoSlot)
}
