package prover

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/automata-network/sgx-prover/primitives"
)

func TestProveLineaChainsEmptyBlocks(t *testing.T) {
	bundle := TaskBundle{
		ChainID: 59144,
		Blocks: []BlockBundle{
			{Number: 1, Timestamp: 101, BaseFee: bigOrZero(nil), GasLimit: 1_000_000},
			{Number: 2, Timestamp: 102, BaseFee: bigOrZero(nil), GasLimit: 1_000_000},
		},
	}

	alive := primitives.NewAlive(context.Background())
	poe, err := proveLinea(alive, bundle, stubSigner{})
	require.NoError(t, err)
	require.Equal(t, []byte("signed"), poe.Signature)
	require.Equal(t, primitives.Hash{}, poe.WithdrawalRoot)
	require.Equal(t, poe.PrevStateRoot, poe.NewStateRoot)
}

func TestProveLineaRejectsEmptyBundle(t *testing.T) {
	alive := primitives.NewAlive(context.Background())
	_, err := proveLinea(alive, TaskBundle{ChainID: 59144}, stubSigner{})
	require.Error(t, err)
}

func TestProveLineaSeedsAccountBalance(t *testing.T) {
	addr := primitives.Address{0xAA}
	bundle := TaskBundle{
		ChainID: 59144,
		Blocks: []BlockBundle{
			{
				Number:    1,
				Timestamp: 101,
				BaseFee:   bigOrZero(nil),
				GasLimit:  1_000_000,
				Accounts: []EngineAccount{
					{Address: addr, Nonce: 1, Balance: bigOrZero(nil)},
				},
			},
		},
	}

	alive := primitives.NewAlive(context.Background())
	poe, err := proveLinea(alive, bundle, stubSigner{})
	require.NoError(t, err)
	// A single account with no code and no transactions still commits
	// deterministically; prev and new roots match since nothing executes.
	require.Equal(t, poe.PrevStateRoot, poe.NewStateRoot)
}
