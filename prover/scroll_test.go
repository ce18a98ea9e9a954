package prover

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/automata-network/sgx-prover/dabatch"
	"github.com/automata-network/sgx-prover/hardfork"
	"github.com/automata-network/sgx-prover/primitives"
)

func scrollTestFork() hardfork.ScrollConfig {
	return hardfork.ScrollConfig{ChainID: 1, BernoulliBlock: 1000, CurieBlock: 2000}
}

func TestProveScrollReplayPathChainsEmptyBlocks(t *testing.T) {
	bundle := TaskBundle{
		ChainID: 1,
		Blocks: []BlockBundle{
			{Number: 1, Timestamp: 101, BaseFee: bigOrZero(nil), GasLimit: 1_000_000},
			{Number: 2, Timestamp: 102, BaseFee: bigOrZero(nil), GasLimit: 1_000_000},
		},
	}

	alive := primitives.NewAlive(context.Background())
	poe, err := proveScroll(alive, bundle, scrollTestFork(), false, stubSigner{})
	require.NoError(t, err)
	require.Equal(t, []byte("signed"), poe.Signature)
	// Neither block seeds any account or runs any tx, so every commit
	// produces the same empty-trie root and the chain holds trivially.
	require.Equal(t, poe.PrevStateRoot, poe.NewStateRoot)
}

func TestProveScrollRejectsEmptyBundle(t *testing.T) {
	alive := primitives.NewAlive(context.Background())
	_, err := proveScroll(alive, TaskBundle{ChainID: 1}, scrollTestFork(), false, stubSigner{})
	require.Error(t, err)
}

func TestProveScrollWithoutContextRebuildsBatchHash(t *testing.T) {
	fork := scrollTestFork()
	blocks := []BlockBundle{
		{Number: 1, Timestamp: 101, BaseFee: bigOrZero(nil), GasLimit: 1_000_000, EndsChunk: true},
	}

	dablocks := make([]dabatch.DABlock, len(blocks))
	for i, bb := range blocks {
		dablocks[i] = dablockFrom(bb)
	}
	bb := dabatch.NewBatchBuilder(fork, nil, primitives.Hash{}, 0, 0)
	for _, d := range dablocks {
		require.NoError(t, bb.AddBlock(d.BlockNumber, d))
	}
	bb.CloseChunk()
	built, err := bb.Build(nil, 0, primitives.Hash{}, primitives.Hash{}, primitives.Hash{}, 0)
	require.NoError(t, err)

	bundle := TaskBundle{
		ChainID:           1,
		ExpectedBatchHash: built.Hash(),
		Blocks:            blocks,
	}

	alive := primitives.NewAlive(context.Background())
	poe, err := proveScroll(alive, bundle, fork, true, stubSigner{})
	require.NoError(t, err)
	require.Equal(t, built.Hash(), poe.BatchHash)
}

func TestProveScrollWithoutContextDetectsBatchHashMismatch(t *testing.T) {
	fork := scrollTestFork()
	blocks := []BlockBundle{
		{Number: 1, Timestamp: 101, BaseFee: bigOrZero(nil), GasLimit: 1_000_000, EndsChunk: true},
	}
	bundle := TaskBundle{
		ChainID:           1,
		ExpectedBatchHash: primitives.BytesToHash([]byte("wrong")),
		Blocks:            blocks,
	}

	alive := primitives.NewAlive(context.Background())
	_, err := proveScroll(alive, bundle, fork, true, stubSigner{})
	require.Error(t, err)
}

func TestProveScrollUnknownChainRejected(t *testing.T) {
	engine := NewEngine(nil, stubSigner{}, nil)
	_, err := engine.scrollFork(999999)
	require.Error(t, err)
}
