package verifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/automata-network/sgx-prover/dabatch"
	"github.com/automata-network/sgx-prover/primitives"
	"github.com/automata-network/sgx-prover/proverrpc"
)

type fixedFork struct{ version uint8 }

func (f fixedFork) BatchVersionFor(uint64) uint8 { return f.version }

type stubSigner struct{}

func (stubSigner) Sign(poe proverrpc.PoE) (proverrpc.PoE, error) {
	poe.Signature = []byte("signed")
	return poe, nil
}

func TestVerifyMergesResultsInBlockOrder(t *testing.T) {
	root0 := primitives.BytesToHash([]byte("root0"))
	root1 := primitives.BytesToHash([]byte("root1"))
	root2 := primitives.BytesToHash([]byte("root2"))

	blocks := []dabatch.DABlock{
		{BlockNumber: 1, Timestamp: 101, GasLimit: 1},
		{BlockNumber: 2, Timestamp: 102, GasLimit: 1},
	}
	params := BatchParams{
		Fork:    fixedFork{version: 0},
		Chunks:  []ChunkSpec{{Blocks: blocks}},
	}
	rebuilt, err := rebuildBatch(params)
	require.NoError(t, err)
	params.ExpectedBatchHash = rebuilt.Hash()

	jobs := []BlockJob{
		{
			Number: 2,
			Block:  blocks[1],
			Run: func(*primitives.Alive) (BlockResult, error) {
				return BlockResult{PrevStateRoot: root1, NewStateRoot: root2}, nil
			},
		},
		{
			Number: 1,
			Block:  blocks[0],
			Run: func(*primitives.Alive) (BlockResult, error) {
				return BlockResult{PrevStateRoot: root0, NewStateRoot: root1}, nil
			},
		},
	}

	alive := primitives.NewAlive(context.Background())
	poe, err := Verify(alive, params, jobs, stubSigner{})
	require.NoError(t, err)
	require.Equal(t, root0, poe.PrevStateRoot)
	require.Equal(t, root2, poe.NewStateRoot)
	require.Equal(t, rebuilt.Hash(), poe.BatchHash)
	require.Equal(t, []byte("signed"), poe.Signature)
}

func TestVerifyRejectsBrokenRootChain(t *testing.T) {
	blocks := []dabatch.DABlock{
		{BlockNumber: 1, Timestamp: 101, GasLimit: 1},
		{BlockNumber: 2, Timestamp: 102, GasLimit: 1},
	}
	params := BatchParams{Fork: fixedFork{version: 0}, Chunks: []ChunkSpec{{Blocks: blocks}}}
	rebuilt, err := rebuildBatch(params)
	require.NoError(t, err)
	params.ExpectedBatchHash = rebuilt.Hash()

	jobs := []BlockJob{
		{Number: 1, Block: blocks[0], Run: func(*primitives.Alive) (BlockResult, error) {
			return BlockResult{NewStateRoot: primitives.BytesToHash([]byte("a"))}, nil
		}},
		{Number: 2, Block: blocks[1], Run: func(*primitives.Alive) (BlockResult, error) {
			return BlockResult{PrevStateRoot: primitives.BytesToHash([]byte("not-a"))}, nil
		}},
	}

	alive := primitives.NewAlive(context.Background())
	_, err = Verify(alive, params, jobs, stubSigner{})
	var mismatch *StateRootMismatch
	require.ErrorAs(t, err, &mismatch)
}

func TestVerifyRejectsBatchHashMismatch(t *testing.T) {
	blocks := []dabatch.DABlock{{BlockNumber: 1, Timestamp: 101, GasLimit: 1}}
	params := BatchParams{
		Fork:              fixedFork{version: 0},
		Chunks:            []ChunkSpec{{Blocks: blocks}},
		ExpectedBatchHash: primitives.BytesToHash([]byte("wrong")),
	}
	jobs := []BlockJob{{Number: 1, Block: blocks[0], Run: func(*primitives.Alive) (BlockResult, error) {
		return BlockResult{}, nil
	}}}

	alive := primitives.NewAlive(context.Background())
	_, err := Verify(alive, params, jobs, stubSigner{})
	var mismatch *BatchHashMismatch
	require.ErrorAs(t, err, &mismatch)
}

func TestVerifyPropagatesBlockExecutionError(t *testing.T) {
	blocks := []dabatch.DABlock{{BlockNumber: 1, Timestamp: 101, GasLimit: 1}}
	params := BatchParams{Fork: fixedFork{version: 0}, Chunks: []ChunkSpec{{Blocks: blocks}}}
	rebuilt, err := rebuildBatch(params)
	require.NoError(t, err)
	params.ExpectedBatchHash = rebuilt.Hash()

	wantErr := errors.New("boom")
	jobs := []BlockJob{{Number: 1, Block: blocks[0], Run: func(*primitives.Alive) (BlockResult, error) {
		return BlockResult{}, wantErr
	}}}

	alive := primitives.NewAlive(context.Background())
	_, err = Verify(alive, params, jobs, stubSigner{})
	require.ErrorIs(t, err, wantErr)
}
