package dabatch

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleChunk() DAChunk {
	return DAChunk{Blocks: []DABlock{
		{
			BlockNumber: 1, Timestamp: 100, BaseFee: big.NewInt(7), GasLimit: 1000,
			Txs: []DABlockTx{
				{Type: 0, Nonce: 1, GasLimit: 21000, Data: []byte("l2-tx")},
				{Type: 0, Nonce: 2, GasLimit: 21000, Data: []byte("l1-tx"), IsL1Message: true},
			},
		},
	}}
}

// TestChunkHashV4OnlyHashesRawBytes pins V4 to spec's "hashes the chunk's
// raw serialized bytes" rule: moving a tx between the L1 and L2 groups
// must not change the V4 digest, since V4 never looks at the groups
// separately from RawBytes.
func TestChunkHashV4OnlyHashesRawBytes(t *testing.T) {
	chunk := sampleChunk()
	want := chunkHash(4, chunk)

	// Mutating a tx's IsL1Message flag changes L1TxHashes()/L2TxHashes()
	// grouping but not RawBytes() (which only depends on Data), so it must
	// not move the V4 digest.
	mutated := sampleChunk()
	mutated.Blocks[0].Txs[1].IsL1Message = false
	require.Equal(t, want, chunkHash(4, mutated))
}

// TestChunkHashV3AndV4Diverge guards the documented V3/V4 split: V3 hashes
// headers then L1 then L2 tx hashes; V4 hashes raw bytes only. The two must
// disagree on the same chunk.
func TestChunkHashV3AndV4Diverge(t *testing.T) {
	chunk := sampleChunk()
	require.NotEqual(t, chunkHash(3, chunk), chunkHash(4, chunk))
}
