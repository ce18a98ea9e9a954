package dabatch

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/automata-network/sgx-prover/primitives"
)

func TestV0RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(0)
	buf.Write(primitives.U64BE(1))
	buf.Write(primitives.U64BE(2))
	buf.Write(primitives.U64BE(3))
	var dataHash, parentHash primitives.Hash
	for i := range dataHash {
		dataHash[i] = byte(0xAA)
		parentHash[i] = byte(0xBB)
	}
	buf.Write(dataHash[:])
	buf.Write(parentHash[:])
	raw := buf.Bytes()
	require.Len(t, raw, 89)

	batch, err := FromBytes(raw)
	require.NoError(t, err)
	require.Equal(t, uint8(0), batch.Version)
	require.Equal(t, uint64(1), batch.V0.BatchIndex)
	require.Equal(t, uint64(2), batch.V0.L1MsgPopped)
	require.Equal(t, uint64(3), batch.V0.TotalL1MsgPopped)
	require.Equal(t, dataHash, batch.V0.DataHash)
	require.Equal(t, parentHash, batch.V0.ParentBatchHash)
	require.Empty(t, batch.V0.SkippedL1Bitmap)

	require.Equal(t, raw, batch.Encode())
}

func TestV3RoundTrip(t *testing.T) {
	v3 := &BatchV3{
		BatchIndex: 7, L1MsgPopped: 1, TotalL1MsgPopped: 1,
		DataHash: primitives.Hash{1}, BlobVersionedHash: primitives.Hash{2},
		ParentBatchHash: primitives.Hash{3}, LastBlockTimestamp: 99,
		Z: primitives.Hash{4}, Y: primitives.Hash{5},
	}
	raw := v3.Encode()
	require.Len(t, raw, 193)

	batch, err := FromBytes(raw)
	require.NoError(t, err)
	require.Equal(t, uint8(3), batch.Version)
	require.Equal(t, v3, batch.V3)
	require.Equal(t, raw, batch.Encode())
}

func TestFromBytesRejectsUnknownVersion(t *testing.T) {
	_, err := FromBytes([]byte{9, 1, 2, 3})
	require.ErrorIs(t, err, ErrUnknownBatchVersion)
}

func TestDecodeBlockNumbers(t *testing.T) {
	block := make([]byte, DABlockHeaderSize)
	block[7] = 42 // block number 42, big-endian in the first 8 bytes
	chunkBytes := append([]byte{1}, block...)

	nums, err := decodeBlockNumbers(chunkBytes)
	require.NoError(t, err)
	require.Equal(t, []uint64{42}, nums)
}

func TestConstructSkippedBitmapMarksOnlySkipped(t *testing.T) {
	skipped := map[uint64]bool{5: true, 7: true}
	bitmap := constructSkippedBitmap(0, 8, skipped)
	require.Len(t, bitmap, 32)
	for i := 0; i < 8; i++ {
		bit := bitmap[i/8]&(1<<uint(i%8)) != 0
		require.Equal(t, skipped[uint64(i)], bit, "bit %d", i)
	}
}

type fixedFork struct{ version uint8 }

func (f fixedFork) BatchVersionFor(uint64) uint8 { return f.version }

func TestBatchBuilderBuildsV0(t *testing.T) {
	bb := NewBatchBuilder(fixedFork{version: 0}, nil, primitives.Hash{9}, 1, 0)
	require.NoError(t, bb.AddBlock(100, DABlock{BlockNumber: 100}))
	batch, err := bb.Build(nil, 0, primitives.Hash{}, primitives.Hash{}, primitives.Hash{}, 0)
	require.NoError(t, err)
	require.Equal(t, uint8(0), batch.Version)
	require.NotNil(t, batch.V0)
}

func TestBatchBuilderRejectsMismatchedVersion(t *testing.T) {
	bb := &BatchBuilder{fork: &switchingFork{}, parentBatchHash: primitives.Hash{}}
	require.NoError(t, bb.AddBlock(1, DABlock{BlockNumber: 1}))
	require.Error(t, bb.AddBlock(2, DABlock{BlockNumber: 2}))
}

type switchingFork struct{ n int }

func (f *switchingFork) BatchVersionFor(uint64) uint8 {
	f.n++
	return uint8(f.n - 1)
}
