// Package dabatch implements the version-tagged DA-batch wire codec
// (V0-V4) that Scroll commits to L1: a fixed header plus a skipped-L1-queue
// bitmap (pre-V3) or a KZG blob-evaluation proof (V3+).
package dabatch

import (
	"errors"

	"github.com/automata-network/sgx-prover/primitives"
)

var (
	ErrUnknownBatchVersion  = errors.New("dabatch: unknown batch version")
	ErrInvalidDABatchData   = errors.New("dabatch: invalid batch data")
	ErrInvalidBlockNumbers  = errors.New("dabatch: invalid block numbers")
	ErrInvalidBlockBytes    = errors.New("dabatch: invalid block bytes")
	ErrInvalidNumBlock      = errors.New("dabatch: invalid num block")
	ErrMissingChunks        = errors.New("dabatch: missing chunks")
	ErrTooManyChunks        = errors.New("dabatch: too many chunks")
	ErrTooFewBlocksInChunk  = errors.New("dabatch: too few blocks in last chunk")
	ErrMismatchVersionBlock = errors.New("dabatch: mismatched batch version and block")
	ErrOversizedPayload     = errors.New("dabatch: oversized batch payload")
)

// DABlockHeaderSize is the fixed per-block header size shared by every
// batch version.
const DABlockHeaderSize = 60

// maxChunksFor returns the chunk-count cap for version: 15 for V0/V1, 45
// from V2 onward.
func maxChunksFor(version uint8) int {
	if version <= 1 {
		return 15
	}
	return 45
}

// checkChunksSize validates a chunk list against version's cap and the
// non-empty requirement.
func checkChunksSize(version uint8, chunks [][]byte) error {
	if len(chunks) == 0 {
		return ErrMissingChunks
	}
	if len(chunks) > maxChunksFor(version) {
		return ErrTooManyChunks
	}
	return nil
}

// constructSkippedBitmap packs one bit per L1-queue index between
// totalBefore and totalBefore+popped, LSB-first within each byte, and pads
// the result to a multiple of 32 bytes. skipped holds the queue indices
// (absolute, not offsets) that were skipped rather than included.
func constructSkippedBitmap(totalBefore, popped uint64, skipped map[uint64]bool) []byte {
	nbits := int(popped)
	nbytes := (nbits + 7) / 8
	padded := ((nbytes + 31) / 32) * 32
	if padded == 0 {
		padded = 32
	}
	out := make([]byte, padded)
	for i := 0; i < nbits; i++ {
		idx := totalBefore + uint64(i)
		if skipped[idx] {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

// decodeBlockNumbers reads chunkBytes[0] as the block count N, then the
// first 8 bytes of each of the following N 60-byte block slices as the
// block number.
func decodeBlockNumbers(chunkBytes []byte) ([]uint64, error) {
	if len(chunkBytes) < 1 {
		return nil, ErrInvalidBlockNumbers
	}
	n := int(chunkBytes[0])
	want := 1 + n*DABlockHeaderSize
	if len(chunkBytes) < want {
		return nil, ErrInvalidBlockNumbers
	}
	nums := make([]uint64, n)
	for i := 0; i < n; i++ {
		start := 1 + i*DABlockHeaderSize
		blockBytes := chunkBytes[start : start+DABlockHeaderSize]
		nums[i] = beU64(blockBytes[0:8])
	}
	return nums, nil
}

func beU64(b []byte) uint64 {
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return v
}

func mustHash32(b []byte) primitives.Hash {
	return primitives.ToHash(b)
}
