package dabatch

import (
	"github.com/automata-network/sgx-prover/primitives"
)

// ForkConfig selects the batch version a given block belongs to. It is
// satisfied by hardfork.ScrollConfig; declared here (rather than imported) so
// dabatch has no dependency on the hardfork package.
type ForkConfig interface {
	BatchVersionFor(blockNumber uint64) uint8
}

// BatchBuilder accumulates blocks into chunks and produces the
// version-selected DABatch, mirroring the construct-then-build shape of
// the original Rust batch builder.
type BatchBuilder struct {
	fork             ForkConfig
	parentHeader     []byte
	parentBatchHash  primitives.Hash
	batchIndex       uint64
	totalL1MsgPopped uint64

	version *uint8
	chunks  []DAChunk
	pending DAChunk
}

// NewBatchBuilder starts a builder for the batch following parentBatchHash
// at batchIndex, with totalL1MsgPopped carried over from the prior batch.
func NewBatchBuilder(fork ForkConfig, parentHeader []byte, parentBatchHash primitives.Hash, batchIndex, totalL1MsgPopped uint64) *BatchBuilder {
	return &BatchBuilder{
		fork:             fork,
		parentHeader:     parentHeader,
		parentBatchHash:  parentBatchHash,
		batchIndex:       batchIndex,
		totalL1MsgPopped: totalL1MsgPopped,
	}
}

// AddBlock appends a block to the current chunk. The batch's version is
// pinned by the first block added; AddBlock returns ErrMismatchVersionBlock
// if a later block resolves to a different version.
func (bb *BatchBuilder) AddBlock(blockNumber uint64, block DABlock) error {
	v := bb.fork.BatchVersionFor(blockNumber)
	if bb.version == nil {
		bb.version = &v
	} else if *bb.version != v {
		return ErrMismatchVersionBlock
	}
	bb.pending.Blocks = append(bb.pending.Blocks, block)
	return nil
}

// CloseChunk ends the current chunk (if non-empty) and starts a new one.
func (bb *BatchBuilder) CloseChunk() {
	if len(bb.pending.Blocks) > 0 {
		bb.chunks = append(bb.chunks, bb.pending)
		bb.pending = DAChunk{}
	}
}

// Build finalizes the builder into a DABatch of the pinned version.
func (bb *BatchBuilder) Build(skippedL1 map[uint64]bool, l1MsgPopped uint64, blobVersionedHash, z, y primitives.Hash, lastBlockTimestamp uint64) (*DABatch, error) {
	bb.CloseChunk()
	if bb.version == nil {
		return nil, ErrMissingChunks
	}
	version := *bb.version
	if err := checkChunksSize(version, bytesOfChunks(bb.chunks)); err != nil {
		return nil, err
	}

	dh := dataHash(version, bb.chunks)
	totalAfter := bb.totalL1MsgPopped + l1MsgPopped

	switch version {
	case 0:
		bitmap := constructSkippedBitmap(bb.totalL1MsgPopped, l1MsgPopped, skippedL1)
		return &DABatch{Version: 0, V0: &BatchV0{
			BatchIndex: bb.batchIndex, L1MsgPopped: l1MsgPopped, TotalL1MsgPopped: totalAfter,
			DataHash: dh, ParentBatchHash: bb.parentBatchHash, SkippedL1Bitmap: bitmap,
		}}, nil
	case 1:
		bitmap := constructSkippedBitmap(bb.totalL1MsgPopped, l1MsgPopped, skippedL1)
		return &DABatch{Version: 1, V1: &BatchV1{
			BatchIndex: bb.batchIndex, L1MsgPopped: l1MsgPopped, TotalL1MsgPopped: totalAfter,
			DataHash: dh, BlobVersionedHash: blobVersionedHash, ParentBatchHash: bb.parentBatchHash,
			SkippedL1Bitmap: bitmap,
		}}, nil
	case 2:
		bitmap := constructSkippedBitmap(bb.totalL1MsgPopped, l1MsgPopped, skippedL1)
		return &DABatch{Version: 2, V2: &BatchV2{BatchV1: BatchV1{
			BatchIndex: bb.batchIndex, L1MsgPopped: l1MsgPopped, TotalL1MsgPopped: totalAfter,
			DataHash: dh, BlobVersionedHash: blobVersionedHash, ParentBatchHash: bb.parentBatchHash,
			SkippedL1Bitmap: bitmap,
		}}}, nil
	case 3:
		return &DABatch{Version: 3, V3: &BatchV3{
			BatchIndex: bb.batchIndex, L1MsgPopped: l1MsgPopped, TotalL1MsgPopped: totalAfter,
			DataHash: dh, BlobVersionedHash: blobVersionedHash, ParentBatchHash: bb.parentBatchHash,
			LastBlockTimestamp: lastBlockTimestamp, Z: z, Y: y,
		}}, nil
	case 4:
		return &DABatch{Version: 4, V4: &BatchV4{BatchV3: BatchV3{
			BatchIndex: bb.batchIndex, L1MsgPopped: l1MsgPopped, TotalL1MsgPopped: totalAfter,
			DataHash: dh, BlobVersionedHash: blobVersionedHash, ParentBatchHash: bb.parentBatchHash,
			LastBlockTimestamp: lastBlockTimestamp, Z: z, Y: y,
		}}}, nil
	default:
		return nil, ErrUnknownBatchVersion
	}
}

func bytesOfChunks(chunks []DAChunk) [][]byte {
	out := make([][]byte, len(chunks))
	for i, c := range chunks {
		out[i] = c.Bytes()
	}
	return out
}

// BatchTask is the decoded form of an on-chain commitBatch* calldata call.
type BatchTask struct {
	Version      uint8
	ParentHeader []byte
	Chunks       [][]byte
}

// ParseBatchTask decodes commitBatch calldata laid out as the Solidity ABI
// tuple (uint8 version, bytes parent_header, bytes[] chunks, ...): a
// static version byte (zero-padded on the left to a 32-byte word, so it is
// the word's last byte) followed by two
// dynamic-offset-prefixed fields, decoded by hand against the fixed ABI
// head layout rather than via a general ABI decoder.
func ParseBatchTask(calldata []byte) (*BatchTask, error) {
	const word = 32
	if len(calldata) < word*3 {
		return nil, ErrInvalidDABatchData
	}
	version := calldata[word-1]

	parentHeaderOff := beU64(calldata[word*2-8 : word*2])
	chunksOff := beU64(calldata[word*3-8 : word*3])

	parentHeader, err := readDynamicBytes(calldata, int(parentHeaderOff))
	if err != nil {
		return nil, err
	}
	chunks, err := readDynamicBytesArray(calldata, int(chunksOff))
	if err != nil {
		return nil, err
	}
	return &BatchTask{Version: version, ParentHeader: parentHeader, Chunks: chunks}, nil
}

func readDynamicBytes(data []byte, offset int) ([]byte, error) {
	const word = 32
	if offset < 0 || offset+word > len(data) {
		return nil, ErrInvalidDABatchData
	}
	length := int(beU64(data[offset+word-8 : offset+word]))
	start := offset + word
	if start+length > len(data) {
		return nil, ErrInvalidDABatchData
	}
	return data[start : start+length], nil
}

func readDynamicBytesArray(data []byte, offset int) ([][]byte, error) {
	const word = 32
	if offset < 0 || offset+word > len(data) {
		return nil, ErrInvalidDABatchData
	}
	count := int(beU64(data[offset+word-8 : offset+word]))
	out := make([][]byte, count)
	headBase := offset + word
	for i := 0; i < count; i++ {
		elemOffPos := headBase + i*word
		if elemOffPos+word > len(data) {
			return nil, ErrInvalidDABatchData
		}
		elemOff := int(beU64(data[elemOffPos+word-8 : elemOffPos+word]))
		b, err := readDynamicBytes(data, headBase+elemOff)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}
