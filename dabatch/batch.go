package dabatch

import (
	"bytes"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/automata-network/sgx-prover/primitives"
)

// BatchV0 has no blob: the skipped-L1-queue bitmap is committed inline.
type BatchV0 struct {
	BatchIndex        uint64
	L1MsgPopped       uint64
	TotalL1MsgPopped  uint64
	DataHash          primitives.Hash
	ParentBatchHash   primitives.Hash
	SkippedL1Bitmap   []byte
}

func (b *BatchV0) Version() uint8 { return 0 }

func (b *BatchV0) Encode() []byte {
	var buf bytes.Buffer
	buf.WriteByte(0)
	buf.Write(primitives.U64BE(b.BatchIndex))
	buf.Write(primitives.U64BE(b.L1MsgPopped))
	buf.Write(primitives.U64BE(b.TotalL1MsgPopped))
	buf.Write(b.DataHash[:])
	buf.Write(b.ParentBatchHash[:])
	buf.Write(b.SkippedL1Bitmap)
	return buf.Bytes()
}

func (b *BatchV0) Hash() primitives.Hash {
	return primitives.BytesToHash(crypto.Keccak256(b.Encode()))
}

// BatchV1 adds a blob-versioned hash over an uncompressed payload.
type BatchV1 struct {
	BatchIndex       uint64
	L1MsgPopped      uint64
	TotalL1MsgPopped uint64
	DataHash         primitives.Hash
	BlobVersionedHash primitives.Hash
	ParentBatchHash  primitives.Hash
	SkippedL1Bitmap  []byte
}

func (b *BatchV1) Version() uint8 { return 1 }

func (b *BatchV1) Encode() []byte {
	var buf bytes.Buffer
	buf.WriteByte(1)
	buf.Write(primitives.U64BE(b.BatchIndex))
	buf.Write(primitives.U64BE(b.L1MsgPopped))
	buf.Write(primitives.U64BE(b.TotalL1MsgPopped))
	buf.Write(b.DataHash[:])
	buf.Write(b.BlobVersionedHash[:])
	buf.Write(b.ParentBatchHash[:])
	buf.Write(b.SkippedL1Bitmap)
	return buf.Bytes()
}

func (b *BatchV1) Hash() primitives.Hash {
	return primitives.BytesToHash(crypto.Keccak256(b.Encode()))
}

// BatchV2 is wire-identical to V1; the difference is purely in how the
// blob payload feeding BlobVersionedHash was produced (zstd-compressed).
type BatchV2 struct {
	BatchV1
}

func (b *BatchV2) Version() uint8 { return 2 }

func (b *BatchV2) Encode() []byte {
	enc := b.BatchV1.Encode()
	enc[0] = 2
	return enc
}

func (b *BatchV2) Hash() primitives.Hash {
	return primitives.BytesToHash(crypto.Keccak256(b.Encode()))
}

// BatchV3 drops the skipped bitmap in favor of a fixed KZG evaluation
// proof (z, y) over the blob, plus the last block's timestamp.
type BatchV3 struct {
	BatchIndex          uint64
	L1MsgPopped         uint64
	TotalL1MsgPopped    uint64
	DataHash            primitives.Hash
	BlobVersionedHash   primitives.Hash
	ParentBatchHash     primitives.Hash
	LastBlockTimestamp  uint64
	Z, Y                primitives.Hash
}

func (b *BatchV3) Version() uint8 { return 3 }

func (b *BatchV3) Encode() []byte {
	var buf bytes.Buffer
	buf.WriteByte(3)
	buf.Write(primitives.U64BE(b.BatchIndex))
	buf.Write(primitives.U64BE(b.L1MsgPopped))
	buf.Write(primitives.U64BE(b.TotalL1MsgPopped))
	buf.Write(b.DataHash[:])
	buf.Write(b.BlobVersionedHash[:])
	buf.Write(b.ParentBatchHash[:])
	buf.Write(primitives.U64BE(b.LastBlockTimestamp))
	buf.Write(b.Z[:])
	buf.Write(b.Y[:])
	return buf.Bytes()
}

func (b *BatchV3) Hash() primitives.Hash {
	return primitives.BytesToHash(crypto.Keccak256(b.Encode()))
}

// BatchV4 is wire-identical to V3; only the per-chunk hashing rule feeding
// DataHash differs (see chunkHash).
type BatchV4 struct {
	BatchV3
}

func (b *BatchV4) Version() uint8 { return 4 }

func (b *BatchV4) Encode() []byte {
	enc := b.BatchV3.Encode()
	enc[0] = 4
	return enc
}

func (b *BatchV4) Hash() primitives.Hash {
	return primitives.BytesToHash(crypto.Keccak256(b.Encode()))
}

// DABatch is a tagged union over the five wire versions: exactly one of
// the variant pointers is non-nil, selected by Version.
type DABatch struct {
	Version uint8
	V0      *BatchV0
	V1      *BatchV1
	V2      *BatchV2
	V3      *BatchV3
	V4      *BatchV4
}

// codec returns the populated variant as a Codec.
func (d *DABatch) codec() Codec {
	switch d.Version {
	case 0:
		return d.V0
	case 1:
		return d.V1
	case 2:
		return d.V2
	case 3:
		return d.V3
	case 4:
		return d.V4
	default:
		return nil
	}
}

// Encode serializes the populated variant.
func (d *DABatch) Encode() []byte { return d.codec().Encode() }

// Hash returns keccak(Encode()), the batch hash committed on L1.
func (d *DABatch) Hash() primitives.Hash { return d.codec().Hash() }

// FromBytes parses raw into a DABatch, dispatching on the version byte.
func FromBytes(raw []byte) (*DABatch, error) {
	if len(raw) < 1 {
		return nil, ErrInvalidDABatchData
	}
	version := raw[0]
	body := raw[1:]
	switch version {
	case 0:
		if len(body) < 8+8+8+32+32 {
			return nil, ErrInvalidDABatchData
		}
		v := &BatchV0{
			BatchIndex:       beU64(body[0:8]),
			L1MsgPopped:      beU64(body[8:16]),
			TotalL1MsgPopped: beU64(body[16:24]),
			DataHash:         mustHash32(body[24:56]),
			ParentBatchHash:  mustHash32(body[56:88]),
			SkippedL1Bitmap:  append([]byte(nil), body[88:]...),
		}
		return &DABatch{Version: 0, V0: v}, nil
	case 1, 2:
		if len(body) < 8+8+8+32+32+32 {
			return nil, ErrInvalidDABatchData
		}
		v1 := BatchV1{
			BatchIndex:        beU64(body[0:8]),
			L1MsgPopped:       beU64(body[8:16]),
			TotalL1MsgPopped:  beU64(body[16:24]),
			DataHash:          mustHash32(body[24:56]),
			BlobVersionedHash: mustHash32(body[56:88]),
			ParentBatchHash:   mustHash32(body[88:120]),
			SkippedL1Bitmap:   append([]byte(nil), body[120:]...),
		}
		if version == 1 {
			return &DABatch{Version: 1, V1: &v1}, nil
		}
		return &DABatch{Version: 2, V2: &BatchV2{BatchV1: v1}}, nil
	case 3, 4:
		if len(body) != 8+8+8+32+32+32+8+32+32 {
			return nil, ErrInvalidDABatchData
		}
		v3 := BatchV3{
			BatchIndex:         beU64(body[0:8]),
			L1MsgPopped:        beU64(body[8:16]),
			TotalL1MsgPopped:   beU64(body[16:24]),
			DataHash:           mustHash32(body[24:56]),
			BlobVersionedHash:  mustHash32(body[56:88]),
			ParentBatchHash:    mustHash32(body[88:120]),
			LastBlockTimestamp: beU64(body[120:128]),
			Z:                  mustHash32(body[128:160]),
			Y:                  mustHash32(body[160:192]),
		}
		if version == 3 {
			return &DABatch{Version: 3, V3: &v3}, nil
		}
		return &DABatch{Version: 4, V4: &BatchV4{BatchV3: v3}}, nil
	default:
		return nil, ErrUnknownBatchVersion
	}
}
