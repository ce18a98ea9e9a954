package dabatch

import (
	"bytes"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/automata-network/sgx-prover/primitives"
)

// Codec is implemented by every per-version batch payload; DABatch wraps
// exactly one of these behind its Version tag.
type Codec interface {
	Encode() []byte
	Hash() primitives.Hash
	Version() uint8
}

// chunkHash implements the four distinct per-chunk hashing rules selected
// by version. V0 hashes all block headers in a chunk followed by L2 then
// L1 tx hashes; V1/V2 interleave a header with that block's tx hashes per
// block; V3 hashes all headers then L1 then L2 tx hashes (swapped relative
// to V0); V4 hashes the chunk's raw serialized bytes directly, collapsing
// header and body hashing into one pass.
func chunkHash(version uint8, chunk DAChunk) primitives.Hash {
	var buf bytes.Buffer
	switch {
	case version == 4:
		for _, b := range chunk.Blocks {
			buf.Write(b.RawBytes())
		}
	case version == 3:
		for _, b := range chunk.Blocks {
			buf.Write(b.HeaderBytes())
		}
		for _, b := range chunk.Blocks {
			for _, h := range b.L1TxHashes() {
				buf.Write(h[:])
			}
		}
		for _, b := range chunk.Blocks {
			for _, h := range b.L2TxHashes() {
				buf.Write(h[:])
			}
		}
	case version >= 1:
		for _, b := range chunk.Blocks {
			buf.Write(b.HeaderBytes())
			for _, tx := range b.Txs {
				h := tx.Hash()
				buf.Write(h[:])
			}
		}
	default: // V0
		for _, b := range chunk.Blocks {
			buf.Write(b.HeaderBytes())
		}
		for _, b := range chunk.Blocks {
			for _, h := range b.L2TxHashes() {
				buf.Write(h[:])
			}
			for _, h := range b.L1TxHashes() {
				buf.Write(h[:])
			}
		}
	}
	return primitives.BytesToHash(crypto.Keccak256(buf.Bytes()))
}

// dataHash keccaks the concatenation of every chunk's per-chunk hash, in
// chunk order.
func dataHash(version uint8, chunks []DAChunk) primitives.Hash {
	var buf bytes.Buffer
	for _, c := range chunks {
		h := chunkHash(version, c)
		buf.Write(h[:])
	}
	return primitives.BytesToHash(crypto.Keccak256(buf.Bytes()))
}
