package dabatch

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/automata-network/sgx-prover/primitives"
)

// DABlockTx is one L2 transaction as committed into a DA chunk. IsL1Message
// txs carry no signature of their own (the origin marker replaces v/r/s).
type DABlockTx struct {
	Type        uint8
	Nonce       uint64
	GasLimit    uint64
	GasPrice    *big.Int
	Value       *big.Int
	Data        []byte
	To          primitives.Address
	V, R, S     *big.Int
	IsL1Message bool
}

// Hash returns the keccak of the transaction's RLP-ish preimage used by the
// per-chunk hashing rules.
func (tx DABlockTx) Hash() primitives.Hash {
	var buf bytes.Buffer
	buf.WriteByte(tx.Type)
	buf.Write(primitives.U64BE(tx.Nonce))
	buf.Write(primitives.U64BE(tx.GasLimit))
	if tx.GasPrice != nil {
		buf.Write(tx.GasPrice.Bytes())
	}
	if tx.Value != nil {
		buf.Write(tx.Value.Bytes())
	}
	buf.Write(tx.Data)
	buf.Write(tx.To[:])
	return primitives.BytesToHash(crypto.Keccak256(buf.Bytes()))
}

// DABlock is one L2 block's committed framing: a fixed 60-byte header
// followed by its transactions concatenated in order.
type DABlock struct {
	BlockNumber   uint64
	Timestamp     uint64
	BaseFee       *big.Int
	GasLimit      uint64
	NumL1Messages uint16
	Txs           []DABlockTx
}

// HeaderBytes returns the fixed 60-byte per-block header.
func (b DABlock) HeaderBytes() []byte {
	out := make([]byte, DABlockHeaderSize)
	copy(out[0:8], primitives.U64BE(b.BlockNumber))
	copy(out[8:16], primitives.U64BE(b.Timestamp))
	baseFee := b.BaseFee
	if baseFee == nil {
		baseFee = new(big.Int)
	}
	baseFee.FillBytes(out[16:48])
	copy(out[48:56], primitives.U64BE(b.GasLimit))
	numTxs := uint16(len(b.Txs))
	out[56] = byte(numTxs >> 8)
	out[57] = byte(numTxs)
	out[58] = byte(b.NumL1Messages >> 8)
	out[59] = byte(b.NumL1Messages)
	return out
}

// L2TxHashes and L1TxHashes split Txs by the IsL1Message marker, preserving
// relative order, for the hashing rules that order the two groups
// separately (V0/V3).
func (b DABlock) L2TxHashes() []primitives.Hash {
	var out []primitives.Hash
	for _, tx := range b.Txs {
		if !tx.IsL1Message {
			out = append(out, tx.Hash())
		}
	}
	return out
}

func (b DABlock) L1TxHashes() []primitives.Hash {
	var out []primitives.Hash
	for _, tx := range b.Txs {
		if tx.IsL1Message {
			out = append(out, tx.Hash())
		}
	}
	return out
}

// RawBytes serializes the block as header || each tx's Data, concatenated
// in order, the shape V4 hashes directly.
func (b DABlock) RawBytes() []byte {
	var buf bytes.Buffer
	buf.Write(b.HeaderBytes())
	for _, tx := range b.Txs {
		buf.Write(tx.Data)
	}
	return buf.Bytes()
}

// DAChunk is an ordered, non-empty run of blocks sharing one committed
// byte-blob in the batch payload.
type DAChunk struct {
	Blocks []DABlock
}

// Bytes serializes the chunk as a leading block-count byte followed by
// each block's fixed header (V0/V1/V2 layout: headers first, then bodies
// are accounted for separately by the per-version hashing rule).
func (c DAChunk) Bytes() []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(len(c.Blocks)))
	for _, b := range c.Blocks {
		buf.Write(b.HeaderBytes())
	}
	return buf.Bytes()
}
