// Package witness models the Proof-of-Block (PoB) data a verifier needs to
// replay one block without talking to a full archive node: a header, the
// touched trie nodes, and the contract code referenced during execution.
package witness

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sort"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/automata-network/sgx-prover/primitives"
)

// ErrHashMismatch is returned when a PoB's recomputed canonical hash does
// not match its advertised Hash field — a corrupt or tampered witness set.
var ErrHashMismatch = errors.New("witness: pob hash mismatch")

// BlockHeaderLite carries only the header fields execution actually reads;
// the enclave never needs the full RLP header.
type BlockHeaderLite struct {
	Number     uint64
	Timestamp  uint64
	BaseFee    [32]byte
	GasLimit   uint64
	Coinbase   primitives.Address
	Difficulty [32]byte
	PrevRandao primitives.Hash
}

// Data is the witness payload proper: everything execution needs to seed
// the pre-state trie and resolve code lookups, plus enough L1-queue
// bookkeeping to validate skipped-message bitmaps downstream.
type Data struct {
	ChainID           uint64
	Coinbase          primitives.Address
	PrevStateRoot     primitives.Hash
	BlockHashes       []primitives.Hash
	MptNodes          [][]byte // sorted ascending before hashing
	Codes             [][]byte // sorted ascending before hashing
	StartL1QueueIndex uint64
	WithdrawalRoot    primitives.Hash
}

// PoB is one block's self-contained execution witness.
type PoB struct {
	Block BlockHeaderLite
	Data  Data
	Hash  primitives.Hash
}

// sortBytesSlices returns a new slice holding the same elements sorted
// lexicographically, leaving the input untouched.
func sortBytesSlices(in [][]byte) [][]byte {
	out := make([][]byte, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i], out[j]) < 0 })
	return out
}

// CanonicalEncoding returns the deterministic byte sequence hashed to
// produce a PoB's integrity hash: mpt_nodes and codes are sorted first so
// two witness sets holding the same content in different orders encode
// identically.
func CanonicalEncoding(block BlockHeaderLite, data Data) []byte {
	var buf bytes.Buffer

	writeU64 := func(n uint64) {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], n)
		buf.Write(b[:])
	}

	writeU64(block.Number)
	writeU64(block.Timestamp)
	buf.Write(block.BaseFee[:])
	writeU64(block.GasLimit)
	buf.Write(block.Coinbase[:])
	buf.Write(block.Difficulty[:])
	buf.Write(block.PrevRandao[:])

	writeU64(data.ChainID)
	buf.Write(data.Coinbase[:])
	buf.Write(data.PrevStateRoot[:])
	writeU64(uint64(len(data.BlockHashes)))
	for _, h := range data.BlockHashes {
		buf.Write(h[:])
	}

	sortedNodes := sortBytesSlices(data.MptNodes)
	writeU64(uint64(len(sortedNodes)))
	for _, n := range sortedNodes {
		writeU64(uint64(len(n)))
		buf.Write(n)
	}

	sortedCodes := sortBytesSlices(data.Codes)
	writeU64(uint64(len(sortedCodes)))
	for _, c := range sortedCodes {
		writeU64(uint64(len(c)))
		buf.Write(c)
	}

	writeU64(data.StartL1QueueIndex)
	buf.Write(data.WithdrawalRoot[:])

	return buf.Bytes()
}

// New builds a PoB and stamps its canonical hash.
func New(block BlockHeaderLite, data Data) PoB {
	enc := CanonicalEncoding(block, data)
	return PoB{Block: block, Data: data, Hash: primitives.BytesToHash(crypto.Keccak256(enc))}
}

// Verify recomputes p's canonical hash and compares it against p.Hash,
// catching a corrupted or tampered mpt_nodes/codes set.
func (p PoB) Verify() error {
	enc := CanonicalEncoding(p.Block, p.Data)
	got := primitives.BytesToHash(crypto.Keccak256(enc))
	if got != p.Hash {
		return ErrHashMismatch
	}
	return nil
}
