// Package proverrpc defines the Proof-of-Execution type shared by the
// batch verifier (which produces one per batch) and the keypair package
// (which signs and later recovers it). Keeping the type and its canonical
// encoding in one place avoids a signing-format disagreement between the
// two.
package proverrpc

import (
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/automata-network/sgx-prover/primitives"
)

// PoE is the signed claim a batch verification run produces: the rebuilt
// batch hash, the keccak-chain of per-block state hashes, and the
// pre/post state and withdrawal roots it attests to.
type PoE struct {
	BatchHash      primitives.Hash
	StateHash      primitives.Hash
	PrevStateRoot  primitives.Hash
	NewStateRoot   primitives.Hash
	WithdrawalRoot primitives.Hash
	Signature      []byte // 65-byte [R || S || V] secp256k1 signature, empty until signed
}

// EncodeWithoutSignature returns the fixed 160-byte concatenation of the
// five root/hash fields, the canonical payload that gets signed and later
// re-hashed for recovery. The signature itself is never part of the signed
// payload.
func (p PoE) EncodeWithoutSignature() []byte {
	out := make([]byte, 0, 160)
	out = append(out, p.BatchHash[:]...)
	out = append(out, p.StateHash[:]...)
	out = append(out, p.PrevStateRoot[:]...)
	out = append(out, p.NewStateRoot[:]...)
	out = append(out, p.WithdrawalRoot[:]...)
	return out
}

// SigningDigest is keccak256(EncodeWithoutSignature()), the digest signed
// by the enclave keypair and passed to Ecrecover on verification.
func (p PoE) SigningDigest() primitives.Hash {
	return primitives.BytesToHash(crypto.Keccak256(p.EncodeWithoutSignature()))
}

// MergeStateHash computes keccak(concat(per_block_state_hashes...)), the
// batch-level state_hash field from §4.5 step 5.
func MergeStateHash(perBlock []primitives.Hash) primitives.Hash {
	buf := make([]byte, 0, 32*len(perBlock))
	for _, h := range perBlock {
		buf = append(buf, h[:]...)
	}
	return primitives.BytesToHash(crypto.Keccak256(buf))
}
