// Package poseidon implements the BN254 Poseidon hash used by Scroll's
// ZK-trie for account/storage keys, node hashing, and code hashing. It
// wraps github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2, the
// ecosystem's Poseidon permutation over the same scalar field the upstream
// zktrie crate hashes over.
package poseidon

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
)

// nbytesToFieldElement is the number of big-endian data bytes packed per
// field element when chunking arbitrary-length code for CodeHash, matching
// the upstream NBYTES_TO_FIELD_ELEMENT constant (one byte of headroom below
// the 32-byte field width keeps every chunk a canonical representative).
const nbytesToFieldElement = 31

// HashElements hashes a fixed-arity list of field elements with a domain
// separator, the construction every trie-node hash (branch, leaf) builds
// on. domain distinguishes node kinds and subtree depth so that, e.g., a
// two-child branch at depth 3 never collides with a leaf encoding of the
// same two field elements.
func HashElements(domain uint64, elems ...fr.Element) fr.Element {
	h := poseidon2.NewMerkleDamgardHasher()
	var d fr.Element
	d.SetUint64(domain)
	db := d.Bytes()
	h.Write(db[:])
	for _, e := range elems {
		b := e.Bytes()
		h.Write(b[:])
	}
	sum := h.Sum(nil)
	var out fr.Element
	out.SetBytes(sum)
	return out
}

// HashBytes32 hashes two 32-byte values under the given domain, the shape
// used for binary Merkle branch nodes.
func HashBytes32(domain uint64, left, right [32]byte) [32]byte {
	var l, r fr.Element
	l.SetBytes(left[:])
	r.SetBytes(right[:])
	out := HashElements(domain, l, r)
	return out.Bytes()
}

// CodeHash hashes contract bytecode into the poseidon code hash stored in a
// Scroll account leaf: code is split into 31-byte big-endian chunks (the
// final chunk zero-padded), fed through a Merkle-Damgard Poseidon sponge
// domain-separated by the code length.
func CodeHash(code []byte) [32]byte {
	n := (len(code) + nbytesToFieldElement - 1) / nbytesToFieldElement
	elems := make([]fr.Element, 0, n)
	for i := 0; i < n; i++ {
		start := i * nbytesToFieldElement
		end := start + nbytesToFieldElement
		if end > len(code) {
			end = len(code)
		}
		buf := make([]byte, nbytesToFieldElement)
		copy(buf[:end-start], code[start:end])
		var e fr.Element
		e.SetBytes(buf)
		elems = append(elems, e)
	}
	out := HashElements(uint64(len(code)), elems...)
	return out.Bytes()
}
