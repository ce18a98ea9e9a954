// Package primitives holds the small value types shared by every other
// package in this module: content hashes, addresses, the append-only byte
// buffer used by the DA-batch codecs, and the cooperative cancellation token
// threaded through the verifier pipeline.
package primitives

import "encoding/hex"

// Hash is a 32-byte opaque identity used for content addresses, Merkle node
// labels, and transaction hashes.
type Hash [32]byte

// String renders the hash as a 0x-prefixed hex string.
func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// IsZero reports whether every byte of the hash is zero.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// BytesToHash left-truncates or zero-pads b to 32 bytes, taking the
// rightmost 32 bytes if b is longer.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) >= 32 {
		copy(h[:], b[len(b)-32:])
	} else {
		copy(h[32-len(b):], b)
	}
	return h
}

// Address is a 20-byte account address.
type Address [20]byte

// String renders the address as a 0x-prefixed hex string.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// BytesToAddress left-truncates or zero-pads b to 20 bytes.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) >= 20 {
		copy(a[:], b[len(b)-20:])
	} else {
		copy(a[20-len(b):], b)
	}
	return a
}

// PadTo32 returns addr zero-extended on the left to a 32-byte slice, the
// layout MiMC/Poseidon account-key hashing expects.
func (a Address) PadTo32() []byte {
	out := make([]byte, 32)
	copy(out[12:], a[:])
	return out
}
