// Package lineatrie implements Linea's ZK-trie: a fixed-depth-40 sparse
// Merkle tree over MiMC hashes on the BLS12-377 scalar field, with a
// top-trie layer tracking a NextFreeNode counter and a sorted doubly-linked
// list of leaves so non-inclusion queries can return the two enclosing
// leaves. Cyclic leaf links are represented as arena indices into a slice,
// never as owning Go pointers, so the doubly-linked list can be built and
// spliced without creating reference cycles for the garbage collector to
// reason about.
package lineatrie

import "github.com/automata-network/sgx-prover/primitives"

// Account is the Linea account layout. CodeSize is a full u256 in the
// upstream model (unlike Scroll's u64), matching the domain-specific
// encoding Linea commits into its trie.
type Account struct {
	Nonce          uint64
	Balance        [32]byte // big-endian u256
	StorageRoot    primitives.Hash
	MimcCodeHash   primitives.Hash
	KeccakCodeHash primitives.Hash
	CodeSize       [32]byte // big-endian u256
}

// IsEmpty reports whether a is the zero-valued default account.
func (a Account) IsEmpty() bool {
	return a == Account{}
}

// Encode returns the flat 192-byte big-endian concatenation of the six
// account fields, each padded to a 32-byte slot (the nonce is right-aligned
// within its slot).
func (a Account) Encode() []byte {
	if a.IsEmpty() {
		return nil
	}
	out := make([]byte, 192)
	nonceBytes := u64Slot(a.Nonce)
	copy(out[0:32], nonceBytes[:])
	copy(out[32:64], a.Balance[:])
	copy(out[64:96], a.StorageRoot[:])
	copy(out[96:128], a.MimcCodeHash[:])
	copy(out[128:160], a.KeccakCodeHash[:])
	copy(out[160:192], a.CodeSize[:])
	return out
}

// EncodeMimcSafe returns the 224-byte encoding used as MiMC hash input: the
// single 32-byte keccak-code-hash slot of Encode is replaced by two 32-byte
// slots, each holding one 16-byte half of the keccak hash right-aligned
// (zero-padded on the left), low half first. Splitting keeps every slot a
// value strictly less than the BLS12-377 scalar field modulus, which a
// full 32-byte keccak digest is not guaranteed to be. The default account
// encodes to nil so trie leaves never commit a spurious all-zero account.
func (a Account) EncodeMimcSafe() []byte {
	if a.IsEmpty() {
		return nil
	}
	out := make([]byte, 224)
	nonceBytes := u64Slot(a.Nonce)
	copy(out[0:32], nonceBytes[:])
	copy(out[32:64], a.Balance[:])
	copy(out[64:96], a.StorageRoot[:])
	copy(out[96:128], a.MimcCodeHash[:])

	var lowSlot, highSlot [32]byte
	copy(lowSlot[16:32], a.KeccakCodeHash[16:32])
	copy(highSlot[16:32], a.KeccakCodeHash[0:16])
	copy(out[128:160], lowSlot[:])
	copy(out[160:192], highSlot[:])

	copy(out[192:224], a.CodeSize[:])
	return out
}

func u64Slot(n uint64) [32]byte {
	var out [32]byte
	for i := 0; i < 8; i++ {
		out[31-i] = byte(n >> (8 * i))
	}
	return out
}
