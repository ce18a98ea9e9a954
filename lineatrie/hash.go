package lineatrie

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/automata-network/sgx-prover/mimc"
	"github.com/automata-network/sgx-prover/primitives"
)

func hashToHash(e fr.Element) primitives.Hash {
	return primitives.Hash(e.Bytes())
}

// pathHash recomputes the Merkle root of the fixed-depth sub-trie. Branch
// and leaf node kinds use disjoint element-count layouts (2 elements for a
// branch, 5 for a leaf), so no extra domain tag is needed to keep the two
// from colliding the way Scroll's variable-depth trie requires.
func pathHash(n *pathNode, t *Trie) fr.Element {
	switch n.kind {
	case pathEmpty:
		return fr.Element{}
	case pathLeaf:
		rec := t.leaves[n.leafArna]
		var keyElem, valueElem, prevElem, nextElem, idxElem fr.Element
		keyElem = rec.keyElem
		valueElem.SetBytes(rec.valueHash[:])
		prevElem.SetUint64(rec.prev)
		nextElem.SetUint64(rec.next)
		idxElem.SetUint64(n.leafArna)
		return mimc.Checksum([]fr.Element{keyElem, valueElem, prevElem, nextElem, idxElem})
	default:
		l := pathHash(n.left, t)
		r := pathHash(n.right, t)
		return mimc.Checksum([]fr.Element{l, r})
	}
}

// Root returns the top-trie hash: the fixed-depth sub-trie root combined
// with the NextFreeNode counter, so two tries that hold the same leaves but
// reached different allocation states (e.g. after a remove) do not collide.
func (t *Trie) Root() primitives.Hash {
	sub := pathHash(t.pathRoot, t)
	var counter fr.Element
	counter.SetUint64(t.nextFree)
	top := mimc.Checksum([]fr.Element{sub, counter})
	return hashToHash(top)
}
