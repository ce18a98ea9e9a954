package lineatrie

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/automata-network/sgx-prover/mimc"
	"github.com/automata-network/sgx-prover/primitives"
)

// LeafWitness is the hashed content of one leaf record, exposed so an
// inclusion or non-inclusion proof can be replayed without access to the
// trie's internal arena.
type LeafWitness struct {
	Key       primitives.Hash
	ValueHash primitives.Hash
	Prev      uint64
	Next      uint64
	ArenaIdx  uint64
}

func (w LeafWitness) element() fr.Element {
	var keyElem, valueElem, prevElem, nextElem, idxElem fr.Element
	keyElem.SetBytes(w.Key[:])
	valueElem.SetBytes(w.ValueHash[:])
	prevElem.SetUint64(w.Prev)
	nextElem.SetUint64(w.Next)
	idxElem.SetUint64(w.ArenaIdx)
	return mimc.Checksum([]fr.Element{keyElem, valueElem, prevElem, nextElem, idxElem})
}

// InclusionProof certifies that Leaf sits in the fixed-depth sub-trie at
// the path determined by its own key, under the counter recorded at
// NextFreeNode.
type InclusionProof struct {
	Leaf        LeafWitness
	Siblings    []fr.Element // depth 0 (nearest root) first
	NextFreeNode uint64
}

// NonInclusionProof certifies key is absent by exhibiting its two sorted
// neighbors, each independently provable by InclusionProof (or a sentinel
// with an empty key if key falls outside the populated range).
type NonInclusionProof struct {
	Left, Right LeafWitness
	NextFreeNode uint64
}

// Prove returns an InclusionProof for key, or ok=false if key is absent.
func (t *Trie) Prove(key primitives.Hash) (*InclusionProof, bool) {
	idx, ok := t.findArenaIdx(key)
	if !ok {
		return nil, false
	}
	elem := keyElement(key)
	var siblings []fr.Element
	n := t.pathRoot
	for depth := 0; depth < Depth; depth++ {
		if n.kind != pathBranch {
			return nil, false
		}
		if bit(elem, depth) == 0 {
			siblings = append(siblings, pathHash(n.right, t))
			n = n.left
		} else {
			siblings = append(siblings, pathHash(n.left, t))
			n = n.right
		}
	}
	rec := t.leaves[idx]
	return &InclusionProof{
		Leaf: LeafWitness{
			Key: rec.key, ValueHash: rec.valueHash,
			Prev: rec.prev, Next: rec.next, ArenaIdx: idx,
		},
		Siblings:     siblings,
		NextFreeNode: t.nextFree,
	}, true
}

// VerifyInclusion recomputes the sub-trie root from p's leaf and siblings,
// combines it with NextFreeNode, and compares against root.
func VerifyInclusion(root primitives.Hash, key primitives.Hash, p *InclusionProof) bool {
	elem := keyElement(key)
	current := p.Leaf.element()
	for depth := Depth - 1; depth >= 0; depth-- {
		sibling := p.Siblings[depth]
		if bit(elem, depth) == 0 {
			current = mimc.Checksum([]fr.Element{current, sibling})
		} else {
			current = mimc.Checksum([]fr.Element{sibling, current})
		}
	}
	var counter fr.Element
	counter.SetUint64(p.NextFreeNode)
	top := mimc.Checksum([]fr.Element{current, counter})
	return hashToHash(top) == root
}

// ProveNonInclusion returns the two leaves bracketing key when key itself
// is absent from the trie.
func (t *Trie) ProveNonInclusion(key primitives.Hash) *NonInclusionProof {
	left, right := t.Neighbors(key)
	toWitness := func(idx uint64, rec leafRecord) LeafWitness {
		return LeafWitness{Key: rec.key, ValueHash: rec.valueHash, Prev: rec.prev, Next: rec.next, ArenaIdx: idx}
	}
	predIdx, succIdx := t.neighborIndices(key)
	return &NonInclusionProof{
		Left:         toWitness(predIdx, left),
		Right:        toWitness(succIdx, right),
		NextFreeNode: t.nextFree,
	}
}

func (t *Trie) neighborIndices(key primitives.Hash) (uint64, uint64) {
	elem := keyElement(key)
	for i, idx := range t.sortedIdx {
		if keyElement(t.leaves[idx].key).Cmp(&elem) >= 0 {
			if i == 0 {
				return headIdx, idx
			}
			return t.sortedIdx[i-1], idx
		}
	}
	if len(t.sortedIdx) == 0 {
		return headIdx, tailIdx
	}
	return t.sortedIdx[len(t.sortedIdx)-1], tailIdx
}
