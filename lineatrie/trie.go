package lineatrie

import (
	"errors"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/automata-network/sgx-prover/primitives"
)

// Depth is Linea's fixed sub-trie depth (unlike Scroll's variable-depth
// trie, every Linea leaf sits at exactly this many branch levels below the
// sub-trie root).
const Depth = 40

var (
	ErrTrieFull    = errors.New("lineatrie: fixed-depth trie is full")
	ErrKeyNotFound = errors.New("lineatrie: key not found")
)

type pathKind uint8

const (
	pathEmpty pathKind = iota
	pathBranch
	pathLeaf
)

// pathNode is the fixed-depth binary tree keyed by bits of the MiMC key
// element. It is not cyclic, so ordinary Go pointers are fine here; the
// cyclic part of the structure (the sorted leaf list) lives in the leaves
// arena below, addressed by index instead of pointer.
type pathNode struct {
	kind     pathKind
	left     *pathNode
	right    *pathNode
	leafArna uint64
}

var emptyPathNode = &pathNode{kind: pathEmpty}

// leafRecord is one entry in the arena-indexed, sorted doubly-linked leaf
// list. HEAD (index 0) and TAIL (index 1) are sentinels with no key of
// their own, bracketing the real entries by key order so every real leaf
// always has a well-defined left/right neighbor for non-inclusion proofs.
type leafRecord struct {
	key       primitives.Hash
	keyElem   fr.Element
	valueHash primitives.Hash
	prev      uint64
	next      uint64
}

const headIdx, tailIdx uint64 = 0, 1

// Trie is Linea's ZK-trie: a fixed-depth-40 MiMC Merkle tree plus a
// NextFreeNode counter and a sorted doubly-linked leaf list, arena-indexed
// so the list's cyclic references never become Go pointer cycles.
type Trie struct {
	leaves    []leafRecord
	sortedIdx []uint64 // arena indices, sorted by keyElem, excludes HEAD/TAIL
	pathRoot  *pathNode
	nextFree  uint64
}

// New returns an empty Linea trie with its HEAD/TAIL sentinels installed.
func New() *Trie {
	t := &Trie{
		leaves:   make([]leafRecord, 2),
		pathRoot: emptyPathNode,
		nextFree: 2,
	}
	t.leaves[headIdx] = leafRecord{next: tailIdx}
	t.leaves[tailIdx] = leafRecord{prev: headIdx}
	return t
}

func keyElement(key primitives.Hash) fr.Element {
	var e fr.Element
	e.SetBytes(key[:])
	return e
}

func bit(e fr.Element, depth int) int {
	b := e.Bytes() // big-endian 32 bytes
	byteIdx := depth / 8
	bitIdx := 7 - depth%8
	return int((b[byteIdx] >> uint(bitIdx)) & 1)
}

// Put inserts or updates key -> valueHash (the caller hashes the account or
// storage-slot bytes with mimc.Sum before calling Put).
func (t *Trie) Put(key primitives.Hash, valueHash primitives.Hash) {
	elem := keyElement(key)
	if idx, ok := t.findArenaIdx(key); ok {
		t.leaves[idx].valueHash = valueHash
		return
	}

	idx := uint64(len(t.leaves))
	t.leaves = append(t.leaves, leafRecord{key: key, keyElem: elem, valueHash: valueHash})
	t.nextFree++

	pos := sort.Search(len(t.sortedIdx), func(i int) bool {
		return keyElement(t.leaves[t.sortedIdx[i]].key).Cmp(&elem) >= 0
	})
	t.sortedIdx = append(t.sortedIdx, 0)
	copy(t.sortedIdx[pos+1:], t.sortedIdx[pos:])
	t.sortedIdx[pos] = idx

	predIdx := headIdx
	if pos > 0 {
		predIdx = t.sortedIdx[pos-1]
	}
	succIdx := t.leaves[predIdx].next

	t.leaves[idx].prev = predIdx
	t.leaves[idx].next = succIdx
	t.leaves[predIdx].next = idx
	t.leaves[succIdx].prev = idx

	t.pathRoot = insertPath(t.pathRoot, elem, 0, idx)
}

// Delete removes key from the trie if present: it splices the leaf out of
// the sorted doubly-linked list, re-linking its predecessor and successor
// directly to each other, and prunes the leaf's path node from the
// fixed-depth sub-trie so it no longer contributes to Root(). Reports
// whether key was present. The leaf's arena slot is left allocated (never
// reused) so nextFree continues to distinguish allocation history the way
// Root's doc comment describes.
func (t *Trie) Delete(key primitives.Hash) bool {
	idx, ok := t.findArenaIdx(key)
	if !ok {
		return false
	}
	elem := t.leaves[idx].keyElem

	pos := sort.Search(len(t.sortedIdx), func(i int) bool {
		return keyElement(t.leaves[t.sortedIdx[i]].key).Cmp(&elem) >= 0
	})
	copy(t.sortedIdx[pos:], t.sortedIdx[pos+1:])
	t.sortedIdx = t.sortedIdx[:len(t.sortedIdx)-1]

	predIdx, succIdx := t.leaves[idx].prev, t.leaves[idx].next
	t.leaves[predIdx].next = succIdx
	t.leaves[succIdx].prev = predIdx

	t.pathRoot = removePath(t.pathRoot, elem, 0)
	return true
}

// removePath is insertPath's inverse: it clears the node at the leaf depth
// reached by elem's bit path, then collapses any branch left with two empty
// children back to emptyPathNode so a removed leaf leaves no trace in
// pathHash.
func removePath(n *pathNode, elem fr.Element, depth int) *pathNode {
	if depth == Depth {
		return emptyPathNode
	}
	b := &pathNode{kind: pathBranch, left: n.left, right: n.right}
	if bit(elem, depth) == 0 {
		b.left = removePath(b.left, elem, depth+1)
	} else {
		b.right = removePath(b.right, elem, depth+1)
	}
	if b.left.kind == pathEmpty && b.right.kind == pathEmpty {
		return emptyPathNode
	}
	return b
}

func insertPath(n *pathNode, elem fr.Element, depth int, leafArenaIdx uint64) *pathNode {
	if depth == Depth {
		return &pathNode{kind: pathLeaf, leafArna: leafArenaIdx}
	}
	b := &pathNode{kind: pathBranch, left: emptyPathNode, right: emptyPathNode}
	if n.kind == pathBranch {
		b.left, b.right = n.left, n.right
	}
	if bit(elem, depth) == 0 {
		b.left = insertPath(b.left, elem, depth+1, leafArenaIdx)
	} else {
		b.right = insertPath(b.right, elem, depth+1, leafArenaIdx)
	}
	return b
}

func (t *Trie) findArenaIdx(key primitives.Hash) (uint64, bool) {
	elem := keyElement(key)
	pos := sort.Search(len(t.sortedIdx), func(i int) bool {
		return keyElement(t.leaves[t.sortedIdx[i]].key).Cmp(&elem) >= 0
	})
	if pos < len(t.sortedIdx) && t.leaves[t.sortedIdx[pos]].key == key {
		return t.sortedIdx[pos], true
	}
	return 0, false
}

// Get returns the committed value hash for key.
func (t *Trie) Get(key primitives.Hash) (primitives.Hash, bool) {
	idx, ok := t.findArenaIdx(key)
	if !ok {
		return primitives.Hash{}, false
	}
	return t.leaves[idx].valueHash, true
}

// Neighbors returns the two leaves bracketing key in sorted order, used to
// build a non-inclusion proof when key itself is absent. Either side may be
// a sentinel (key.IsZero() with a zero value hash) if key is outside the
// populated range.
func (t *Trie) Neighbors(key primitives.Hash) (left, right leafRecord) {
	elem := keyElement(key)
	pos := sort.Search(len(t.sortedIdx), func(i int) bool {
		return keyElement(t.leaves[t.sortedIdx[i]].key).Cmp(&elem) >= 0
	})
	predIdx := headIdx
	if pos > 0 {
		predIdx = t.sortedIdx[pos-1]
	}
	succIdx := t.leaves[predIdx].next
	return t.leaves[predIdx], t.leaves[succIdx]
}
