package scrolltrie

import (
	"github.com/automata-network/sgx-prover/poseidon"
	"github.com/automata-network/sgx-prover/primitives"
)

// Proof is a Merkle inclusion proof: siblings from the leaf up to the root,
// plus the leaf's own preimage so a verifier can recompute the leaf hash
// without having stored the account/storage bytes separately.
type Proof struct {
	Siblings []primitives.Hash // index 0 = sibling nearest the leaf, last = nearest the root
	KeyHash  primitives.Hash
	Value    []byte
}

// Prove builds an inclusion (or non-inclusion, via the found=false return)
// proof for key.
func (t *Trie) Prove(key []byte) (*Proof, bool) {
	path := SecureKey(key)
	n := t.root
	var siblings []primitives.Hash
	for depth := 0; depth <= MaxDepth; depth++ {
		switch n.kind {
		case kindEmpty:
			reverse(siblings)
			return &Proof{Siblings: siblings, KeyHash: path}, false
		case kindLeaf:
			found := n.keyHash == path
			reverse(siblings)
			return &Proof{Siblings: siblings, KeyHash: n.keyHash, Value: n.value}, found
		default:
			if bit(path, depth) == 0 {
				siblings = append(siblings, hashOf(n.right, depth+1))
				n = n.left
			} else {
				siblings = append(siblings, hashOf(n.left, depth+1))
				n = n.right
			}
		}
	}
	reverse(siblings)
	return &Proof{Siblings: siblings, KeyHash: path}, false
}

func reverse(s []primitives.Hash) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// Verify recomputes the root from p against the claimed root, returning
// true only if p is a valid inclusion proof for key under root. Siblings
// are ordered leaf-to-root (matching Prove's post-reverse order).
func Verify(root primitives.Hash, key []byte, p *Proof) bool {
	path := SecureKey(key)
	if path != p.KeyHash {
		return false
	}
	leafDepth := len(p.Siblings)
	valueHash := poseidon.CodeHash(p.Value)
	current := poseidon.HashBytes32(leafDomain(leafDepth), p.KeyHash, valueHash)
	depth := leafDepth - 1
	for i := 0; i < len(p.Siblings); i++ {
		sibling := p.Siblings[i]
		if bit(path, depth) == 0 {
			current = poseidon.HashBytes32(branchDomain(depth), current, sibling)
		} else {
			current = poseidon.HashBytes32(branchDomain(depth), sibling, current)
		}
		depth--
	}
	return current == root
}
