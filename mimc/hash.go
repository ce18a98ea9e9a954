// Package mimc implements the BLS12-377 scalar-field MiMC permutation used
// to key and hash the Linea ZK-trie. It is a straight port of the Feistel
// construction in the upstream linea/mimc crate: 62 rounds of
// x -> (hash + x + c_i)^17, with round constants derived from repeated
// keccak hashing of the seed "seed".
package mimc

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

// ErrInvalidLength is returned when the input cannot be interpreted as a
// sequence of 32-byte field elements: the empty input, or input whose
// length (after left-padding a single short block) is not a multiple of
// BlockSize.
var ErrInvalidLength = errors.New("mimc: invalid input length")

// Sum hashes msg and returns the 32-byte big-endian digest. msg shorter than
// BlockSize is zero-padded on the left to one block; otherwise its length
// must be an exact multiple of BlockSize.
func Sum(msg []byte) ([32]byte, error) {
	elems, err := toElements(msg)
	if err != nil {
		return [32]byte{}, err
	}
	h := Checksum(elems)
	return h.Bytes(), nil
}

func toElements(p []byte) ([]fr.Element, error) {
	if len(p) > 0 && len(p) < BlockSize {
		padded := make([]byte, BlockSize)
		copy(padded[BlockSize-len(p):], p)
		p = padded
	}
	if len(p) == 0 || len(p)%BlockSize != 0 {
		return nil, ErrInvalidLength
	}
	elems := make([]fr.Element, len(p)/BlockSize)
	for i := range elems {
		elems[i].SetBytes(p[i*BlockSize : (i+1)*BlockSize])
	}
	return elems, nil
}

// encrypt runs the 62-round Feistel permutation seeded by hash, starting
// from message block m.
func encrypt(hash, m fr.Element) fr.Element {
	for _, c := range roundConstants {
		var tmp fr.Element
		tmp.Add(&hash, &m)
		tmp.Add(&tmp, &c)

		m.Square(&tmp)
		m.Square(&m)
		m.Square(&m)
		m.Square(&m)
		m.Mul(&m, &tmp)
	}
	m.Add(&m, &hash)
	return m
}

// Checksum computes the MiMC sponge over a sequence of already-encoded
// field elements. Trie hashing uses this directly on fixed-layout node
// elements, bypassing the byte-padding convention Sum applies to arbitrary
// messages.
func Checksum(elems []fr.Element) fr.Element {
	var hash fr.Element
	for _, item := range elems {
		r := encrypt(hash, item)
		hash.Add(&hash, &r)
		hash.Add(&hash, &item)
	}
	return hash
}
