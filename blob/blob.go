// Package blob assembles the EIP-4844 blob payload committed by V1+
// DA-batches: a length-prefixed chunk-size table followed by the
// concatenated chunk bytes, optionally zstd-compressed, packed into 4096
// BLS12-381 field elements and committed via KZG.
package blob

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/crypto/kzg4844"

	"github.com/automata-network/sgx-prover/primitives"
	"github.com/automata-network/sgx-prover/zstdcodec"
)

// MaxNumChunks bounds the chunk-size table in the payload header; it
// matches the V2+ chunk-count cap so the table has a fixed, version-stable
// width regardless of how many chunks a given batch actually uses.
const MaxNumChunks = 45

// FieldElementsPerBlob is the EIP-4844 blob width.
const FieldElementsPerBlob = 4096

// BytesPerFieldElement is the usable payload width per 32-byte slot: the
// high byte must stay zero so every element is a valid BLS12-381 scalar.
const BytesPerFieldElement = 31

var (
	ErrOversizedPayload = errors.New("blob: payload exceeds blob capacity")
	ErrTooManyChunks    = errors.New("blob: chunk count exceeds MaxNumChunks")
)

// BuildPayload assembles the uncompressed payload: u16 num_chunks, then
// MaxNumChunks u32 chunk sizes (trailing slots zero), then the
// concatenated chunk bytes.
func BuildPayload(chunks [][]byte) ([]byte, error) {
	if len(chunks) > MaxNumChunks {
		return nil, ErrTooManyChunks
	}
	var out []byte
	var hdr [2]byte
	binary.BigEndian.PutUint16(hdr[:], uint16(len(chunks)))
	out = append(out, hdr[:]...)

	var sizes [MaxNumChunks * 4]byte
	for i, c := range chunks {
		binary.BigEndian.PutUint32(sizes[i*4:i*4+4], uint32(len(c)))
	}
	out = append(out, sizes[:]...)

	for _, c := range chunks {
		out = append(out, c...)
	}
	return out, nil
}

// Envelope is a payload ready for field-element packing: flag=0 means raw
// (V1), flag=1 means zstd-compressed (V2+).
type Envelope struct {
	Compressed bool
	Payload    []byte // post zstd, pre field-element packing
}

// Encode assembles the version-appropriate envelope from chunk bytes.
func Encode(chunks [][]byte, compress bool) (*Envelope, error) {
	payload, err := BuildPayload(chunks)
	if err != nil {
		return nil, err
	}
	if !compress {
		return &Envelope{Compressed: false, Payload: payload}, nil
	}
	compressed, err := zstdcodec.Compress(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{Compressed: true, Payload: compressed}, nil
}

// Bytes returns the 1-byte compressed flag followed by the payload.
func (e *Envelope) Bytes() []byte {
	flag := byte(0)
	if e.Compressed {
		flag = 1
	}
	return append([]byte{flag}, e.Payload...)
}

// PackFieldElements lays e's framed bytes into FieldElementsPerBlob
// 32-byte slots, 31 data bytes per slot with a zero high byte, zero-padded
// at the tail.
func (e *Envelope) PackFieldElements() (*kzg4844.Blob, error) {
	framed := e.Bytes()
	maxBytes := FieldElementsPerBlob * BytesPerFieldElement
	if len(framed) > maxBytes {
		return nil, ErrOversizedPayload
	}
	var blob kzg4844.Blob
	for i := 0; i*BytesPerFieldElement < len(framed); i++ {
		start := i * BytesPerFieldElement
		end := start + BytesPerFieldElement
		if end > len(framed) {
			end = len(framed)
		}
		copy(blob[i*32+1:i*32+32], framed[start:end])
	}
	return &blob, nil
}

// Commitment wraps the KZG commitment, versioned hash, and evaluation
// proof a V1+ batch commits to L1.
type Commitment struct {
	Commit          kzg4844.Commitment
	VersionedHash   primitives.Hash
	Z               primitives.Hash
	Y               primitives.Hash
	Proof           kzg4844.Proof
}

// Commit computes the KZG commitment over blob, derives the challenge
// point z from the payload metadata and versioned hash, evaluates the
// blob at z, and returns the bundle a V1+ batch needs.
func Commit(blob *kzg4844.Blob, payloadMetadata []byte) (*Commitment, error) {
	commit, err := kzg4844.BlobToCommitment(blob)
	if err != nil {
		return nil, err
	}
	vh := kzg4844.CalcBlobHashV1(sha256.New(), &commit)

	innerDigest := crypto.Keccak256(payloadMetadata)
	z := crypto.Keccak256(append(append([]byte{}, innerDigest...), vh[:]...))

	var point kzg4844.Point
	copy(point[:], reduceModScalarField(z))

	proof, claim, err := kzg4844.ComputeProof(blob, point)
	if err != nil {
		return nil, err
	}

	return &Commitment{
		Commit:        commit,
		VersionedHash: primitives.Hash(vh),
		Z:             primitives.BytesToHash(point[:]),
		Y:             primitives.BytesToHash(claim[:]),
		Proof:         proof,
	}, nil
}

// reduceModScalarField reduces a 32-byte big-endian value modulo the
// BLS12-381 scalar field order, the modulus the KZG challenge point must
// lie within.
func reduceModScalarField(b []byte) []byte {
	var e fr.Element
	e.SetBigInt(new(big.Int).SetBytes(b))
	out := e.Bytes()
	return out[:]
}
