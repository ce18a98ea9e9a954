// Package rlp implements the one shape of Ethereum's Recursive Length
// Prefix encoding this module actually needs: a flat list of uint64 and
// fixed-width byte-string fields, the wire format scrolltrie commits
// account leaves in. It is not a general-purpose codec: no reflection, no
// struct tags, no streaming decoder. Fields are encoded and decoded by
// explicit position, matching the canonical RLP rules (minimal-length
// integers, short/long string and list prefixes) for just those two item
// kinds.
package rlp

import (
	"encoding/binary"
	"errors"
	"math/big"
)

var (
	// ErrTooShort is returned when there are fewer bytes than a length
	// prefix claims.
	ErrTooShort = errors.New("rlp: input too short")
	// ErrExpectedList is returned when DecodeList is given a string
	// encoding instead of a list encoding.
	ErrExpectedList = errors.New("rlp: expected list")
	// ErrTrailingData is returned by DecodeList when bytes follow the
	// list, and by callers such as scrolltrie.DecodeAccount when the list
	// holds the wrong number of items.
	ErrTrailingData = errors.New("rlp: trailing data")
	// ErrNonCanonicalInt is returned when a decoded integer string carries
	// a leading zero byte.
	ErrNonCanonicalInt = errors.New("rlp: non-canonical integer encoding")
)

// trimLeadingZeros returns the minimal big-endian representation of b,
// collapsing to an empty slice for zero (RLP encodes the integer 0 as the
// empty string).
func trimLeadingZeros(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	return b[i:]
}

func uint64Bytes(n uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	return trimLeadingZeros(buf[:])
}

// encodeHeader returns the length-prefix bytes for a string (offset 0x80)
// or list (offset 0xc0) payload of the given size.
func encodeHeader(size int, offset byte) []byte {
	if size < 56 {
		return []byte{offset + byte(size)}
	}
	lenBytes := trimLeadingZeros(uint64Bytes(uint64(size)))
	head := make([]byte, 0, 1+len(lenBytes))
	head = append(head, offset+55+byte(len(lenBytes)))
	return append(head, lenBytes...)
}

// EncodeBytes returns the canonical RLP string encoding of b.
func EncodeBytes(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return []byte{b[0]}
	}
	return append(encodeHeader(len(b), 0x80), b...)
}

// EncodeUint64 returns the canonical RLP string encoding of n (minimal
// big-endian bytes, zero encodes as the empty string).
func EncodeUint64(n uint64) []byte {
	return EncodeBytes(uint64Bytes(n))
}

// EncodeBigInt returns the canonical RLP string encoding of n. A nil n
// encodes the same as zero.
func EncodeBigInt(n *big.Int) []byte {
	if n == nil || n.Sign() == 0 {
		return EncodeBytes(nil)
	}
	return EncodeBytes(n.Bytes())
}

// EncodeList wraps the concatenation of already RLP-encoded items in a
// list length prefix.
func EncodeList(items ...[]byte) []byte {
	var payload []byte
	for _, it := range items {
		payload = append(payload, it...)
	}
	return append(encodeHeader(len(payload), 0xc0), payload...)
}

// decodeHeader parses the length-prefix at the start of data, returning
// whether it introduces a list, the payload's byte range, and the total
// bytes consumed (header + payload).
func decodeHeader(data []byte) (isList bool, payload []byte, consumed int, err error) {
	if len(data) == 0 {
		return false, nil, 0, ErrTooShort
	}
	b := data[0]
	switch {
	case b < 0x80:
		return false, data[:1], 1, nil
	case b < 0xb8:
		size := int(b - 0x80)
		if len(data) < 1+size {
			return false, nil, 0, ErrTooShort
		}
		return false, data[1 : 1+size], 1 + size, nil
	case b < 0xc0:
		lenOfLen := int(b - 0xb7)
		if len(data) < 1+lenOfLen {
			return false, nil, 0, ErrTooShort
		}
		size := int(beUint64(data[1 : 1+lenOfLen]))
		start := 1 + lenOfLen
		if len(data) < start+size {
			return false, nil, 0, ErrTooShort
		}
		return false, data[start : start+size], start + size, nil
	case b < 0xf8:
		size := int(b - 0xc0)
		if len(data) < 1+size {
			return true, nil, 0, ErrTooShort
		}
		return true, data[1 : 1+size], 1 + size, nil
	default:
		lenOfLen := int(b - 0xf7)
		if len(data) < 1+lenOfLen {
			return true, nil, 0, ErrTooShort
		}
		size := int(beUint64(data[1 : 1+lenOfLen]))
		start := 1 + lenOfLen
		if len(data) < start+size {
			return true, nil, 0, ErrTooShort
		}
		return true, data[start : start+size], start + size, nil
	}
}

func beUint64(b []byte) uint64 {
	var buf [8]byte
	copy(buf[8-len(b):], b)
	return binary.BigEndian.Uint64(buf[:])
}

// DecodeList splits a top-level RLP list encoding into its item payloads,
// in order, each still holding the item's own raw bytes (ready for
// DecodeUint64Item/DecodeBigIntItem/direct use as a byte string).
func DecodeList(data []byte) ([][]byte, error) {
	isList, payload, consumed, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}
	if !isList {
		return nil, ErrExpectedList
	}
	if consumed != len(data) {
		return nil, ErrTrailingData
	}

	var items [][]byte
	for len(payload) > 0 {
		_, item, n, err := decodeHeader(payload)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		payload = payload[n:]
	}
	return items, nil
}

// DecodeUint64Item parses a string item (as returned by DecodeList) back
// into a uint64, rejecting non-canonical leading-zero encodings.
func DecodeUint64Item(item []byte) (uint64, error) {
	if len(item) > 0 && item[0] == 0 {
		return 0, ErrNonCanonicalInt
	}
	if len(item) > 8 {
		return 0, errors.New("rlp: integer item exceeds 64 bits")
	}
	return beUint64(item), nil
}

// DecodeBigIntItem parses a string item into a big.Int.
func DecodeBigIntItem(item []byte) *big.Int {
	return new(big.Int).SetBytes(item)
}
