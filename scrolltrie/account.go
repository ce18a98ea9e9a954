package scrolltrie

import (
	"math/big"

	"github.com/automata-network/sgx-prover/poseidon"
	"github.com/automata-network/sgx-prover/primitives"
	"github.com/automata-network/sgx-prover/rlp"
)

// Account is the Scroll account layout: nonce/balance/storage root plus
// both a keccak and a poseidon code hash, the latter letting the zktrie key
// code lookups without re-hashing through keccak.
type Account struct {
	Nonce            uint64
	Balance          *big.Int
	StorageRoot      primitives.Hash
	KeccakCodeHash   primitives.Hash
	PoseidonCodeHash primitives.Hash
	CodeSize         uint64
}

// EmptyStorageRoot is the root of an empty scrolltrie.
var EmptyStorageRoot = New().Root()

// EmptyPoseidonCodeHash is PoseidonCodeHash for an account with no code.
var EmptyPoseidonCodeHash = primitives.Hash(poseidon.CodeHash(nil))

// NewEmptyAccount returns the default account: zero nonce/balance/size, an
// empty storage root, and the empty-code poseidon/keccak hashes.
func NewEmptyAccount(emptyKeccakCodeHash primitives.Hash) Account {
	return Account{
		Balance:          new(big.Int),
		StorageRoot:      EmptyStorageRoot,
		KeccakCodeHash:   emptyKeccakCodeHash,
		PoseidonCodeHash: EmptyPoseidonCodeHash,
	}
}

// DecodeAccount parses the fixed 6-field RLP list back into an Account.
// Field order matches Encode: nonce, balance, storage root, keccak code
// hash, poseidon code hash, code size.
func DecodeAccount(data []byte) (Account, error) {
	items, err := rlp.DecodeList(data)
	if err != nil {
		return Account{}, err
	}
	if len(items) != 6 {
		return Account{}, rlp.ErrTrailingData
	}
	nonce, err := rlp.DecodeUint64Item(items[0])
	if err != nil {
		return Account{}, err
	}
	codeSize, err := rlp.DecodeUint64Item(items[5])
	if err != nil {
		return Account{}, err
	}
	return Account{
		Nonce:            nonce,
		Balance:          rlp.DecodeBigIntItem(items[1]),
		StorageRoot:      primitives.BytesToHash(items[2]),
		KeccakCodeHash:   primitives.BytesToHash(items[3]),
		PoseidonCodeHash: primitives.BytesToHash(items[4]),
		CodeSize:         codeSize,
	}, nil
}

// Encode serializes the account as the fixed 6-field RLP list committed
// into the trie leaf.
func (a Account) Encode() ([]byte, error) {
	return rlp.EncodeList(
		rlp.EncodeUint64(a.Nonce),
		rlp.EncodeBigInt(a.Balance),
		rlp.EncodeBytes(a.StorageRoot[:]),
		rlp.EncodeBytes(a.KeccakCodeHash[:]),
		rlp.EncodeBytes(a.PoseidonCodeHash[:]),
		rlp.EncodeUint64(a.CodeSize),
	), nil
}
