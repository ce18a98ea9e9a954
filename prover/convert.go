package prover

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/automata-network/sgx-prover/primitives"
)

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

func addrPtr(a *primitives.Address) *common.Address {
	if a == nil {
		return nil
	}
	addr := common.Address(*a)
	return &addr
}

func addrOrZero(a *primitives.Address) primitives.Address {
	if a == nil {
		return primitives.Address{}
	}
	return *a
}

func blockHashFunc(hashes map[uint64]primitives.Hash) func(uint64) common.Hash {
	return func(n uint64) common.Hash {
		return common.Hash(hashes[n])
	}
}

// u256Slot big-endian-encodes n into a fixed-width byte array, used for
// Linea's [32]byte balance/code-size account fields.
func u256Slot(n *big.Int) [32]byte {
	var out [32]byte
	bigOrZero(n).FillBytes(out[:])
	return out
}
