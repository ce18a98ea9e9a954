package scrollevm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/automata-network/sgx-prover/hardfork"
)

// l1FeeInputs holds the values of the fixed storage slots read from
// L1GasPriceOracleAddress: zeroes, ones, overhead, scalar (Bernoulli) or
// commitScalar, l1BaseFee, l1BlobBaseFee, blobScalar (Curie). Both layouts
// are read; the formula applied depends on fork.
type l1FeeInputs struct {
	zeroes, ones, overhead, scalar           *big.Int
	commitScalar, l1BaseFee, l1BlobBaseFee, blobScalar *big.Int
}

func (s *StateDB) readL1FeeInputs() l1FeeInputs {
	read := func(slot uint64) *big.Int {
		var key common.Hash
		key[31] = byte(slot)
		v := s.GetState(L1GasPriceOracleAddress, key)
		return new(big.Int).SetBytes(v[:])
	}
	return l1FeeInputs{
		zeroes: read(0), ones: read(1), overhead: read(2), scalar: read(3),
		commitScalar: read(0), l1BaseFee: read(1), l1BlobBaseFee: read(2), blobScalar: read(3),
	}
}

// L1DataFee computes the surcharge Scroll charges on top of L2 gas for a
// non-L1-message transaction of txBytes total length, counting zero vs.
// non-zero bytes for the Bernoulli formula.
func L1DataFee(fork hardfork.ScrollFork, in l1FeeInputs, txBytes []byte) *big.Int {
	zeroes, ones := countBytes(txBytes)
	const oneE9 = 1_000_000_000

	if fork == hardfork.Curie {
		// (commit_scalar * l1_base_fee + l1_blob_base_fee * blob_scalar * tx_bytes) / 1e9
		term1 := new(big.Int).Mul(in.commitScalar, in.l1BaseFee)
		term2 := new(big.Int).Mul(in.l1BlobBaseFee, in.blobScalar)
		term2.Mul(term2, big.NewInt(int64(len(txBytes))))
		sum := new(big.Int).Add(term1, term2)
		return sum.Div(sum, big.NewInt(oneE9))
	}

	// Bernoulli: (zeroes*4 + (ones+4)*16 + overhead) * l1_base_fee * scalar / 1e9
	byteGas := new(big.Int).Add(
		new(big.Int).Mul(big.NewInt(int64(zeroes)), big.NewInt(4)),
		new(big.Int).Mul(big.NewInt(int64(ones)+4), big.NewInt(16)),
	)
	byteGas.Add(byteGas, in.overhead)
	fee := new(big.Int).Mul(byteGas, in.l1BaseFee)
	fee.Mul(fee, in.scalar)
	return fee.Div(fee, big.NewInt(oneE9))
}

func countBytes(b []byte) (zeroes, ones int) {
	for _, x := range b {
		if x == 0 {
			zeroes++
		} else {
			ones++
		}
	}
	return
}
