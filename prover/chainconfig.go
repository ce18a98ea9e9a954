package prover

import (
	"math/big"

	"github.com/ethereum/go-ethereum/params"
)

func newUint64(n uint64) *uint64 { return &n }

// rollupChainConfig returns a go-ethereum ChainConfig for chainID with
// every block-numbered fork at genesis and Shanghai/Cancun active from
// time zero: both Scroll and Linea run EVM rules equivalent to a
// post-merge L1 from their first block, there is no pre-London history to
// model.
func rollupChainConfig(chainID uint64) *params.ChainConfig {
	zero := new(big.Int)
	return &params.ChainConfig{
		ChainID:             new(big.Int).SetUint64(chainID),
		HomesteadBlock:      zero,
		EIP150Block:         zero,
		EIP155Block:         zero,
		EIP158Block:         zero,
		ByzantiumBlock:      zero,
		ConstantinopleBlock: zero,
		PetersburgBlock:     zero,
		IstanbulBlock:       zero,
		MuirGlacierBlock:    zero,
		BerlinBlock:         zero,
		LondonBlock:         zero,
		ShanghaiTime:        newUint64(0),
		CancunTime:          newUint64(0),
	}
}
