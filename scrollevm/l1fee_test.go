package scrollevm

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/automata-network/sgx-prover/hardfork"
)

func TestL1DataFeeBernoulliFormula(t *testing.T) {
	in := l1FeeInputs{
		overhead: big.NewInt(100),
		scalar:   big.NewInt(1000),
		l1BaseFee: big.NewInt(1_000_000_000),
	}
	txBytes := []byte{0, 0, 1, 1} // 2 zero bytes, 2 non-zero bytes
	fee := L1DataFee(hardfork.Bernoulli, in, txBytes)
	// (2*4 + (2+4)*16 + 100) * 1e9 * 1000 / 1e9 = (8+96+100)*1000 = 204000
	require.Equal(t, big.NewInt(204000), fee)
}

func TestL1DataFeeCurieFormula(t *testing.T) {
	in := l1FeeInputs{
		commitScalar:  big.NewInt(2),
		l1BaseFee:     big.NewInt(1_000_000_000),
		l1BlobBaseFee: big.NewInt(1),
		blobScalar:    big.NewInt(10),
	}
	txBytes := make([]byte, 5)
	fee := L1DataFee(hardfork.Curie, in, txBytes)
	// (2*1e9 + 1*10*5) / 1e9 = (2000000000+50)/1e9 = 2
	require.Equal(t, big.NewInt(2), fee)
}
