package poseidon

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func TestCodeHashDeterministic(t *testing.T) {
	a := CodeHash([]byte{0x60, 0x80, 0x60, 0x40})
	b := CodeHash([]byte{0x60, 0x80, 0x60, 0x40})
	require.Equal(t, a, b)
}

func TestCodeHashSensitiveToInput(t *testing.T) {
	empty := CodeHash(nil)
	zero := CodeHash([]byte{0})
	one := CodeHash([]byte{1})
	require.NotEqual(t, empty, zero)
	require.NotEqual(t, zero, one)
}

func TestHashElementsDomainSeparation(t *testing.T) {
	var a, b fr.Element
	a.SetUint64(1)
	b.SetUint64(2)

	branch := HashElements(0, a, b)
	leaf := HashElements(1, a, b)
	require.NotEqual(t, branch.Bytes(), leaf.Bytes())
}

func TestHashBytes32CommutativityDoesNotHold(t *testing.T) {
	var left, right [32]byte
	left[31] = 1
	right[31] = 2

	h1 := HashBytes32(0, left, right)
	h2 := HashBytes32(0, right, left)
	require.NotEqual(t, h1, h2, "branch hashing must be order-sensitive")
}
