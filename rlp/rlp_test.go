package rlp

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeUint64RoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 255, 256, 0x0102030405060708}
	for _, n := range cases {
		enc := EncodeUint64(n)
		items, err := DecodeList(EncodeList(enc))
		require.NoError(t, err)
		require.Len(t, items, 1)
		got, err := DecodeUint64Item(items[0])
		require.NoError(t, err)
		require.Equal(t, n, got)
	}
}

func TestEncodeZeroIsEmptyString(t *testing.T) {
	require.Equal(t, []byte{0x80}, EncodeUint64(0))
	require.Equal(t, []byte{0x80}, EncodeBigInt(nil))
	require.Equal(t, []byte{0x80}, EncodeBigInt(new(big.Int)))
}

func TestEncodeBigIntRoundTrip(t *testing.T) {
	n := new(big.Int)
	n.SetString("123456789012345678901234567890", 10)
	items, err := DecodeList(EncodeList(EncodeBigInt(n)))
	require.NoError(t, err)
	require.Equal(t, 0, n.Cmp(DecodeBigIntItem(items[0])))
}

func TestEncodeBytesShortAndLongForm(t *testing.T) {
	short := []byte{0x01, 0x02, 0x03}
	long := make([]byte, 64)
	for i := range long {
		long[i] = byte(i)
	}

	list := EncodeList(EncodeBytes(short), EncodeBytes(long))
	items, err := DecodeList(list)
	require.NoError(t, err)
	require.Equal(t, short, items[0])
	require.Equal(t, long, items[1])
}

func TestEncodeSingleByteBelow0x80IsItself(t *testing.T) {
	require.Equal(t, []byte{0x41}, EncodeBytes([]byte{0x41}))
}

func TestDecodeListRejectsNonList(t *testing.T) {
	_, err := DecodeList(EncodeBytes([]byte("not a list")))
	require.ErrorIs(t, err, ErrExpectedList)
}

func TestDecodeListRejectsTrailingBytes(t *testing.T) {
	list := EncodeList(EncodeUint64(1))
	_, err := DecodeList(append(list, 0xFF))
	require.ErrorIs(t, err, ErrTrailingData)
}

func TestDecodeUint64ItemRejectsLeadingZero(t *testing.T) {
	_, err := DecodeUint64Item([]byte{0x00, 0x01})
	require.ErrorIs(t, err, ErrNonCanonicalInt)
}

func TestEmptyListRoundTrips(t *testing.T) {
	items, err := DecodeList(EncodeList())
	require.NoError(t, err)
	require.Len(t, items, 0)
}
