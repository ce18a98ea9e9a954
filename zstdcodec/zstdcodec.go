// Package zstdcodec wraps klauspost/compress/zstd with the fixed encoder
// parameters the blob payload codec requires for byte-identical output
// across runs: no checksum, no dictionary, a 128 KiB window, and an
// encoder level tuned for small output rather than raw speed.
package zstdcodec

import (
	"bytes"

	"github.com/klauspost/compress/zstd"
)

// WindowLog is log2 of the maximum match-window size (17 -> 128 KiB),
// matching the blob payload codec's deterministic-parameters contract.
const WindowLog = 17

// TargetBlockSize is the 124 KiB block size of the blob payload codec.
// newEncoder does not pass it to the encoder, which picks its own block
// boundaries.
const TargetBlockSize = 124 * 1024

func newEncoder(w *bytes.Buffer) (*zstd.Encoder, error) {
	return zstd.NewWriter(w,
		zstd.WithEncoderLevel(zstd.SpeedBestCompression),
		zstd.WithWindowSize(1<<WindowLog),
		zstd.WithEncoderCRC(false),
	)
}

// Compress returns the zstd-compressed form of data under the fixed
// parameter set. The output is a standard zstd frame, magic number included;
// no checksum or dictionary id is emitted.
func Compress(data []byte) ([]byte, error) {
	var out bytes.Buffer
	enc, err := newEncoder(&out)
	if err != nil {
		return nil, err
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
