package enclaverpc

import (
	"encoding/hex"
	"strings"

	"github.com/automata-network/sgx-prover/primitives"
)

func trimHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}

func parseHash(s string) (primitives.Hash, error) {
	b, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil {
		return primitives.Hash{}, err
	}
	return primitives.BytesToHash(b), nil
}

func encodeHash(h primitives.Hash) string {
	return "0x" + hex.EncodeToString(h[:])
}

func hexEncode(b []byte) string {
	return hex.EncodeToString(b)
}
