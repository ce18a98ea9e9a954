package mimc

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/ethereum/go-ethereum/crypto"
)

// nbRounds is the number of MiMC Feistel rounds, matching the upstream
// Linea MiMC_NB_ROUNDS constant.
const nbRounds = 62

// BlockSize is the byte width of one field element in big-endian encoding.
const BlockSize = 32

// roundConstants are derived once at init by repeatedly keccak-hashing the
// ASCII seed "seed", each digest reduced into a field element. This mirrors
// the upstream derivation exactly so downstream MiMC digests agree with any
// component generated from the same seed.
var roundConstants [nbRounds]fr.Element

func init() {
	rnd := crypto.Keccak256([]byte("seed"))
	rnd = crypto.Keccak256(rnd)
	for i := 0; i < nbRounds; i++ {
		roundConstants[i].SetBytes(rnd)
		rnd = crypto.Keccak256(rnd)
	}
}
