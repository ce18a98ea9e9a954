package prover

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"

	"github.com/automata-network/sgx-prover/lineaevm"
	"github.com/automata-network/sgx-prover/lineatrie"
	"github.com/automata-network/sgx-prover/mimc"
	"github.com/automata-network/sgx-prover/primitives"
	"github.com/automata-network/sgx-prover/proverrpc"
)

var lineaEmptyStorageRoot = lineatrie.New().Root()

func lineaCodeHash(code []byte) (keccak, mimcHash primitives.Hash) {
	if len(code) == 0 {
		h, _ := mimc.Sum(nil)
		return primitives.Hash{}, primitives.Hash(h)
	}
	h, err := mimc.Sum(code)
	if err != nil {
		h, _ = mimc.Sum(nil)
	}
	return primitives.BytesToHash(crypto.Keccak256(code)), primitives.Hash(h)
}

func seedLineaAccounts(sdb *lineaevm.StateDB, accounts []EngineAccount) error {
	for _, a := range accounts {
		addr := common.Address(a.Address)
		storage, err := decodeStorage(a.Storage)
		if err != nil {
			return fmt.Errorf("prover: linea account %s: %w", addr, err)
		}
		keccakHash, mimcHash := lineaCodeHash(a.Code)
		acc := lineatrie.Account{
			Nonce:          a.Nonce,
			Balance:        u256Slot(a.Balance),
			StorageRoot:    lineaEmptyStorageRoot,
			MimcCodeHash:   mimcHash,
			KeccakCodeHash: keccakHash,
			CodeSize:       u256Slot(big.NewInt(int64(len(a.Code)))),
		}
		sdb.Seed(addr, acc, a.Code, storage)
	}
	return nil
}

func lineaTxsFrom(bb BlockBundle) []lineaevm.Tx {
	txs := make([]lineaevm.Tx, len(bb.Txs))
	for i, t := range bb.Txs {
		txs[i] = lineaevm.Tx{
			Hash:      t.Hash,
			From:      common.Address(t.From),
			To:        addrPtr(t.To),
			Nonce:     t.Nonce,
			GasLimit:  t.GasLimit,
			GasPrice:  bigOrZero(t.GasPrice),
			GasFeeCap: bigOrZero(t.GasFeeCap),
			GasTipCap: bigOrZero(t.GasTipCap),
			Value:     bigOrZero(t.Value),
			Data:      t.Data,
		}
	}
	return txs
}

// runLineaBlock seeds a fresh Linea StateDB from bb's pre-state, executes
// bb's transactions, and returns its prev/new state roots via the same
// double-Commit technique as runScrollBlock. Linea has no withdrawal-root
// concept at the state-transition layer, so withdrawal is always the zero
// hash.
func runLineaBlock(chainConfig *params.ChainConfig, bb BlockBundle) (prev, new, withdrawal primitives.Hash, err error) {
	sdb := lineaevm.New(lineatrie.New())
	if err := seedLineaAccounts(sdb, bb.Accounts); err != nil {
		return primitives.Hash{}, primitives.Hash{}, primitives.Hash{}, err
	}
	prev, err = sdb.Commit()
	if err != nil {
		return primitives.Hash{}, primitives.Hash{}, primitives.Hash{}, err
	}

	env := lineaevm.BlockEnv{
		Number:     bb.Number,
		Coinbase:   common.Address(bb.Coinbase),
		Timestamp:  bb.Timestamp,
		GasLimit:   bb.GasLimit,
		BaseFee:    bigOrZero(bb.BaseFee),
		Difficulty: bigOrZero(bb.Difficulty),
		PrevRandao: common.Hash(bb.PrevRandao),
		GetHash:    blockHashFunc(bb.BlockHashes),
	}

	new, err = lineaevm.ExecBlock(sdb, chainConfig, env, lineaTxsFrom(bb))
	if err != nil {
		return primitives.Hash{}, primitives.Hash{}, primitives.Hash{}, err
	}
	return prev, new, primitives.Hash{}, nil
}

// proveLinea always runs the direct replay-and-sign path: LineaConfig
// carries no BatchVersionFor method, so it cannot satisfy
// dabatch.ForkConfig and a Linea task never goes through verifier.Verify's
// DA-batch rebuild.
func proveLinea(alive *primitives.Alive, bundle TaskBundle, signer Signer) (proverrpc.PoE, error) {
	if len(bundle.Blocks) == 0 {
		return proverrpc.PoE{}, fmt.Errorf("prover: linea task bundle has no blocks")
	}
	chainConfig := rollupChainConfig(bundle.ChainID)

	jobs := make([]replayJob, len(bundle.Blocks))
	for i, bb := range bundle.Blocks {
		bb := bb
		jobs[i] = replayJob{
			Number: bb.Number,
			Run: func(alive *primitives.Alive) (primitives.Hash, primitives.Hash, primitives.Hash, error) {
				return runLineaBlock(chainConfig, bb)
			},
		}
	}
	return runAndSign(alive, bundle.ExpectedBatchHash, jobs, signer)
}
