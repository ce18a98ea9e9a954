package prover

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"

	"github.com/automata-network/sgx-prover/dabatch"
	"github.com/automata-network/sgx-prover/hardfork"
	"github.com/automata-network/sgx-prover/poseidon"
	"github.com/automata-network/sgx-prover/primitives"
	"github.com/automata-network/sgx-prover/proverrpc"
	"github.com/automata-network/sgx-prover/scrollevm"
	"github.com/automata-network/sgx-prover/scrolltrie"
	"github.com/automata-network/sgx-prover/verifier"
)

func scrollEmptyKeccak() primitives.Hash {
	return primitives.BytesToHash(crypto.Keccak256(nil))
}

func seedScrollAccounts(sdb *scrollevm.StateDB, accounts []EngineAccount, emptyKeccak primitives.Hash) error {
	for _, a := range accounts {
		addr := common.Address(a.Address)
		storage, err := decodeStorage(a.Storage)
		if err != nil {
			return fmt.Errorf("prover: scroll account %s: %w", addr, err)
		}
		keccakHash := emptyKeccak
		poseidonHash := primitives.Hash(poseidon.CodeHash(nil))
		if len(a.Code) > 0 {
			keccakHash = primitives.BytesToHash(crypto.Keccak256(a.Code))
			poseidonHash = primitives.Hash(poseidon.CodeHash(a.Code))
		}
		acc := scrolltrie.Account{
			Nonce:            a.Nonce,
			Balance:          bigOrZero(a.Balance),
			StorageRoot:      scrolltrie.EmptyStorageRoot,
			KeccakCodeHash:   keccakHash,
			PoseidonCodeHash: poseidonHash,
			CodeSize:         uint64(len(a.Code)),
		}
		sdb.Seed(addr, acc, a.Code, storage)
	}
	return nil
}

func scrollTxsFrom(bb BlockBundle) []scrollevm.Tx {
	txs := make([]scrollevm.Tx, len(bb.Txs))
	for i, t := range bb.Txs {
		txs[i] = scrollevm.Tx{
			Hash:        t.Hash,
			From:        common.Address(t.From),
			To:          addrPtr(t.To),
			Nonce:       t.Nonce,
			GasLimit:    t.GasLimit,
			GasPrice:    bigOrZero(t.GasPrice),
			GasFeeCap:   bigOrZero(t.GasFeeCap),
			GasTipCap:   bigOrZero(t.GasTipCap),
			Value:       bigOrZero(t.Value),
			Data:        t.Data,
			RawBytes:    t.RawBytes,
			IsL1Message: t.IsL1Message,
		}
	}
	return txs
}

func dablockFrom(bb BlockBundle) dabatch.DABlock {
	txs := make([]dabatch.DABlockTx, len(bb.Txs))
	for i, t := range bb.Txs {
		txs[i] = dabatch.DABlockTx{
			Type:        t.Type,
			Nonce:       t.Nonce,
			GasLimit:    t.GasLimit,
			GasPrice:    bigOrZero(t.GasPrice),
			Value:       bigOrZero(t.Value),
			Data:        t.Data,
			To:          addrOrZero(t.To),
			V:           bigOrZero(t.V),
			R:           bigOrZero(t.R),
			S:           bigOrZero(t.S),
			IsL1Message: t.IsL1Message,
		}
	}
	return dabatch.DABlock{
		BlockNumber:   bb.Number,
		Timestamp:     bb.Timestamp,
		BaseFee:       bigOrZero(bb.BaseFee),
		GasLimit:      bb.GasLimit,
		NumL1Messages: bb.NumL1Messages,
		Txs:           txs,
	}
}

// runScrollBlock seeds a fresh Scroll StateDB from bb's pre-state,
// executes bb's transactions, and returns the chain of state roots: prev
// comes from committing right after seeding (before any tx runs, since
// Commit iterates s.accounts unconditionally), new and withdrawal come
// from the commit ExecBlock performs once every tx has run.
func runScrollBlock(chainConfig *params.ChainConfig, fork hardfork.ScrollFork, emptyKeccak primitives.Hash, bb BlockBundle) (prev, new, withdrawal primitives.Hash, err error) {
	sdb := scrollevm.New(scrolltrie.New(), emptyKeccak)
	if err := seedScrollAccounts(sdb, bb.Accounts, emptyKeccak); err != nil {
		return primitives.Hash{}, primitives.Hash{}, primitives.Hash{}, err
	}
	prev, _, err = sdb.Commit()
	if err != nil {
		return primitives.Hash{}, primitives.Hash{}, primitives.Hash{}, err
	}

	env := scrollevm.BlockEnv{
		Number:     bb.Number,
		Coinbase:   common.Address(bb.Coinbase),
		Timestamp:  bb.Timestamp,
		GasLimit:   bb.GasLimit,
		BaseFee:    bigOrZero(bb.BaseFee),
		Difficulty: bigOrZero(bb.Difficulty),
		PrevRandao: common.Hash(bb.PrevRandao),
		GetHash:    blockHashFunc(bb.BlockHashes),
	}

	new, withdrawal, err = scrollevm.ExecBlock(sdb, chainConfig, fork, env, scrollTxsFrom(bb))
	if err != nil {
		return primitives.Hash{}, primitives.Hash{}, primitives.Hash{}, err
	}
	return prev, new, withdrawal, nil
}

// proveScroll dispatches a Scroll task bundle. checkBatchHash selects the
// full DA-batch rebuild path (ProveWithoutContext, multi-block) via
// verifier.Verify; when false it replays the same blocks with runAndSign
// and skips the rebuild, the with-context single-block path that has no
// DA-batch header to rebuild from.
func proveScroll(alive *primitives.Alive, bundle TaskBundle, fork hardfork.ScrollConfig, checkBatchHash bool, signer Signer) (proverrpc.PoE, error) {
	if len(bundle.Blocks) == 0 {
		return proverrpc.PoE{}, fmt.Errorf("prover: scroll task bundle has no blocks")
	}
	chainConfig := rollupChainConfig(bundle.ChainID)
	emptyKeccak := scrollEmptyKeccak()

	if !checkBatchHash {
		jobs := make([]replayJob, len(bundle.Blocks))
		for i, bb := range bundle.Blocks {
			bb := bb
			blockFork := fork.ForkAt(bb.Number)
			jobs[i] = replayJob{
				Number: bb.Number,
				Run: func(alive *primitives.Alive) (primitives.Hash, primitives.Hash, primitives.Hash, error) {
					return runScrollBlock(chainConfig, blockFork, emptyKeccak, bb)
				},
			}
		}
		return runAndSign(alive, bundle.ExpectedBatchHash, jobs, signer)
	}

	var chunks []verifier.ChunkSpec
	var cur verifier.ChunkSpec
	jobs := make([]verifier.BlockJob, len(bundle.Blocks))
	for i, bb := range bundle.Blocks {
		bb := bb
		dablock := dablockFrom(bb)
		cur.Blocks = append(cur.Blocks, dablock)
		if bb.EndsChunk {
			chunks = append(chunks, cur)
			cur = verifier.ChunkSpec{}
		}
		blockFork := fork.ForkAt(bb.Number)
		jobs[i] = verifier.BlockJob{
			Number: bb.Number,
			Block:  dablock,
			Run: func(alive *primitives.Alive) (verifier.BlockResult, error) {
				prev, newRoot, withdrawal, err := runScrollBlock(chainConfig, blockFork, emptyKeccak, bb)
				if err != nil {
					return verifier.BlockResult{}, err
				}
				return verifier.BlockResult{PrevStateRoot: prev, NewStateRoot: newRoot, WithdrawalRoot: withdrawal}, nil
			},
		}
	}
	if len(cur.Blocks) > 0 {
		chunks = append(chunks, cur)
	}

	batchParams := verifier.BatchParams{
		Fork:               fork,
		ParentHeader:       bundle.ParentHeader,
		ParentBatchHash:    bundle.ParentBatchHash,
		BatchIndex:         bundle.BatchIndex,
		TotalL1MsgPopped:   bundle.TotalL1MsgPopped,
		SkippedL1:          bundle.SkippedL1,
		L1MsgPopped:        bundle.L1MsgPopped,
		BlobVersionedHash:  bundle.BlobVersionedHash,
		Z:                  bundle.Z,
		Y:                  bundle.Y,
		LastBlockTimestamp: bundle.LastBlockTimestamp,
		Chunks:             chunks,
		ExpectedBatchHash:  bundle.ExpectedBatchHash,
	}
	return verifier.Verify(alive, batchParams, jobs, signer)
}
