package prover

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/automata-network/sgx-prover/damanager"
	"github.com/automata-network/sgx-prover/enclaverpc"
	"github.com/automata-network/sgx-prover/hardfork"
	"github.com/automata-network/sgx-prover/primitives"
	"github.com/automata-network/sgx-prover/proverrpc"
)

// provePayload is the JSON shape of prover_proveTask's batch parameter:
// the accounts and transactions to replay against the cached witness's
// trusted block header.
type provePayload struct {
	ChainID  uint64          `json:"chain_id"`
	Accounts []EngineAccount `json:"accounts"`
	Txs      []EngineTx      `json:"txs"`
}

// Engine wires the DA witness cache and the enclave's signing key to the
// Scroll/Linea execution engines, and is the concrete Prover enclaverpc.API
// dispatches to.
type Engine struct {
	da          *damanager.Manager
	signer      Signer
	scrollForks map[uint64]hardfork.ScrollConfig
}

// NewEngine returns an Engine. scrollForks overrides/extends
// hardfork.KnownScrollConfigs(), letting a deployment add a devnet chain ID
// without forking the known-mainnets table.
func NewEngine(da *damanager.Manager, signer Signer, scrollForks map[uint64]hardfork.ScrollConfig) *Engine {
	forks := hardfork.KnownScrollConfigs()
	for id, cfg := range scrollForks {
		forks[id] = cfg
	}
	return &Engine{da: da, signer: signer, scrollForks: forks}
}

func (e *Engine) scrollFork(chainID uint64) (hardfork.ScrollConfig, error) {
	fork, ok := e.scrollForks[chainID]
	if !ok {
		return hardfork.ScrollConfig{}, fmt.Errorf("prover: no scroll fork config for chain id %d", chainID)
	}
	return fork, nil
}

// blockHashesFrom maps a witness's ancestor-hash list onto the block
// numbers ExecBlock's BLOCKHASH opcode handler looks up by, assuming the
// witness lists them most-recent-first starting at blockNumber-1 (the
// usual BLOCKHASH lookback convention).
func blockHashesFrom(hashes []primitives.Hash, blockNumber uint64) map[uint64]primitives.Hash {
	if len(hashes) == 0 {
		return nil
	}
	out := make(map[uint64]primitives.Hash, len(hashes))
	for i, h := range hashes {
		if blockNumber == 0 {
			break
		}
		blockNumber--
		out[blockNumber] = h
	}
	return out
}

// Prove implements enclaverpc.Prover for the with-context path: req
// identifies a single cached witness (Start must equal End, the witness
// cache only ever holds one block's environment per hash) and req.Batch
// carries the JSON-encoded pre-state and transactions to replay against
// it. There is no DA-batch header to rebuild here, so integrity rests on
// the witness's own content hash (pob.Verify) plus the usual
// prev/new-root chaining runAndSign performs.
func (e *Engine) Prove(alive *primitives.Alive, req enclaverpc.ProveRequest) (proverrpc.PoE, error) {
	if req.Start != req.End {
		return proverrpc.PoE{}, fmt.Errorf("prover: with-context Prove only supports single-block tasks (start=%d, end=%d); use prover_proveTaskWithoutContext for ranges", req.Start, req.End)
	}

	pob, ok := e.da.Get(req.PobHash)
	if !ok {
		return proverrpc.PoE{}, fmt.Errorf("prover: no cached witness for pob hash %x", req.PobHash)
	}
	if err := pob.Verify(); err != nil {
		return proverrpc.PoE{}, fmt.Errorf("prover: witness integrity check failed: %w", err)
	}

	var payload provePayload
	if len(req.Batch) > 0 {
		if err := json.Unmarshal(req.Batch, &payload); err != nil {
			return proverrpc.PoE{}, fmt.Errorf("prover: decoding batch payload: %w", err)
		}
	}

	chainID := payload.ChainID
	if chainID == 0 {
		chainID = pob.Data.ChainID
	}

	bb := BlockBundle{
		Number:      pob.Block.Number,
		Timestamp:   pob.Block.Timestamp,
		BaseFee:     new(big.Int).SetBytes(pob.Block.BaseFee[:]),
		GasLimit:    pob.Block.GasLimit,
		Coinbase:    pob.Block.Coinbase,
		Difficulty:  new(big.Int).SetBytes(pob.Block.Difficulty[:]),
		PrevRandao:  pob.Block.PrevRandao,
		BlockHashes: blockHashesFrom(pob.Data.BlockHashes, pob.Block.Number),
		Accounts:    payload.Accounts,
		Txs:         payload.Txs,
	}

	bundle := TaskBundle{
		ChainID:           chainID,
		ExpectedBatchHash: req.PobHash,
		Blocks:            []BlockBundle{bb},
	}

	switch req.TaskType {
	case TaskTypeScroll:
		fork, err := e.scrollFork(chainID)
		if err != nil {
			return proverrpc.PoE{}, err
		}
		return proveScroll(alive, bundle, fork, false, e.signer)
	case TaskTypeLinea:
		return proveLinea(alive, bundle, e.signer)
	default:
		return proverrpc.PoE{}, fmt.Errorf("prover: unknown task type %d", req.TaskType)
	}
}

// ProveWithoutContext implements enclaverpc.Prover for the stateless path:
// taskData is a full TaskBundle, including every field the Scroll
// DA-batch rebuild needs. Scroll tasks run verifier.Verify unmodified;
// Linea tasks always run the lighter replay-and-sign path.
func (e *Engine) ProveWithoutContext(alive *primitives.Alive, taskData []byte, taskType uint64) (proverrpc.PoE, error) {
	bundle, err := decodeTaskBundle(taskData)
	if err != nil {
		return proverrpc.PoE{}, fmt.Errorf("prover: decoding task bundle: %w", err)
	}

	switch taskType {
	case TaskTypeScroll:
		fork, err := e.scrollFork(bundle.ChainID)
		if err != nil {
			return proverrpc.PoE{}, err
		}
		return proveScroll(alive, bundle, fork, true, e.signer)
	case TaskTypeLinea:
		return proveLinea(alive, bundle, e.signer)
	default:
		return proverrpc.PoE{}, fmt.Errorf("prover: unknown task type %d", taskType)
	}
}
