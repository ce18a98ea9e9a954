// Package prover implements C12's engine-selection glue: it satisfies
// enclaverpc.Prover by decoding a self-contained task bundle, seeding the
// matching engine's StateDB (scrollevm or lineaevm), replaying every block,
// and handing the result to verifier.Verify (Scroll, full batch-header
// rebuild) or to the lighter direct-execute-and-sign path this package
// implements for Linea and for single-block with-context tasks.
//
// The wire format a real enclave would decode here is the witness's raw
// mpt_nodes/codes blobs plus ABI-decoded L1 commit calldata; this module's
// scrolltrie/lineatrie packages store nodes as opaque hashes with no
// exported (de)serialization, and its dabatch codec only reconstructs
// batch/chunk headers, not per-transaction bodies, from raw calldata (see
// DESIGN.md). TaskBundle is the pre-decoded substitute this package owns:
// accounts and transactions travel already resolved, so engine dispatch and
// root-chain verification are fully exercised without requiring those
// missing decoders.
package prover

import (
	"encoding/json"
	"math/big"

	"github.com/automata-network/sgx-prover/primitives"
)

// TaskType values match the original TaskType wire encoding: 1 selects the
// Scroll engine, 2 selects Linea.
const (
	TaskTypeScroll uint64 = 1
	TaskTypeLinea  uint64 = 2
)

// EngineAccount is one pre-state account: balance/nonce/code plus whatever
// storage slots the block's transactions touch.
type EngineAccount struct {
	Address primitives.Address `json:"address"`
	Nonce   uint64             `json:"nonce"`
	Balance *big.Int           `json:"balance"`
	Code    []byte             `json:"code,omitempty"`
	Storage map[string]string  `json:"storage,omitempty"` // hex32 key -> hex32 value
}

// EngineTx is one transaction to execute, with From already resolved
// (sender recovery from raw v/r/s happens upstream of this package).
type EngineTx struct {
	Hash        primitives.Hash     `json:"hash"`
	From        primitives.Address  `json:"from"`
	To          *primitives.Address `json:"to,omitempty"`
	Nonce       uint64              `json:"nonce"`
	GasLimit    uint64              `json:"gas_limit"`
	GasPrice    *big.Int            `json:"gas_price,omitempty"`
	GasFeeCap   *big.Int            `json:"gas_fee_cap,omitempty"`
	GasTipCap   *big.Int            `json:"gas_tip_cap,omitempty"`
	Value       *big.Int            `json:"value"`
	Data        []byte              `json:"data,omitempty"`
	RawBytes    []byte              `json:"raw_bytes,omitempty"` // Scroll L1-fee surcharge input
	IsL1Message bool                `json:"is_l1_message,omitempty"`

	// Type/V/R/S are only required on the Scroll ProveWithoutContext path,
	// to rebuild the DABlockTx the DA-batch hash is computed over; the
	// with-context and Linea paths never touch them.
	Type uint8    `json:"type,omitempty"`
	V    *big.Int `json:"v,omitempty"`
	R    *big.Int `json:"r,omitempty"`
	S    *big.Int `json:"s,omitempty"`
}

// BlockBundle is one block's replay inputs: its environment, pre-state
// accounts, transactions, and any ancestor hashes BLOCKHASH may need.
type BlockBundle struct {
	Number        uint64                       `json:"number"`
	Timestamp     uint64                       `json:"timestamp"`
	BaseFee       *big.Int                     `json:"base_fee"`
	GasLimit      uint64                       `json:"gas_limit"`
	Coinbase      primitives.Address           `json:"coinbase"`
	Difficulty    *big.Int                     `json:"difficulty"`
	PrevRandao    primitives.Hash              `json:"prev_randao"`
	NumL1Messages uint16                       `json:"num_l1_messages"`
	BlockHashes   map[uint64]primitives.Hash   `json:"block_hashes,omitempty"`
	Accounts      []EngineAccount              `json:"accounts"`
	Txs           []EngineTx                   `json:"txs"`

	// EndsChunk marks this block as the last one in its DA chunk; the
	// Scroll ProveWithoutContext rebuild path groups Blocks into chunks at
	// these boundaries. Ignored everywhere else.
	EndsChunk bool `json:"ends_chunk,omitempty"`
}

// TaskBundle is the full opaque payload prover_proveTaskWithoutContext
// carries, and the shape Prove's with-context path assembles internally
// from a cached witness header plus the RPC's batch parameter.
type TaskBundle struct {
	ChainID uint64 `json:"chain_id"`

	// Scroll-only: inputs to the DA-batch rebuild verifier.Verify performs.
	// Left zero-valued for Linea tasks and for with-context single-block
	// tasks, both of which skip the rebuild-and-compare step (see
	// DESIGN.md).
	ParentHeader       []byte            `json:"parent_header,omitempty"`
	ParentBatchHash    primitives.Hash   `json:"parent_batch_hash,omitempty"`
	BatchIndex         uint64            `json:"batch_index,omitempty"`
	TotalL1MsgPopped   uint64            `json:"total_l1_msg_popped,omitempty"`
	SkippedL1          map[uint64]bool   `json:"skipped_l1,omitempty"`
	L1MsgPopped        uint64            `json:"l1_msg_popped,omitempty"`
	BlobVersionedHash  primitives.Hash   `json:"blob_versioned_hash,omitempty"`
	Z                  primitives.Hash   `json:"z,omitempty"`
	Y                  primitives.Hash   `json:"y,omitempty"`
	LastBlockTimestamp uint64            `json:"last_block_timestamp,omitempty"`
	ExpectedBatchHash  primitives.Hash   `json:"expected_batch_hash,omitempty"`

	Blocks []BlockBundle `json:"blocks"`
}

func decodeTaskBundle(raw []byte) (TaskBundle, error) {
	var b TaskBundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return TaskBundle{}, err
	}
	return b, nil
}
