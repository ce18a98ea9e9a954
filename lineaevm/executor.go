package lineaevm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/params"

	"github.com/automata-network/sgx-prover/primitives"
)

// ErrCommitTx wraps a failed transaction application with its block number
// and tx hash.
type ErrCommitTx struct {
	Block  uint64
	TxHash primitives.Hash
	Err    error
}

func (e *ErrCommitTx) Error() string {
	return "lineaevm: commit tx failed at block " + itoa(e.Block) + ": " + e.Err.Error()
}

func (e *ErrCommitTx) Unwrap() error { return e.Err }

func itoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// BlockEnv is the block-level environment execution runs transactions
// against.
type BlockEnv struct {
	Number     uint64
	Coinbase   common.Address
	Timestamp  uint64
	GasLimit   uint64
	BaseFee    *big.Int
	Difficulty *big.Int
	PrevRandao common.Hash
	GetHash    func(uint64) common.Hash
}

// Tx is one transaction to execute.
type Tx struct {
	Hash      primitives.Hash
	From      common.Address
	To        *common.Address
	Nonce     uint64
	GasLimit  uint64
	GasPrice  *big.Int
	GasFeeCap *big.Int
	GasTipCap *big.Int
	Value     *big.Int
	Data      []byte
}

// ExecBlock applies env's transactions against statedb in order and returns
// the resulting state root. Unlike scrollevm.ExecBlock there is no L1 data
// fee to charge: Linea txs run through go-ethereum's EVM unmodified.
func ExecBlock(statedb *StateDB, chainConfig *params.ChainConfig, env BlockEnv, txs []Tx) (stateRoot primitives.Hash, err error) {
	blockCtx := vm.BlockContext{
		CanTransfer: core.CanTransfer,
		Transfer:    core.Transfer,
		GetHash:     env.GetHash,
		Coinbase:    env.Coinbase,
		GasLimit:    env.GasLimit,
		BlockNumber: new(big.Int).SetUint64(env.Number),
		Time:        env.Timestamp,
		Difficulty:  env.Difficulty,
		BaseFee:     env.BaseFee,
		Random:      &env.PrevRandao,
	}

	for _, tx := range txs {
		msg := &core.Message{
			From:      tx.From,
			To:        tx.To,
			Nonce:     tx.Nonce,
			Value:     tx.Value,
			GasLimit:  tx.GasLimit,
			GasPrice:  tx.GasPrice,
			GasFeeCap: tx.GasFeeCap,
			GasTipCap: tx.GasTipCap,
			Data:      tx.Data,
		}

		evm := vm.NewEVM(blockCtx, statedb, chainConfig, vm.Config{})
		gasPool := new(core.GasPool).AddGas(tx.GasLimit)
		snap := statedb.Snapshot()
		if _, applyErr := core.ApplyMessage(evm, msg, gasPool); applyErr != nil {
			statedb.RevertToSnapshot(snap)
			return primitives.Hash{}, &ErrCommitTx{Block: env.Number, TxHash: tx.Hash, Err: applyErr}
		}
	}

	return statedb.Commit()
}
