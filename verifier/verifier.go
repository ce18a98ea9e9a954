// Package verifier orchestrates one batch verification run: rebuild the
// DA-batch header from witnesses, execute every block in parallel on a
// bounded worker pool, merge the per-block results into one signed
// Proof-of-Execution.
package verifier

import (
	"sort"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/sync/errgroup"

	"github.com/automata-network/sgx-prover/dabatch"
	"github.com/automata-network/sgx-prover/primitives"
	"github.com/automata-network/sgx-prover/proverrpc"
)

// MaxParallelBlocks is the fixed per-batch executor pool size (§5: "fixed
// 4 worker parallelism").
const MaxParallelBlocks = 4

// StateRootMismatch reports a chain-of-custody break between two blocks'
// state roots: the local value this verifier computed vs. the remote
// value the witness or prior block claimed.
type StateRootMismatch struct {
	Block uint64
	Local primitives.Hash
	Remote primitives.Hash
}

func (e *StateRootMismatch) Error() string {
	return "verifier: state root mismatch at block " + itoa(e.Block)
}

// BatchHashMismatch reports that the rebuilt DA-batch hash does not match
// the expected (sequencer-finalized) one.
type BatchHashMismatch struct {
	Local  primitives.Hash
	Remote primitives.Hash
}

func (e *BatchHashMismatch) Error() string { return "verifier: batch hash mismatch" }

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

// BlockResult is what one worker returns after replaying its block.
type BlockResult struct {
	PrevStateRoot  primitives.Hash
	NewStateRoot   primitives.Hash
	WithdrawalRoot primitives.Hash
}

// stateHash is this block's contribution to the batch-level merged
// state_hash: keccak(prev || new || withdrawal), giving every block a
// single 32-byte commitment that chains cleanly under MergeStateHash.
func (r BlockResult) stateHash() primitives.Hash {
	buf := make([]byte, 0, 96)
	buf = append(buf, r.PrevStateRoot[:]...)
	buf = append(buf, r.NewStateRoot[:]...)
	buf = append(buf, r.WithdrawalRoot[:]...)
	return primitives.BytesToHash(crypto.Keccak256(buf))
}

// BlockJob is one block's replay work: the DABlock (needed to rebuild the
// batch header) and a Run closure that executes it against an
// engine-specific (scrollevm or lineaevm) StateDB seeded from that
// block's witness. Run receives alive, but neither Verify nor the Run
// closures built by the prover or the executors check it, so a cancellation
// does not stop a block that is already running.
type BlockJob struct {
	Number uint64
	Block  dabatch.DABlock
	Run    func(alive *primitives.Alive) (BlockResult, error)
}

// ChunkSpec is one DA chunk's block list, in block order, mirroring how
// the on-chain commit groups blocks into chunks for hashing.
type ChunkSpec struct {
	Blocks []dabatch.DABlock
}

// Signer signs a PoE with the enclave's active key; satisfied by
// keypair.Keypair.
type Signer interface {
	Sign(poe proverrpc.PoE) (proverrpc.PoE, error)
}

// BatchParams carries everything needed to rebuild and validate the
// DA-batch header alongside the per-block jobs.
type BatchParams struct {
	Fork              dabatch.ForkConfig
	ParentHeader      []byte
	ParentBatchHash   primitives.Hash
	BatchIndex        uint64
	TotalL1MsgPopped  uint64
	SkippedL1         map[uint64]bool
	L1MsgPopped       uint64
	BlobVersionedHash primitives.Hash
	Z, Y              primitives.Hash
	LastBlockTimestamp uint64
	Chunks            []ChunkSpec

	// ExpectedBatchHash is the sequencer-finalized batch hash (from the
	// L1 Finalize event, in tests) the rebuilt batch must match.
	ExpectedBatchHash primitives.Hash
}

// Verify runs the full pipeline described in spec §4.5: rebuild the
// batch, execute every job's block in parallel (bounded at
// MaxParallelBlocks), merge the per-block results in block order, and
// sign the result with signer. Any block failure or root mismatch is
// fatal and aborts the whole batch.
func Verify(alive *primitives.Alive, params BatchParams, jobs []BlockJob, signer Signer) (proverrpc.PoE, error) {
	rebuilt, err := rebuildBatch(params)
	if err != nil {
		return proverrpc.PoE{}, err
	}
	if rebuilt.Hash() != params.ExpectedBatchHash {
		return proverrpc.PoE{}, &BatchHashMismatch{Local: rebuilt.Hash(), Remote: params.ExpectedBatchHash}
	}

	ordered := append([]BlockJob(nil), jobs...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Number < ordered[j].Number })

	results := make([]BlockResult, len(ordered))
	g := new(errgroup.Group)
	g.SetLimit(MaxParallelBlocks)
	for i, job := range ordered {
		i, job := i, job
		g.Go(func() error {
			r, err := job.Run(alive)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return proverrpc.PoE{}, err
	}

	for i := 1; i < len(results); i++ {
		if results[i].PrevStateRoot != results[i-1].NewStateRoot {
			return proverrpc.PoE{}, &StateRootMismatch{
				Block:  ordered[i].Number,
				Local:  results[i].PrevStateRoot,
				Remote: results[i-1].NewStateRoot,
			}
		}
	}

	perBlockHashes := make([]primitives.Hash, len(results))
	for i, r := range results {
		perBlockHashes[i] = r.stateHash()
	}

	poe := proverrpc.PoE{
		BatchHash: rebuilt.Hash(),
		StateHash: proverrpc.MergeStateHash(perBlockHashes),
	}
	if len(results) > 0 {
		poe.PrevStateRoot = results[0].PrevStateRoot
		poe.NewStateRoot = results[len(results)-1].NewStateRoot
		poe.WithdrawalRoot = results[len(results)-1].WithdrawalRoot
	}

	return signer.Sign(poe)
}

func rebuildBatch(params BatchParams) (*dabatch.DABatch, error) {
	bb := dabatch.NewBatchBuilder(params.Fork, params.ParentHeader, params.ParentBatchHash, params.BatchIndex, params.TotalL1MsgPopped)
	for _, chunk := range params.Chunks {
		for _, blk := range chunk.Blocks {
			if err := bb.AddBlock(blk.BlockNumber, blk); err != nil {
				return nil, err
			}
		}
		bb.CloseChunk()
	}
	return bb.Build(params.SkippedL1, params.L1MsgPopped, params.BlobVersionedHash, params.Z, params.Y, params.LastBlockTimestamp)
}
