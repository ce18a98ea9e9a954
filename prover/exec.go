package prover

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/sync/errgroup"

	"github.com/automata-network/sgx-prover/primitives"
	"github.com/automata-network/sgx-prover/proverrpc"
)

// replayJob is one block's replay work, mirroring verifier.BlockJob but
// free of verifier's DABlock/batch-rebuild coupling: Linea tasks and
// with-context single-block tasks never go through a DA-batch rebuild, so
// they run this lighter pipeline directly instead of verifier.Verify.
type replayJob struct {
	Number uint64
	Run    func(alive *primitives.Alive) (prevRoot, newRoot, withdrawalRoot primitives.Hash, err error)
}

// blockStateHash mirrors verifier.BlockResult.stateHash: each block's
// contribution to the merged batch state_hash is
// keccak(prev || new || withdrawal).
func blockStateHash(prev, new, withdrawal primitives.Hash) primitives.Hash {
	buf := make([]byte, 0, 96)
	buf = append(buf, prev[:]...)
	buf = append(buf, new[:]...)
	buf = append(buf, withdrawal[:]...)
	return primitives.BytesToHash(crypto.Keccak256(buf))
}

// runAndSign replays jobs in block-number order on a pool bounded at
// verifier.MaxParallelBlocks, chains each block's prev/new state root
// against its predecessor, merges the per-block hashes into one PoE, sets
// batchHash as the caller-chosen BatchHash (Linea and with-context tasks
// have no rebuilt DA-batch header to report one from instead), and signs
// with signer.
func runAndSign(alive *primitives.Alive, batchHash primitives.Hash, jobs []replayJob, signer Signer) (proverrpc.PoE, error) {
	if len(jobs) == 0 {
		return proverrpc.PoE{}, fmt.Errorf("prover: task bundle has no blocks")
	}

	ordered := append([]replayJob(nil), jobs...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Number < ordered[j].Number })

	type result struct {
		prev, new, withdrawal primitives.Hash
	}
	results := make([]result, len(ordered))

	g := new(errgroup.Group)
	g.SetLimit(4)
	for i, job := range ordered {
		i, job := i, job
		g.Go(func() error {
			prev, new, withdrawal, err := job.Run(alive)
			if err != nil {
				return fmt.Errorf("block %d: %w", job.Number, err)
			}
			results[i] = result{prev: prev, new: new, withdrawal: withdrawal}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return proverrpc.PoE{}, err
	}

	for i := 1; i < len(results); i++ {
		if results[i].prev != results[i-1].new {
			return proverrpc.PoE{}, fmt.Errorf("prover: state root mismatch at block %d", ordered[i].Number)
		}
	}

	perBlock := make([]primitives.Hash, len(results))
	for i, r := range results {
		perBlock[i] = blockStateHash(r.prev, r.new, r.withdrawal)
	}

	poe := proverrpc.PoE{
		BatchHash:      batchHash,
		StateHash:      proverrpc.MergeStateHash(perBlock),
		PrevStateRoot:  results[0].prev,
		NewStateRoot:   results[len(results)-1].new,
		WithdrawalRoot: results[len(results)-1].withdrawal,
	}
	return signer.Sign(poe)
}

// Signer signs a completed PoE with the enclave's active key; satisfied by
// keypair.Keypair (same contract as verifier.Signer).
type Signer interface {
	Sign(poe proverrpc.PoE) (proverrpc.PoE, error)
}

func hexToHash32(s string) (common.Hash, error) {
	b, err := decodeHexString(s)
	if err != nil {
		return common.Hash{}, err
	}
	var h common.Hash
	if len(b) > 32 {
		return common.Hash{}, fmt.Errorf("prover: storage value %q longer than 32 bytes", s)
	}
	copy(h[32-len(b):], b)
	return h, nil
}

func decodeStorage(in map[string]string) (map[common.Hash]common.Hash, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[common.Hash]common.Hash, len(in))
	for k, v := range in {
		key, err := hexToHash32(k)
		if err != nil {
			return nil, err
		}
		val, err := hexToHash32(v)
		if err != nil {
			return nil, err
		}
		out[key] = val
	}
	return out, nil
}
