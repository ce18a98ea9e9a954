package scrollevm

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/automata-network/sgx-prover/primitives"
	"github.com/automata-network/sgx-prover/scrolltrie"
)

// WithdrawalQueueAddress is 0x5300...0000, whose slot 0 holds the L2->L1
// withdrawal trie root Scroll commits into every block.
var WithdrawalQueueAddress = common.HexToAddress("0x5300000000000000000000000000000000000000")

// L1GasPriceOracleAddress is 0x5300...0002, whose four fixed slots hold
// the L1-data-fee surcharge inputs.
var L1GasPriceOracleAddress = common.HexToAddress("0x5300000000000000000000000000000000000002")

// Commit flushes every dirty account (address order) and its dirty
// storage slots (slot order) into the backing trie, then returns the new
// state root and the withdrawal root read from slot 0 of
// WithdrawalQueueAddress.
func (s *StateDB) Commit() (stateRoot, withdrawalRoot primitives.Hash, err error) {
	addrs := make([]common.Address, 0, len(s.accounts))
	for a := range s.accounts {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return bytes.Compare(addrs[i][:], addrs[j][:]) < 0 })

	for _, addr := range addrs {
		acc := s.accounts[addr]
		if acc.destructed {
			s.trie.Put(addr[:], nil)
			continue
		}

		slots := s.storage[addr]
		if len(slots) > 0 {
			keys := make([]common.Hash, 0, len(slots))
			for k := range slots {
				keys = append(keys, k)
			}
			sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i][:], keys[j][:]) < 0 })

			storageTrie := scrolltrie.New()
			for _, k := range keys {
				v := slots[k]
				if v == (common.Hash{}) {
					continue // empty-value writes delete the slot
				}
				storageTrie.Put(k[:], v[:])
			}
			acc.storageRoot = storageTrie.Root()
		}

		rec := scrolltrie.Account{
			Nonce:            acc.nonce,
			Balance:          acc.balance.ToBig(),
			StorageRoot:      acc.storageRoot,
			KeccakCodeHash:   acc.keccakCodeHash,
			PoseidonCodeHash: acc.poseidonCodeHash,
			CodeSize:         uint64(len(acc.code)),
		}
		enc, encErr := rec.Encode()
		if encErr != nil {
			return primitives.Hash{}, primitives.Hash{}, encErr
		}
		s.trie.Put(addr[:], enc)
	}

	root := s.trie.Root()
	wr := s.GetState(WithdrawalQueueAddress, common.Hash{})
	return root, primitives.Hash(wr), nil
}
