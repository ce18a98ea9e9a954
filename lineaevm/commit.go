package lineaevm

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/automata-network/sgx-prover/lineatrie"
	"github.com/automata-network/sgx-prover/mimc"
	"github.com/automata-network/sgx-prover/primitives"
)

func mustSum(b []byte) primitives.Hash {
	h, err := mimc.Sum(b)
	if err != nil {
		h, _ = mimc.Sum(nil)
	}
	return h
}

// Commit flushes every dirty account (address order) and its dirty storage
// slots (slot order) into the backing lineatrie.Trie, mirroring
// scrollevm.StateDB.Commit's ordering discipline. Linea has no withdrawal
// queue at the state-transition layer, so only the state root is returned.
func (s *StateDB) Commit() (stateRoot primitives.Hash, err error) {
	addrs := make([]common.Address, 0, len(s.accounts))
	for a := range s.accounts {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return bytes.Compare(addrs[i][:], addrs[j][:]) < 0 })

	for _, addr := range addrs {
		acc := s.accounts[addr]
		if acc.destructed {
			s.trie.Delete(addrKey(addr))
			continue
		}

		slots := s.storage[addr]
		if len(slots) > 0 {
			keys := make([]common.Hash, 0, len(slots))
			for k := range slots {
				keys = append(keys, k)
			}
			sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i][:], keys[j][:]) < 0 })

			storageTrie := lineatrie.New()
			for _, k := range keys {
				v := slots[k]
				if v == (common.Hash{}) {
					continue
				}
				storageTrie.Put(primitives.Hash(k), mustSum(v[:]))
			}
			acc.storageRoot = storageTrie.Root()
		}

		rec := lineatrie.Account{
			Nonce:          acc.nonce,
			StorageRoot:    acc.storageRoot,
			MimcCodeHash:   acc.mimcCodeHash,
			KeccakCodeHash: acc.keccakCodeHash,
		}
		copy(rec.Balance[:], acc.balance.Bytes32())
		codeSize := uint64(len(acc.code))
		rec.CodeSize[24] = byte(codeSize >> 56)
		rec.CodeSize[25] = byte(codeSize >> 48)
		rec.CodeSize[26] = byte(codeSize >> 40)
		rec.CodeSize[27] = byte(codeSize >> 32)
		rec.CodeSize[28] = byte(codeSize >> 24)
		rec.CodeSize[29] = byte(codeSize >> 16)
		rec.CodeSize[30] = byte(codeSize >> 8)
		rec.CodeSize[31] = byte(codeSize)

		enc := rec.EncodeMimcSafe()
		if enc == nil {
			s.trie.Delete(addrKey(addr))
			continue
		}
		s.trie.Put(addrKey(addr), mustSum(enc))
	}

	return s.trie.Root(), nil
}
