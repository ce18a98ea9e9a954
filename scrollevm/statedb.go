// Package scrollevm adapts go-ethereum's core/vm EVM interpreter to run
// against a Scroll-flavored Poseidon ZK-trie instead of go-ethereum's own
// hex-Merkle-Patricia state.StateDB, since post-state must land in the
// Poseidon trie for the batch's rebuilt state root to mean anything. It and
// lineaevm are the packages in the module that import go-ethereum's core/vm
// and core packages directly.
package scrollevm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/automata-network/sgx-prover/poseidon"
	"github.com/automata-network/sgx-prover/primitives"
	"github.com/automata-network/sgx-prover/scrolltrie"
)

type accountState struct {
	nonce            uint64
	balance          *uint256.Int
	code             []byte
	keccakCodeHash   primitives.Hash
	poseidonCodeHash primitives.Hash
	storageRoot      primitives.Hash
	destructed       bool
	exists           bool
}

func (a *accountState) clone() *accountState {
	c := *a
	c.balance = new(uint256.Int).Set(a.balance)
	return &c
}

// StateDB implements go-ethereum's vm.StateDB interface against a
// scrolltrie.Trie seeded from a block witness. It buffers all writes in
// memory; Commit flushes the dirty accounts and storage slots into the
// trie in address/slot order and returns the new root.
type StateDB struct {
	trie    *scrolltrie.Trie
	emptyKeccak primitives.Hash

	accounts map[common.Address]*accountState
	storage  map[common.Address]map[common.Hash]common.Hash
	original map[common.Address]map[common.Hash]common.Hash

	accessAddrs map[common.Address]bool
	accessSlots map[common.Address]map[common.Hash]bool

	refund uint64
	logs   []*types.Log

	snapshots []snapshot
}

type snapshot struct {
	accounts    map[common.Address]*accountState
	storage     map[common.Address]map[common.Hash]common.Hash
	accessAddrs map[common.Address]bool
	accessSlots map[common.Address]map[common.Hash]bool
	refund      uint64
	nlogs       int
}

// New returns a StateDB reading/writing through trie, with emptyKeccak as
// the code hash for accounts with no code (keccak256 of the empty byte
// string, threaded through so tests can use a precomputed constant).
func New(trie *scrolltrie.Trie, emptyKeccak primitives.Hash) *StateDB {
	return &StateDB{
		trie:        trie,
		emptyKeccak: emptyKeccak,
		accounts:    make(map[common.Address]*accountState),
		storage:     make(map[common.Address]map[common.Hash]common.Hash),
		original:    make(map[common.Address]map[common.Hash]common.Hash),
		accessAddrs: make(map[common.Address]bool),
		accessSlots: make(map[common.Address]map[common.Hash]bool),
	}
}

func (s *StateDB) getOrLoad(addr common.Address) *accountState {
	if a, ok := s.accounts[addr]; ok {
		return a
	}
	a := &accountState{balance: new(uint256.Int)}
	raw, found, err := s.trie.Get(addr[:])
	if err == nil && found {
		acc, decErr := scrolltrie.DecodeAccount(raw)
		if decErr == nil {
			a.nonce = acc.Nonce
			a.balance, _ = uint256.FromBig(acc.Balance)
			a.keccakCodeHash = acc.KeccakCodeHash
			a.poseidonCodeHash = acc.PoseidonCodeHash
			a.storageRoot = acc.StorageRoot
			a.exists = true
		}
	}
	s.accounts[addr] = a
	return a
}

// Seed installs a known account directly, bypassing trie lookup, and
// optionally attaches its code and storage pre-state. Callers that already
// hold a decoded witness account use this instead of relying on getOrLoad's
// trie round-trip, mirroring lineaevm.StateDB.Seed.
func (s *StateDB) Seed(addr common.Address, acc scrolltrie.Account, code []byte, storage map[common.Hash]common.Hash) {
	balance, _ := uint256.FromBig(acc.Balance)
	if balance == nil {
		balance = new(uint256.Int)
	}
	s.accounts[addr] = &accountState{
		nonce:            acc.Nonce,
		balance:          balance,
		code:             code,
		keccakCodeHash:   acc.KeccakCodeHash,
		poseidonCodeHash: acc.PoseidonCodeHash,
		storageRoot:      acc.StorageRoot,
		exists:           true,
	}
	if len(storage) > 0 {
		cp := make(map[common.Hash]common.Hash, len(storage))
		for k, v := range storage {
			cp[k] = v
		}
		s.original[addr] = cp
	}
}

func (s *StateDB) CreateAccount(addr common.Address) {
	s.accounts[addr] = &accountState{balance: new(uint256.Int), exists: true}
}

// CreateContract marks addr as a freshly-deployed contract; scrollevm does
// not distinguish EOA/contract creation in its account model beyond
// whatever code ends up attached, so this is a no-op beyond ensuring the
// account exists.
func (s *StateDB) CreateContract(addr common.Address) {
	s.getOrLoad(addr)
}

func (s *StateDB) SubBalance(addr common.Address, amount *uint256.Int, _ tracing.BalanceChangeReason) uint256.Int {
	a := s.getOrLoad(addr)
	prev := *a.balance
	a.balance.Sub(a.balance, amount)
	return prev
}

func (s *StateDB) AddBalance(addr common.Address, amount *uint256.Int, _ tracing.BalanceChangeReason) uint256.Int {
	a := s.getOrLoad(addr)
	prev := *a.balance
	a.balance.Add(a.balance, amount)
	return prev
}

func (s *StateDB) GetBalance(addr common.Address) *uint256.Int {
	return new(uint256.Int).Set(s.getOrLoad(addr).balance)
}

func (s *StateDB) GetNonce(addr common.Address) uint64 {
	return s.getOrLoad(addr).nonce
}

func (s *StateDB) SetNonce(addr common.Address, nonce uint64, _ tracing.NonceChangeReason) {
	s.getOrLoad(addr).nonce = nonce
}

func (s *StateDB) GetCodeHash(addr common.Address) common.Hash {
	return common.Hash(s.getOrLoad(addr).keccakCodeHash)
}

func (s *StateDB) GetCode(addr common.Address) []byte {
	return s.getOrLoad(addr).code
}

func (s *StateDB) SetCode(addr common.Address, code []byte) {
	a := s.getOrLoad(addr)
	a.code = code
	a.keccakCodeHash = primitives.BytesToHash(crypto.Keccak256(code))
	a.poseidonCodeHash = poseidon.CodeHash(code)
}

func (s *StateDB) GetCodeSize(addr common.Address) int {
	return len(s.getOrLoad(addr).code)
}

func (s *StateDB) AddRefund(gas uint64)  { s.refund += gas }
func (s *StateDB) SubRefund(gas uint64)  { s.refund -= gas }
func (s *StateDB) GetRefund() uint64     { return s.refund }

func (s *StateDB) slotMap(addr common.Address) map[common.Hash]common.Hash {
	m, ok := s.storage[addr]
	if !ok {
		m = make(map[common.Hash]common.Hash)
		s.storage[addr] = m
	}
	return m
}

func (s *StateDB) GetCommittedState(addr common.Address, key common.Hash) common.Hash {
	if m, ok := s.original[addr]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return common.Hash{}
}

func (s *StateDB) GetState(addr common.Address, key common.Hash) common.Hash {
	if v, ok := s.slotMap(addr)[key]; ok {
		return v
	}
	return s.GetCommittedState(addr, key)
}

func (s *StateDB) SetState(addr common.Address, key, value common.Hash) common.Hash {
	s.getOrLoad(addr)
	prev := s.GetState(addr, key)
	s.slotMap(addr)[key] = value
	return prev
}

func (s *StateDB) GetStorageRoot(addr common.Address) common.Hash {
	return common.Hash{}
}

func (s *StateDB) SelfDestruct(addr common.Address) uint256.Int {
	a := s.getOrLoad(addr)
	prev := *a.balance
	a.destructed = true
	a.balance = new(uint256.Int)
	return prev
}

func (s *StateDB) HasSelfDestructed(addr common.Address) bool {
	return s.getOrLoad(addr).destructed
}

func (s *StateDB) Selfdestruct6780(addr common.Address) (uint256.Int, bool) {
	return s.SelfDestruct(addr), true
}

func (s *StateDB) Exist(addr common.Address) bool {
	a := s.getOrLoad(addr)
	return a.exists || a.nonce != 0 || a.balance.Sign() != 0 || len(a.code) > 0
}

func (s *StateDB) Empty(addr common.Address) bool {
	a := s.getOrLoad(addr)
	return a.nonce == 0 && a.balance.IsZero() && len(a.code) == 0
}

func (s *StateDB) AddressInAccessList(addr common.Address) bool {
	return s.accessAddrs[addr]
}

func (s *StateDB) SlotInAccessList(addr common.Address, slot common.Hash) (bool, bool) {
	addrOK := s.accessAddrs[addr]
	slotOK := s.accessSlots[addr] != nil && s.accessSlots[addr][slot]
	return addrOK, slotOK
}

func (s *StateDB) AddAddressToAccessList(addr common.Address) {
	s.accessAddrs[addr] = true
}

func (s *StateDB) AddSlotToAccessList(addr common.Address, slot common.Hash) {
	s.accessAddrs[addr] = true
	m, ok := s.accessSlots[addr]
	if !ok {
		m = make(map[common.Hash]bool)
		s.accessSlots[addr] = m
	}
	m[slot] = true
}

func (s *StateDB) Snapshot() int {
	snap := snapshot{
		accounts:    make(map[common.Address]*accountState, len(s.accounts)),
		storage:     make(map[common.Address]map[common.Hash]common.Hash, len(s.storage)),
		accessAddrs: make(map[common.Address]bool, len(s.accessAddrs)),
		accessSlots: make(map[common.Address]map[common.Hash]bool, len(s.accessSlots)),
		refund:      s.refund,
		nlogs:       len(s.logs),
	}
	for k, v := range s.accounts {
		snap.accounts[k] = v.clone()
	}
	for addr, slots := range s.storage {
		cp := make(map[common.Hash]common.Hash, len(slots))
		for k, v := range slots {
			cp[k] = v
		}
		snap.storage[addr] = cp
	}
	for k, v := range s.accessAddrs {
		snap.accessAddrs[k] = v
	}
	for addr, slots := range s.accessSlots {
		cp := make(map[common.Hash]bool, len(slots))
		for k, v := range slots {
			cp[k] = v
		}
		snap.accessSlots[addr] = cp
	}
	s.snapshots = append(s.snapshots, snap)
	return len(s.snapshots) - 1
}

func (s *StateDB) RevertToSnapshot(id int) {
	snap := s.snapshots[id]
	s.accounts = snap.accounts
	s.storage = snap.storage
	s.accessAddrs = snap.accessAddrs
	s.accessSlots = snap.accessSlots
	s.refund = snap.refund
	s.logs = s.logs[:snap.nlogs]
	s.snapshots = s.snapshots[:id]
}

func (s *StateDB) AddLog(log *types.Log) {
	s.logs = append(s.logs, log)
}

func (s *StateDB) Logs() []*types.Log { return s.logs }

func (s *StateDB) AddPreimage(common.Hash, []byte) {}
