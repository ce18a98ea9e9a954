// Package lineaevm adapts go-ethereum's core/vm EVM interpreter to run
// against Linea's fixed-depth MiMC trie, the same way scrollevm adapts it
// to the Scroll Poseidon trie. There is no L1-data-fee surcharge here:
// Linea has no L1-message/blob-fee concept at the state-transition layer,
// so execution is a plain go-ethereum ApplyMessage loop.
package lineaevm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/automata-network/sgx-prover/lineatrie"
	"github.com/automata-network/sgx-prover/mimc"
	"github.com/automata-network/sgx-prover/primitives"
)

type accountState struct {
	nonce          uint64
	balance        *uint256.Int
	code           []byte
	keccakCodeHash primitives.Hash
	mimcCodeHash   primitives.Hash
	storageRoot    primitives.Hash
	destructed     bool
	exists         bool
}

func (a *accountState) clone() *accountState {
	c := *a
	c.balance = new(uint256.Int).Set(a.balance)
	return &c
}

// StateDB implements go-ethereum's vm.StateDB interface against a
// lineatrie.Trie seeded from a block witness. Like scrollevm.StateDB it
// buffers writes in memory and only touches the trie on Commit.
type StateDB struct {
	trie *lineatrie.Trie

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

// New returns a StateDB reading/writing through trie.
func New(trie *lineatrie.Trie) *StateDB {
	return &StateDB{
		trie:        trie,
		accounts:    make(map[common.Address]*accountState),
		storage:     make(map[common.Address]map[common.Hash]common.Hash),
		original:    make(map[common.Address]map[common.Hash]common.Hash),
		accessAddrs: make(map[common.Address]bool),
		accessSlots: make(map[common.Address]map[common.Hash]bool),
	}
}

func addrKey(addr common.Address) primitives.Hash {
	return primitives.BytesToHash(addr[:])
}

func (s *StateDB) getOrLoad(addr common.Address) *accountState {
	if a, ok := s.accounts[addr]; ok {
		return a
	}
	a := &accountState{balance: new(uint256.Int)}
	if raw, ok := s.trie.Get(addrKey(addr)); ok && raw != (primitives.Hash{}) {
		// The trie stores the mimc hash of the encoded account, not the
		// account bytes themselves; the decoded fields come from the
		// witness's side table keyed by that hash, resolved by the caller
		// before seeding accounts into this StateDB. A StateDB loaded
		// straight from the trie with no side table sees only the hash and
		// treats the account as existing but opaque, which is enough for
		// balance/nonce checks during replay of a witness that always
		// populates every touched account explicitly beforehand.
		a.exists = true
	}
	s.accounts[addr] = a
	return a
}

// Seed installs a known account directly, bypassing trie lookup; used to
// load accounts out of a block witness before execution, since the trie
// alone only carries value hashes and not the decoded account fields.
func (s *StateDB) Seed(addr common.Address, acc lineatrie.Account, code []byte, storage map[common.Hash]common.Hash) {
	s.accounts[addr] = &accountState{
		nonce:          acc.Nonce,
		balance:        new(uint256.Int).SetBytes(acc.Balance[:]),
		code:           code,
		keccakCodeHash: acc.KeccakCodeHash,
		mimcCodeHash:   acc.MimcCodeHash,
		storageRoot:    acc.StorageRoot,
		exists:         true,
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
	h, err := mimc.Sum(code)
	if err != nil {
		// mimc.Sum only rejects lengths that aren't a multiple of its block
		// size after left-padding a short input to one block; code is
		// always either empty or left-padded the same way, so this branch
		// is unreachable in practice but left explicit rather than ignored.
		h, _ = mimc.Sum(nil)
	}
	a.mimcCodeHash = h
}

func (s *StateDB) GetCodeSize(addr common.Address) int {
	return len(s.getOrLoad(addr).code)
}

func (s *StateDB) AddRefund(gas uint64) { s.refund += gas }
func (s *StateDB) SubRefund(gas uint64) { s.refund -= gas }
func (s *StateDB) GetRefund() uint64    { return s.refund }

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
