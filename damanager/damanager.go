// Package damanager implements the content-addressed witness cache: a
// mapping from a PoB's content hash to at most one cached item, letting
// retried prove-task calls re-use a large witness without re-uploading it.
package damanager

import (
	"sync"
	"time"

	"github.com/automata-network/sgx-prover/primitives"
	"github.com/automata-network/sgx-prover/witness"
)

// Status is the outcome of a TryLock call for one hash.
type Status uint8

const (
	// Locked means the caller now owns the placeholder and is expected to
	// Put the real witness before ttl elapses.
	Locked Status = iota
	// Exist means a populated witness was already present and alive.
	Exist
	// Failed means another caller currently holds the lock and has not
	// yet populated it.
	Failed
)

func (s Status) String() string {
	switch s {
	case Locked:
		return "Locked"
	case Exist:
		return "Exist"
	default:
		return "Failed"
	}
}

type item struct {
	raw      *witness.PoB // nil while only Locked
	deadTime time.Time
}

func (it *item) alive(now time.Time) bool {
	return now.Before(it.deadTime)
}

// Manager is the mutex-protected witness cache. The zero value is not
// usable; construct with New.
type Manager struct {
	mu    sync.Mutex
	items map[primitives.Hash]*item
	now   func() time.Time
}

// New returns an empty Manager.
func New() *Manager {
	return &Manager{items: make(map[primitives.Hash]*item), now: time.Now}
}

// sweep removes every entry past its dead time. Called opportunistically
// at the top of every mutating operation, never on a background timer, so
// there is nothing to start or stop.
func (m *Manager) sweep() {
	now := m.now()
	for h, it := range m.items {
		if !it.alive(now) {
			delete(m.items, h)
		}
	}
}

// TryLock attempts to claim each hash in hashes for ttl. For a hash not
// yet present, it inserts a Locked placeholder and reports Locked. For a
// hash already populated and alive, it touches the dead time and reports
// Exist. For a hash Locked by an earlier, still-live caller, it reports
// Failed without touching anything.
func (m *Manager) TryLock(hashes []primitives.Hash, ttl time.Duration) []Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()

	now := m.now()
	out := make([]Status, len(hashes))
	for i, h := range hashes {
		it, ok := m.items[h]
		switch {
		case !ok:
			m.items[h] = &item{deadTime: now.Add(ttl)}
			out[i] = Locked
		case it.raw != nil:
			it.deadTime = now.Add(ttl)
			out[i] = Exist
		default:
			out[i] = Failed
		}
	}
	return out
}

// Put populates or overwrites the slot for hash with raw, extending its
// dead time by ttl.
func (m *Manager) Put(hash primitives.Hash, raw *witness.PoB, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	m.items[hash] = &item{raw: raw, deadTime: m.now().Add(ttl)}
}

// Get returns the cached witness for hash, iff populated and alive. A
// never-inserted hash and one whose TTL already expired are
// indistinguishable: both return (nil, false).
func (m *Manager) Get(hash primitives.Hash) (*witness.PoB, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	it, ok := m.items[hash]
	if !ok || it.raw == nil {
		return nil, false
	}
	return it.raw, true
}
