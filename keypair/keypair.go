// Package keypair implements the enclave's signing key: a mutex-protected
// cell holding the current secp256k1 keypair plus the two-phase
// rotate/commit protocol that binds a freshly generated key to a remote
// attestation quote before it becomes live.
package keypair

import (
	"crypto/ecdsa"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/automata-network/sgx-prover/primitives"
	"github.com/automata-network/sgx-prover/proverrpc"
)

// ErrNoActiveKey is returned by Sign/Address when the keypair has never
// been committed.
var ErrNoActiveKey = errors.New("keypair: no committed key")

// AttestationReporter produces a remote-attestation quote binding
// reportData (typically a hash of the candidate public key). Out of scope
// per the spec's own "IAS/DCAP attestation transport" exclusion; this
// interface is the seam a real SGX/DCAP transport plugs into.
type AttestationReporter interface {
	Quote(reportData [64]byte) ([]byte, error)
}

// Keypair is the mutable cell of (instanceID, sk, pk), protected by a
// mutex. Reads copy the key material out before signing so the lock is
// never held during the ECDSA operation itself.
type Keypair struct {
	mu         sync.RWMutex
	instanceID *big.Int
	sk         *ecdsa.PrivateKey
	pk         *ecdsa.PublicKey
}

// New returns an uncommitted Keypair with no active key.
func New() *Keypair {
	return &Keypair{}
}

// Address returns the Ethereum-style address derived from the current
// public key, or ErrNoActiveKey if none has been committed yet.
func (k *Keypair) Address() (common.Address, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.pk == nil {
		return common.Address{}, ErrNoActiveKey
	}
	return crypto.PubkeyToAddress(*k.pk), nil
}

// Rotation is the scoped handle rotate() returns: a freshly generated
// candidate key that has not yet been installed. Commit installs it;
// discarding the handle without calling Commit leaves the active key
// untouched.
type Rotation struct {
	kp *Keypair
	sk *ecdsa.PrivateKey
	pk *ecdsa.PublicKey
}

// PublicKeyHash returns the 64-byte report data Quote attests to: the
// candidate's keccak256 public-key hash, zero-padded into the upper 32
// bytes of the 64-byte SGX report-data field.
func (r *Rotation) PublicKeyHash() [64]byte {
	digest := crypto.Keccak256(crypto.FromECDSAPub(r.pk))
	var reportData [64]byte
	copy(reportData[:32], digest)
	return reportData
}

// Rotate generates a fresh candidate (sk', pk') without touching the
// currently active key. Call Commit once the on-chain verifier has
// accepted an attestation quote binding the candidate's public key.
func (k *Keypair) Rotate() (*Rotation, error) {
	sk, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &Rotation{kp: k, sk: sk, pk: &sk.PublicKey}, nil
}

// Commit atomically installs the candidate as the active key, tagging it
// with instanceID (the on-chain registration slot the attestation quote
// was verified against).
func (r *Rotation) Commit(instanceID *big.Int) {
	r.kp.mu.Lock()
	defer r.kp.mu.Unlock()
	r.kp.instanceID = instanceID
	r.kp.sk = r.sk
	r.kp.pk = r.pk
}

// InstanceID returns the instance id the currently active key was
// committed under, or nil if uncommitted.
func (k *Keypair) InstanceID() *big.Int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.instanceID
}

// Sign fills in poe.Signature by signing poe.SigningDigest() with the
// active key.
func (k *Keypair) Sign(poe proverrpc.PoE) (proverrpc.PoE, error) {
	k.mu.RLock()
	sk := k.sk
	k.mu.RUnlock()
	if sk == nil {
		return proverrpc.PoE{}, ErrNoActiveKey
	}
	digest := poe.SigningDigest()
	sig, err := crypto.Sign(digest[:], sk)
	if err != nil {
		return proverrpc.PoE{}, err
	}
	poe.Signature = sig
	return poe, nil
}

// Recover derives the signer address from digest and sig, independent of
// any Keypair instance (used by verifiers that only hold the PoE).
func Recover(digest primitives.Hash, sig []byte) (common.Address, error) {
	pub, err := crypto.SigToPub(digest[:], sig)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Verify reports whether poe.Signature recovers to expected.
func Verify(poe proverrpc.PoE, expected common.Address) (bool, error) {
	addr, err := Recover(poe.SigningDigest(), poe.Signature)
	if err != nil {
		return false, err
	}
	return addr == expected, nil
}
