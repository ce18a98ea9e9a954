package prover

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/automata-network/sgx-prover/damanager"
	"github.com/automata-network/sgx-prover/enclaverpc"
	"github.com/automata-network/sgx-prover/primitives"
	"github.com/automata-network/sgx-prover/witness"
)

func TestEngineProveRejectsMultiBlockRange(t *testing.T) {
	engine := NewEngine(damanager.New(), stubSigner{}, nil)
	alive := primitives.NewAlive(context.Background())
	_, err := engine.Prove(alive, enclaverpc.ProveRequest{Start: 1, End: 2, TaskType: TaskTypeScroll})
	require.Error(t, err)
}

func TestEngineProveRejectsMissingWitness(t *testing.T) {
	engine := NewEngine(damanager.New(), stubSigner{}, nil)
	alive := primitives.NewAlive(context.Background())
	req := enclaverpc.ProveRequest{
		PobHash:  primitives.BytesToHash([]byte("missing")),
		Start:    5,
		End:      5,
		TaskType: TaskTypeScroll,
	}
	_, err := engine.Prove(alive, req)
	require.Error(t, err)
}

func TestEngineProveRunsLineaAgainstCachedWitness(t *testing.T) {
	da := damanager.New()
	data := witness.Data{ChainID: 59144}
	pob := witness.New(witness.BlockHeaderLite{Number: 7, GasLimit: 1_000_000}, data)
	da.Put(pob.Hash, &pob, time.Minute)

	engine := NewEngine(da, stubSigner{}, nil)

	payload := provePayload{ChainID: 59144}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	alive := primitives.NewAlive(context.Background())
	req := enclaverpc.ProveRequest{
		PobHash:  pob.Hash,
		Start:    7,
		End:      7,
		TaskType: TaskTypeLinea,
		Batch:    raw,
	}
	poe, err := engine.Prove(alive, req)
	require.NoError(t, err)
	require.Equal(t, []byte("signed"), poe.Signature)
	require.Equal(t, pob.Hash, poe.BatchHash)
}

func TestEngineProveRejectsUnknownTaskType(t *testing.T) {
	da := damanager.New()
	data := witness.Data{ChainID: 59144}
	pob := witness.New(witness.BlockHeaderLite{Number: 1, GasLimit: 1_000_000}, data)
	da.Put(pob.Hash, &pob, time.Minute)

	engine := NewEngine(da, stubSigner{}, nil)
	alive := primitives.NewAlive(context.Background())
	req := enclaverpc.ProveRequest{PobHash: pob.Hash, Start: 1, End: 1, TaskType: 99}
	_, err := engine.Prove(alive, req)
	require.Error(t, err)
}

func TestEngineProveWithoutContextRejectsUnknownTaskType(t *testing.T) {
	engine := NewEngine(damanager.New(), stubSigner{}, nil)
	alive := primitives.NewAlive(context.Background())
	_, err := engine.ProveWithoutContext(alive, []byte(`{"chain_id":1}`), 99)
	require.Error(t, err)
}

func TestEngineProveWithoutContextRejectsMalformedBundle(t *testing.T) {
	engine := NewEngine(damanager.New(), stubSigner{}, nil)
	alive := primitives.NewAlive(context.Background())
	_, err := engine.ProveWithoutContext(alive, []byte(`not json`), TaskTypeLinea)
	require.Error(t, err)
}
