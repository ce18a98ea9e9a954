package enclaverpc

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/automata-network/sgx-prover/damanager"
	"github.com/automata-network/sgx-prover/keypair"
	"github.com/automata-network/sgx-prover/primitives"
	"github.com/automata-network/sgx-prover/proverrpc"
	"github.com/automata-network/sgx-prover/stack"
	"github.com/automata-network/sgx-prover/taskmanager"
	"github.com/automata-network/sgx-prover/witness"
)

// ErrGenerationModeDisabled is returned by prover_genContext when no
// upstream execution/DA endpoints are configured, which is this module's
// only supported mode (generation mode talks to live chain nodes and is
// out of scope per spec §1).
var ErrGenerationModeDisabled = errors.New("enclaverpc: generation mode is not configured")

// ProveRequest is the decoded form of prover_proveTask's params.
type ProveRequest struct {
	PobHash           primitives.Hash
	Start, End        uint64
	TaskType          uint64
	StartingStateRoot primitives.Hash
	FinalStateRoot    primitives.Hash
	Batch             []byte
}

// Prover is the engine-selection and batch-verification glue C12
// provides; enclaverpc only knows how to dispatch to it and shape the
// JSON-RPC response.
type Prover interface {
	Prove(alive *primitives.Alive, req ProveRequest) (proverrpc.PoE, error)
	ProveWithoutContext(alive *primitives.Alive, taskData []byte, taskType uint64) (proverrpc.PoE, error)
}

type taskResult struct {
	batchID    string
	startBlock uint64
	endBlock   uint64
	poe        proverrpc.PoE
}

// API implements the da_/prover_ namespaces and generateAttestationReport
// against a DA cache, a task de-dup map, a keypair, an attestation
// transport, and an injected Prover.
type API struct {
	da       *damanager.Manager
	tasks    *taskmanager.Manager[primitives.Hash, taskResult]
	kp       *keypair.Keypair
	reporter keypair.AttestationReporter
	prover   Prover

	cacheTTL time.Duration
	version  string
}

// NewAPI wires an API instance. taskCapacity bounds the FIFO-evicted
// in-flight task map (C14); cacheTTL is the DA cache's per-entry lifetime
// (C13).
func NewAPI(da *damanager.Manager, kp *keypair.Keypair, reporter keypair.AttestationReporter, prover Prover, taskCapacity int, cacheTTL time.Duration, version string) *API {
	return &API{
		da:       da,
		tasks:    taskmanager.New[primitives.Hash, taskResult](taskCapacity),
		kp:       kp,
		reporter: reporter,
		prover:   prover,
		cacheTTL: cacheTTL,
		version:  version,
	}
}

// HandleRequest dispatches req to the matching da_/prover_ method.
func (api *API) HandleRequest(alive *primitives.Alive, req *Request) *Response {
	switch req.Method {
	case "da_putPob":
		return api.daPutPob(req)
	case "da_tryLock":
		return api.daTryLock(req)
	case "prover_genContext":
		return api.proverGenContext(req)
	case "prover_proveTask":
		return api.proverProveTask(alive, req)
	case "prover_proveTaskWithoutContext":
		return api.proverProveTaskWithoutContext(alive, req)
	case "prover_metadata":
		return api.proverMetadata(req)
	case "generateAttestationReport":
		return api.generateAttestationReport(req)
	case "getPoe":
		return api.getPoe(req)
	default:
		return errorResponse(req.ID, ErrCodeMethodNotFound, "method not found: "+req.Method)
	}
}

func errorResponse(id json.RawMessage, code int, message string) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Error: &RPCError{Code: code, Message: message}}
}

func resultResponse(id json.RawMessage, result interface{}) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Result: result}
}

func (api *API) daPutPob(req *Request) *Response {
	if len(req.Params) != 1 {
		return errorResponse(req.ID, ErrCodeInvalidParams, "da_putPob expects one param")
	}
	var list witness.SuccinctPobList
	if err := json.Unmarshal(req.Params[0], &list); err != nil {
		return errorResponse(req.ID, ErrCodeInvalidParams, err.Error())
	}
	for _, pob := range list.Expand() {
		p := pob
		api.da.Put(p.Hash, &p, api.cacheTTL)
	}
	return resultResponse(req.ID, nil)
}

func (api *API) daTryLock(req *Request) *Response {
	if len(req.Params) != 1 {
		return errorResponse(req.ID, ErrCodeInvalidParams, "da_tryLock expects one param")
	}
	var hexHash string
	if err := json.Unmarshal(req.Params[0], &hexHash); err != nil {
		return errorResponse(req.ID, ErrCodeInvalidParams, err.Error())
	}
	hash, err := parseHash(hexHash)
	if err != nil {
		return errorResponse(req.ID, ErrCodeInvalidParams, err.Error())
	}
	statuses := api.da.TryLock([]primitives.Hash{hash}, api.cacheTTL)
	return resultResponse(req.ID, statuses[0].String())
}

func (api *API) proverGenContext(req *Request) *Response {
	return errorResponse(req.ID, ErrCodeInternal, stack.Render(stack.Push(ErrGenerationModeDisabled, "RPC", "prover_genContext")))
}

func (api *API) proverProveTask(alive *primitives.Alive, req *Request) *Response {
	if len(req.Params) != 1 {
		return errorResponse(req.ID, ErrCodeInvalidParams, "prover_proveTask expects one param")
	}
	var p ProveTaskParams
	if err := json.Unmarshal(req.Params[0], &p); err != nil {
		return errorResponse(req.ID, ErrCodeInvalidParams, err.Error())
	}
	pobHash, err := parseHash(p.PobHash)
	if err != nil {
		return errorResponse(req.ID, ErrCodeInvalidParams, err.Error())
	}
	startingRoot, err := parseHash(p.StartingStateRoot)
	if err != nil {
		return errorResponse(req.ID, ErrCodeInvalidParams, err.Error())
	}
	finalRoot, err := parseHash(p.FinalStateRoot)
	if err != nil {
		return errorResponse(req.ID, ErrCodeInvalidParams, err.Error())
	}

	prReq := ProveRequest{
		PobHash: pobHash, Start: p.Start, End: p.End, TaskType: p.TaskType,
		StartingStateRoot: startingRoot, FinalStateRoot: finalRoot,
		Batch: []byte(p.Batch),
	}
	fingerprint := proveTaskFingerprint(prReq)

	result, ready := api.tasks.ProcessTask(fingerprint)
	if !ready {
		// Brand-new fingerprint: we're the producer. A repeat caller that
		// merely timed out waiting lands here too and will recompute; that
		// is harmless since Prove is deterministic over its inputs.
		poe, err := api.prover.Prove(alive, prReq)
		if err != nil {
			return errorResponse(req.ID, ErrCodeInternal, stack.Render(stack.Push(err, "RPC", "prover_proveTask")))
		}
		result = taskResult{batchID: encodeHash(fingerprint), startBlock: p.Start, endBlock: p.End, poe: poe}
		api.tasks.UpdateTask(fingerprint, result)
	}
	return resultResponse(req.ID, poeResponseFrom(result))
}

func (api *API) proverProveTaskWithoutContext(alive *primitives.Alive, req *Request) *Response {
	if len(req.Params) != 1 {
		return errorResponse(req.ID, ErrCodeInvalidParams, "prover_proveTaskWithoutContext expects one param")
	}
	var p ProveTaskWithoutContextParams
	if err := json.Unmarshal(req.Params[0], &p); err != nil {
		return errorResponse(req.ID, ErrCodeInvalidParams, err.Error())
	}
	poe, err := api.prover.ProveWithoutContext(alive, p.TaskData, p.Type)
	if err != nil {
		return errorResponse(req.ID, ErrCodeInternal, stack.Render(stack.Push(err, "RPC", "prover_proveTaskWithoutContext")))
	}
	result := taskResult{poe: poe}
	return resultResponse(req.ID, poeResponseFrom(result))
}

func (api *API) proverMetadata(req *Request) *Response {
	return resultResponse(req.ID, Metadata{WithContext: true, Version: api.version, TaskWithContext: true})
}

func (api *API) generateAttestationReport(req *Request) *Response {
	if len(req.Params) != 1 {
		return errorResponse(req.ID, ErrCodeInvalidParams, "generateAttestationReport expects one param")
	}
	var reportDataHex string
	if err := json.Unmarshal(req.Params[0], &reportDataHex); err != nil {
		return errorResponse(req.ID, ErrCodeInvalidParams, err.Error())
	}
	h, err := parseHash(reportDataHex)
	if err != nil {
		return errorResponse(req.ID, ErrCodeInvalidParams, err.Error())
	}
	var reportData [64]byte
	copy(reportData[:32], h[:])
	quote, err := api.reporter.Quote(reportData)
	if err != nil {
		return errorResponse(req.ID, ErrCodeInternal, err.Error())
	}
	return resultResponse(req.ID, "0x"+hexEncode(quote))
}

func (api *API) getPoe(req *Request) *Response {
	if len(req.Params) != 1 {
		return errorResponse(req.ID, ErrCodeInvalidParams, "getPoe expects one param")
	}
	var fpHex string
	if err := json.Unmarshal(req.Params[0], &fpHex); err != nil {
		return errorResponse(req.ID, ErrCodeInvalidParams, err.Error())
	}
	fp, err := parseHash(fpHex)
	if err != nil {
		return errorResponse(req.ID, ErrCodeInvalidParams, err.Error())
	}
	result, ready := api.tasks.ProcessTask(fp)
	if !ready {
		return resultResponse(req.ID, PoeResponse{NotReady: true})
	}
	return resultResponse(req.ID, poeResponseFrom(result))
}

func proveTaskFingerprint(r ProveRequest) primitives.Hash {
	buf := make([]byte, 0, 32+8+8+8+32+32+32)
	buf = append(buf, r.PobHash[:]...)
	buf = append(buf, primitives.U64BE(r.Start)...)
	buf = append(buf, primitives.U64BE(r.End)...)
	buf = append(buf, primitives.U64BE(r.TaskType)...)
	buf = append(buf, r.StartingStateRoot[:]...)
	buf = append(buf, r.FinalStateRoot[:]...)
	batchHash := crypto.Keccak256(r.Batch)
	buf = append(buf, batchHash...)
	return primitives.BytesToHash(crypto.Keccak256(buf))
}

func poeResponseFrom(r taskResult) PoeResponse {
	enc, _ := json.Marshal(r.poe)
	return PoeResponse{BatchID: r.batchID, StartBlock: r.startBlock, EndBlock: r.endBlock, Poe: enc}
}
