// Package mockhost implements an in-memory athinterface.HostInterface
// test double: storage, balances and spawned/deployed code all live in
// plain maps, and cross-program calls are resolved against a program
// table the caller populates ahead of time. It exists for tests and
// the athena-run CLI, not as a production Host implementation.
package mockhost

import (
	"github.com/athenavm/athena-go/pkg/athinterface"
	"github.com/athenavm/athena-go/pkg/loader"
)

// Host is a HostInterface backed entirely by in-process state.
type Host struct {
	storage  map[athinterface.Address]map[athinterface.Bytes32]athinterface.Bytes32
	balances map[athinterface.Address]athinterface.Balance
	accounts map[athinterface.Address]bool
	programs map[athinterface.Address][]byte
	txCtx    athinterface.TransactionContext
	blockHashes map[int64]athinterface.Bytes32

	// nextSpawn/nextDeploy hand out deterministic addresses for Spawn
	// and Deploy so tests can predict them.
	nextSpawn  uint64
	nextDeploy uint64

	// Resolver runs a cross-program Call against a loaded Program; the
	// caller wires this up to a vm.Runtime constructor to make Call
	// actually execute guest code instead of just bookkeeping balances.
	Resolver func(msg athinterface.AthenaMessage, code []byte) athinterface.ExecutionResult
}

// New builds an empty Host.
func New() *Host {
	return &Host{
		storage:     make(map[athinterface.Address]map[athinterface.Bytes32]athinterface.Bytes32),
		balances:    make(map[athinterface.Address]athinterface.Balance),
		accounts:    make(map[athinterface.Address]bool),
		programs:    make(map[athinterface.Address][]byte),
		blockHashes: make(map[int64]athinterface.Bytes32),
	}
}

// SetBalance seeds an account's balance, also marking it as existing.
func (h *Host) SetBalance(addr athinterface.Address, balance athinterface.Balance) {
	h.balances[addr] = balance
	h.accounts[addr] = true
}

// SetAccount marks addr as existing without changing its balance.
func (h *Host) SetAccount(addr athinterface.Address) { h.accounts[addr] = true }

// SetTxContext installs the TransactionContext GetTxContext reports.
func (h *Host) SetTxContext(ctx athinterface.TransactionContext) { h.txCtx = ctx }

// SetBlockHash seeds the hash GetBlockHash reports for height.
func (h *Host) SetBlockHash(height int64, hash athinterface.Bytes32) {
	h.blockHashes[height] = hash
}

// RegisterProgram makes code available to a later Call targeting addr,
// for tests that want Call to resolve against real loaded programs
// via Resolver.
func (h *Host) RegisterProgram(addr athinterface.Address, code []byte) {
	h.programs[addr] = code
	h.accounts[addr] = true
}

func (h *Host) AccountExists(addr athinterface.Address) bool { return h.accounts[addr] }

func (h *Host) GetStorage(addr athinterface.Address, key athinterface.Bytes32) athinterface.Bytes32 {
	slots, ok := h.storage[addr]
	if !ok {
		return athinterface.Bytes32{}
	}
	return slots[key]
}

func (h *Host) SetStorage(addr athinterface.Address, key, value athinterface.Bytes32) athinterface.StorageStatus {
	slots, ok := h.storage[addr]
	if !ok {
		slots = make(map[athinterface.Bytes32]athinterface.Bytes32)
		h.storage[addr] = slots
	}
	old, existed := slots[key]
	var zero athinterface.Bytes32
	slots[key] = value

	switch {
	case !existed && value == zero:
		return athinterface.StorageAssigned
	case !existed:
		return athinterface.StorageAdded
	case old == value:
		return athinterface.StorageAssigned
	case value == zero:
		return athinterface.StorageDeleted
	default:
		return athinterface.StorageModified
	}
}

func (h *Host) GetBalance(addr athinterface.Address) athinterface.Balance { return h.balances[addr] }

func (h *Host) GetTxContext() athinterface.TransactionContext { return h.txCtx }

func (h *Host) GetBlockHash(height int64) athinterface.Bytes32 { return h.blockHashes[height] }

// Call resolves a cross-program invocation. With no Resolver installed
// it reports StatusFailure, the conservative default for a test double
// that was not configured to execute guest code recursively.
func (h *Host) Call(msg athinterface.AthenaMessage) athinterface.ExecutionResult {
	code, ok := h.programs[msg.Recipient]
	if !ok || h.Resolver == nil {
		return athinterface.ExecutionResult{StatusCode: athinterface.StatusFailure}
	}
	return h.Resolver(msg, code)
}

// Spawn derives a deterministic placeholder address for the new
// account and records its state blob as its "code" for later Call
// resolution via Resolver.
func (h *Host) Spawn(blob []byte) athinterface.Address {
	h.nextSpawn++
	addr := syntheticAddress('S', h.nextSpawn)
	h.programs[addr] = blob
	h.accounts[addr] = true
	return addr
}

// Deploy is the same bookkeeping as Spawn with a distinct address
// series, so tests can tell spawned and deployed accounts apart.
func (h *Host) Deploy(blob []byte) athinterface.Address {
	h.nextDeploy++
	addr := syntheticAddress('D', h.nextDeploy)
	h.programs[addr] = blob
	h.accounts[addr] = true
	return addr
}

func syntheticAddress(tag byte, n uint64) athinterface.Address {
	var addr athinterface.Address
	addr[0] = tag
	for i := 0; i < 8; i++ {
		addr[athinterface.AddressLength-1-i] = byte(n >> (8 * i))
	}
	return addr
}

// LoadProgram is a convenience for callers wiring Resolver: it decodes
// a raw or ELF blob the same way athena-run does.
func LoadProgram(code []byte) (*loader.Program, error) {
	return loader.Load(code)
}
