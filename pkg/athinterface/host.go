package athinterface

// MessageKind identifies the kind of cross-program message a guest can
// send via HOST_CALL. Only Call is implemented; the original's message
// kinds for deploy/spawn are modeled as distinct syscalls instead
// (HOST_SPAWN, HOST_DEPLOY).
type MessageKind int

const (
	MessageKindCall MessageKind = iota
)

// AthenaMessage is a cross-program call request built by the VM on
// behalf of a guest executing HOST_CALL, and handed to the Host.
type AthenaMessage struct {
	Kind      MessageKind
	Depth     int32
	Gas       uint32
	Recipient Address
	Sender    Address
	InputData []byte
	Value     Balance
	Code      []byte
}

// NewAthenaMessage builds a Call message with the given recipient,
// sender, gas budget, input and value; Code is left empty, matching the
// original's `AthenaMessage::new` which only populates it for deploy.
func NewAthenaMessage(depth int32, gas uint32, recipient, sender Address, input []byte, value Balance) AthenaMessage {
	return AthenaMessage{
		Kind:      MessageKindCall,
		Depth:     depth,
		Gas:       gas,
		Recipient: recipient,
		Sender:    sender,
		InputData: input,
		Value:     value,
	}
}

// ExecutionResult is what a Host (or a nested Runtime) returns for an
// AthenaMessage it processed.
type ExecutionResult struct {
	StatusCode    StatusCode
	GasLeft       uint32
	Output        []byte
	CreateAddress *Address
}

// TransactionContext carries the ambient transaction/block data a guest
// can query via HOST_CONTEXT-adjacent host calls.
type TransactionContext struct {
	GasPrice      Balance
	Origin        Address
	BlockHeight   int64
	BlockTimestamp int64
	BlockGasLimit uint32
	ChainID       Bytes32
}

// HostInterface is the collaborator boundary between a running program
// and its execution environment: account existence, storage, balances,
// transaction context, block hashes, and nested calls. A concrete
// production implementation (backed by real storage/ledger) is out of
// scope; pkg/mockhost provides an in-memory stand-in for tests and the
// CLI runner.
type HostInterface interface {
	AccountExists(addr Address) bool
	GetStorage(addr Address, key Bytes32) Bytes32
	SetStorage(addr Address, key, value Bytes32) StorageStatus
	GetBalance(addr Address) Balance
	GetTxContext() TransactionContext
	GetBlockHash(number int64) Bytes32
	Call(msg AthenaMessage) ExecutionResult
	Spawn(blob []byte) Address
	Deploy(blob []byte) Address
}
