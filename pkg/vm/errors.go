package vm

import (
	"errors"
	"fmt"

	"github.com/athenavm/athena-go/pkg/athinterface"
	"github.com/athenavm/athena-go/pkg/isa"
)

// MemoryErrKind classifies why a memory access was rejected.
type MemoryErrKind int

const (
	MemoryErrUnaligned MemoryErrKind = iota
	MemoryErrOutOfBounds
)

func (k MemoryErrKind) String() string {
	if k == MemoryErrUnaligned {
		return "unaligned memory access"
	}
	return "memory access out of bounds"
}

// reservedMemoryFloor is the size, in bytes, of the low memory region
// reserved to trap null/near-null dereferences: any write below this
// address is rejected regardless of alignment.
const reservedMemoryFloor = 40

// checkMemoryAccess applies the general-purpose write guard: the
// address must be word-aligned and outside the reserved low region.
func checkMemoryAccess(addr uint32) error {
	if addr%4 != 0 {
		return MemoryErrUnaligned
	}
	if addr < reservedMemoryFloor {
		return MemoryErrOutOfBounds
	}
	return nil
}

func (k MemoryErrKind) Error() string { return k.String() }

// Sentinel values satisfying the error interface via MemoryErrKind.
var (
	MemoryErrUnalignedErr  error = MemoryErrUnaligned
	MemoryErrOutOfBoundsErr error = MemoryErrOutOfBounds
)

// ExecutionError is returned by Runtime.Execute when the program
// cannot continue: a deliberate non-zero exit, a syscall failure, an
// invalid memory access, an unsupported syscall code, exhausted gas, a
// breakpoint, an unimplemented opcode, an unresolved symbol, or a
// failed instruction fetch.
type ExecutionError struct {
	Kind ExecutionErrorKind

	ExitCode    uint32
	Status      athinterface.StatusCode
	Instruction isa.Instruction
	Addr        uint32
	MemErr      MemoryErrKind
	SyscallID   uint32
	PC          uint32
}

type ExecutionErrorKind int

const (
	ErrHaltWithNonZeroExitCode ExecutionErrorKind = iota
	ErrSyscallFailed
	ErrInvalidMemoryAccess
	ErrUnsupportedSyscall
	ErrOutOfGas
	ErrBreakpoint
	ErrUnimplemented
	ErrUnknownSymbol
	ErrInstructionFetchFailed
)

func (e *ExecutionError) Error() string {
	switch e.Kind {
	case ErrHaltWithNonZeroExitCode:
		return fmt.Sprintf("execution failed with exit code %d", e.ExitCode)
	case ErrSyscallFailed:
		return fmt.Sprintf("syscall failed with status code %s", e.Status)
	case ErrInvalidMemoryAccess:
		return fmt.Sprintf("invalid memory access %s at address %#08x for instruction %s", e.MemErr, e.Addr, e.Instruction)
	case ErrUnsupportedSyscall:
		return fmt.Sprintf("unimplemented syscall %d", e.SyscallID)
	case ErrOutOfGas:
		return "out of gas"
	case ErrBreakpoint:
		return "breakpoint encountered"
	case ErrUnimplemented:
		return "got unimplemented as opcode"
	case ErrUnknownSymbol:
		return "symbol not found"
	case ErrInstructionFetchFailed:
		return fmt.Sprintf("failed to fetch instruction at PC: %#08x", e.PC)
	default:
		return "unknown execution error"
	}
}

// Is supports errors.Is(err, vm.ErrOutOfGasSentinel)-style sentinel
// checks by comparing Kind.
func (e *ExecutionError) Is(target error) bool {
	var other *ExecutionError
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func haltErr(exitCode uint32) error {
	return &ExecutionError{Kind: ErrHaltWithNonZeroExitCode, ExitCode: exitCode}
}

func syscallFailedErr(status athinterface.StatusCode) error {
	return &ExecutionError{Kind: ErrSyscallFailed, Status: status}
}

func invalidMemoryAccessErr(instr isa.Instruction, addr uint32, kind MemoryErrKind) error {
	return &ExecutionError{Kind: ErrInvalidMemoryAccess, Instruction: instr, Addr: addr, MemErr: kind}
}

func unsupportedSyscallErr(id uint32) error {
	return &ExecutionError{Kind: ErrUnsupportedSyscall, SyscallID: id}
}

// ErrOutOfGasSentinel, ErrBreakpointSentinel and ErrUnimplementedSentinel
// are convenience values for errors.Is checks against the singleton
// error kinds that carry no payload.
var (
	ErrOutOfGasSentinel      error = &ExecutionError{Kind: ErrOutOfGas}
	ErrBreakpointSentinel    error = &ExecutionError{Kind: ErrBreakpoint}
	ErrUnimplementedSentinel error = &ExecutionError{Kind: ErrUnimplemented}
	ErrUnknownSymbolSentinel error = &ExecutionError{Kind: ErrUnknownSymbol}
)

func instructionFetchFailedErr(pc uint32) error {
	return &ExecutionError{Kind: ErrInstructionFetchFailed, PC: pc}
}
