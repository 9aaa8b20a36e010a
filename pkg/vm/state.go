package vm

// ExecutionState holds everything that changes as a program executes:
// clocks, program counter, memory, and the input/public-values
// streams a guest can read from or append to via syscalls.
type ExecutionState struct {
	// GlobalClk counts retired instructions.
	GlobalClk uint64

	// Gas increments by 4 per instruction, plus a syscall's extra
	// cycles when one runs. Compared against MaxGas lazily, after
	// each instruction retires.
	Gas uint32

	PC uint32

	// Memory is the sparse, word-keyed main memory map.
	Memory map[uint32]uint32

	// UninitializedMemory pre-seeds specific addresses with a value to
	// hand back on first read; consumed (removed) the first time that
	// address is read or written, per spec.
	UninitializedMemory map[uint32]uint32

	// InputStream is the flat byte stream HINT_LEN/HINT_READ consume.
	InputStream    []byte
	InputStreamPtr int

	// PublicValuesStream accumulates bytes written by the guest via
	// WRITE on fd 3, readable by the host after execution completes.
	PublicValuesStream    []byte
	PublicValuesStreamPtr int

	Regs Registers
}

// NewExecutionState creates a fresh state with PC set to pcStart and
// every other field zeroed, matching ExecutionState::new.
func NewExecutionState(pcStart uint32) ExecutionState {
	return ExecutionState{
		PC:                  pcStart,
		Memory:              make(map[uint32]uint32),
		UninitializedMemory: make(map[uint32]uint32),
	}
}
