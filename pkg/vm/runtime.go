// Package vm implements the RV32E+M interpreter: the fetch-execute
// cycle, gas accounting, and the syscall/host bridge a loaded Program
// runs against.
package vm

import (
	"fmt"

	"github.com/athenavm/athena-go/pkg/athinterface"
	"github.com/athenavm/athena-go/pkg/isa"
	"github.com/athenavm/athena-go/pkg/loader"
	"github.com/athenavm/athena-go/pkg/log"
)

var runtimeLog = log.Default().Module("vm")

// align rounds addr down to the nearest word boundary.
func align(addr uint32) uint32 {
	return addr - addr%4
}

// Event is what one execute cycle reports happened, beyond an
// ordinary instruction retirement.
type Event int

const (
	EventNone Event = iota
	EventBreak
	EventHalted
)

// Runtime executes one loaded Program against one Host. It owns the
// mutable ExecutionState; the Program is shared and immutable.
type Runtime struct {
	Program *loader.Program
	Context *athinterface.AthenaContext
	State   ExecutionState
	Host    athinterface.HostInterface

	ioBuf map[uint32]*ioBuffer

	unconstrained bool
	maxGas        *uint32

	syscallMap        map[SyscallCode]Syscall
	maxSyscallCycles  uint32
	breakpoints       map[uint32]struct{}
	hookRegistry      *hookRegistry
	cycleTracker      map[string]cycleTrackerEntry
	cycleTrackerDepth int
}

type ioBuffer struct {
	buf []byte
}

type cycleTrackerEntry struct {
	startClk uint32
	depth    int
}

// New builds a Runtime ready to execute program against an optional
// Host, with the given options and call context.
func New(program *loader.Program, host athinterface.HostInterface, opts Opts, context *athinterface.AthenaContext) *Runtime {
	syscallMap := defaultSyscallMap()
	var maxCycles uint32
	for _, s := range syscallMap {
		if c := s.NumExtraCycles(); c > maxCycles {
			maxCycles = c
		}
	}

	return &Runtime{
		Program:          program,
		Context:          context,
		State:            NewExecutionState(program.PCStart),
		Host:             host,
		ioBuf:            make(map[uint32]*ioBuffer),
		maxGas:           opts.MaxGas(),
		syscallMap:       syscallMap,
		maxSyscallCycles: maxCycles,
		breakpoints:      make(map[uint32]struct{}),
		hookRegistry:     newHookRegistry(),
		cycleTracker:     make(map[string]cycleTrackerEntry),
	}
}

// AddBreakpoint arms a breakpoint at addr, checked after each
// instruction retires.
func (rt *Runtime) AddBreakpoint(addr uint32) { rt.breakpoints[addr] = struct{}{} }

// RemoveBreakpoint disarms a previously armed breakpoint.
func (rt *Runtime) RemoveBreakpoint(addr uint32) { delete(rt.breakpoints, addr) }

// RegisterHook installs a Hook for WRITE calls on the given file
// descriptor. Fails for fd <= 4 or if fd already has a hook.
func (rt *Runtime) RegisterHook(fd uint32, hook Hook) error {
	return rt.hookRegistry.register(fd, hook)
}

// Register reads a register's current value.
func (rt *Runtime) Register(reg isa.Register) uint32 { return rt.rr(reg) }

// Word reads the word at addr without the uninitialized-hint
// side-mapping being consumed (a peek, used by tracing/debugging).
func (rt *Runtime) Word(addr uint32) uint32 {
	if v, ok := rt.State.Memory[addr]; ok {
		return v
	}
	return 0
}

// Byte reads a single byte at addr.
func (rt *Runtime) Byte(addr uint32) uint8 {
	word := rt.Word(align(addr))
	return uint8(word >> ((addr % 4) * 8))
}

// mr reads a word from memory, consuming the uninitialized-hint
// side-mapping on first access.
func (rt *Runtime) mr(addr uint32) uint32 {
	if v, ok := rt.State.Memory[addr]; ok {
		return v
	}
	v := rt.State.UninitializedMemory[addr]
	delete(rt.State.UninitializedMemory, addr)
	rt.State.Memory[addr] = v
	return v
}

// mw writes a word to memory.
func (rt *Runtime) mw(addr uint32, value uint32) {
	delete(rt.State.UninitializedMemory, addr)
	rt.State.Memory[addr] = value
}

func (rt *Runtime) readMemoryU32(addr uint32) (uint32, error) {
	if addr%4 != 0 {
		return 0, MemoryErrUnaligned
	}
	return rt.mr(addr), nil
}

func (rt *Runtime) readMemoryU16(addr uint32) (uint16, error) {
	switch addr % 4 {
	case 0:
		return uint16(rt.mr(align(addr))), nil
	case 2:
		return uint16(rt.mr(align(addr)) >> 16), nil
	default:
		return 0, MemoryErrUnaligned
	}
}

// mwCPU writes a word under the general-purpose access guard (alignment
// and reserved-region checks), used by SW/SH/SB store instructions.
func (rt *Runtime) mwCPU(addr, value uint32) error {
	if err := checkMemoryAccess(addr); err != nil {
		return err
	}
	rt.mw(addr, value)
	return nil
}

func (rt *Runtime) rr(reg isa.Register) uint32      { return rt.State.Regs.Read(reg) }
func (rt *Runtime) rw(reg isa.Register, value uint32) { rt.State.Regs.Write(reg, value) }

func wrappingAddSigned(a uint32, b int32) uint32 {
	return uint32(int32(a) + b)
}

// executeInstruction runs one decoded instruction and returns the PC
// that should be active on the next cycle.
func (rt *Runtime) executeInstruction(instr isa.Instruction) (uint32, error) {
	nextPC := rt.State.PC + 4

	switch instr.Op {
	case isa.OpLui:
		rt.rw(instr.Rd, uint32(instr.Imm)<<12)

	case isa.OpAuipc:
		rt.rw(instr.Rd, wrappingAddSigned(rt.State.PC, instr.Imm<<12))

	case isa.OpJal:
		rt.rw(instr.Rd, rt.State.PC+4)
		nextPC = wrappingAddSigned(rt.State.PC, instr.Imm)

	case isa.OpJalr:
		value := rt.State.PC + 4
		nextPC = wrappingAddSigned(rt.rr(instr.Rs1), instr.Imm)
		rt.rw(instr.Rd, value)

	case isa.OpLb:
		addr := wrappingAddSigned(rt.rr(instr.Rs1), instr.Imm)
		word := rt.mr(align(addr))
		b := int8(byte(word >> ((addr % 4) * 8)))
		rt.rw(instr.Rd, uint32(int32(b)))

	case isa.OpLh:
		addr := wrappingAddSigned(rt.rr(instr.Rs1), instr.Imm)
		v, err := rt.readMemoryU16(addr)
		if err != nil {
			return 0, invalidMemoryAccessErr(instr, addr, err.(MemoryErrKind))
		}
		rt.rw(instr.Rd, uint32(int32(int16(v))))

	case isa.OpLw:
		addr := wrappingAddSigned(rt.rr(instr.Rs1), instr.Imm)
		v, err := rt.readMemoryU32(addr)
		if err != nil {
			return 0, invalidMemoryAccessErr(instr, addr, err.(MemoryErrKind))
		}
		rt.rw(instr.Rd, v)

	case isa.OpLbu:
		addr := wrappingAddSigned(rt.rr(instr.Rs1), instr.Imm)
		rt.rw(instr.Rd, uint32(rt.Byte(addr)))

	case isa.OpLhu:
		addr := wrappingAddSigned(rt.rr(instr.Rs1), instr.Imm)
		v, err := rt.readMemoryU16(addr)
		if err != nil {
			return 0, invalidMemoryAccessErr(instr, addr, err.(MemoryErrKind))
		}
		rt.rw(instr.Rd, uint32(v))

	case isa.OpAddi:
		rt.rw(instr.Rd, wrappingAddSigned(rt.rr(instr.Rs1), instr.Imm))

	case isa.OpSlti:
		if int32(rt.rr(instr.Rs1)) < instr.Imm {
			rt.rw(instr.Rd, 1)
		} else {
			rt.rw(instr.Rd, 0)
		}

	case isa.OpSltiu:
		if rt.rr(instr.Rs1) < uint32(instr.Imm) {
			rt.rw(instr.Rd, 1)
		} else {
			rt.rw(instr.Rd, 0)
		}

	case isa.OpXori:
		rt.rw(instr.Rd, rt.rr(instr.Rs1)^uint32(instr.Imm))

	case isa.OpOri:
		rt.rw(instr.Rd, rt.rr(instr.Rs1)|uint32(instr.Imm))

	case isa.OpAndi:
		rt.rw(instr.Rd, rt.rr(instr.Rs1)&uint32(instr.Imm))

	case isa.OpSlli:
		rt.rw(instr.Rd, rt.rr(instr.Rs1)<<(uint32(instr.Imm)&0x1f))

	case isa.OpSrli:
		rt.rw(instr.Rd, rt.rr(instr.Rs1)>>(uint32(instr.Imm)&0x1f))

	case isa.OpSrai:
		rt.rw(instr.Rd, uint32(int32(rt.rr(instr.Rs1))>>(uint32(instr.Imm)&0x1f)))

	case isa.OpSb:
		addr := wrappingAddSigned(rt.rr(instr.Rs1), instr.Imm)
		value := rt.rr(instr.Rs2) & 0xFF
		word := rt.mr(align(addr))
		var merged uint32
		switch addr % 4 {
		case 0:
			merged = value + (word & 0xFFFFFF00)
		case 1:
			merged = (value << 8) + (word & 0xFFFF00FF)
		case 2:
			merged = (value << 16) + (word & 0xFF00FFFF)
		case 3:
			merged = (value << 24) + (word & 0x00FFFFFF)
		}
		waddr := align(addr)
		if err := rt.mwCPU(waddr, merged); err != nil {
			return 0, invalidMemoryAccessErr(instr, waddr, err.(MemoryErrKind))
		}

	case isa.OpSh:
		addr := wrappingAddSigned(rt.rr(instr.Rs1), instr.Imm)
		value := rt.rr(instr.Rs2) & 0xFFFF
		word := rt.mr(align(addr))
		var merged uint32
		switch addr % 4 {
		case 0:
			merged = value + (word & 0xFFFF0000)
		case 2:
			merged = (value << 16) + (word & 0x0000FFFF)
		default:
			return 0, invalidMemoryAccessErr(instr, addr, MemoryErrUnaligned)
		}
		waddr := align(addr)
		if err := rt.mwCPU(waddr, merged); err != nil {
			return 0, invalidMemoryAccessErr(instr, waddr, err.(MemoryErrKind))
		}

	case isa.OpSw:
		addr := wrappingAddSigned(rt.rr(instr.Rs1), instr.Imm)
		value := rt.rr(instr.Rs2)
		if err := rt.mwCPU(addr, value); err != nil {
			return 0, invalidMemoryAccessErr(instr, addr, err.(MemoryErrKind))
		}

	case isa.OpAdd:
		rt.rw(instr.Rd, rt.rr(instr.Rs1)+rt.rr(instr.Rs2))
	case isa.OpSub:
		rt.rw(instr.Rd, rt.rr(instr.Rs1)-rt.rr(instr.Rs2))
	case isa.OpSll:
		rt.rw(instr.Rd, rt.rr(instr.Rs1)<<(rt.rr(instr.Rs2)&0x1f))
	case isa.OpSlt:
		if int32(rt.rr(instr.Rs1)) < int32(rt.rr(instr.Rs2)) {
			rt.rw(instr.Rd, 1)
		} else {
			rt.rw(instr.Rd, 0)
		}
	case isa.OpSltu:
		if rt.rr(instr.Rs1) < rt.rr(instr.Rs2) {
			rt.rw(instr.Rd, 1)
		} else {
			rt.rw(instr.Rd, 0)
		}
	case isa.OpXor:
		rt.rw(instr.Rd, rt.rr(instr.Rs1)^rt.rr(instr.Rs2))
	case isa.OpSrl:
		rt.rw(instr.Rd, rt.rr(instr.Rs1)>>(rt.rr(instr.Rs2)&0x1f))
	case isa.OpSra:
		rt.rw(instr.Rd, uint32(int32(rt.rr(instr.Rs1))>>(rt.rr(instr.Rs2)&0x1f)))
	case isa.OpOr:
		rt.rw(instr.Rd, rt.rr(instr.Rs1)|rt.rr(instr.Rs2))
	case isa.OpAnd:
		rt.rw(instr.Rd, rt.rr(instr.Rs1)&rt.rr(instr.Rs2))

	case isa.OpBeq:
		if rt.rr(instr.Rs1) == rt.rr(instr.Rs2) {
			nextPC = wrappingAddSigned(rt.State.PC, instr.Imm)
		}
	case isa.OpBne:
		if rt.rr(instr.Rs1) != rt.rr(instr.Rs2) {
			nextPC = wrappingAddSigned(rt.State.PC, instr.Imm)
		}
	case isa.OpBlt:
		if int32(rt.rr(instr.Rs1)) < int32(rt.rr(instr.Rs2)) {
			nextPC = wrappingAddSigned(rt.State.PC, instr.Imm)
		}
	case isa.OpBge:
		if int32(rt.rr(instr.Rs1)) >= int32(rt.rr(instr.Rs2)) {
			nextPC = wrappingAddSigned(rt.State.PC, instr.Imm)
		}
	case isa.OpBltu:
		if rt.rr(instr.Rs1) < rt.rr(instr.Rs2) {
			nextPC = wrappingAddSigned(rt.State.PC, instr.Imm)
		}
	case isa.OpBgeu:
		if rt.rr(instr.Rs1) >= rt.rr(instr.Rs2) {
			nextPC = wrappingAddSigned(rt.State.PC, instr.Imm)
		}

	case isa.OpMul:
		rt.rw(instr.Rd, rt.rr(instr.Rs1)*rt.rr(instr.Rs2))
	case isa.OpMulh:
		v := (int64(int32(rt.rr(instr.Rs1))) * int64(int32(rt.rr(instr.Rs2)))) >> 32
		rt.rw(instr.Rd, uint32(v))
	case isa.OpMulhsu:
		v := (int64(int32(rt.rr(instr.Rs1))) * int64(rt.rr(instr.Rs2))) >> 32
		rt.rw(instr.Rd, uint32(v))
	case isa.OpMulhu:
		v := (uint64(rt.rr(instr.Rs1)) * uint64(rt.rr(instr.Rs2))) >> 32
		rt.rw(instr.Rd, uint32(v))
	case isa.OpDiv:
		rhs := rt.rr(instr.Rs2)
		if rhs == 0 {
			rt.rw(instr.Rd, 0xFFFFFFFF)
		} else {
			rt.rw(instr.Rd, uint32(int32(rt.rr(instr.Rs1))/int32(rhs)))
		}
	case isa.OpDivu:
		rhs := rt.rr(instr.Rs2)
		if rhs == 0 {
			rt.rw(instr.Rd, 0xFFFFFFFF)
		} else {
			rt.rw(instr.Rd, rt.rr(instr.Rs1)/rhs)
		}
	case isa.OpRem:
		lhs, rhs := int32(rt.rr(instr.Rs1)), int32(rt.rr(instr.Rs2))
		if rhs == 0 {
			rt.rw(instr.Rd, uint32(lhs))
		} else {
			rt.rw(instr.Rd, uint32(lhs%rhs))
		}
	case isa.OpRemu:
		lhs, rhs := rt.rr(instr.Rs1), rt.rr(instr.Rs2)
		if rhs == 0 {
			rt.rw(instr.Rd, lhs)
		} else {
			rt.rw(instr.Rd, lhs%rhs)
		}

	case isa.OpEcall:
		t0 := isa.X5
		syscallID := rt.register(t0)
		b := rt.rr(isa.X10)
		c := rt.rr(isa.X11)

		code, ok := SyscallCodeFromUint32(syscallID)
		if !ok {
			return 0, unsupportedSyscallErr(syscallID)
		}
		impl, ok := rt.syscallMap[code]
		if !ok {
			return 0, unsupportedSyscallErr(syscallID)
		}

		ctx := newSyscallContext(rt)
		outcome, err := impl.Execute(ctx, b, c)
		if err != nil {
			status, _ := err.(athinterface.StatusCode)
			return 0, syscallFailedErr(status)
		}

		switch {
		case outcome.IsExit && outcome.Exit == 0:
			nextPC = 0
		case outcome.IsExit:
			return 0, haltErr(outcome.Exit)
		default:
			if outcome.Value != nil {
				rt.rw(t0, *outcome.Value)
			}
			nextPC = rt.State.PC + 4
		}
		rt.State.Gas += impl.NumExtraCycles()

	case isa.OpEbreak:
		return 0, ErrBreakpointSentinel

	case isa.OpNotImplemented:
		runtimeLog.Error("found unimplemented opcode", "mnemonic", instr.Mnemonic, "raw", instr.RawOp)
		return 0, ErrUnimplementedSentinel

	default:
		return 0, fmt.Errorf("vm: internal: unhandled op %v", instr.Op)
	}

	rt.State.PC = nextPC
	rt.State.Gas += 4
	rt.State.GlobalClk++

	return nextPC, nil
}

// register is a small alias kept for readability at ECALL dispatch,
// matching Runtime::register in the original.
func (rt *Runtime) register(reg isa.Register) uint32 { return rt.rr(reg) }

func (rt *Runtime) executeCycle() (Event, error) {
	instr, ok := rt.Program.Instruction(rt.State.PC)
	if !ok {
		return EventNone, instructionFetchFailedErr(rt.State.PC)
	}

	if _, err := rt.executeInstruction(instr); err != nil {
		return EventNone, err
	}

	if _, armed := rt.breakpoints[rt.State.PC]; armed {
		return EventBreak, nil
	}

	if gasLeft, ok := rt.gasLeft(); ok {
		if !rt.unconstrained && gasLeft < 0 {
			runtimeLog.Debug("out of gas")
			return EventNone, ErrOutOfGasSentinel
		}
	}

	if rt.State.PC == 0 {
		runtimeLog.Debug("halt: zero pc")
		return EventHalted, nil
	}

	relativePC := rt.State.PC - rt.Program.PCBase
	maxPC := uint32(len(rt.Program.Instructions)) * 4
	if relativePC >= maxPC {
		runtimeLog.Warn("halt: out of instructions", "relative_pc", relativePC, "max_pc", maxPC)
		return EventHalted, nil
	}
	return EventNone, nil
}

// gasLeft returns max_gas - gas spent, which can go negative, and
// ok=false when no gas limit was configured.
func (rt *Runtime) gasLeft() (int64, bool) {
	if rt.maxGas == nil {
		return 0, false
	}
	return int64(*rt.maxGas) - int64(rt.State.Gas), true
}

func (rt *Runtime) initialize() {
	rt.State.Gas = 0
	runtimeLog.Info("loading memory image")
	for addr, value := range rt.Program.MemoryImage {
		rt.State.Memory[addr] = value
	}
}

func (rt *Runtime) jumpToSymbol(name string) error {
	offset, ok := rt.Program.SymbolTable[name]
	if !ok {
		return ErrUnknownSymbolSentinel
	}
	rt.State.PC = offset
	return nil
}

// ExecuteFunctionByName jumps to an exported symbol and runs it to
// completion, the same work Execute does for the default entry point.
func (rt *Runtime) ExecuteFunctionByName(name string) (*uint32, error) {
	if err := rt.jumpToSymbol(name); err != nil {
		return nil, err
	}
	return rt.Execute()
}

// ExecuteFunctionBySelector resolves a method selector to an exported
// symbol's address and runs it to completion.
func (rt *Runtime) ExecuteFunctionBySelector(selector athinterface.MethodSelector) (*uint32, error) {
	offset, ok := rt.Program.SelectorTable[selector]
	if !ok {
		return nil, ErrUnknownSymbolSentinel
	}
	rt.State.PC = offset
	return rt.Execute()
}

// Execute runs the program from its current PC until a halt event,
// an unrecoverable error, or gas exhaustion, returning remaining gas.
func (rt *Runtime) Execute() (*uint32, error) {
	if rt.State.GlobalClk == 0 {
		runtimeLog.Info("initializing")
		rt.initialize()
	}

	runtimeLog.Info("starting execution")
	for {
		event, err := rt.executeCycle()
		if err != nil {
			return nil, err
		}
		if event == EventHalted {
			break
		}
	}
	runtimeLog.Info("execution finished", "clk", rt.State.Gas, "global_clk", rt.State.GlobalClk, "pc", rt.State.PC)

	rt.postprocess()

	gasLeft, ok := rt.gasLeft()
	if !ok {
		return nil, nil
	}
	if gasLeft < 0 {
		return nil, fmt.Errorf("vm: internal: gas conversion error, negative remaining gas %d", gasLeft)
	}
	v := uint32(gasLeft)
	return &v, nil
}

// postprocess flushes whatever partial, not-yet-newline-terminated
// line remains buffered per fd; completed lines were already printed
// by appendIOBuf as they were written.
func (rt *Runtime) postprocess() {
	for fd, buf := range rt.ioBuf {
		if len(buf.buf) == 0 {
			continue
		}
		printLine(fd, buf.buf)
		buf.buf = nil
	}
}

func (rt *Runtime) getSyscall(code SyscallCode) (Syscall, bool) {
	s, ok := rt.syscallMap[code]
	return s, ok
}

// ExecuteHook runs the hook registered for fd against data, failing if
// none is registered.
func (rt *Runtime) ExecuteHook(fd uint32, data []byte) ([]byte, error) {
	hook, ok := rt.hookRegistry.get(fd)
	if !ok {
		return nil, fmt.Errorf("vm: no hook registered for fd %d", fd)
	}
	return hook.Execute(HookEnv{Runtime: rt}, data)
}

// WriteStdin appends bytes to the guest-readable input stream.
func (rt *Runtime) WriteStdin(data []byte) {
	rt.State.InputStream = append(rt.State.InputStream, data...)
}
