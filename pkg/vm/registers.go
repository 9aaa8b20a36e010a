package vm

import "github.com/athenavm/athena-go/pkg/isa"

// Registers is the RV32E general-purpose register file. The backing
// array is sized to the full 5-bit register field (32 slots) rather
// than the architectural 16, because the instruction decoder extracts
// register fields the same way regardless of format -- for U/J-type
// words those bit positions are actually part of the immediate, not a
// register reference, so a well-formed ilp32e binary never indexes
// past x15 in practice. Only the low 16 slots are architectural; x0
// always reads as zero and writes to it are silently discarded.
type Registers struct {
	slots [32]uint32
}

// Read returns the current value of a register.
func (r *Registers) Read(reg isa.Register) uint32 {
	if reg == isa.X0 {
		return 0
	}
	return r.slots[reg]
}

// Write stores a value into a register. Writes to x0 are a no-op.
func (r *Registers) Write(reg isa.Register, value uint32) {
	if reg == isa.X0 {
		return
	}
	r.slots[reg] = value
}

// All returns a snapshot of the 16 architectural registers, x0
// included (as zero), for tracing and debugging.
func (r *Registers) All() [isa.NumRegisters]uint32 {
	var snapshot [isa.NumRegisters]uint32
	copy(snapshot[:], r.slots[:isa.NumRegisters])
	snapshot[isa.X0] = 0
	return snapshot
}
