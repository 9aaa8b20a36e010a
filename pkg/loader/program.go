// Package loader parses an Athena program image -- either a RISC-V
// ELF32 executable or a raw instruction blob -- into a Program the VM
// can execute.
package loader

import (
	"github.com/athenavm/athena-go/pkg/athinterface"
	"github.com/athenavm/athena-go/pkg/isa"
)

// Program is the immutable, shareable result of loading a guest image:
// its decoded instruction stream, its initial memory image, and the
// symbol/selector tables used to dispatch into exported functions.
type Program struct {
	Instructions  []isa.Instruction
	PCStart       uint32
	PCBase        uint32
	MemoryImage   map[uint32]uint32
	SymbolTable   map[string]uint32
	SelectorTable map[athinterface.MethodSelector]uint32
}

// Instruction looks up the decoded instruction at a given program
// counter, or false if pc falls outside the loaded code region.
func (p *Program) Instruction(pc uint32) (isa.Instruction, bool) {
	if pc < p.PCBase {
		return isa.Instruction{}, false
	}
	idx := (pc - p.PCBase) / 4
	if (pc-p.PCBase)%4 != 0 || idx >= uint32(len(p.Instructions)) {
		return isa.Instruction{}, false
	}
	return p.Instructions[idx], true
}

// New builds a Program, deriving the selector table from the symbol
// table the same way the loader does: selector = BLAKE3(name)[0:4].
func New(instructions []isa.Instruction, pcStart, pcBase uint32, memoryImage map[uint32]uint32, symbolTable map[string]uint32) *Program {
	selectorTable := make(map[athinterface.MethodSelector]uint32, len(symbolTable))
	for name, addr := range symbolTable {
		selectorTable[athinterface.SelectorFromString(name)] = addr
	}
	return &Program{
		Instructions:  instructions,
		PCStart:       pcStart,
		PCBase:        pcBase,
		MemoryImage:   memoryImage,
		SymbolTable:   symbolTable,
		SelectorTable: selectorTable,
	}
}
