package vm

import "github.com/athenavm/athena-go/pkg/isa"

// RISC-V ABI register aliases used by syscall handlers to reach
// arguments beyond the first two (which the ECALL dispatcher already
// passes as b/c).
const (
	regT0 = isa.X5
	regA0 = isa.X10
	regA1 = isa.X11
	regA2 = isa.X12
	regA3 = isa.X13
	regA4 = isa.X14
	regA5 = isa.X15
)
