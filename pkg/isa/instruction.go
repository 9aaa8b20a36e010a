package isa

// Op identifies the operation a decoded Instruction performs.
type Op int

const (
	OpLui Op = iota
	OpAuipc
	OpJal
	OpJalr
	OpLb
	OpLh
	OpLw
	OpLbu
	OpLhu
	OpAddi
	OpSlti
	OpSltiu
	OpXori
	OpOri
	OpAndi
	OpSlli
	OpSrli
	OpSrai
	OpSb
	OpSh
	OpSw
	OpAdd
	OpSub
	OpSll
	OpSlt
	OpSltu
	OpXor
	OpSrl
	OpSra
	OpOr
	OpAnd
	OpBeq
	OpBne
	OpBlt
	OpBge
	OpBltu
	OpBgeu
	OpMul
	OpMulh
	OpMulhsu
	OpMulhu
	OpDiv
	OpDivu
	OpRem
	OpRemu
	OpEcall
	OpEbreak
	OpNotImplemented
)

func (o Op) String() string {
	switch o {
	case OpLui:
		return "lui"
	case OpAuipc:
		return "auipc"
	case OpJal:
		return "jal"
	case OpJalr:
		return "jalr"
	case OpLb:
		return "lb"
	case OpLh:
		return "lh"
	case OpLw:
		return "lw"
	case OpLbu:
		return "lbu"
	case OpLhu:
		return "lhu"
	case OpAddi:
		return "addi"
	case OpSlti:
		return "slti"
	case OpSltiu:
		return "sltiu"
	case OpXori:
		return "xori"
	case OpOri:
		return "ori"
	case OpAndi:
		return "andi"
	case OpSlli:
		return "slli"
	case OpSrli:
		return "srli"
	case OpSrai:
		return "srai"
	case OpSb:
		return "sb"
	case OpSh:
		return "sh"
	case OpSw:
		return "sw"
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpSll:
		return "sll"
	case OpSlt:
		return "slt"
	case OpSltu:
		return "sltu"
	case OpXor:
		return "xor"
	case OpSrl:
		return "srl"
	case OpSra:
		return "sra"
	case OpOr:
		return "or"
	case OpAnd:
		return "and"
	case OpBeq:
		return "beq"
	case OpBne:
		return "bne"
	case OpBlt:
		return "blt"
	case OpBge:
		return "bge"
	case OpBltu:
		return "bltu"
	case OpBgeu:
		return "bgeu"
	case OpMul:
		return "mul"
	case OpMulh:
		return "mulh"
	case OpMulhsu:
		return "mulhsu"
	case OpMulhu:
		return "mulhu"
	case OpDiv:
		return "div"
	case OpDivu:
		return "divu"
	case OpRem:
		return "rem"
	case OpRemu:
		return "remu"
	case OpEcall:
		return "ecall"
	case OpEbreak:
		return "ebreak"
	default:
		return "unimplemented"
	}
}

// Instruction is a decoded RV32E+M instruction. Not every field is
// meaningful for every Op; the decoder only populates the ones the
// given Op needs, mirroring the original's per-variant tuple layout
// (rd, rs1, imm), (rs1, rs2, imm), (rd, rs1, rs2), and so on.
type Instruction struct {
	Op       Op
	Rd       Register
	Rs1      Register
	Rs2      Register
	Imm      int32
	RawOp    uint32 // raw instruction word, used only for NotImplemented diagnostics
	Mnemonic string // set only for NotImplemented, e.g. "fence", "csrrw"
}

func (in Instruction) String() string {
	return in.Op.String()
}
