package isa

import "fmt"

// baseOpcode is bits [6:2] of a 32-bit RISC-V instruction word, which
// selects the instruction format (R/I/S/B/U/J).
type baseOpcode uint32

const (
	boLoad    baseOpcode = 0x00
	boMiscMem baseOpcode = 0x03
	boOpImm   baseOpcode = 0x04
	boAUIPC   baseOpcode = 0x05
	boStore   baseOpcode = 0x08
	boOp      baseOpcode = 0x0c
	boLUI     baseOpcode = 0x0d
	boBranch  baseOpcode = 0x18
	boJALR    baseOpcode = 0x19
	boJAL     baseOpcode = 0x1b
	boSystem  baseOpcode = 0x1c
)

// funct3/funct7 selected opcodes, keyed the same way the table in the
// LMMilewski decoder is: funct7<<8 | funct3<<5 | baseOpcode, restricted
// to the R-type rows we implement.
const (
	keyAdd    = 0x000c
	keySub    = 0x200c
	keySll    = 0x002c
	keySlt    = 0x004c
	keySltu   = 0x006c
	keyXor    = 0x008c
	keySrl    = 0x00ac
	keySra    = 0x20ac
	keyOr     = 0x00cc
	keyAnd    = 0x00ec
	keyMul    = 0x010c
	keyMulh   = 0x012c
	keyMulhsu = 0x014c
	keyMulhu  = 0x016c
	keyDiv    = 0x018c
	keyDivu   = 0x01ac
	keyRem    = 0x01cc
	keyRemu   = 0x01ec
)

func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}

// Decode turns a 32-bit little-endian-loaded instruction word into an
// Instruction. Compressed (16-bit) encodings are not supported: Athena
// guest programs are always compiled for the non-compressed RV32IM ABI.
func Decode(word uint32) Instruction {
	// Register fields are 5 bits wide even in RV32E; values 16-31 name
	// registers that don't exist in the 16-register file; they are kept
	// as-is here, and the register file's 32-slot backing array accepts
	// them rather than rejecting them.
	rs1 := Register(word >> 15 & 0x1f)
	rs2 := Register(word >> 20 & 0x1f)
	rd := Register(word >> 7 & 0x1f)

	bop := baseOpcode(word >> 2 & 0x1f)

	switch bop {
	case boLUI:
		return Instruction{Op: OpLui, Rd: rd, Imm: int32(word & 0xfffff000 >> 12)}
	case boAUIPC:
		return Instruction{Op: OpAuipc, Rd: rd, Imm: int32(word & 0xfffff000 >> 12)}
	case boJAL:
		imm := word>>11&0x100000 | word&0xff000 | word>>9&0x800 | word>>20&0x7fe
		return Instruction{Op: OpJal, Rd: rd, Imm: signExtend(imm, 21)}
	case boJALR:
		return Instruction{Op: OpJalr, Rd: rd, Rs1: rs1, Imm: signExtend(word>>20&0xfff, 12)}
	case boLoad:
		imm := signExtend(word>>20&0xfff, 12)
		switch word >> 12 & 0x7 {
		case 0x0:
			return Instruction{Op: OpLb, Rd: rd, Rs1: rs1, Imm: imm}
		case 0x1:
			return Instruction{Op: OpLh, Rd: rd, Rs1: rs1, Imm: imm}
		case 0x2:
			return Instruction{Op: OpLw, Rd: rd, Rs1: rs1, Imm: imm}
		case 0x4:
			return Instruction{Op: OpLbu, Rd: rd, Rs1: rs1, Imm: imm}
		case 0x5:
			return Instruction{Op: OpLhu, Rd: rd, Rs1: rs1, Imm: imm}
		default:
			return notImplemented(word, "load")
		}
	case boStore:
		imm := signExtend(word>>20&0xfe0|word>>7&0x1f, 12)
		switch word >> 12 & 0x7 {
		case 0x0:
			return Instruction{Op: OpSb, Rs1: rs1, Rs2: rs2, Imm: imm}
		case 0x1:
			return Instruction{Op: OpSh, Rs1: rs1, Rs2: rs2, Imm: imm}
		case 0x2:
			return Instruction{Op: OpSw, Rs1: rs1, Rs2: rs2, Imm: imm}
		default:
			return notImplemented(word, "store")
		}
	case boBranch:
		imm := signExtend(word>>19&0x1000|word<<4&0x800|word>>20&0x7e0|word>>7&0x1e, 13)
		switch word >> 12 & 0x7 {
		case 0x0:
			return Instruction{Op: OpBeq, Rs1: rs1, Rs2: rs2, Imm: imm}
		case 0x1:
			return Instruction{Op: OpBne, Rs1: rs1, Rs2: rs2, Imm: imm}
		case 0x4:
			return Instruction{Op: OpBlt, Rs1: rs1, Rs2: rs2, Imm: imm}
		case 0x5:
			return Instruction{Op: OpBge, Rs1: rs1, Rs2: rs2, Imm: imm}
		case 0x6:
			return Instruction{Op: OpBltu, Rs1: rs1, Rs2: rs2, Imm: imm}
		case 0x7:
			return Instruction{Op: OpBgeu, Rs1: rs1, Rs2: rs2, Imm: imm}
		default:
			return notImplemented(word, "branch")
		}
	case boOpImm:
		imm12 := signExtend(word>>20&0xfff, 12)
		shamt := int32(word >> 20 & 0x1f)
		switch word >> 12 & 0x7 {
		case 0x0:
			return Instruction{Op: OpAddi, Rd: rd, Rs1: rs1, Imm: imm12}
		case 0x2:
			return Instruction{Op: OpSlti, Rd: rd, Rs1: rs1, Imm: imm12}
		case 0x3:
			return Instruction{Op: OpSltiu, Rd: rd, Rs1: rs1, Imm: imm12}
		case 0x4:
			return Instruction{Op: OpXori, Rd: rd, Rs1: rs1, Imm: imm12}
		case 0x6:
			return Instruction{Op: OpOri, Rd: rd, Rs1: rs1, Imm: imm12}
		case 0x7:
			return Instruction{Op: OpAndi, Rd: rd, Rs1: rs1, Imm: imm12}
		case 0x1:
			return Instruction{Op: OpSlli, Rd: rd, Rs1: rs1, Imm: shamt}
		case 0x5:
			if word>>25&0x7f == 0x20 {
				return Instruction{Op: OpSrai, Rd: rd, Rs1: rs1, Imm: shamt}
			}
			return Instruction{Op: OpSrli, Rd: rd, Rs1: rs1, Imm: shamt}
		default:
			return notImplemented(word, "op-imm")
		}
	case boOp:
		funct7 := word >> 25 & 0x7f
		funct3 := word >> 12 & 0x7
		key := funct7<<8 | funct3<<5 | uint32(bop)
		switch key {
		case keyAdd:
			return Instruction{Op: OpAdd, Rd: rd, Rs1: rs1, Rs2: rs2}
		case keySub:
			return Instruction{Op: OpSub, Rd: rd, Rs1: rs1, Rs2: rs2}
		case keySll:
			return Instruction{Op: OpSll, Rd: rd, Rs1: rs1, Rs2: rs2}
		case keySlt:
			return Instruction{Op: OpSlt, Rd: rd, Rs1: rs1, Rs2: rs2}
		case keySltu:
			return Instruction{Op: OpSltu, Rd: rd, Rs1: rs1, Rs2: rs2}
		case keyXor:
			return Instruction{Op: OpXor, Rd: rd, Rs1: rs1, Rs2: rs2}
		case keySrl:
			return Instruction{Op: OpSrl, Rd: rd, Rs1: rs1, Rs2: rs2}
		case keySra:
			return Instruction{Op: OpSra, Rd: rd, Rs1: rs1, Rs2: rs2}
		case keyOr:
			return Instruction{Op: OpOr, Rd: rd, Rs1: rs1, Rs2: rs2}
		case keyAnd:
			return Instruction{Op: OpAnd, Rd: rd, Rs1: rs1, Rs2: rs2}
		case keyMul:
			return Instruction{Op: OpMul, Rd: rd, Rs1: rs1, Rs2: rs2}
		case keyMulh:
			return Instruction{Op: OpMulh, Rd: rd, Rs1: rs1, Rs2: rs2}
		case keyMulhsu:
			return Instruction{Op: OpMulhsu, Rd: rd, Rs1: rs1, Rs2: rs2}
		case keyMulhu:
			return Instruction{Op: OpMulhu, Rd: rd, Rs1: rs1, Rs2: rs2}
		case keyDiv:
			return Instruction{Op: OpDiv, Rd: rd, Rs1: rs1, Rs2: rs2}
		case keyDivu:
			return Instruction{Op: OpDivu, Rd: rd, Rs1: rs1, Rs2: rs2}
		case keyRem:
			return Instruction{Op: OpRem, Rd: rd, Rs1: rs1, Rs2: rs2}
		case keyRemu:
			return Instruction{Op: OpRemu, Rd: rd, Rs1: rs1, Rs2: rs2}
		default:
			return notImplemented(word, "op")
		}
	case boSystem:
		switch word >> 12 & 0x7 {
		case 0x0:
			switch word >> 20 {
			case 0x0:
				return Instruction{Op: OpEcall}
			case 0x1:
				return Instruction{Op: OpEbreak}
			default:
				return notImplemented(word, "system")
			}
		case 0x1:
			return notImplemented(word, "csrrw")
		case 0x2:
			return notImplemented(word, "csrrs")
		case 0x3:
			return notImplemented(word, "csrrc")
		case 0x5:
			return notImplemented(word, "csrrwi")
		case 0x6:
			return notImplemented(word, "csrrsi")
		case 0x7:
			return notImplemented(word, "csrrci")
		default:
			return notImplemented(word, "system")
		}
	case boMiscMem:
		return notImplemented(word, "fence")
	default:
		return notImplemented(word, fmt.Sprintf("opcode(%#02x)", bop))
	}
}

func notImplemented(word uint32, mnemonic string) Instruction {
	return Instruction{Op: OpNotImplemented, RawOp: word, Mnemonic: mnemonic}
}
