package loader

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"fmt"

	"github.com/athenavm/athena-go/pkg/isa"
	"github.com/athenavm/athena-go/pkg/log"
)

var loaderLog = log.Default().Module("loader")

// maxProgramHeaders bounds the number of PT_LOAD segments an image may
// declare, guarding against a maliciously crafted header count.
const maxProgramHeaders = 256

// magicELF and magicATH are the two image formats Load recognises.
var (
	magicELF = [4]byte{0x7f, 'E', 'L', 'F'}
	magicATH = [4]byte{0x7f, 'A', 'T', 'H'}
)

// exportMetadataSize is the packed size, in bytes, of one
// .note.athena_export record: version(1) + address(4) + sym_ptr(4).
const exportMetadataSize = 9

// Load parses a guest program image. It recognises full ELF32
// executables (magic 0x7F 'E' 'L' 'F') and raw Athena instruction
// blobs (magic 0x7F 'A' 'T' 'H').
func Load(data []byte) (*Program, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("loader: image too short")
	}
	var magic [4]byte
	copy(magic[:], data[:4])
	switch magic {
	case magicELF:
		return loadELF(data)
	case magicATH:
		return loadRaw(data[4:])
	default:
		return nil, fmt.Errorf("loader: unrecognised image magic %x", magic)
	}
}

func loadRaw(data []byte) (*Program, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("loader: raw blob length %d is not a multiple of 4", len(data))
	}
	instructions := make([]isa.Instruction, 0, len(data)/4)
	for off := 0; off < len(data); off += 4 {
		word := binary.LittleEndian.Uint32(data[off : off+4])
		instructions = append(instructions, isa.Decode(word))
	}
	return New(instructions, 0, 0, map[uint32]uint32{}, map[string]uint32{}), nil
}

func loadELF(data []byte) (*Program, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("loader: failed to parse elf: %w", err)
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("loader: must be a 32-bit elf")
	}
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("loader: must be a riscv machine")
	}
	if f.Type != elf.ET_EXEC {
		return nil, fmt.Errorf("loader: must be executable")
	}

	entry := uint32(f.Entry)
	if uint64(entry) != f.Entry {
		return nil, fmt.Errorf("loader: e_entry does not fit in 32 bits")
	}
	if entry%4 != 0 {
		return nil, fmt.Errorf("loader: entry point %#x is not word-aligned", entry)
	}

	loads := make([]*elf.Prog, 0, len(f.Progs))
	for _, p := range f.Progs {
		if p.Type == elf.PT_LOAD {
			loads = append(loads, p)
		}
	}
	if len(loads) > maxProgramHeaders {
		return nil, fmt.Errorf("loader: too many program headers (%d)", len(loads))
	}

	image := make(map[uint32]uint32)
	var instructions []uint32
	baseAddress := uint32(0xffffffff)

	for _, seg := range loads {
		vaddr := uint32(seg.Vaddr)
		if uint64(vaddr) != seg.Vaddr {
			return nil, fmt.Errorf("loader: vaddr does not fit in 32 bits")
		}
		if vaddr%4 != 0 {
			return nil, fmt.Errorf("loader: vaddr %#08x is unaligned", vaddr)
		}

		executable := seg.Flags&elf.PF_X != 0
		if executable && vaddr < baseAddress {
			baseAddress = vaddr
		}

		segData := make([]byte, seg.Filesz)
		if _, err := seg.ReadAt(segData, 0); err != nil {
			return nil, fmt.Errorf("loader: failed to read segment data: %w", err)
		}

		address := vaddr
		full := len(segData) - len(segData)%4
		for off := 0; off < full; off += 4 {
			word := binary.LittleEndian.Uint32(segData[off : off+4])
			image[address] = word
			if executable {
				instructions = append(instructions, word)
			}
			address += 4
		}
		if rem := segData[full:]; len(rem) > 0 {
			var tail [4]byte
			copy(tail[:], rem)
			word := binary.LittleEndian.Uint32(tail[:])
			image[address] = word
			if executable {
				instructions = append(instructions, word)
			}
		}
	}

	symbolTable, err := harvestExportedSymbols(f, loads)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}

	decoded := make([]isa.Instruction, len(instructions))
	for i, word := range instructions {
		decoded[i] = isa.Decode(word)
		if decoded[i].Op == isa.OpNotImplemented && !isTrapOnlyMnemonic(decoded[i].Mnemonic) {
			return nil, fmt.Errorf("loader: parsing code failed: unknown instruction word %#08x", word)
		}
	}

	loaderLog.Debug("loaded elf image", "instructions", len(decoded), "pc_start", entry, "pc_base", baseAddress)

	return New(decoded, entry, baseAddress, image, symbolTable), nil
}

// isTrapOnlyMnemonic reports whether a NotImplemented instruction is
// one of the explicitly tolerated "parses, traps at run time" control
// instructions rather than a truly unknown encoding.
func isTrapOnlyMnemonic(mnemonic string) bool {
	switch mnemonic {
	case "fence", "csrrw", "csrrs", "csrrc", "csrrwi", "csrrsi", "csrrci", "system":
		return true
	default:
		return false
	}
}

type exportMetadata struct {
	Version byte
	Address uint32
	SymPtr  uint32
}

func parseExportMetadata(b []byte) exportMetadata {
	return exportMetadata{
		Version: b[0],
		Address: binary.LittleEndian.Uint32(b[1:5]),
		SymPtr:  binary.LittleEndian.Uint32(b[5:9]),
	}
}

func harvestExportedSymbols(f *elf.File, loads []*elf.Prog) (map[string]uint32, error) {
	symbols := make(map[string]uint32)

	section := f.Section(".note.athena_export")
	if section == nil {
		return symbols, nil
	}
	sectionData, err := section.Data()
	if err != nil {
		return nil, fmt.Errorf("section table should be parseable: %w", err)
	}

	segData := make(map[*elf.Prog][]byte)
	dataFor := func(seg *elf.Prog) ([]byte, error) {
		if d, ok := segData[seg]; ok {
			return d, nil
		}
		d := make([]byte, seg.Filesz)
		if _, err := seg.ReadAt(d, 0); err != nil {
			return nil, err
		}
		segData[seg] = d
		return d, nil
	}

	for len(sectionData) > 0 {
		if len(sectionData) < exportMetadataSize {
			return nil, fmt.Errorf("truncated export metadata record")
		}
		header := parseExportMetadata(sectionData[:exportMetadataSize])
		if header.Version != 0 {
			return nil, fmt.Errorf("unsupported export metadata version %d", header.Version)
		}
		sectionData = sectionData[exportMetadataSize:]

		for _, seg := range loads {
			vaddr := uint32(seg.Vaddr)
			size := uint32(seg.Memsz)
			if header.SymPtr < vaddr || header.SymPtr >= vaddr+size {
				continue
			}
			strOffset := header.SymPtr - vaddr
			data, err := dataFor(seg)
			if err != nil {
				return nil, fmt.Errorf("failed to read segment data: %w", err)
			}
			if int(strOffset) >= len(data) {
				break
			}
			end := int(strOffset)
			for end < len(data) && data[end] != 0 {
				end++
			}
			symbol := string(data[strOffset:end])
			loaderLog.Debug("read exported symbol", "symbol", symbol, "address", header.Address)
			symbols[symbol] = header.Address
			break
		}
	}
	return symbols, nil
}
