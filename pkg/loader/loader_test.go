package loader

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athenavm/athena-go/pkg/isa"
)

func rawBlob(words ...uint32) []byte {
	blob := append([]byte{}, magicATH[:]...)
	for _, w := range words {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], w)
		blob = append(blob, buf[:]...)
	}
	return blob
}

func TestLoadRawBlobDecodesInstructions(t *testing.T) {
	// addi x1, x0, 5 ; add x2, x1, x1
	program, err := Load(rawBlob(0x00500093, 0x001080b3))
	require.NoError(t, err)
	require.Len(t, program.Instructions, 2)
	assert.Equal(t, isa.OpAddi, program.Instructions[0].Op)
	assert.Equal(t, isa.OpAdd, program.Instructions[1].Op)
	assert.Equal(t, uint32(0), program.PCStart)
	assert.Equal(t, uint32(0), program.PCBase)
}

func TestLoadRejectsUnrecognisedMagic(t *testing.T) {
	_, err := Load([]byte{0x00, 0x01, 0x02, 0x03})
	assert.Error(t, err)
}

func TestLoadRejectsTooShortImage(t *testing.T) {
	_, err := Load([]byte{0x7f})
	assert.Error(t, err)
}

func TestLoadRawRejectsUnalignedLength(t *testing.T) {
	blob := append([]byte{}, magicATH[:]...)
	blob = append(blob, 0x01, 0x02, 0x03)
	_, err := Load(blob)
	assert.Error(t, err)
}

func TestIsTrapOnlyMnemonicToleratesControlInstructions(t *testing.T) {
	assert.True(t, isTrapOnlyMnemonic("fence"))
	assert.True(t, isTrapOnlyMnemonic("csrrw"))
	assert.False(t, isTrapOnlyMnemonic("bogus"))
}

func TestProgramInstructionLookup(t *testing.T) {
	program := New([]isa.Instruction{
		{Op: isa.OpAddi},
		{Op: isa.OpAdd},
	}, 100, 100, map[uint32]uint32{}, map[string]uint32{})

	instr, ok := program.Instruction(104)
	require.True(t, ok)
	assert.Equal(t, isa.OpAdd, instr.Op)

	_, ok = program.Instruction(96)
	assert.False(t, ok)

	_, ok = program.Instruction(102)
	assert.False(t, ok)

	_, ok = program.Instruction(108)
	assert.False(t, ok)
}

func TestNewDerivesSelectorTableFromSymbolTable(t *testing.T) {
	program := New(nil, 0, 0, map[uint32]uint32{}, map[string]uint32{"transfer": 64})
	require.Len(t, program.SelectorTable, 1)
	for _, addr := range program.SelectorTable {
		assert.Equal(t, uint32(64), addr)
	}
}
