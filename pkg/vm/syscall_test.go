package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athenavm/athena-go/pkg/athinterface"
	"github.com/athenavm/athena-go/pkg/isa"
	"github.com/athenavm/athena-go/pkg/mockhost"
)

func wordAt(b []byte, wordIndex int) uint32 {
	var w [4]byte
	copy(w[:], b[wordIndex*4:])
	return uint32(w[0]) | uint32(w[1])<<8 | uint32(w[2])<<16 | uint32(w[3])<<24
}

func TestHostReadWriteRoundTrip(t *testing.T) {
	host := mockhost.New()
	program := newTestProgram([]isa.Instruction{
		addi(isa.X5, isa.X0, int32(SyscallHostWrite)),
		addi(isa.X10, isa.X0, 40), // key ptr
		addi(isa.X11, isa.X0, 72), // value ptr
		{Op: isa.OpEcall},
		addi(isa.X5, isa.X0, int32(SyscallHostRead)),
		addi(isa.X10, isa.X0, 40), // key ptr, overwritten with the stored value
		{Op: isa.OpEcall},
	})
	rt := New(program, host, Options(), nil)
	rt.initialize()

	var key, value athinterface.Bytes32
	key[0] = 0xAA
	value[0] = 0xBB
	for i := 0; i < 8; i++ {
		rt.mw(40+uint32(i)*4, wordAt(key[:], i))
		rt.mw(72+uint32(i)*4, wordAt(value[:], i))
	}

	for _, instr := range program.Instructions {
		_, err := rt.executeInstruction(instr)
		require.NoError(t, err)
	}

	got := host.GetStorage(athinterface.Address{}, key)
	assert.Equal(t, value, got)
	assert.Equal(t, value[:], newSyscallContext(rt).Bytes(40, athinterface.Bytes32Length))
}

func TestHintLenAndRead(t *testing.T) {
	program := newTestProgram(nil)
	rt := New(program, nil, Options(), nil)
	rt.initialize()
	rt.WriteStdin([]byte{1, 2, 3, 4, 5})

	ctx := newSyscallContext(rt)
	out, err := (syscallHintLen{}).Execute(ctx, 0, 0)
	require.NoError(t, err)
	require.NotNil(t, out.Value)
	assert.Equal(t, uint32(5), *out.Value)

	_, err = (syscallHintRead{}).Execute(ctx, 40, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, ctx.Bytes(40, 4))
	assert.Equal(t, 4, rt.State.InputStreamPtr)
}

func TestHintReadInsufficientInputFails(t *testing.T) {
	program := newTestProgram(nil)
	rt := New(program, nil, Options(), nil)
	rt.initialize()
	rt.WriteStdin([]byte{1, 2})

	ctx := newSyscallContext(rt)
	_, err := (syscallHintRead{}).Execute(ctx, 40, 10)
	assert.Equal(t, athinterface.StatusInsufficientInput, err)
}

func TestWriteStdoutUTF8Validation(t *testing.T) {
	program := newTestProgram(nil)
	rt := New(program, nil, Options(), nil)
	rt.initialize()
	rt.rw(regA1, 40)
	rt.rw(regA2, 4)
	rt.mw(40, 0xFF000000) // invalid UTF-8 byte sequence

	ctx := newSyscallContext(rt)
	_, err := (syscallWrite{}).Execute(ctx, fdStdout, 0)
	assert.Equal(t, athinterface.StatusArgumentOutOfRange, err)
}

func TestGetBalanceWritesLittleEndianWords(t *testing.T) {
	host := mockhost.New()
	var callee athinterface.Address
	host.SetBalance(callee, athinterface.Balance(0x100000002))

	program := newTestProgram(nil)
	rt := New(program, host, Options(), nil)
	rt.initialize()

	ctx := newSyscallContext(rt)
	_, err := (syscallHostGetBalance{}).Execute(ctx, 40, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), rt.Word(40))
	assert.Equal(t, uint32(1), rt.Word(44))
}
