package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athenavm/athena-go/pkg/athinterface"
	"github.com/athenavm/athena-go/pkg/mockhost"
)

func TestHostCallDelegatesToHostAndCreditsGas(t *testing.T) {
	host := mockhost.New()
	var recipient athinterface.Address
	recipient[0] = 0x42
	host.RegisterProgram(recipient, nil)
	host.Resolver = func(msg athinterface.AthenaMessage, code []byte) athinterface.ExecutionResult {
		return athinterface.ExecutionResult{StatusCode: athinterface.StatusSuccess, GasLeft: msg.Gas - 10, Output: []byte{7, 8, 9}}
	}

	program := newTestProgram(nil)
	rt := New(program, host, Options(WithMaxGas(1000)), nil)
	rt.initialize()
	rt.mw(0, 0x42) // recipient address bytes, first word

	rt.rw(regA2, 0)  // input length
	rt.rw(regA3, 40) // out ptr
	rt.rw(regA4, 16) // out cap
	rt.rw(regA5, 60) // amount ptr
	rt.mw(60, 0)
	rt.mw(64, 0)

	ctx := newSyscallContext(rt)
	out, err := (syscallHostCall{}).Execute(ctx, 0, 0)
	require.NoError(t, err)
	require.NotNil(t, out.Value)
	assert.Equal(t, uint32(3), *out.Value)
	assert.Equal(t, []byte{7, 8, 9}, ctx.Bytes(40, 3))
	assert.Equal(t, uint32(10), rt.State.Gas)
}

func TestHostCallZeroPadsTailBytes(t *testing.T) {
	host := mockhost.New()
	var recipient athinterface.Address
	recipient[0] = 0x42
	host.RegisterProgram(recipient, nil)
	host.Resolver = func(msg athinterface.AthenaMessage, code []byte) athinterface.ExecutionResult {
		return athinterface.ExecutionResult{StatusCode: athinterface.StatusSuccess, GasLeft: msg.Gas, Output: []byte{1, 2, 3}}
	}

	program := newTestProgram(nil)
	rt := New(program, host, Options(), nil)
	rt.initialize()
	rt.mw(0, 0x42)
	rt.mw(40, 0xFFFFFFFF) // pre-dirty the destination's trailing word

	rt.rw(regA2, 0)
	rt.rw(regA3, 40)
	rt.rw(regA4, 16)
	rt.rw(regA5, 60)
	rt.mw(60, 0)
	rt.mw(64, 0)

	ctx := newSyscallContext(rt)
	_, err := (syscallHostCall{}).Execute(ctx, 0, 0)
	require.NoError(t, err)

	// the output is 3 bytes, so the 4th byte of the destination word
	// must come back zeroed, not the 0xFF that was already there.
	assert.Equal(t, []byte{1, 2, 3, 0}, ctx.Bytes(40, 4))
}

func TestHostCallPropagatesFailureStatus(t *testing.T) {
	host := mockhost.New()
	program := newTestProgram(nil)
	rt := New(program, host, Options(), nil)
	rt.initialize()
	rt.rw(regA2, 0)
	rt.rw(regA3, 40)
	rt.rw(regA4, 16)
	rt.rw(regA5, 60)

	ctx := newSyscallContext(rt)
	_, err := (syscallHostCall{}).Execute(ctx, 0, 0)
	assert.Equal(t, athinterface.StatusFailure, err)
}

func TestHostSpawnWritesBackAddress(t *testing.T) {
	host := mockhost.New()
	program := newTestProgram(nil)
	rt := New(program, host, Options(), nil)
	rt.initialize()
	rt.rw(regA2, 80) // addr out ptr

	ctx := newSyscallContext(rt)
	_, err := (syscallHostSpawn{}).Execute(ctx, 0, 0)
	require.NoError(t, err)

	addrBytes := ctx.Bytes(80, athinterface.AddressLength)
	assert.Equal(t, byte('S'), addrBytes[0])
	assert.True(t, host.AccountExists(athinterface.AddressFromWords(ctx.MRSlice(80, 6))))
}

func TestHostDeployWritesBackDistinctAddress(t *testing.T) {
	host := mockhost.New()
	program := newTestProgram(nil)
	rt := New(program, host, Options(), nil)
	rt.initialize()
	rt.rw(regA2, 80)

	ctx := newSyscallContext(rt)
	_, err := (syscallHostDeploy{}).Execute(ctx, 0, 0)
	require.NoError(t, err)

	addrBytes := ctx.Bytes(80, athinterface.AddressLength)
	assert.Equal(t, byte('D'), addrBytes[0])
}

func TestHostContextWritesWireLayout(t *testing.T) {
	callerAddr := athinterface.Address{0xAA}
	caller := athinterface.NewCallerBuilder(callerAddr).Build()
	athCtx := athinterface.NewAthenaContext(athinterface.Address{}, caller, 0, 99)

	program := newTestProgram(nil)
	rt := New(program, nil, Options(), &athCtx)
	rt.initialize()

	ctx := newSyscallContext(rt)
	_, err := (syscallHostContext{}).Execute(ctx, 0, 0)
	require.NoError(t, err)

	wire := ctx.Bytes(0, 8+athinterface.AddressLength+athinterface.AddressLength)
	assert.Equal(t, byte(99), wire[0])
	assert.Equal(t, byte(0xAA), wire[8])
}

func TestHostContextWithoutContextIsInternalError(t *testing.T) {
	program := newTestProgram(nil)
	rt := New(program, nil, Options(), nil)
	rt.initialize()

	ctx := newSyscallContext(rt)
	_, err := (syscallHostContext{}).Execute(ctx, 0, 0)
	assert.Equal(t, athinterface.StatusInternalError, err)
}
