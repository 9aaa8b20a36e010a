package athinterface

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToWireWithoutTemplateIsZero(t *testing.T) {
	caller := NewCallerBuilder(Address{1}).Build()
	ctx := NewAthenaContext(Address{2}, caller, 0, 7)
	wire := ctx.ToWire()
	assert.Equal(t, Address{1}, wire.Caller)
	assert.Equal(t, Address{}, wire.CallerTemplate)
	assert.Equal(t, uint64(7), wire.Received)
}

func TestToWireWithTemplate(t *testing.T) {
	caller := NewCallerBuilder(Address{1}).WithTemplate(Address{9}).Build()
	ctx := NewAthenaContext(Address{2}, caller, 1, 0)
	wire := ctx.ToWire()
	assert.Equal(t, Address{9}, wire.CallerTemplate)
}

func TestWireContextBytesLayout(t *testing.T) {
	w := WireContext{Received: 0x0102030405060708, Caller: Address{0xAA}, CallerTemplate: Address{0xBB}}
	b := w.Bytes()
	require := assert.New(t)
	require.Len(b, 8+AddressLength+AddressLength)
	require.Equal(byte(0x08), b[0])
	require.Equal(byte(0x01), b[7])
	require.Equal(byte(0xAA), b[8])
	require.Equal(byte(0xBB), b[8+AddressLength])
}
