package athinterface

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectorFromStringIsDeterministic(t *testing.T) {
	a := SelectorFromString("transfer")
	b := SelectorFromString("transfer")
	assert.Equal(t, a, b)

	c := SelectorFromString("mint")
	assert.NotEqual(t, a, c)
}

func TestAddressFromWordsIsLittleEndian(t *testing.T) {
	words := []uint32{0x04030201, 0x08070605, 0x0c0b0a09, 0x100f0e0d, 0x14131211, 0x18171615}
	addr := AddressFromWords(words)
	assert.Equal(t, byte(0x01), addr[0])
	assert.Equal(t, byte(0x02), addr[1])
	assert.Equal(t, byte(0x18), addr[AddressLength-1])
}

func TestBytes32FromWordsIsLittleEndian(t *testing.T) {
	words := []uint32{1, 2, 3, 4, 5, 6, 7, 8}
	b := Bytes32FromWords(words)
	assert.Equal(t, byte(1), b[0])
	assert.Equal(t, byte(8), b[28])
}
