package isa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterFromUint32(t *testing.T) {
	reg, err := RegisterFromUint32(10)
	assert.NoError(t, err)
	assert.Equal(t, X10, reg)

	_, err = RegisterFromUint32(16)
	assert.Error(t, err)
}

func TestRegisterString(t *testing.T) {
	assert.Equal(t, "x5", X5.String())
}
