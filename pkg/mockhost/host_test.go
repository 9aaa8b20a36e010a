package mockhost

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/athenavm/athena-go/pkg/athinterface"
)

func TestSetStorageReportsAddedThenModified(t *testing.T) {
	h := New()
	var addr athinterface.Address
	var key, value athinterface.Bytes32
	value[0] = 1

	status := h.SetStorage(addr, key, value)
	assert.Equal(t, athinterface.StorageAdded, status)

	value[0] = 2
	status = h.SetStorage(addr, key, value)
	assert.Equal(t, athinterface.StorageModified, status)

	var zero athinterface.Bytes32
	status = h.SetStorage(addr, key, zero)
	assert.Equal(t, athinterface.StorageDeleted, status)
}

func TestSpawnAndDeployProduceDistinctAddresses(t *testing.T) {
	h := New()
	a1 := h.Spawn([]byte("blob-a"))
	a2 := h.Spawn([]byte("blob-b"))
	d1 := h.Deploy([]byte("blob-c"))

	assert.NotEqual(t, a1, a2)
	assert.NotEqual(t, a1, d1)
	assert.True(t, h.AccountExists(a1))
	assert.True(t, h.AccountExists(d1))
}

func TestCallWithoutResolverReportsFailure(t *testing.T) {
	h := New()
	var addr athinterface.Address
	h.RegisterProgram(addr, []byte{1, 2, 3})

	res := h.Call(athinterface.NewAthenaMessage(1, 1000, addr, athinterface.Address{}, nil, 0))
	assert.Equal(t, athinterface.StatusFailure, res.StatusCode)
}

func TestCallWithResolverDelegates(t *testing.T) {
	h := New()
	var addr athinterface.Address
	h.RegisterProgram(addr, []byte{1, 2, 3})
	h.Resolver = func(msg athinterface.AthenaMessage, code []byte) athinterface.ExecutionResult {
		return athinterface.ExecutionResult{StatusCode: athinterface.StatusSuccess, Output: code}
	}

	res := h.Call(athinterface.NewAthenaMessage(1, 1000, addr, athinterface.Address{}, nil, 0))
	assert.Equal(t, athinterface.StatusSuccess, res.StatusCode)
	assert.Equal(t, []byte{1, 2, 3}, res.Output)
}

func TestGetBalanceDefaultsToZero(t *testing.T) {
	h := New()
	var addr athinterface.Address
	assert.Equal(t, athinterface.Balance(0), h.GetBalance(addr))
	h.SetBalance(addr, 42)
	assert.Equal(t, athinterface.Balance(42), h.GetBalance(addr))
}
