package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athenavm/athena-go/pkg/athinterface"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	selector := athinterface.SelectorFromString("transfer")
	p := NewBuilder().
		WithState([]byte{1, 2, 3}).
		WithPayload(NewPayload(&selector, []byte{4, 5, 6})).
		Build()

	enc, err := p.Marshal()
	require.NoError(t, err)

	got, err := Unmarshal(enc)
	require.NoError(t, err)
	assert.Equal(t, p.State, got.State)
	require.NotNil(t, got.Payload.Selector)
	assert.Equal(t, *p.Payload.Selector, *got.Payload.Selector)
	assert.Equal(t, p.Payload.Input, got.Payload.Input)
}

func TestMarshalUnmarshalWithNilSelector(t *testing.T) {
	p := NewBuilder().
		WithPayload(NewPayload(nil, []byte{9})).
		Build()

	enc, err := p.Marshal()
	require.NoError(t, err)

	got, err := Unmarshal(enc)
	require.NoError(t, err)
	assert.Nil(t, got.Payload.Selector)
	assert.Equal(t, []byte{9}, got.Payload.Input)
}
