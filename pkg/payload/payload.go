// Package payload implements the SCALE wire format for the data a
// transaction carries into a guest program: an optional serialized
// wallet state, plus the method selector and input bytes.
package payload

import (
	"fmt"

	"github.com/ChainSafe/gossamer/pkg/scale"

	"github.com/athenavm/athena-go/pkg/athinterface"
)

// Payload is the method selector and argument bytes carried by a
// transaction. Selector is nil for programs with a single entry point.
type Payload struct {
	Selector *athinterface.MethodSelector
	Input    []byte
}

// NewPayload builds a Payload, mirroring the original's Payload::new.
func NewPayload(selector *athinterface.MethodSelector, input []byte) Payload {
	return Payload{Selector: selector, Input: input}
}

// ExecutionPayload is passed as input to the VM to execute a method.
// State is the serialized wallet state; it is empty if the call
// doesn't require one.
type ExecutionPayload struct {
	State   []byte
	Payload Payload
}

// Marshal SCALE-encodes the payload for wire transmission.
func (p ExecutionPayload) Marshal() ([]byte, error) {
	enc, err := scale.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("payload: encode execution payload: %w", err)
	}
	return enc, nil
}

// Unmarshal SCALE-decodes an ExecutionPayload.
func Unmarshal(data []byte) (ExecutionPayload, error) {
	var p ExecutionPayload
	if err := scale.Unmarshal(data, &p); err != nil {
		return ExecutionPayload{}, fmt.Errorf("payload: decode execution payload: %w", err)
	}
	return p, nil
}

// EncodeWithEncodedPayload manually builds encode(state) | payload,
// for callers that already hold a SCALE-encoded Payload and want to
// avoid re-encoding it. Equivalent to Marshal on an ExecutionPayload
// with this State when encodedPayload is the SCALE encoding of its
// Payload.
func EncodeWithEncodedPayload(state []byte, encodedPayload []byte) ([]byte, error) {
	encodedState, err := scale.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("payload: encode state: %w", err)
	}
	return append(encodedState, encodedPayload...), nil
}

// Builder is a fluent constructor for ExecutionPayload.
type Builder struct {
	payload ExecutionPayload
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) WithState(state []byte) *Builder {
	b.payload.State = state
	return b
}

func (b *Builder) WithPayload(p Payload) *Builder {
	b.payload.Payload = p
	return b
}

func (b *Builder) Build() ExecutionPayload {
	return b.payload
}
