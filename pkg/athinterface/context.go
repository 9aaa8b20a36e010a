package athinterface

// Caller describes who invoked the currently executing program: the
// calling account, and, if the call arrived through a template
// instantiation, the template address.
type Caller struct {
	Account  Address
	Template *Address
}

// CallerBuilder is a fluent constructor for Caller, mirroring the
// builder the original exposes for ergonomic test setup.
type CallerBuilder struct {
	caller Caller
}

func NewCallerBuilder(account Address) *CallerBuilder {
	return &CallerBuilder{caller: Caller{Account: account}}
}

func (b *CallerBuilder) WithTemplate(template Address) *CallerBuilder {
	b.caller.Template = &template
	return b
}

func (b *CallerBuilder) Build() Caller {
	return b.caller
}

// AthenaContext is the runtime's notion of "who am I, who called me,
// how deep, and with how much value" for the program currently
// executing. It is supplied to vm.New and queried by the
// HOST_CONTEXT syscall.
type AthenaContext struct {
	Callee   Address
	Caller   Caller
	Depth    uint32
	Received uint64
}

// NewAthenaContext builds a context for a call at the given depth
// (0 for the top-level call).
func NewAthenaContext(callee Address, caller Caller, depth uint32, received uint64) AthenaContext {
	return AthenaContext{Callee: callee, Caller: caller, Depth: depth, Received: received}
}

// WireContext is the fixed-layout struct the HOST_CONTEXT syscall
// writes into guest memory: received value, caller address, and caller
// template address (all-zero when there is no template), one after
// another with no padding, matching the original's #[repr(C)] Context.
type WireContext struct {
	Received       uint64
	Caller         Address
	CallerTemplate Address
}

// ToWire converts an AthenaContext into the fixed-layout struct the
// guest ABI expects.
func (c AthenaContext) ToWire() WireContext {
	w := WireContext{Received: c.Received, Caller: c.Caller.Account}
	if c.Caller.Template != nil {
		w.CallerTemplate = *c.Caller.Template
	}
	return w
}

// Bytes serializes a WireContext to its little-endian, unpadded byte
// layout: 8 bytes of Received, then 24 bytes Caller, then 24 bytes
// CallerTemplate.
func (w WireContext) Bytes() []byte {
	out := make([]byte, 0, 8+AddressLength+AddressLength)
	var recv [8]byte
	for i := 0; i < 8; i++ {
		recv[i] = byte(w.Received >> (8 * i))
	}
	out = append(out, recv[:]...)
	out = append(out, w.Caller[:]...)
	out = append(out, w.CallerTemplate[:]...)
	return out
}
