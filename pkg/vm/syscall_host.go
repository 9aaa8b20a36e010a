package vm

import (
	"github.com/athenavm/athena-go/pkg/athinterface"
)

func (rt *Runtime) callee() athinterface.Address {
	if rt.Context != nil {
		return rt.Context.Callee
	}
	return athinterface.Address{}
}

func (rt *Runtime) callerAccount() athinterface.Address {
	if rt.Context != nil {
		return rt.Context.Caller.Account
	}
	return athinterface.Address{}
}

func (rt *Runtime) callDepth() int32 {
	if rt.Context != nil {
		return int32(rt.Context.Depth)
	}
	return 0
}

// requireHost returns the Host or an InternalError StatusCode if the
// Runtime has none attached -- a misconfiguration, not a guest error.
func (rt *Runtime) requireHost() (athinterface.HostInterface, error) {
	if rt.Host == nil {
		return nil, athinterface.StatusInternalError
	}
	return rt.Host, nil
}

// syscallHostRead implements HOST_READ: reads a 32-byte key and asks
// the Host for the value at that storage slot, writing 32 bytes back
// to the same pointer.
type syscallHostRead struct{}

func (syscallHostRead) Execute(ctx *SyscallContext, keyPtr, _ uint32) (Outcome, error) {
	rt := ctx.Runtime()
	host, err := rt.requireHost()
	if err != nil {
		return Outcome{}, err
	}
	var key athinterface.Bytes32
	copy(key[:], ctx.Bytes(keyPtr, athinterface.Bytes32Length))

	value := host.GetStorage(rt.callee(), key)
	ctx.WriteBytes(keyPtr, value[:])
	return ResultOutcome(nil), nil
}

func (syscallHostRead) NumExtraCycles() uint32 { return SyscallHostRead.NumCycles() }

// syscallHostWrite implements HOST_WRITE: reads a 32-byte key and a
// 32-byte value and asks the Host to store them, returning the
// resulting StorageStatus as a u32.
type syscallHostWrite struct{}

func (syscallHostWrite) Execute(ctx *SyscallContext, keyPtr, valPtr uint32) (Outcome, error) {
	rt := ctx.Runtime()
	host, err := rt.requireHost()
	if err != nil {
		return Outcome{}, err
	}
	var key, value athinterface.Bytes32
	copy(key[:], ctx.Bytes(keyPtr, athinterface.Bytes32Length))
	copy(value[:], ctx.Bytes(valPtr, athinterface.Bytes32Length))

	status := host.SetStorage(rt.callee(), key, value)
	v := uint32(status)
	return ResultOutcome(&v), nil
}

func (syscallHostWrite) NumExtraCycles() uint32 { return SyscallHostWrite.NumCycles() }

// roundUpWords rounds a byte length up to the nearest word count.
func roundUpWords(length uint32) uint32 {
	return (length + 3) / 4
}

// readBlob reads `length` bytes from memory starting at ptr by
// reading whole words and truncating the last one, the same
// vec_u32_to_bytes(words, length) pattern the original uses.
func readBlob(ctx *SyscallContext, ptr, length uint32) []byte {
	words := ctx.MRSlice(ptr, int(roundUpWords(length)))
	out := make([]byte, 0, length)
	for _, w := range words {
		for shift := uint(0); shift < 32 && uint32(len(out)) < length; shift += 8 {
			out = append(out, byte(w>>shift))
		}
	}
	return out
}

// writeOutputZeroPadded copies data into guest memory starting at
// ptr, one word at a time, zero-padding the final word's tail bytes
// instead of preserving whatever previously sat there -- the layout
// HOST_CALL's output copy requires (word-aligned copies, tail bytes
// zero-padded), matching the zeroed-buffer-then-copy-remainder
// construction the original's HOST_CALL handler uses. Ordinary
// ctx.WriteBytes is unsuitable here since it read-modify-writes
// boundary words to preserve unrelated bytes, which is exactly what
// this call must not do.
func writeOutputZeroPadded(ctx *SyscallContext, ptr uint32, data []byte) {
	full := len(data) - len(data)%4
	for off := 0; off < full; off += 4 {
		chunk := data[off : off+4]
		ctx.MW(ptr, uint32(chunk[0])|uint32(chunk[1])<<8|uint32(chunk[2])<<16|uint32(chunk[3])<<24)
		ptr += 4
	}
	if rem := data[full:]; len(rem) > 0 {
		var tail [4]byte
		copy(tail[:], rem)
		ctx.MW(ptr, uint32(tail[0])|uint32(tail[1])<<8|uint32(tail[2])<<16|uint32(tail[3])<<24)
	}
}

// syscallHostCall implements HOST_CALL: builds an AthenaMessage from
// the guest's registers and hands it to the Host, crediting back
// unused gas and copying up to out_cap bytes of output to the guest.
type syscallHostCall struct{}

func (syscallHostCall) Execute(ctx *SyscallContext, addrPtr, inputPtr uint32) (Outcome, error) {
	rt := ctx.Runtime()
	host, err := rt.requireHost()
	if err != nil {
		return Outcome{}, err
	}

	var recipient athinterface.Address
	copy(recipient[:], ctx.Bytes(addrPtr, athinterface.AddressLength))

	inputLen := ctx.RegisterUnsafe(regA2)
	outPtr := ctx.RegisterUnsafe(regA3)
	outCap := ctx.RegisterUnsafe(regA4)

	input := readBlob(ctx, inputPtr, inputLen)

	gasLeft, hasLimit := rt.gasLeft()
	gas := uint32(0)
	if hasLimit && gasLeft > 0 {
		gas = uint32(gasLeft)
	}

	msg := athinterface.NewAthenaMessage(rt.callDepth()+1, gas, recipient, rt.callee(), input, readAmount(ctx))

	res := host.Call(msg)

	if hasLimit {
		spent := gas
		if res.GasLeft <= gas {
			spent = gas - res.GasLeft
		}
		rt.State.Gas += spent
	}

	if res.StatusCode != athinterface.StatusSuccess {
		return Outcome{}, res.StatusCode
	}

	n := uint32(len(res.Output))
	if n > outCap {
		n = outCap
	}
	writeOutputZeroPadded(ctx, outPtr, res.Output[:n])

	written := n
	return ResultOutcome(&written), nil
}

func (syscallHostCall) NumExtraCycles() uint32 { return SyscallHostCall.NumCycles() }

// readAmount reads the u64 value amount from the address held in a5,
// as two little-endian words.
func readAmount(ctx *SyscallContext) athinterface.Balance {
	ptr := ctx.RegisterUnsafe(regA5)
	words := ctx.MRSlice(ptr, 2)
	return athinterface.Balance(uint64(words[0]) | uint64(words[1])<<32)
}

// syscallHostGetBalance implements HOST_GETBALANCE: writes the
// callee's balance as two little-endian words to out_ptr.
type syscallHostGetBalance struct{}

func (syscallHostGetBalance) Execute(ctx *SyscallContext, outPtr, _ uint32) (Outcome, error) {
	rt := ctx.Runtime()
	host, err := rt.requireHost()
	if err != nil {
		return Outcome{}, err
	}
	balance := uint64(host.GetBalance(rt.callee()))
	ctx.MWSlice(outPtr, []uint32{uint32(balance), uint32(balance >> 32)})
	return ResultOutcome(nil), nil
}

func (syscallHostGetBalance) NumExtraCycles() uint32 { return SyscallHostGetBalance.NumCycles() }

// syscallHostSpawn implements HOST_SPAWN: derives a new account
// address from a raw state blob and writes it back as 6 words.
type syscallHostSpawn struct{}

func (syscallHostSpawn) Execute(ctx *SyscallContext, blobPtr, blobLen uint32) (Outcome, error) {
	rt := ctx.Runtime()
	host, err := rt.requireHost()
	if err != nil {
		return Outcome{}, err
	}
	blob := readBlob(ctx, blobPtr, blobLen)
	addr := host.Spawn(blob)
	addrOut := ctx.RegisterUnsafe(regA2)
	ctx.WriteBytes(addrOut, addr[:])
	return ResultOutcome(nil), nil
}

func (syscallHostSpawn) NumExtraCycles() uint32 { return SyscallHostSpawn.NumCycles() }

// syscallHostDeploy implements HOST_DEPLOY: asks the Host to deploy a
// raw code blob as a new program, writing back the resulting address.
type syscallHostDeploy struct{}

func (syscallHostDeploy) Execute(ctx *SyscallContext, blobPtr, blobLen uint32) (Outcome, error) {
	rt := ctx.Runtime()
	host, err := rt.requireHost()
	if err != nil {
		return Outcome{}, err
	}
	blob := readBlob(ctx, blobPtr, blobLen)
	addr := host.Deploy(blob)
	addrOut := ctx.RegisterUnsafe(regA2)
	ctx.WriteBytes(addrOut, addr[:])
	return ResultOutcome(nil), nil
}

func (syscallHostDeploy) NumExtraCycles() uint32 { return SyscallHostDeploy.NumCycles() }

// syscallHostContext implements HOST_CONTEXT: writes the running
// program's AthenaContext to guest memory as a fixed-layout struct.
type syscallHostContext struct{}

func (syscallHostContext) Execute(ctx *SyscallContext, ctxOut, _ uint32) (Outcome, error) {
	rt := ctx.Runtime()
	if rt.Context == nil {
		return Outcome{}, athinterface.StatusInternalError
	}
	wire := rt.Context.ToWire().Bytes()
	ctx.WriteBytes(ctxOut, wire)
	return ResultOutcome(nil), nil
}

func (syscallHostContext) NumExtraCycles() uint32 { return SyscallHostContext.NumCycles() }
