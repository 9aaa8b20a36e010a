package vm

import "github.com/athenavm/athena-go/pkg/athinterface"

// syscallHintLen implements HINT_LEN: reports how many bytes remain
// unread in the input stream.
type syscallHintLen struct{}

func (syscallHintLen) Execute(ctx *SyscallContext, _, _ uint32) (Outcome, error) {
	rt := ctx.Runtime()
	remaining := len(rt.State.InputStream) - rt.State.InputStreamPtr
	if remaining < 0 {
		remaining = 0
	}
	v := uint32(remaining)
	return ResultOutcome(&v), nil
}

func (syscallHintLen) NumExtraCycles() uint32 { return SyscallHintLen.NumCycles() }

// syscallHintRead implements HINT_READ: copies length bytes from the
// input stream's current position to ptr, read-modify-writing the
// boundary words so unrelated bytes sharing a word survive, and
// advances the stream pointer.
type syscallHintRead struct{}

func (syscallHintRead) Execute(ctx *SyscallContext, ptr, length uint32) (Outcome, error) {
	rt := ctx.Runtime()
	available := len(rt.State.InputStream) - rt.State.InputStreamPtr
	if available < 0 {
		available = 0
	}
	if int(length) > available {
		return Outcome{}, athinterface.StatusInsufficientInput
	}

	start := rt.State.InputStreamPtr
	data := rt.State.InputStream[start : start+int(length)]
	ctx.WriteBytes(ptr, data)
	rt.State.InputStreamPtr += int(length)

	return ResultOutcome(nil), nil
}

func (syscallHintRead) NumExtraCycles() uint32 { return SyscallHintRead.NumCycles() }
