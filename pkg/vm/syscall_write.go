package vm

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/athenavm/athena-go/pkg/athinterface"
)

const (
	fdStdout       = 1
	fdStderr       = 2
	fdPublicValues = 3
	fdHintVector   = 4
)

const (
	cycleTrackerStart = "cycle-tracker-start:"
	cycleTrackerEnd   = "cycle-tracker-end:"
)

// syscallWrite implements WRITE: stdout/stderr echo with cycle-tracker
// instrumentation markers, the public-values output stream, pushing a
// hint-stream frame, and dispatch to user hooks for fd > 4.
type syscallWrite struct{}

func (syscallWrite) Execute(ctx *SyscallContext, fd, _ uint32) (Outcome, error) {
	rt := ctx.Runtime()
	bufPtr := ctx.RegisterUnsafe(regA1)
	nbytes := ctx.RegisterUnsafe(regA2)

	data := ctx.Bytes(bufPtr, int(nbytes))

	switch {
	case fd == fdStdout || fd == fdStderr:
		if !utf8.Valid(data) {
			return Outcome{}, athinterface.StatusArgumentOutOfRange
		}
		s := string(data)
		if name, ok := strings.CutPrefix(s, cycleTrackerStart); ok {
			rt.cycleTracker[name] = cycleTrackerEntry{startClk: rt.State.Gas, depth: rt.cycleTrackerDepth}
			rt.cycleTrackerDepth++
			runtimeLog.Debug(fmt.Sprintf("%sstarting cycle tracker for %q", pad(rt.cycleTrackerDepth), name))
			return ResultOutcome(nil), nil
		}
		if name, ok := strings.CutPrefix(s, cycleTrackerEnd); ok {
			entry, tracked := rt.cycleTracker[name]
			if tracked {
				if rt.cycleTrackerDepth > 0 {
					rt.cycleTrackerDepth--
				}
				runtimeLog.Debug(fmt.Sprintf("%scycle tracker %q took %d cycles", pad(rt.cycleTrackerDepth), name, rt.State.Gas-entry.startClk))
				delete(rt.cycleTracker, name)
			}
			return ResultOutcome(nil), nil
		}
		rt.appendIOBuf(fd, data)
		return ResultOutcome(nil), nil

	case fd == fdPublicValues:
		rt.State.PublicValuesStream = append(rt.State.PublicValuesStream, data...)
		return ResultOutcome(nil), nil

	case fd == fdHintVector:
		rt.WriteStdin(data)
		return ResultOutcome(nil), nil

	default:
		out, err := rt.ExecuteHook(fd, data)
		if err != nil {
			return Outcome{}, athinterface.StatusArgumentOutOfRange
		}
		rt.WriteStdin(out)
		return ResultOutcome(nil), nil
	}
}

func (syscallWrite) NumExtraCycles() uint32 { return SyscallWrite.NumCycles() }

func pad(depth int) string {
	return strings.Repeat("│ ", depth)
}

// appendIOBuf line-buffers fd's output, printing each completed line
// as soon as a write completes it and holding only the trailing
// partial line until the next write or until postprocess flushes it
// at program end, the same update_io_buf behavior the original's
// WRITE syscall handler implements.
func (rt *Runtime) appendIOBuf(fd uint32, data []byte) {
	buf, ok := rt.ioBuf[fd]
	if !ok {
		buf = &ioBuffer{}
		rt.ioBuf[fd] = buf
	}
	buf.buf = append(buf.buf, data...)
	for {
		idx := bytes.IndexByte(buf.buf, '\n')
		if idx < 0 {
			break
		}
		printLine(fd, buf.buf[:idx])
		buf.buf = buf.buf[idx+1:]
	}
}

// printLine echoes one line of guest output with the fd-tagged prefix
// the engine has always used, flushing immediately so output from a
// still-running (or looping) guest is observable as it happens.
func printLine(fd uint32, line []byte) {
	var label string
	switch fd {
	case fdStdout:
		label = "stdout"
	case fdStderr:
		label = "stderr"
	default:
		return
	}
	w := bufio.NewWriter(os.Stdout)
	fmt.Fprintf(w, "%s: %s\n", label, line)
	w.Flush()
}
