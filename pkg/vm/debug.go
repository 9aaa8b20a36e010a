package vm

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/athenavm/athena-go/pkg/isa"
)

// DebugSession exposes a Runtime over a line-oriented TCP control
// connection: attach, step one instruction at a time, set and clear
// breakpoints, and inspect registers. It adapts the same
// accept-a-single-controlling-connection pattern the teacher's serial
// console used, aimed at a program counter and register file instead
// of a UART.
type DebugSession struct {
	rt   *Runtime
	conn net.Conn
}

// DebugAcceptConn waits for a single controlling TCP connection to
// attach before returning a session bound to rt.
func DebugAcceptConn(rt *Runtime) (*DebugSession, error) {
	nl, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	runtimeLog.Info("debug: waiting for a debugger to attach", "addr", nl.Addr())
	conn, err := nl.Accept()
	if err != nil {
		nl.Close()
		return nil, err
	}
	nl.Close()
	return &DebugSession{rt: rt, conn: conn}, nil
}

// Close closes the controlling connection.
func (d *DebugSession) Close() error { return d.conn.Close() }

// Serve reads one command per line until the connection closes or the
// program halts. Recognised commands: "step", "continue", "break
// <hex-addr>", "clear <hex-addr>", "regs", "reg <n>", "pc".
func (d *DebugSession) Serve() error {
	scanner := bufio.NewScanner(d.conn)
	w := bufio.NewWriter(d.conn)
	defer w.Flush()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "step":
			event, err := d.rt.executeCycle()
			fmt.Fprintf(w, "pc=%#08x event=%d err=%v\n", d.rt.State.PC, event, err)
			w.Flush()
			if err != nil || event == EventHalted {
				return err
			}

		case "continue":
			for {
				event, err := d.rt.executeCycle()
				if err != nil {
					fmt.Fprintf(w, "halted err=%v\n", err)
					w.Flush()
					return err
				}
				if event == EventHalted {
					fmt.Fprintf(w, "halted normally pc=%#08x\n", d.rt.State.PC)
					w.Flush()
					return nil
				}
				if event == EventBreak {
					fmt.Fprintf(w, "breakpoint pc=%#08x\n", d.rt.State.PC)
					w.Flush()
					break
				}
			}

		case "break", "clear":
			if len(fields) != 2 {
				fmt.Fprintf(w, "error: usage: %s <hex-addr>\n", fields[0])
				w.Flush()
				continue
			}
			addr, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 32)
			if err != nil {
				fmt.Fprintf(w, "error: %v\n", err)
				w.Flush()
				continue
			}
			if fields[0] == "break" {
				d.rt.AddBreakpoint(uint32(addr))
			} else {
				d.rt.RemoveBreakpoint(uint32(addr))
			}
			fmt.Fprintf(w, "ok\n")
			w.Flush()

		case "regs":
			fmt.Fprintf(w, "%+v\n", d.rt.State.Regs.All())
			w.Flush()

		case "reg":
			if len(fields) != 2 {
				fmt.Fprintf(w, "error: usage: reg <n>\n")
				w.Flush()
				continue
			}
			n, err := strconv.ParseUint(fields[1], 10, 32)
			if err != nil {
				fmt.Fprintf(w, "error: %v\n", err)
				w.Flush()
				continue
			}
			reg, err := isa.RegisterFromUint32(uint32(n))
			if err != nil {
				fmt.Fprintf(w, "error: %v\n", err)
				w.Flush()
				continue
			}
			fmt.Fprintf(w, "%s = %#08x\n", reg, d.rt.Register(reg))
			w.Flush()

		case "pc":
			fmt.Fprintf(w, "%#08x\n", d.rt.State.PC)
			w.Flush()

		default:
			fmt.Fprintf(w, "error: unknown command %q\n", fields[0])
			w.Flush()
		}
	}
	return scanner.Err()
}
