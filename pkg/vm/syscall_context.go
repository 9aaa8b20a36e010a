package vm

import "github.com/athenavm/athena-go/pkg/isa"

// SyscallContext is the restricted view of a Runtime a syscall
// handler gets: enough to read/write guest memory and registers, and
// to reach the Host, without being able to meddle with the fetch-
// execute loop itself.
type SyscallContext struct {
	Clk uint32
	rt  *Runtime
}

func newSyscallContext(rt *Runtime) *SyscallContext {
	return &SyscallContext{Clk: rt.State.Gas, rt: rt}
}

// MR reads a word from guest memory.
func (c *SyscallContext) MR(addr uint32) uint32 { return c.rt.mr(addr) }

// MRSlice reads len consecutive words starting at addr.
func (c *SyscallContext) MRSlice(addr uint32, length int) []uint32 {
	values := make([]uint32, length)
	for i := 0; i < length; i++ {
		values[i] = c.rt.mr(addr + uint32(i)*4)
	}
	return values
}

// MW writes a word to guest memory.
func (c *SyscallContext) MW(addr, value uint32) { c.rt.mw(addr, value) }

// MWSlice writes consecutive words starting at addr.
func (c *SyscallContext) MWSlice(addr uint32, values []uint32) {
	for i, v := range values {
		c.rt.mw(addr+uint32(i)*4, v)
	}
}

// Bytes reads length bytes starting at addr, word by word, for
// syscalls that operate on byte slices rather than word arrays.
func (c *SyscallContext) Bytes(addr uint32, length int) []byte {
	out := make([]byte, 0, length)
	for len(out) < length {
		word := c.rt.mr(align(addr))
		for shift := (addr % 4) * 8; shift < 32 && len(out) < length; shift += 8 {
			out = append(out, byte(word>>shift))
			addr++
		}
	}
	return out
}

// WriteBytes writes an arbitrary-length byte slice starting at addr,
// read-modify-writing the boundary words so unrelated bytes sharing a
// word are preserved.
func (c *SyscallContext) WriteBytes(addr uint32, data []byte) {
	for len(data) > 0 {
		wordAddr := align(addr)
		word := c.rt.mr(wordAddr)
		bytes := [4]byte{byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24)}
		offset := addr % 4
		n := uint32(4) - offset
		if uint32(len(data)) < n {
			n = uint32(len(data))
		}
		copy(bytes[offset:offset+n], data[:n])
		c.rt.mw(wordAddr, uint32(bytes[0])|uint32(bytes[1])<<8|uint32(bytes[2])<<16|uint32(bytes[3])<<24)
		data = data[n:]
		addr += n
	}
}

// RegisterUnsafe reads a register's value directly, bypassing any
// memory-record bookkeeping (there is none in this engine; kept for
// API parity with the syscall handlers' expectations).
func (c *SyscallContext) RegisterUnsafe(reg isa.Register) uint32 { return c.rt.Register(reg) }

// ByteUnsafe peeks a single byte of guest memory.
func (c *SyscallContext) ByteUnsafe(addr uint32) uint8 { return c.rt.Byte(addr) }

// WordUnsafe peeks a single word of guest memory.
func (c *SyscallContext) WordUnsafe(addr uint32) uint32 { return c.rt.Word(addr) }

// SliceUnsafe peeks length consecutive words of guest memory.
func (c *SyscallContext) SliceUnsafe(addr uint32, length int) []uint32 {
	values := make([]uint32, length)
	for i := 0; i < length; i++ {
		values[i] = c.rt.Word(addr + uint32(i)*4)
	}
	return values
}

// Runtime exposes the underlying Runtime for syscall handlers that
// need host access or call-depth/context information.
func (c *SyscallContext) Runtime() *Runtime { return c.rt }
