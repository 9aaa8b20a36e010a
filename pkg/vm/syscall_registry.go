package vm

// defaultSyscallMap builds the syscall table every Runtime starts
// with, mirroring the original default_syscall_map: the full set of
// syscall ids the engine recognises without requiring the caller to
// register anything extra.
func defaultSyscallMap() map[SyscallCode]Syscall {
	return map[SyscallCode]Syscall{
		SyscallHalt:                    syscallHalt{},
		SyscallWrite:                   syscallWrite{},
		SyscallHostRead:                syscallHostRead{},
		SyscallHostWrite:               syscallHostWrite{},
		SyscallHostCall:                syscallHostCall{},
		SyscallHostGetBalance:          syscallHostGetBalance{},
		SyscallHostSpawn:               syscallHostSpawn{},
		SyscallHostDeploy:              syscallHostDeploy{},
		SyscallHostContext:             syscallHostContext{},
		SyscallPrecompileEd25519Verify: syscallPrecompileEd25519Verify{},
		SyscallHintLen:                 syscallHintLen{},
		SyscallHintRead:                syscallHintRead{},
	}
}
