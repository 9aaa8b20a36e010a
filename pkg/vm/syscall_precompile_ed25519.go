package vm

import "crypto/ed25519"

const (
	ed25519PubKeyLength = ed25519.PublicKeySize // 32
	ed25519SigLength    = ed25519.SignatureSize // 64
)

// syscallPrecompileEd25519Verify implements PRECOMPILE_ED25519_VERIFY:
// verifies a signature over a message against a public key, all read
// from guest memory, and returns 1 for a valid signature or 0
// otherwise -- never an error, since a bad signature is a guest-level
// outcome, not an engine fault.
type syscallPrecompileEd25519Verify struct{}

func (syscallPrecompileEd25519Verify) Execute(ctx *SyscallContext, pubKeyPtr, sigPtr uint32) (Outcome, error) {
	pubKey := ctx.Bytes(pubKeyPtr, ed25519PubKeyLength)

	msgPtr := ctx.RegisterUnsafe(regA2)
	msgLen := ctx.RegisterUnsafe(regA3)
	msg := ctx.Bytes(msgPtr, int(msgLen))

	sig := ctx.Bytes(sigPtr, ed25519SigLength)

	ok := ed25519.Verify(ed25519.PublicKey(pubKey), msg, sig)

	v := uint32(0)
	if ok {
		v = 1
	}
	return ResultOutcome(&v), nil
}

func (syscallPrecompileEd25519Verify) NumExtraCycles() uint32 {
	return SyscallPrecompileEd25519Verify.NumCycles()
}
