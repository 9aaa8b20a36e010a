// Package athinterface defines the wire types and the HostInterface
// collaborator boundary between a running Athena program and its host
// environment: accounts, balances, storage, and cross-program calls.
package athinterface

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// AddressLength is the byte width of an Athena account address.
const AddressLength = 24

// Bytes32Length is the byte width of a generic 32-byte value, used for
// storage keys/values and hashes.
const Bytes32Length = 32

// Address identifies an Athena account.
type Address [AddressLength]byte

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// Balance is an account's balance, denominated in the host's base unit.
type Balance uint64

// Bytes32 is a fixed-size 32-byte value, used for storage slots.
type Bytes32 [Bytes32Length]byte

func (b Bytes32) String() string {
	return hex.EncodeToString(b[:])
}

// MethodSelectorLength is the byte width of a MethodSelector.
const MethodSelectorLength = 4

// MethodSelector is the first 4 bytes of the BLAKE3 hash of a method
// name, used to route an ExecutionPayload to an exported function.
type MethodSelector [MethodSelectorLength]byte

// SelectorFromString derives a MethodSelector from a method name the
// same way the guest-side SDK does: BLAKE3(name) truncated to 4 bytes.
func SelectorFromString(name string) MethodSelector {
	var selector MethodSelector
	hasher := blake3.New()
	hasher.Write([]byte(name))
	hasher.Digest().Read(selector[:])
	return selector
}

func (ms MethodSelector) String() string {
	return hex.EncodeToString(ms[:])
}

// wordsToBytesLE concatenates the little-endian bytes of each word, a
// helper shared by Address/Bytes32 construction from register-sized
// chunks (the layout the HOST_GETBALANCE/HOST_CONTEXT syscalls use).
func wordsToBytesLE(words []uint32) []byte {
	out := make([]byte, 0, len(words)*4)
	for _, w := range words {
		out = append(out, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	return out
}

// AddressFromWords builds an Address from 6 little-endian 32-bit words
// (24 bytes), the layout HOST_SPAWN/HOST_DEPLOY write back to the guest.
func AddressFromWords(words []uint32) Address {
	var a Address
	copy(a[:], wordsToBytesLE(words))
	return a
}

// Bytes32FromWords builds a Bytes32 from 8 little-endian 32-bit words.
func Bytes32FromWords(words []uint32) Bytes32 {
	var b Bytes32
	copy(b[:], wordsToBytesLE(words))
	return b
}
