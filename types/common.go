// Package types defines the core data model of the rollup settlement
// core: fixed-width digests and addresses, blocks, storage slots, and
// the transition variants that mutate them.
package types

import (
	"encoding/hex"
	"fmt"
)

const (
	HashLength    = 32
	AddressLength = 20
)

// Hash is a 32-byte digest, almost always the output of Keccak256.
type Hash [HashLength]byte

// Address is a 20-byte account address.
type Address [AddressLength]byte

// BytesToHash converts b to a Hash, left-padding if shorter than 32 bytes
// and truncating from the left if longer.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// HexToHash converts a hex string (with or without "0x") to a Hash.
func HexToHash(s string) Hash { return BytesToHash(fromHex(s)) }

// Bytes returns the big-endian byte representation of the hash.
func (h Hash) Bytes() []byte { return h[:] }

// Hex returns the "0x"-prefixed hex representation of the hash.
func (h Hash) Hex() string { return fmt.Sprintf("0x%x", h[:]) }

// SetBytes sets the hash from b, left-padding if b is shorter than 32
// bytes and keeping only the trailing 32 bytes if it is longer.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// IsZero reports whether the hash is the all-zero tombstone/empty-slot
// sentinel value.
func (h Hash) IsZero() bool { return h == Hash{} }

func (h Hash) String() string { return h.Hex() }

// BytesToAddress converts b to an Address, left-padding if shorter than
// 20 bytes and truncating from the left if longer.
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// HexToAddress converts a hex string (with or without "0x") to an Address.
func HexToAddress(s string) Address { return BytesToAddress(fromHex(s)) }

// Bytes returns the big-endian byte representation of the address.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the "0x"-prefixed hex representation of the address.
func (a Address) Hex() string { return fmt.Sprintf("0x%x", a[:]) }

// SetBytes sets the address from b, left-padding if necessary.
func (a *Address) SetBytes(b []byte) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

// IsZero reports whether the address is the zero address.
func (a Address) IsZero() bool { return a == Address{} }

func (a Address) String() string { return a.Hex() }

func fromHex(s string) []byte {
	if has0xPrefix(s) {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return b
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
