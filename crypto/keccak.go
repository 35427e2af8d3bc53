// Package crypto provides the hashing and signature primitives used
// throughout the settlement core: Keccak256 for all digests and
// ECDSA-over-secp256k1 for validator and user signatures.
package crypto

import (
	"golang.org/x/crypto/sha3"

	"github.com/l2rollup/settlement/types"
)

// Keccak256 computes the Keccak-256 hash of the concatenation of data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Hash computes Keccak256 and returns it as a types.Hash.
func Keccak256Hash(data ...[]byte) types.Hash {
	return types.BytesToHash(Keccak256(data...))
}

// ethSignedMessagePrefix is prepended, per Ethereum's personal_sign
// convention, before hashing a digest that is about to be signed, so a
// signature over application data can never be replayed as a signature
// over a differently-shaped message.
const ethSignedMessagePrefix = "\x19Ethereum Signed Message:\n32"

// SignedMessageHash returns Keccak256(ethSignedMessagePrefix || digest),
// the digest actually signed and recovered against for every on-chain
// signature check in this module.
func SignedMessageHash(digest types.Hash) types.Hash {
	return Keccak256Hash([]byte(ethSignedMessagePrefix), digest[:])
}
