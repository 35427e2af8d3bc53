package crypto

import (
	"crypto/rand"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/l2rollup/settlement/types"
)

// Errors for secp256k1 key and signature operations.
var (
	ErrInvalidSignatureLen = errors.New("crypto: signature must be 65 bytes")
	ErrRecoveryFailed      = errors.New("crypto: public key recovery failed")
)

// GenerateKey generates a new secp256k1 private key.
func GenerateKey() (*secp256k1.PrivateKey, error) {
	return secp256k1.GeneratePrivateKeyFromRand(rand.Reader)
}

// Sign produces a 65-byte compact signature (R || S || V) over a
// 32-byte digest, where V is the raw recovery id (0 or 1). This is the
// canonical signature format for every signed message in this module:
// validator block signatures, withdraw authorizations, and transfer
// authorizations.
func Sign(digest types.Hash, priv *secp256k1.PrivateKey) (types.Signature, error) {
	// ecdsa.SignCompact returns [recoveryCode || R || S], recoveryCode
	// already offset by 27 (and +4 for a compressed pubkey, which we
	// always request so PubkeyToAddress sees a compressed key).
	compact := ecdsa.SignCompact(priv, digest[:], true)
	if len(compact) != 65 {
		return types.Signature{}, errors.New("crypto: unexpected compact signature length")
	}
	recoveryCode := compact[0]
	var sig types.Signature
	copy(sig.R[:], compact[1:33])
	copy(sig.S[:], compact[33:65])
	sig.V = (recoveryCode - 27) & 0x1
	return sig, nil
}

// RecoverAddress recovers the signer's Address from a 32-byte digest
// and a compact signature.
func RecoverAddress(digest types.Hash, sig types.Signature) (types.Address, error) {
	pub, err := RecoverPublicKey(digest, sig)
	if err != nil {
		return types.Address{}, err
	}
	return PubkeyToAddress(pub), nil
}

// RecoverPublicKey recovers the compressed public key from a 32-byte
// digest and compact signature.
func RecoverPublicKey(digest types.Hash, sig types.Signature) (*secp256k1.PublicKey, error) {
	if sig.V > 3 {
		return nil, ErrRecoveryFailed
	}
	compact := make([]byte, 65)
	compact[0] = 27 + sig.V + 4 // compressed-key recovery code
	copy(compact[1:33], sig.R[:])
	copy(compact[33:65], sig.S[:])

	pub, _, err := ecdsa.RecoverCompact(compact, digest[:])
	if err != nil {
		return nil, ErrRecoveryFailed
	}
	return pub, nil
}

// PubkeyToAddress derives the 20-byte address from a public key: the
// low 20 bytes of Keccak256 of the uncompressed public key's 64-byte
// X||Y encoding.
func PubkeyToAddress(pub *secp256k1.PublicKey) types.Address {
	uncompressed := pub.SerializeUncompressed() // 0x04 || X(32) || Y(32)
	h := Keccak256(uncompressed[1:])
	return types.BytesToAddress(h[12:])
}

// VerifySignature reports whether sig is a valid signature by account
// over digest: recovery succeeds and the recovered address matches.
func VerifySignature(account types.Address, digest types.Hash, sig types.Signature) bool {
	recovered, err := RecoverAddress(digest, sig)
	if err != nil {
		return false
	}
	return recovered == account
}
