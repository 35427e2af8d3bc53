package crypto

import (
	"testing"

	"github.com/l2rollup/settlement/types"
)

func TestSignAndRecoverAddressRoundTrip(t *testing.T) {
	priv, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	addr := PubkeyToAddress(priv.PubKey())
	digest := Keccak256Hash([]byte("block 42 transitions"))

	sig, err := Sign(digest, priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	recovered, err := RecoverAddress(digest, sig)
	if err != nil {
		t.Fatalf("RecoverAddress: %v", err)
	}
	if recovered != addr {
		t.Errorf("recovered address = %s, want %s", recovered.Hex(), addr.Hex())
	}
	if !VerifySignature(addr, digest, sig) {
		t.Error("VerifySignature should accept a signature from the signing key")
	}
}

func TestVerifySignatureRejectsWrongSigner(t *testing.T) {
	priv1, _ := GenerateKey()
	priv2, _ := GenerateKey()
	addr2 := PubkeyToAddress(priv2.PubKey())
	digest := Keccak256Hash([]byte("a commit digest"))

	sig, err := Sign(digest, priv1)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if VerifySignature(addr2, digest, sig) {
		t.Error("VerifySignature should reject a signature from a different key")
	}
}

func TestVerifySignatureRejectsTamperedDigest(t *testing.T) {
	priv, _ := GenerateKey()
	addr := PubkeyToAddress(priv.PubKey())
	digest := Keccak256Hash([]byte("original"))
	tampered := Keccak256Hash([]byte("tampered"))

	sig, err := Sign(digest, priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if VerifySignature(addr, tampered, sig) {
		t.Error("VerifySignature should reject a signature checked against a different digest")
	}
}

func TestRecoverPublicKeyRejectsOutOfRangeV(t *testing.T) {
	sig := types.Signature{V: 4}
	_, err := RecoverPublicKey(Keccak256Hash([]byte("x")), sig)
	if err != ErrRecoveryFailed {
		t.Errorf("RecoverPublicKey with V=4 error = %v, want ErrRecoveryFailed", err)
	}
}
