package crypto

import "testing"

func TestKeccak256OfEmptyInputIsWellKnownConstant(t *testing.T) {
	want := "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	if got := Keccak256Hash().Hex(); got != want {
		t.Errorf("Keccak256Hash() = %s, want %s", got, want)
	}
	if len(Keccak256()) != 32 {
		t.Errorf("Keccak256() length = %d, want 32", len(Keccak256()))
	}
}

func TestKeccak256ConcatenatesInputs(t *testing.T) {
	joined := Keccak256([]byte("hello world"))
	split := Keccak256([]byte("hello "), []byte("world"))
	if string(joined) != string(split) {
		t.Error("Keccak256 of concatenated args should match Keccak256 of the pre-joined slice")
	}
}

func TestSignedMessageHashDiffersFromRawDigest(t *testing.T) {
	digest := Keccak256Hash([]byte("a withdraw request"))
	signed := SignedMessageHash(digest)
	if signed == digest {
		t.Error("SignedMessageHash must differ from the raw digest it wraps")
	}
}

func TestSignedMessageHashIsDeterministic(t *testing.T) {
	digest := Keccak256Hash([]byte("deterministic input"))
	if SignedMessageHash(digest) != SignedMessageHash(digest) {
		t.Error("SignedMessageHash should be a pure function of its input")
	}
}
