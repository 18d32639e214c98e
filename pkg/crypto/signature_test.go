package crypto

import (
	"bytes"
	"testing"
)

func TestPrivateKeyFromBytes(t *testing.T) {
	original, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}
	restored, err := PrivateKeyFromBytes(original.Serialize())
	if err != nil {
		t.Fatalf("PrivateKeyFromBytes() error: %v", err)
	}
	if !bytes.Equal(original.PublicKey(), restored.PublicKey()) {
		t.Error("restored key has a different public key")
	}
	if _, err := PrivateKeyFromBytes(make([]byte, 31)); err == nil {
		t.Error("31-byte key should be rejected")
	}
}

func TestSign_Verify(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}
	digest := Hash([]byte("create_reservation tokenX"))

	sig, err := key.Sign(digest[:])
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	if !VerifySignature(digest[:], sig, key.PublicKey()) {
		t.Fatal("valid signature rejected")
	}

	other := Hash([]byte("del_nft tokenX"))
	if VerifySignature(other[:], sig, key.PublicKey()) {
		t.Error("signature verified against the wrong digest")
	}

	stranger, _ := GenerateKey()
	if VerifySignature(digest[:], sig, stranger.PublicKey()) {
		t.Error("signature verified against the wrong key")
	}

	bad := append([]byte{}, sig...)
	bad[10] ^= 0xff
	if VerifySignature(digest[:], bad, key.PublicKey()) {
		t.Error("corrupted signature verified")
	}
}

func TestSign_InvalidDigestLength(t *testing.T) {
	key, _ := GenerateKey()
	if _, err := key.Sign([]byte("short")); err == nil {
		t.Error("Sign() should reject non-32-byte digests")
	}
}

func TestVerify_InvalidInputs(t *testing.T) {
	digest := Hash([]byte("x"))
	if VerifySignature(digest[:], []byte{1, 2, 3}, []byte{4, 5, 6}) {
		t.Error("garbage inputs verified")
	}
	if VerifySignature(digest[:], nil, nil) {
		t.Error("nil inputs verified")
	}
}
