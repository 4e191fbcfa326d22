package jws

import (
	"crypto"
	"testing"
)

func TestRSAKeyTypes(t *testing.T) {
	alg := NewRSAAlgorithm(crypto.SHA256)
	message := []byte("header.payload")

	_, err := alg.Sign(message, "not a key")
	if CodeOf(err) != ErrCodeKey {
		t.Errorf("Sign() with string key: expected code %s, got %v", ErrCodeKey, err)
	}

	signature, err := alg.Sign(message, testRSAKey)
	if err != nil {
		t.Fatalf("Sign() returned error: %v", err)
	}

	// verification accepts the public key or the private key (public half)
	if err := alg.Verify(message, signature, &testRSAKey.PublicKey); err != nil {
		t.Errorf("Verify() with public key returned error: %v", err)
	}
	if err := alg.Verify(message, signature, testRSAKey); err != nil {
		t.Errorf("Verify() with private key returned error: %v", err)
	}
}

func TestRSAVerifyMalformedSignature(t *testing.T) {
	// malformed or truncated signature bytes must fail cleanly
	alg := NewRSAAlgorithm(crypto.SHA256)
	message := []byte("header.payload")

	for _, sig := range [][]byte{nil, {}, []byte("garbage"), make([]byte, 256)} {
		err := alg.Verify(message, sig, &testRSAKey.PublicKey)
		if !IsSignatureError(err) {
			t.Errorf("Verify() with %d-byte signature: expected code %s, got %v", len(sig), ErrCodeBadSignature, err)
		}
	}
}
