package jws

import (
	"crypto"
	"crypto/hmac"
	"crypto/sha256"
	"testing"
)

func TestHMACSign(t *testing.T) {
	alg := NewHMACAlgorithm(crypto.SHA256)
	message := []byte("header.payload")

	signature, err := alg.Sign(message, "secret")
	if err != nil {
		t.Fatalf("Sign() returned error: %v", err)
	}

	// the signature must be exactly the keyed hash of the message
	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write(message)
	expected := mac.Sum(nil)

	if !hmac.Equal(signature, expected) {
		t.Error("Sign() did not produce HMAC-SHA256 of the message")
	}

	// string and []byte secrets are interchangeable
	fromBytes, err := alg.Sign(message, []byte("secret"))
	if err != nil {
		t.Fatalf("Sign() with []byte key returned error: %v", err)
	}
	if !hmac.Equal(signature, fromBytes) {
		t.Error("Sign() with string and []byte secrets produced different signatures")
	}
}

func TestHMACVerifyComparisonIsConstantTime(t *testing.T) {
	// structural check of the comparison routine: a forged signature that
	// shares a long prefix with the real one must be rejected exactly like
	// one that differs in the first byte. hmac.Equal (subtle.ConstantTimeCompare)
	// guarantees the comparison time is independent of the mismatch position;
	// here we pin the rejection behavior at both extremes and for length
	// mismatches, which a naive short-circuiting comparison gets wrong.
	alg := NewHMACAlgorithm(crypto.SHA256)
	message := []byte("header.payload")

	signature, err := alg.Sign(message, "secret")
	if err != nil {
		t.Fatalf("Sign() returned error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{name: "first byte differs", mutate: func(sig []byte) []byte {
			sig[0] ^= 0xff
			return sig
		}},
		{name: "last byte differs", mutate: func(sig []byte) []byte {
			sig[len(sig)-1] ^= 0xff
			return sig
		}},
		{name: "truncated", mutate: func(sig []byte) []byte {
			return sig[:len(sig)-1]
		}},
		{name: "extended", mutate: func(sig []byte) []byte {
			return append(sig, 0x00)
		}},
		{name: "empty", mutate: func(sig []byte) []byte {
			return nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forged := tt.mutate(append([]byte(nil), signature...))

			err := alg.Verify(message, forged, "secret")
			if !IsSignatureError(err) {
				t.Errorf("Verify() expected code %s, got %v", ErrCodeBadSignature, err)
			}
		})
	}

	if err := alg.Verify(message, signature, "secret"); err != nil {
		t.Errorf("Verify() with valid signature returned error: %v", err)
	}
}

func TestHMACKeyType(t *testing.T) {
	alg := NewHMACAlgorithm(crypto.SHA256)

	_, err := alg.Sign([]byte("message"), 12345)
	if CodeOf(err) != ErrCodeKey {
		t.Errorf("Sign() with int key: expected code %s, got %v", ErrCodeKey, err)
	}
}
