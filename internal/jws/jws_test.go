package jws

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
)

// test keys are generated once - RSA generation in particular is slow
var (
	testRSAKey   *rsa.PrivateKey
	testECP256   *ecdsa.PrivateKey
	testECP384   *ecdsa.PrivateKey
	testECP521   *ecdsa.PrivateKey
	otherRSAKey  *rsa.PrivateKey
	otherECP256  *ecdsa.PrivateKey
)

func init() {
	var err error
	if testRSAKey, err = rsa.GenerateKey(rand.Reader, 2048); err != nil {
		panic(err)
	}
	if otherRSAKey, err = rsa.GenerateKey(rand.Reader, 2048); err != nil {
		panic(err)
	}
	if testECP256, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader); err != nil {
		panic(err)
	}
	if testECP384, err = ecdsa.GenerateKey(elliptic.P384(), rand.Reader); err != nil {
		panic(err)
	}
	if testECP521, err = ecdsa.GenerateKey(elliptic.P521(), rand.Reader); err != nil {
		panic(err)
	}
	if otherECP256, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader); err != nil {
		panic(err)
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	payload := map[string]any{"claim": "x", "n": 42}

	tests := []struct {
		alg       string
		signKey   any
		verifyKey any
		wrongKey  any
	}{
		{alg: "HS256", signKey: "secret", verifyKey: "secret", wrongKey: "badsecret"},
		{alg: "HS384", signKey: []byte("secret"), verifyKey: []byte("secret"), wrongKey: []byte("badsecret")},
		{alg: "HS512", signKey: "secret", verifyKey: "secret", wrongKey: "badsecret"},
		{alg: "RS256", signKey: testRSAKey, verifyKey: &testRSAKey.PublicKey, wrongKey: &otherRSAKey.PublicKey},
		{alg: "RS384", signKey: testRSAKey, verifyKey: &testRSAKey.PublicKey, wrongKey: &otherRSAKey.PublicKey},
		{alg: "RS512", signKey: testRSAKey, verifyKey: &testRSAKey.PublicKey, wrongKey: &otherRSAKey.PublicKey},
		{alg: "ES256", signKey: testECP256, verifyKey: &testECP256.PublicKey, wrongKey: &otherECP256.PublicKey},
		{alg: "ES384", signKey: testECP384, verifyKey: &testECP384.PublicKey, wrongKey: otherECP256},
		{alg: "ES512", signKey: testECP521, verifyKey: &testECP521.PublicKey, wrongKey: otherECP256},
	}

	for _, tt := range tests {
		t.Run(tt.alg, func(t *testing.T) {
			header := map[string]any{"alg": tt.alg}

			signature, err := Sign(header, payload, tt.signKey)
			if err != nil {
				t.Fatalf("Sign() returned error: %v", err)
			}
			if len(signature) == 0 {
				t.Fatal("Sign() returned empty signature")
			}

			if err := Verify(header, payload, signature, tt.verifyKey); err != nil {
				t.Errorf("Verify() with correct key returned error: %v", err)
			}

			// a wrong key must fail with a signature error, never succeed
			// silently (for ES384/ES512 the wrong key is also on the wrong
			// curve, which must fail just the same)
			err = Verify(header, payload, signature, tt.wrongKey)
			if err == nil {
				t.Fatal("Verify() with wrong key succeeded")
			}
			if !IsSignatureError(err) {
				t.Errorf("Verify() with wrong key: expected code %s, got %s", ErrCodeBadSignature, CodeOf(err))
			}
		})
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	// flipping any single bit of a valid signature must fail verification
	header := map[string]any{"alg": "HS256"}
	payload := map[string]any{"claim": "x"}

	signature, err := Sign(header, payload, "secret")
	if err != nil {
		t.Fatalf("Sign() returned error: %v", err)
	}

	for i := range signature {
		for bit := 0; bit < 8; bit++ {
			tampered := make([]byte, len(signature))
			copy(tampered, signature)
			tampered[i] ^= 1 << bit

			err := Verify(header, payload, tampered, "secret")
			if err == nil {
				t.Fatalf("Verify() accepted signature with byte %d bit %d flipped", i, bit)
			}
			if !IsSignatureError(err) {
				t.Fatalf("Verify() with tampered signature: expected code %s, got %s", ErrCodeBadSignature, CodeOf(err))
			}
		}
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	header := map[string]any{"alg": "HS256"}

	signature, err := Sign(header, map[string]any{"claim": "x"}, "secret")
	if err != nil {
		t.Fatalf("Sign() returned error: %v", err)
	}

	err = Verify(header, map[string]any{"claim": "y"}, signature, "secret")
	if !IsSignatureError(err) {
		t.Errorf("Verify() with altered payload: expected code %s, got %v", ErrCodeBadSignature, err)
	}
}

func TestUnknownAlgorithm(t *testing.T) {
	// both sign and verify must fail with the exact identifier preserved
	header := map[string]any{"alg": "XX999"}
	payload := map[string]any{"claim": "x"}

	_, err := Sign(header, payload, "secret")
	assertAlgorithmNotImplemented(t, err, "XX999")

	err = Verify(header, payload, []byte("sig"), "secret")
	assertAlgorithmNotImplemented(t, err, "XX999")
}

func assertAlgorithmNotImplemented(t *testing.T, err error, identifier string) {
	t.Helper()

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !IsAlgorithmNotImplemented(err) {
		t.Fatalf("expected code %s, got %s", ErrCodeAlgorithmNotImplemented, CodeOf(err))
	}

	var jwsErr *JWSError
	if !errors.As(err, &jwsErr) {
		t.Fatalf("expected *JWSError, got %T", err)
	}
	if jwsErr.Identifier() != identifier {
		t.Errorf("error carries identifier %q, expected %q", jwsErr.Identifier(), identifier)
	}
}

func TestHeaderValidation(t *testing.T) {
	payload := map[string]any{"claim": "x"}

	tests := []struct {
		name   string
		header map[string]any
	}{
		{name: "missing alg", header: map[string]any{"typ": "JWT"}},
		{name: "non-string alg", header: map[string]any{"alg": 256}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sign(tt.header, payload, "secret")
			if CodeOf(err) != ErrCodeInvalidHeader {
				t.Errorf("Sign() expected code %s, got %v", ErrCodeInvalidHeader, err)
			}

			err = Verify(tt.header, payload, []byte("sig"), "secret")
			if CodeOf(err) != ErrCodeInvalidHeader {
				t.Errorf("Verify() expected code %s, got %v", ErrCodeInvalidHeader, err)
			}
		})
	}
}

func TestHS256Scenario(t *testing.T) {
	// the canonical smoke test: HS256, {"claim":"x"}, key "secret"
	header := map[string]any{"alg": "HS256"}
	payload := map[string]any{"claim": "x"}

	signature, err := Sign(header, payload, "secret")
	if err != nil {
		t.Fatalf("Sign() returned error: %v", err)
	}

	if err := Verify(header, payload, signature, "secret"); err != nil {
		t.Errorf("Verify() with correct key returned error: %v", err)
	}

	err = Verify(header, payload, signature, "badsecret")
	if !IsSignatureError(err) {
		t.Errorf("Verify() with wrong key: expected code %s, got %v", ErrCodeBadSignature, err)
	}
}
