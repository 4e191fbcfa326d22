package jws

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"strconv"
	"testing"
)

// repeatMAC is a deliberately silly custom algorithm used to exercise the
// extension point: it applies HMAC-SHA256 a number of times taken from the
// identifier's capture groups.
type repeatMAC struct {
	rounds int
}

func (a *repeatMAC) Sign(message []byte, key any) ([]byte, error) {
	secret, err := hmacSecret(key)
	if err != nil {
		return nil, err
	}

	out := message
	for i := 0; i < a.rounds; i++ {
		mac := hmac.New(sha256.New, secret)
		mac.Write(out)
		out = mac.Sum(nil)
	}
	return out, nil
}

func (a *repeatMAC) Verify(message, signature []byte, key any) error {
	expected, err := a.Sign(message, key)
	if err != nil {
		return err
	}
	if !hmac.Equal(expected, signature) {
		return NewSignatureError("could not validate signature")
	}
	return nil
}

func repeatMACFactory(captures map[string]string) (Algorithm, error) {
	x, err := strconv.Atoi(captures["x"])
	if err != nil {
		return nil, fmt.Errorf("invalid x capture: %w", err)
	}
	y, err := strconv.Atoi(captures["y"])
	if err != nil {
		return nil, fmt.Errorf("invalid y capture: %w", err)
	}
	return &repeatMAC{rounds: x + y}, nil
}

func TestCustomBinding(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(`F(?P<x>\d)U(?P<y>\d{2})`, repeatMACFactory); err != nil {
		t.Fatalf("Register() returned error: %v", err)
	}

	header := map[string]any{"alg": "F7U12"}
	payload := map[string]any{"claim": "x"}

	signature, err := registry.Sign(header, payload, "secret")
	if err != nil {
		t.Fatalf("Sign() with custom algorithm returned error: %v", err)
	}

	if err := registry.Verify(header, payload, signature, "secret"); err != nil {
		t.Errorf("Verify() with correct key returned error: %v", err)
	}

	err = registry.Verify(header, payload, signature, "badsecret")
	if !IsSignatureError(err) {
		t.Errorf("Verify() with wrong key: expected code %s, got %v", ErrCodeBadSignature, err)
	}

	// check the captures actually drive the implementation: F7U12 (19
	// rounds) and F1U02 (3 rounds) must not produce the same signature
	other, err := registry.Sign(map[string]any{"alg": "F1U02"}, payload, "secret")
	if err != nil {
		t.Fatalf("Sign() returned error: %v", err)
	}
	if bytes.Equal(signature, other) {
		t.Error("different capture groups produced identical signatures")
	}
}

func TestCustomBindingOrder(t *testing.T) {
	// earlier registrations take precedence over later ones with
	// overlapping patterns - first match wins, no disjointness check
	registry := NewRegistry()

	first := func(captures map[string]string) (Algorithm, error) {
		return &repeatMAC{rounds: 1}, nil
	}
	second := func(captures map[string]string) (Algorithm, error) {
		return &repeatMAC{rounds: 2}, nil
	}

	if err := registry.Register(`CUSTOM`, first); err != nil {
		t.Fatalf("Register() returned error: %v", err)
	}
	if err := registry.Register(`CUST.*`, second); err != nil {
		t.Fatalf("Register() returned error: %v", err)
	}

	alg, err := registry.Resolve("CUSTOM")
	if err != nil {
		t.Fatalf("Resolve() returned error: %v", err)
	}
	if alg.(*repeatMAC).rounds != 1 {
		t.Error("Resolve() did not pick the earliest matching binding")
	}
}

func TestBuiltinsShadowCustomBindings(t *testing.T) {
	// built-ins are searched before custom bindings, so a custom pattern
	// cannot hijack HS256
	registry := NewRegistry()

	if err := registry.Register(`HS256`, func(captures map[string]string) (Algorithm, error) {
		return &repeatMAC{rounds: 1}, nil
	}); err != nil {
		t.Fatalf("Register() returned error: %v", err)
	}

	alg, err := registry.Resolve("HS256")
	if err != nil {
		t.Fatalf("Resolve() returned error: %v", err)
	}
	if _, ok := alg.(*HMACAlgorithm); !ok {
		t.Errorf("Resolve(HS256) returned %T, expected the built-in HMAC implementation", alg)
	}
}

func TestRegisterInvalidPattern(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(`F(?P<x>\d`, repeatMACFactory); err == nil {
		t.Error("Register() accepted an invalid regex")
	}

	if err := registry.Register(`OK`, nil); err == nil {
		t.Error("Register() accepted a nil factory")
	}
}

func TestResolveBuiltins(t *testing.T) {
	registry := NewRegistry()

	for _, identifier := range BuiltinAlgorithms() {
		if _, err := registry.Resolve(identifier); err != nil {
			t.Errorf("Resolve(%s) returned error: %v", identifier, err)
		}
	}

	// near-misses of the built-in identifiers must not resolve
	for _, identifier := range []string{"HS128", "hs256", "RS", "ES256 ", "none", ""} {
		_, err := registry.Resolve(identifier)
		if !IsAlgorithmNotImplemented(err) {
			t.Errorf("Resolve(%q) expected code %s, got %v", identifier, ErrCodeAlgorithmNotImplemented, err)
		}
	}
}
