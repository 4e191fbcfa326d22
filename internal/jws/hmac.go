package jws

// hmac.go implements the HS256/HS384/HS512 algorithm family
//
// verification recomputes the MAC and compares with hmac.Equal - the
// comparison must be constant-time so the position of the first mismatching
// byte cannot leak through response timing

import (
	"crypto"
	"crypto/hmac"
	"fmt"
)

// HMACAlgorithm signs messages with a keyed hash using a shared secret.
type HMACAlgorithm struct {
	hash crypto.Hash
}

// NewHMACAlgorithm creates an HMAC variant bound to the given hash function.
func NewHMACAlgorithm(hash crypto.Hash) *HMACAlgorithm {
	return &HMACAlgorithm{hash: hash}
}

// Sign computes the keyed hash of message.
//
// The key must be the shared secret as a string or []byte.
func (a *HMACAlgorithm) Sign(message []byte, key any) ([]byte, error) {
	secret, err := hmacSecret(key)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(a.hash.New, secret)
	mac.Write(message)
	return mac.Sum(nil), nil
}

// Verify recomputes the MAC and compares it to signature in constant time.
func (a *HMACAlgorithm) Verify(message, signature []byte, key any) error {
	expected, err := a.Sign(message, key)
	if err != nil {
		return err
	}

	if !hmac.Equal(expected, signature) {
		return NewSignatureError("could not validate signature")
	}
	return nil
}

// hmacSecret converts a caller-supplied key to shared-secret bytes.
func hmacSecret(key any) ([]byte, error) {
	switch k := key.(type) {
	case []byte:
		return k, nil
	case string:
		return []byte(k), nil
	default:
		return nil, NewKeyError(fmt.Sprintf("HMAC requires a string or []byte secret, got %T", key))
	}
}
