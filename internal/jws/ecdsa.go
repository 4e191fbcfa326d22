package jws

// ecdsa.go implements the ES256/ES384/ES512 algorithm family
//
// signatures are the fixed-width R||S concatenation required by RFC 7518
// (not ASN.1 DER). The curve/hash pairing (P-256/SHA-256, P-384/SHA-384,
// P-521/SHA-512) is fixed at construction - it is never re-checked at call
// time because no binding can produce a mismatched pair.
//
// signing uses per-signature randomness from crypto/rand. The Go standard
// library hedges the nonce with RFC 6979-style derandomization internally,
// so a weak randomness source cannot cause nonce reuse.

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"math/big"
)

// ECDSAAlgorithm signs messages with ECDSA on a fixed curve.
type ECDSAAlgorithm struct {
	hash  crypto.Hash
	curve elliptic.Curve

	// componentSize is the byte width of each of the R and S components
	// (32 for P-256, 48 for P-384, 66 for P-521)
	componentSize int
}

// NewECDSAAlgorithm creates an ECDSA variant bound to the given curve and hash function.
func NewECDSAAlgorithm(hash crypto.Hash, curve elliptic.Curve) *ECDSAAlgorithm {
	return &ECDSAAlgorithm{
		hash:          hash,
		curve:         curve,
		componentSize: (curve.Params().BitSize + 7) / 8,
	}
}

// Sign produces an R||S signature of the message digest.
//
// The key must be an *ecdsa.PrivateKey on the bound curve.
func (a *ECDSAAlgorithm) Sign(message []byte, key any) ([]byte, error) {
	privateKey, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, NewKeyError(fmt.Sprintf("ECDSA signing requires an *ecdsa.PrivateKey, got %T", key))
	}
	if privateKey.Curve != a.curve {
		return nil, NewKeyError(fmt.Sprintf("key curve %s does not match algorithm curve %s",
			privateKey.Curve.Params().Name, a.curve.Params().Name))
	}

	digest := a.digest(message)

	r, s, err := ecdsa.Sign(rand.Reader, privateKey, digest)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}

	// fixed-width big-endian R||S
	signature := make([]byte, a.componentSize*2)
	r.FillBytes(signature[:a.componentSize])
	s.FillBytes(signature[a.componentSize:])

	return signature, nil
}

// Verify checks an R||S signature against the public key on the bound curve.
//
// The key must be an *ecdsa.PublicKey (an *ecdsa.PrivateKey is also accepted,
// in which case its public half is used).
func (a *ECDSAAlgorithm) Verify(message, signature []byte, key any) error {
	publicKey, err := a.ecdsaPublicKey(key)
	if err != nil {
		return err
	}

	if len(signature) != a.componentSize*2 {
		return NewSignatureError(fmt.Sprintf("invalid signature length: expected %d bytes, got %d",
			a.componentSize*2, len(signature)))
	}

	r := new(big.Int).SetBytes(signature[:a.componentSize])
	s := new(big.Int).SetBytes(signature[a.componentSize:])

	digest := a.digest(message)

	if !ecdsa.Verify(publicKey, digest, r, s) {
		return NewSignatureError("could not validate signature")
	}
	return nil
}

func (a *ECDSAAlgorithm) digest(message []byte) []byte {
	h := a.hash.New()
	h.Write(message)
	return h.Sum(nil)
}

func (a *ECDSAAlgorithm) ecdsaPublicKey(key any) (*ecdsa.PublicKey, error) {
	var publicKey *ecdsa.PublicKey

	switch k := key.(type) {
	case *ecdsa.PublicKey:
		publicKey = k
	case *ecdsa.PrivateKey:
		publicKey = &k.PublicKey
	default:
		return nil, NewKeyError(fmt.Sprintf("ECDSA verification requires an *ecdsa.PublicKey, got %T", key))
	}

	if publicKey.Curve != a.curve {
		return nil, NewKeyError(fmt.Sprintf("key curve %s does not match algorithm curve %s",
			publicKey.Curve.Params().Name, a.curve.Params().Name))
	}
	return publicKey, nil
}
