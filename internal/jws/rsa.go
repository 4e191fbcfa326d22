package jws

// rsa.go implements the RS256/RS384/RS512 algorithm family
//
// RFC 7518 mandates RSASSA-PKCS1-v1_5 for the RS* identifiers - signing
// hashes the message with the bound hash function and signs the digest with
// the private key

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
)

// RSAAlgorithm signs messages with RSASSA-PKCS1-v1_5.
type RSAAlgorithm struct {
	hash crypto.Hash
}

// NewRSAAlgorithm creates an RSA PKCS#1 v1.5 variant bound to the given hash function.
func NewRSAAlgorithm(hash crypto.Hash) *RSAAlgorithm {
	return &RSAAlgorithm{hash: hash}
}

// Sign produces a PKCS#1 v1.5 signature of the message digest.
//
// The key must be an *rsa.PrivateKey.
func (a *RSAAlgorithm) Sign(message []byte, key any) ([]byte, error) {
	privateKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, NewKeyError(fmt.Sprintf("RSA signing requires an *rsa.PrivateKey, got %T", key))
	}

	digest := a.digest(message)

	signature, err := rsa.SignPKCS1v15(rand.Reader, privateKey, a.hash, digest)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}

	return signature, nil
}

// Verify checks a PKCS#1 v1.5 signature against the public key.
//
// The key must be an *rsa.PublicKey (an *rsa.PrivateKey is also accepted, in
// which case its public half is used).
func (a *RSAAlgorithm) Verify(message, signature []byte, key any) error {
	publicKey, err := rsaPublicKey(key)
	if err != nil {
		return err
	}

	digest := a.digest(message)

	if err := rsa.VerifyPKCS1v15(publicKey, a.hash, digest, signature); err != nil {
		return WrapSignatureError(err, "could not validate signature")
	}
	return nil
}

func (a *RSAAlgorithm) digest(message []byte) []byte {
	h := a.hash.New()
	h.Write(message)
	return h.Sum(nil)
}

func rsaPublicKey(key any) (*rsa.PublicKey, error) {
	switch k := key.(type) {
	case *rsa.PublicKey:
		return k, nil
	case *rsa.PrivateKey:
		return &k.PublicKey, nil
	default:
		return nil, NewKeyError(fmt.Sprintf("RSA verification requires an *rsa.PublicKey, got %T", key))
	}
}
