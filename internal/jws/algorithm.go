package jws

// algorithm.go defines the contract every signing scheme implements and the
// identifiers of the built-in algorithms
//
// keys are opaque to the engine - each variant documents the concrete key
// types it accepts and rejects everything else with a key error

import (
	// load the hash implementations the built-in algorithms bind to
	_ "crypto/sha256"
	_ "crypto/sha512"
)

// Algorithm is the contract for both signing and verifying a message.
//
// Sign returns the raw signature bytes for the message - transport encoding
// (base64url) is the caller's job. Verify returns nil only when the signature
// is valid for the message and key; every failure is an error, never a
// boolean false.
//
// Implementations are stateless beyond their construction parameters and are
// safe for concurrent use.
type Algorithm interface {
	Sign(message []byte, key any) ([]byte, error)
	Verify(message, signature []byte, key any) error
}

// Built-in algorithm identifiers (RFC 7518 section 3.1)
const (
	AlgHS256 = "HS256" // HMAC with SHA-256
	AlgHS384 = "HS384" // HMAC with SHA-384
	AlgHS512 = "HS512" // HMAC with SHA-512

	AlgRS256 = "RS256" // RSASSA-PKCS1-v1_5 with SHA-256
	AlgRS384 = "RS384" // RSASSA-PKCS1-v1_5 with SHA-384
	AlgRS512 = "RS512" // RSASSA-PKCS1-v1_5 with SHA-512

	AlgES256 = "ES256" // ECDSA on P-256 with SHA-256
	AlgES384 = "ES384" // ECDSA on P-384 with SHA-384
	AlgES512 = "ES512" // ECDSA on P-521 with SHA-512
)
