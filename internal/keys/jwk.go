// JWK (JSON Web Key) conversion helpers
//
// these functions convert raw RSA/ECDSA public keys to JWK format for
// distribution via /.well-known/jwks.json (and vice versa for verification)
// Reference: https://datatracker.ietf.org/doc/html/rfc7517 (JSON Web Key standard)

package keys

import (
	"fmt"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// PublicKeyToJWK converts an RSA or ECDSA public key to JWK format.
//
// The algorithm identifier must be one of the built-in asymmetric identifiers
// (RS*/ES*) - HMAC secrets are never published.
func PublicKeyToJWK(publicKey any, keyID, algorithm string) (jwk.Key, error) {
	if publicKey == nil {
		return nil, fmt.Errorf("public key is nil")
	}
	if keyID == "" {
		return nil, fmt.Errorf("keyID is required")
	}

	alg, ok := jwa.LookupSignatureAlgorithm(algorithm)
	if !ok {
		return nil, fmt.Errorf("unknown JWA signature algorithm %q", algorithm)
	}

	// create the jwk key
	key, err := jwk.Import(publicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWK from public key: %w", err)
	}

	// Set key ID
	if err := key.Set(jwk.KeyIDKey, keyID); err != nil {
		return nil, fmt.Errorf("failed to set key ID: %w", err)
	}

	// Set algorithm
	if err := key.Set(jwk.AlgorithmKey, alg); err != nil {
		return nil, fmt.Errorf("failed to set algorithm: %w", err)
	}

	// Set key usage
	if err := key.Set(jwk.KeyUsageKey, jwk.ForSignature); err != nil {
		return nil, fmt.Errorf("failed to set key usage: %w", err)
	}

	return key, nil
}

// JWKToPublicKey converts a JWK to the native crypto public key type the
// signing engine accepts (*rsa.PublicKey or *ecdsa.PublicKey).
func JWKToPublicKey(key jwk.Key) (any, error) {
	if key == nil {
		return nil, fmt.Errorf("key is nil")
	}

	var raw any
	if err := jwk.Export(key, &raw); err != nil {
		return nil, fmt.Errorf("failed to export JWK to raw key: %w", err)
	}

	return raw, nil
}

// BuildJWKSet assembles a JWK set from individual keys.
func BuildJWKSet(keys ...jwk.Key) (jwk.Set, error) {
	set := jwk.NewSet()
	for _, key := range keys {
		if err := set.AddKey(key); err != nil {
			return nil, fmt.Errorf("failed to add key to set: %w", err)
		}
	}
	return set, nil
}
