// this file contains functions to generate and load the key material used by
// the demo signing service and the keygen CLI
//
// the signing engine itself never touches these helpers - keys are opaque
// inputs to sign/verify, and callers are free to source them elsewhere
//
// PEM files are in PKCS#8 format (https://datatracker.ietf.org/doc/html/rfc5208)

package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"strings"

	"github.com/information-sharing-networks/jws-demo/internal/jws"
)

// DefaultHMACSecretSize is the shared-secret size in bytes for generated HS* keys.
// 64 bytes covers the block size of SHA-512, the largest hash in the HS family.
const DefaultHMACSecretSize = 64

// GenerateHMACSecret generates a random shared secret for the HS* algorithms.
func GenerateHMACSecret(size int) ([]byte, error) {
	if size < 32 {
		return nil, fmt.Errorf("HMAC secret must be at least 32 bytes, got %d", size)
	}

	secret := make([]byte, size)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate secret: %w", err)
	}
	return secret, nil
}

// GenerateRSAKeyPair generates a new RSA private key for the RS* algorithms.
func GenerateRSAKeyPair(bits int) (*rsa.PrivateKey, error) {
	if bits != 2048 && bits != 3072 && bits != 4096 {
		return nil, fmt.Errorf("RSA key size must be 2048, 3072 or 4096 bits, got %d", bits)
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key pair: %w", err)
	}
	return privateKey, nil
}

// GenerateECDSAKeyPair generates a new ECDSA private key on the curve
// matching the given ES* algorithm identifier.
func GenerateECDSAKeyPair(algorithm string) (*ecdsa.PrivateKey, error) {
	curve, err := curveForAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}

	privateKey, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key pair: %w", err)
	}
	return privateKey, nil
}

func curveForAlgorithm(algorithm string) (elliptic.Curve, error) {
	switch algorithm {
	case jws.AlgES256:
		return elliptic.P256(), nil
	case jws.AlgES384:
		return elliptic.P384(), nil
	case jws.AlgES512:
		return elliptic.P521(), nil
	default:
		return nil, fmt.Errorf("%s is not an ECDSA algorithm", algorithm)
	}
}

// IsHMACAlgorithm reports whether the identifier names a shared-secret algorithm.
func IsHMACAlgorithm(algorithm string) bool {
	return strings.HasPrefix(algorithm, "HS")
}

// MarshalPrivateKeyPEM encodes a private key as a PKCS#8 PEM block.
func MarshalPrivateKeyPEM(privateKey any) ([]byte, error) {
	privBytes, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privBytes}), nil
}

// SavePrivateKeyToPEMFile saves a private key to a PEM file in PKCS#8 format.
//
// Parameters:
//   - baseDir: The base directory to scope file access (e.g., "./keys")
//   - filename: The filename within the base directory (e.g., "private.pem")
func SavePrivateKeyToPEMFile(privateKey any, baseDir, filename string) error {
	privBytes, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return fmt.Errorf("failed to marshal private key: %w", err)
	}

	return savePEMFile(&pem.Block{Type: "PRIVATE KEY", Bytes: privBytes}, baseDir, filename, 0600)
}

// SavePublicKeyToPEMFile saves a public key to a PEM file in SubjectPublicKeyInfo format.
//
// Parameters:
//   - baseDir: The base directory to scope file access (e.g., "./keys")
//   - filename: The filename within the base directory (e.g., "public.pem")
func SavePublicKeyToPEMFile(publicKey any, baseDir, filename string) error {
	pubBytes, err := x509.MarshalPKIXPublicKey(publicKey)
	if err != nil {
		return fmt.Errorf("failed to marshal public key: %w", err)
	}

	return savePEMFile(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes}, baseDir, filename, 0644)
}

func savePEMFile(block *pem.Block, baseDir, filename string, perm os.FileMode) error {
	root, err := os.OpenRoot(baseDir)
	if err != nil {
		return fmt.Errorf("failed to open root directory %s: %w", baseDir, err)
	}
	defer root.Close()

	file, err := root.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := pem.Encode(file, block); err != nil {
		return fmt.Errorf("failed to encode PEM: %w", err)
	}

	return nil
}

// ParsePrivateKeyPEM parses a PKCS#8 PEM-encoded private key.
// Returns *rsa.PrivateKey or *ecdsa.PrivateKey.
func ParsePrivateKeyPEM(pemData []byte) (any, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	if block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("expected PRIVATE KEY PEM block, got %s", block.Type)
	}

	privateKey, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	switch privateKey.(type) {
	case *rsa.PrivateKey, *ecdsa.PrivateKey:
		return privateKey, nil
	default:
		return nil, fmt.Errorf("unsupported private key type %T", privateKey)
	}
}

// ParsePublicKeyPEM parses a PKIX PEM-encoded public key.
// Returns *rsa.PublicKey or *ecdsa.PublicKey.
func ParsePublicKeyPEM(pemData []byte) (any, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	if block.Type != "PUBLIC KEY" {
		return nil, fmt.Errorf("expected PUBLIC KEY PEM block, got %s", block.Type)
	}

	publicKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	switch publicKey.(type) {
	case *rsa.PublicKey, *ecdsa.PublicKey:
		return publicKey, nil
	default:
		return nil, fmt.Errorf("unsupported public key type %T", publicKey)
	}
}

// PublicKeyOf returns the public half of an asymmetric private key.
func PublicKeyOf(privateKey any) (any, error) {
	switch k := privateKey.(type) {
	case *rsa.PrivateKey:
		return &k.PublicKey, nil
	case *ecdsa.PrivateKey:
		return &k.PublicKey, nil
	default:
		return nil, fmt.Errorf("unsupported private key type %T", privateKey)
	}
}
