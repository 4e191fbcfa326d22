package keystore

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"os"
	"path/filepath"
	"testing"

	"github.com/information-sharing-networks/jws-demo/internal/keys"
)

func readFile(t *testing.T, dir, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return data
}

// the Store methods need a live database and are covered by the service's
// integration environment - these tests cover the material conversions

func TestSigningKeyMaterialHMAC(t *testing.T) {
	secret, err := keys.GenerateHMACSecret(keys.DefaultHMACSecretSize)
	if err != nil {
		t.Fatalf("GenerateHMACSecret() returned error: %v", err)
	}

	key := SigningKey{Kid: "hmac-1", Algorithm: "HS256", Material: secret}

	privateKey, err := key.PrivateKey()
	if err != nil {
		t.Fatalf("PrivateKey() returned error: %v", err)
	}
	if _, ok := privateKey.([]byte); !ok {
		t.Errorf("PrivateKey() returned %T, expected []byte secret", privateKey)
	}

	// shared secrets must never be publishable
	if _, err := key.PublicKey(); err == nil {
		t.Error("PublicKey() on an HS256 key expected error, got nil")
	}
}

func TestSigningKeyMaterialAsymmetric(t *testing.T) {
	tests := []struct {
		name      string
		algorithm string
		generate  func() (any, error)
	}{
		{
			name:      "ECDSA",
			algorithm: "ES256",
			generate:  func() (any, error) { return keys.GenerateECDSAKeyPair("ES256") },
		},
		{
			name:      "RSA",
			algorithm: "RS256",
			generate:  func() (any, error) { return keys.GenerateRSAKeyPair(2048) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generated, err := tt.generate()
			if err != nil {
				t.Fatalf("key generation returned error: %v", err)
			}

			dir := t.TempDir()
			if err := keys.SavePrivateKeyToPEMFile(generated, dir, "private.pem"); err != nil {
				t.Fatalf("SavePrivateKeyToPEMFile() returned error: %v", err)
			}

			pemData := readFile(t, dir, "private.pem")
			key := SigningKey{Kid: "k", Algorithm: tt.algorithm, Material: pemData}

			privateKey, err := key.PrivateKey()
			if err != nil {
				t.Fatalf("PrivateKey() returned error: %v", err)
			}
			publicKey, err := key.PublicKey()
			if err != nil {
				t.Fatalf("PublicKey() returned error: %v", err)
			}

			switch tt.name {
			case "ECDSA":
				priv := privateKey.(*ecdsa.PrivateKey)
				if !priv.Equal(generated.(*ecdsa.PrivateKey)) {
					t.Error("private key did not round-trip through the store material")
				}
				if !publicKey.(*ecdsa.PublicKey).Equal(&priv.PublicKey) {
					t.Error("PublicKey() does not match the private key")
				}
			case "RSA":
				priv := privateKey.(*rsa.PrivateKey)
				if !priv.Equal(generated.(*rsa.PrivateKey)) {
					t.Error("private key did not round-trip through the store material")
				}
				if !publicKey.(*rsa.PublicKey).Equal(&priv.PublicKey) {
					t.Error("PublicKey() does not match the private key")
				}
			}
		})
	}
}

func TestSigningKeyMaterialInvalid(t *testing.T) {
	key := SigningKey{Kid: "bad", Algorithm: "ES256", Material: []byte("not pem")}

	if _, err := key.PrivateKey(); err == nil {
		t.Error("PrivateKey() with invalid material expected error, got nil")
	}
	if _, err := key.PublicKey(); err == nil {
		t.Error("PublicKey() with invalid material expected error, got nil")
	}
}
