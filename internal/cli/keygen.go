package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/information-sharing-networks/jws-demo/internal/jws"
	"github.com/information-sharing-networks/jws-demo/internal/keys"
)

// file naming convention - <name>.secret for shared secrets,
// <name>.private.pem / <name>.public.pem / <name>.public.jwk for key pairs
const (
	secretFileNameFormat     = "%s.secret"
	privateKeyFileNameFormat = "%s.private.pem"
	publicKeyFileNameFormat  = "%s.public.pem"
	publicJWKFileNameFormat  = "%s.public.jwk"
)

var (
	keygenAlgorithm string
	keygenOutputDir string
	keygenName      string
	keygenKid       string
	keygenRSASize   int
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate signing key material",
	Long: `Generate signing key material for one of the built-in algorithms.

HS* algorithms produce a random shared secret. RS*/ES* algorithms produce a
PKCS#8 private key PEM, a public key PEM and the public key in JWK format
(ready to serve from a JWKS endpoint).

Example:
  jws keygen --alg ES256 --outputdir ./keys --name signing-key`,
	RunE: runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)

	keygenCmd.Flags().StringVarP(&keygenAlgorithm, "alg", "a", "", fmt.Sprintf("Algorithm: one of %v [required]", jws.BuiltinAlgorithms()))
	keygenCmd.Flags().StringVarP(&keygenOutputDir, "outputdir", "o", ".", "Output directory for generated key files")
	keygenCmd.Flags().StringVarP(&keygenName, "name", "n", "signing-key", "File name prefix for the generated files")
	keygenCmd.Flags().StringVarP(&keygenKid, "kid", "k", "", "Key ID recorded in the public JWK (default: generated UUID)")
	keygenCmd.Flags().IntVarP(&keygenRSASize, "size", "s", 2048, "RSA key size in bits (2048, 3072 or 4096)")
	_ = keygenCmd.MarkFlagRequired("alg")
}

func runKeygen(cmd *cobra.Command, args []string) error {
	if !slices.Contains(jws.BuiltinAlgorithms(), keygenAlgorithm) {
		return fmt.Errorf("invalid algorithm: %s (must be one of %v)", keygenAlgorithm, jws.BuiltinAlgorithms())
	}

	// make the directory if it doesn't exist
	if _, err := os.Stat(keygenOutputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(keygenOutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if keygenKid == "" {
		keygenKid = uuid.NewString()
	}

	if keys.IsHMACAlgorithm(keygenAlgorithm) {
		return generateSecret()
	}
	return generateKeyPair()
}

func generateSecret() error {
	secret, err := keys.GenerateHMACSecret(keys.DefaultHMACSecretSize)
	if err != nil {
		return fmt.Errorf("failed to generate secret: %w", err)
	}

	filename := fmt.Sprintf(secretFileNameFormat, keygenName)
	path := filepath.Join(keygenOutputDir, filename)
	if err := os.WriteFile(path, secret, 0600); err != nil {
		return fmt.Errorf("failed to write secret: %w", err)
	}

	fmt.Printf("✓ Shared secret: %s (%d bytes)\n", path, len(secret))
	fmt.Println("Keep the secret private - anyone holding it can sign and verify.")

	return nil
}

func generateKeyPair() error {
	var privateKey any
	var err error

	switch {
	case keygenAlgorithm == jws.AlgRS256 || keygenAlgorithm == jws.AlgRS384 || keygenAlgorithm == jws.AlgRS512:
		privateKey, err = keys.GenerateRSAKeyPair(keygenRSASize)
	default:
		privateKey, err = keys.GenerateECDSAKeyPair(keygenAlgorithm)
	}
	if err != nil {
		return fmt.Errorf("failed to generate key pair: %w", err)
	}

	publicKey, err := keys.PublicKeyOf(privateKey)
	if err != nil {
		return err
	}

	privateFile := fmt.Sprintf(privateKeyFileNameFormat, keygenName)
	if err := keys.SavePrivateKeyToPEMFile(privateKey, keygenOutputDir, privateFile); err != nil {
		return fmt.Errorf("failed to save private key: %w", err)
	}
	fmt.Printf("✓ Private key: %s\n", filepath.Join(keygenOutputDir, privateFile))

	publicFile := fmt.Sprintf(publicKeyFileNameFormat, keygenName)
	if err := keys.SavePublicKeyToPEMFile(publicKey, keygenOutputDir, publicFile); err != nil {
		return fmt.Errorf("failed to save public key: %w", err)
	}
	fmt.Printf("✓ Public key:  %s\n", filepath.Join(keygenOutputDir, publicFile))

	jwkKey, err := keys.PublicKeyToJWK(publicKey, keygenKid, keygenAlgorithm)
	if err != nil {
		return fmt.Errorf("failed to convert public key to JWK: %w", err)
	}
	jwkData, err := json.MarshalIndent(jwkKey, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JWK: %w", err)
	}

	jwkPath := filepath.Join(keygenOutputDir, fmt.Sprintf(publicJWKFileNameFormat, keygenName))
	if err := os.WriteFile(jwkPath, jwkData, 0644); err != nil {
		return fmt.Errorf("failed to write JWK: %w", err)
	}
	fmt.Printf("✓ Public JWK:  %s (kid: %s)\n", jwkPath, keygenKid)
	fmt.Println("Keep the private key secure - publish only the public files.")

	return nil
}
