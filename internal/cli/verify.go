package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/information-sharing-networks/jws-demo/internal/codec"
	"github.com/information-sharing-networks/jws-demo/internal/jws"
	"github.com/information-sharing-networks/jws-demo/internal/keys"
)

var (
	verifyToken   string
	verifyKeyPath string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a JWS compact serialization",
	Long: `Verify a JWS compact serialization and print the payload on success.

The key file is the shared secret for HS* algorithms or a public key PEM for
RS*/ES*. The algorithm is taken from the token's protected header.

Example:
  jws verify --token "eyJ..." --key ./keys/signing-key.public.pem`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVarP(&verifyToken, "token", "t", "", "JWS compact serialization to verify [required]")
	verifyCmd.Flags().StringVarP(&verifyKeyPath, "key", "k", "", "Path to the verification key file [required]")
	_ = verifyCmd.MarkFlagRequired("token")
	_ = verifyCmd.MarkFlagRequired("key")
}

func runVerify(cmd *cobra.Command, args []string) error {
	header, err := codec.ParseHeader(verifyToken)
	if err != nil {
		return fmt.Errorf("invalid compact serialization: %w", err)
	}
	payload, err := codec.ParsePayload(verifyToken)
	if err != nil {
		return fmt.Errorf("invalid compact serialization: %w", err)
	}
	_, signature, err := codec.ParseCompact(verifyToken)
	if err != nil {
		return fmt.Errorf("invalid compact serialization: %w", err)
	}

	algorithm, _ := header["alg"].(string)

	key, err := loadVerificationKey(algorithm, verifyKeyPath)
	if err != nil {
		return err
	}

	if err := jws.Verify(header, payload, signature, key); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	appLogger.Debug("signature verified", slog.String("alg", algorithm))

	output, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))

	return nil
}

// loadVerificationKey reads the key file as a raw shared secret (HS*) or a
// public key PEM (RS*/ES*).
func loadVerificationKey(algorithm, path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	if keys.IsHMACAlgorithm(algorithm) {
		return data, nil
	}
	return keys.ParsePublicKeyPEM(data)
}
