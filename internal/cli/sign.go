package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/information-sharing-networks/jws-demo/internal/codec"
	"github.com/information-sharing-networks/jws-demo/internal/jws"
	"github.com/information-sharing-networks/jws-demo/internal/keys"
)

var (
	signAlgorithm   string
	signKeyPath     string
	signPayloadPath string
	signKid         string
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a JSON payload",
	Long: `Sign a JSON payload and print the JWS compact serialization.

The key file is the shared secret for HS* algorithms or a PKCS#8 private key
PEM for RS*/ES* (as produced by jws keygen). The payload is read from the
given file, or from stdin when --payload is "-".

Example:
  jws sign --alg ES256 --key ./keys/signing-key.private.pem --payload claims.json`,
	RunE: runSign,
}

func init() {
	rootCmd.AddCommand(signCmd)

	signCmd.Flags().StringVarP(&signAlgorithm, "alg", "a", "", "Algorithm identifier for the protected header [required]")
	signCmd.Flags().StringVarP(&signKeyPath, "key", "k", "", "Path to the signing key file [required]")
	signCmd.Flags().StringVarP(&signPayloadPath, "payload", "p", "-", `Path to the JSON payload ("-" for stdin)`)
	signCmd.Flags().StringVar(&signKid, "kid", "", "Optional kid for the protected header")
	_ = signCmd.MarkFlagRequired("alg")
	_ = signCmd.MarkFlagRequired("key")
}

func runSign(cmd *cobra.Command, args []string) error {
	payload, err := readJSONObject(signPayloadPath)
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}

	key, err := loadSigningKey(signAlgorithm, signKeyPath)
	if err != nil {
		return err
	}

	header := map[string]any{"alg": signAlgorithm}
	if signKid != "" {
		header["kid"] = signKid
	}

	signature, err := jws.Sign(header, payload, key)
	if err != nil {
		return fmt.Errorf("signing failed: %w", err)
	}

	signingInput, err := jws.SigningInput(header, payload)
	if err != nil {
		return err
	}

	appLogger.Debug("payload signed",
		slog.String("alg", signAlgorithm),
		slog.Int("signature_bytes", len(signature)))

	fmt.Println(codec.CompactSerialize(signingInput, signature))

	return nil
}

// readJSONObject reads a JSON object from a file or stdin ("-").
func readJSONObject(path string) (map[string]any, error) {
	var data []byte
	var err error

	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var object map[string]any
	if err := json.Unmarshal(data, &object); err != nil {
		return nil, fmt.Errorf("not a JSON object: %w", err)
	}
	return object, nil
}

// loadSigningKey reads the key file as a raw shared secret (HS*) or a PKCS#8
// private key PEM (RS*/ES*).
func loadSigningKey(algorithm, path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	if keys.IsHMACAlgorithm(algorithm) {
		return data, nil
	}
	return keys.ParsePrivateKeyPEM(data)
}
