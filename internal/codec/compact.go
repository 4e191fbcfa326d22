// compact.go - JWS compact serialization (RFC 7515 section 7.1)
//
// the structure of the compact form is Base64URL(Header).Base64URL(Payload).Base64URL(Signature)
// assembling and parsing the compact form is a transport concern - the signing
// engine itself only ever sees the signing input and raw signature bytes
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// CompactSerialize assembles the compact form from the signing input
// (the already-encoded "header.payload" string) and the raw signature bytes.
func CompactSerialize(signingInput []byte, signature []byte) string {
	return fmt.Sprintf("%s.%s", signingInput, EncodeSegment(signature))
}

// ParseCompact splits a compact serialization into the signing input and the
// decoded signature bytes.
//
// The header and payload segments are not decoded - verification must be
// performed over the exact bytes the sender signed.
func ParseCompact(jwsString string) (signingInput []byte, signature []byte, err error) {
	parts := strings.Split(jwsString, ".")
	if len(parts) != 3 {
		return nil, nil, fmt.Errorf("invalid JWS format: expected 3 segments, got %d", len(parts))
	}

	signature, err = DecodeSegment(parts[2])
	if err != nil {
		return nil, nil, fmt.Errorf("error decoding the signature: %w", err)
	}

	return []byte(parts[0] + "." + parts[1]), signature, nil
}

// ParseHeader extracts the header from a compact serialization without verifying.
func ParseHeader(jwsString string) (map[string]any, error) {
	parts := strings.Split(jwsString, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid JWS format: expected 3 segments, got %d", len(parts))
	}

	headerBytes, err := DecodeSegment(parts[0])
	if err != nil {
		return nil, fmt.Errorf("error decoding the header: %w", err)
	}

	var header map[string]any
	decoder := json.NewDecoder(bytes.NewReader(headerBytes))
	decoder.UseNumber()

	if err := decoder.Decode(&header); err != nil {
		return nil, fmt.Errorf("could not unmarshal header: %w", err)
	}

	return header, nil
}

// ParsePayload extracts the payload from a compact serialization without verifying.
func ParsePayload(jwsString string) (map[string]any, error) {
	parts := strings.Split(jwsString, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid JWS format: expected 3 segments, got %d", len(parts))
	}

	payloadBytes, err := DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("error decoding the payload: %w", err)
	}

	var payload map[string]any
	decoder := json.NewDecoder(bytes.NewReader(payloadBytes))
	decoder.UseNumber()

	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("could not unmarshal payload: %w", err)
	}

	return payload, nil
}
