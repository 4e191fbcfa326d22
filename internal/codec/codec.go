// codec.go - serialization and transport encoding used to build JWS signing input
//
// the signing input must be byte-for-byte reproducible, so JSON documents are
// canonicalized per RFC 8785 before encoding (this implementation uses the
// gowebpki/jcs library to perform the canonicalization)
//
// segment encoding is base64url without padding as required by RFC 7515
package codec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// Canonicalize serializes a JSON document (a map of string keys to values)
// to canonical form per RFC 8785.
//
// Canonicalization guarantees that two structurally identical documents
// always serialize to the same bytes regardless of map iteration order.
func Canonicalize(doc map[string]any) ([]byte, error) {
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	return jcs.Transform(jsonData)
}

// EncodeSegment encodes bytes as a base64url string without padding.
func EncodeSegment(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeSegment decodes a base64url string without padding.
func DecodeSegment(segment string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(segment)
}
