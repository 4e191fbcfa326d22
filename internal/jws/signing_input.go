package jws

// signing_input.go builds the exact byte sequence that gets signed

import (
	"github.com/information-sharing-networks/jws-demo/internal/codec"
)

// SigningInput generates the signing input by canonical-JSON + base64url
// encoding the header and the payload, then concatenating the results with a
// '.' character.
//
// Identical (header, payload) pairs always produce identical bytes - the
// codec canonicalizes the JSON, so map iteration order never leaks into the
// result. Serialization errors from the codec are propagated unchanged.
func SigningInput(header, payload map[string]any) ([]byte, error) {
	headerJSON, err := codec.Canonicalize(header)
	if err != nil {
		return nil, err
	}

	payloadJSON, err := codec.Canonicalize(payload)
	if err != nil {
		return nil, err
	}

	input := codec.EncodeSegment(headerJSON) + "." + codec.EncodeSegment(payloadJSON)
	return []byte(input), nil
}
