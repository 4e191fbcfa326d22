package jws

import (
	"bytes"
	"strings"
	"testing"

	"github.com/information-sharing-networks/jws-demo/internal/codec"
)

func TestSigningInputDeterministic(t *testing.T) {
	// identical documents must always produce identical bytes - the codec
	// canonicalizes the JSON so map iteration order cannot leak through
	header := map[string]any{"alg": "HS256", "typ": "JWT", "kid": "key-1"}
	payload := map[string]any{"b": 2, "a": 1, "nested": map[string]any{"z": true, "y": "x"}}

	first, err := SigningInput(header, payload)
	if err != nil {
		t.Fatalf("SigningInput() returned error: %v", err)
	}

	for i := 0; i < 50; i++ {
		again, err := SigningInput(header, payload)
		if err != nil {
			t.Fatalf("SigningInput() returned error: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("SigningInput() is not deterministic")
		}
	}
}

func TestSigningInputFormat(t *testing.T) {
	header := map[string]any{"alg": "HS256"}
	payload := map[string]any{"claim": "x"}

	input, err := SigningInput(header, payload)
	if err != nil {
		t.Fatalf("SigningInput() returned error: %v", err)
	}

	parts := strings.Split(string(input), ".")
	if len(parts) != 2 {
		t.Fatalf("SigningInput() has %d segments, expected 2", len(parts))
	}

	headerJSON, err := codec.DecodeSegment(parts[0])
	if err != nil {
		t.Fatalf("header segment is not valid base64url: %v", err)
	}
	if string(headerJSON) != `{"alg":"HS256"}` {
		t.Errorf("header segment decodes to %s", headerJSON)
	}

	payloadJSON, err := codec.DecodeSegment(parts[1])
	if err != nil {
		t.Fatalf("payload segment is not valid base64url: %v", err)
	}
	if string(payloadJSON) != `{"claim":"x"}` {
		t.Errorf("payload segment decodes to %s", payloadJSON)
	}
}

func TestSigningInputUnserializable(t *testing.T) {
	// codec serialization errors propagate unchanged (they are not part of
	// the jws error taxonomy)
	header := map[string]any{"alg": "HS256"}
	payload := map[string]any{"bad": make(chan int)}

	_, err := SigningInput(header, payload)
	if err == nil {
		t.Fatal("SigningInput() accepted an unserializable payload")
	}
	if CodeOf(err) != "" {
		t.Errorf("serialization error was wrapped into the jws taxonomy: %v", err)
	}
}
