// Package jws signs and verifies structured messages (a JSON header plus a
// JSON payload) using the algorithm named by the header's alg parameter.
//
// The package resolves the identifier through a registry of built-in
// algorithms (HS256/384/512, RS256/384/512, ES256/384/512) and
// caller-registered custom bindings, builds the canonical signing input
// (base64url of the RFC 8785 canonical JSON of header and payload, joined by
// '.') and dispatches to the resolved implementation.
//
// Keys are opaque caller inputs - the package never generates, stores or
// rotates key material (see internal/keys and internal/keystore for the
// supporting infrastructure the demo service uses).
package jws
