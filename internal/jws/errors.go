package jws

// errors.go defines the error codes returned by the signing engine
//
// verification failure is deliberately a typed error rather than a boolean -
// callers must treat "could not verify" as exceptional and never as a soft
// false return that can be ignored

import (
	"errors"
	"fmt"
)

// Error represents a structured error from the jws package
type Error interface {
	error
	Code() ErrorCode
	Unwrap() error
}

type ErrorCode string

const (
	// ErrCodeAlgorithmNotImplemented is used when no built-in algorithm or
	// registered custom binding matches the requested identifier.
	ErrCodeAlgorithmNotImplemented ErrorCode = "algorithm_not_implemented"

	// ErrCodeBadSignature is used when signature verification fails for any
	// reason (wrong key, tampered message, malformed signature bytes).
	// Callers must treat this as "do not trust this message".
	ErrCodeBadSignature ErrorCode = "bad_signature"

	// ErrCodeInvalidHeader is used when the header is missing the required
	// alg parameter or the parameter is not a string.
	ErrCodeInvalidHeader ErrorCode = "invalid_header"

	// ErrCodeKey is used when the supplied key has the wrong type for the
	// resolved algorithm (e.g. an RSA key passed to an ECDSA variant).
	ErrCodeKey ErrorCode = "key"
)

// JWSError represents a structured error from the jws package
type JWSError struct {

	// code is the jws error code
	code ErrorCode

	// message is a human-readable error message
	message string

	// wrapped is the optional underlying error
	wrapped error

	// identifier is the algorithm identifier that could not be resolved
	// (only set for ErrCodeAlgorithmNotImplemented)
	identifier string
}

func (e *JWSError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *JWSError) Code() ErrorCode { return e.code }
func (e *JWSError) Unwrap() error   { return e.wrapped }

// Identifier returns the algorithm identifier that failed to resolve.
// Empty for every code other than ErrCodeAlgorithmNotImplemented.
func (e *JWSError) Identifier() string { return e.identifier }

// NewAlgorithmNotImplementedError creates an error for an algorithm
// identifier with no matching binding. The exact identifier is preserved so
// callers can report which algorithm was requested.
//
// The returned error will have code ErrCodeAlgorithmNotImplemented.
func NewAlgorithmNotImplementedError(identifier string) error {
	return &JWSError{
		code:       ErrCodeAlgorithmNotImplemented,
		message:    fmt.Sprintf("no algorithm defined for %q", identifier),
		identifier: identifier,
	}
}

// NewSignatureError creates a signature verification error.
// Use this for errors related to signature verification failures or malformed signatures.
//
// The returned error will have code ErrCodeBadSignature.
func NewSignatureError(msg string) error {
	return &JWSError{code: ErrCodeBadSignature, message: msg}
}

// WrapSignatureError wraps an existing error as a signature error.
// Use this for errors related to signature verification failures or malformed signatures.
//
// The returned error will have code ErrCodeBadSignature.
func WrapSignatureError(err error, msg string) error {
	return &JWSError{code: ErrCodeBadSignature, message: msg, wrapped: err}
}

// NewInvalidHeaderError creates an error for a header without a usable alg parameter.
//
// The returned error will have code ErrCodeInvalidHeader.
func NewInvalidHeaderError(msg string) error {
	return &JWSError{code: ErrCodeInvalidHeader, message: msg}
}

// NewKeyError creates an error for a key that does not fit the resolved algorithm.
//
// The returned error will have code ErrCodeKey.
func NewKeyError(msg string) error {
	return &JWSError{code: ErrCodeKey, message: msg}
}

// CodeOf returns the error code carried by err, or an empty code when err
// was not produced by this package (e.g. a propagated serialization error).
func CodeOf(err error) ErrorCode {
	var jwsErr *JWSError
	if errors.As(err, &jwsErr) {
		return jwsErr.code
	}
	return ""
}

// IsAlgorithmNotImplemented reports whether err carries ErrCodeAlgorithmNotImplemented.
func IsAlgorithmNotImplemented(err error) bool {
	return CodeOf(err) == ErrCodeAlgorithmNotImplemented
}

// IsSignatureError reports whether err carries ErrCodeBadSignature.
func IsSignatureError(err error) bool {
	return CodeOf(err) == ErrCodeBadSignature
}
