package api

// errors.go defines the error codes returned by the signing service API

import "fmt"

// APIError represents a structured error from the api package.
type APIError struct {
	// code is the API error code
	code ErrorCode

	// message is a human-readable error message
	message string

	// wrapped is the optional underlying error
	wrapped error
}

func (e *APIError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *APIError) Code() ErrorCode { return e.code }
func (e *APIError) Unwrap() error   { return e.wrapped }

// ErrorCode is used in error responses returned by the signing service API.
type ErrorCode string

const (
	// ErrCodeBadSignature is used when signature verification fails
	// (wrong key, tampered message, malformed signature bytes)
	ErrCodeBadSignature ErrorCode = "bad_signature"

	// ErrCodeAlgorithmNotImplemented is used when the requested algorithm
	// identifier has no binding in the signing engine
	ErrCodeAlgorithmNotImplemented ErrorCode = "algorithm_not_implemented"

	// ErrCodeMalformedRequest is used when JSON parsing or validation of the
	// request body fails
	ErrCodeMalformedRequest ErrorCode = "malformed_request"

	// ErrCodeKeyError is used when there is a problem with the signing key
	// (e.g. the kid is not in the key store, or the key cannot be used for
	// the requested operation)
	ErrCodeKeyError ErrorCode = "key_error"

	// ErrCodeKeyExists is used when creating a key with a kid that is
	// already taken
	ErrCodeKeyExists ErrorCode = "key_exists"

	// ErrCodeRateLimitExceeded is used when the rate limit is exceeded
	// - this is only used in the middleware
	ErrCodeRateLimitExceeded ErrorCode = "rate_limit_exceeded"

	// ErrCodeRequestTooLarge is used when the request body is too large
	// - this is only used in the middleware
	ErrCodeRequestTooLarge ErrorCode = "request_too_large"

	// ErrCodeInternalError is used when an internal server error occurs
	ErrCodeInternalError ErrorCode = "internal_error"
)

// NewMalformedRequestError creates an error for malformed requests.
func NewMalformedRequestError(msg string) error {
	return &APIError{code: ErrCodeMalformedRequest, message: msg}
}

// WrapMalformedRequestError wraps an existing error as a malformed request error.
func WrapMalformedRequestError(err error, msg string) error {
	return &APIError{code: ErrCodeMalformedRequest, message: msg, wrapped: err}
}

// NewBadSignatureError creates a signature verification error.
func NewBadSignatureError(msg string) error {
	return &APIError{code: ErrCodeBadSignature, message: msg}
}

// WrapBadSignatureError wraps an existing error as a signature verification error.
func WrapBadSignatureError(err error, msg string) error {
	return &APIError{code: ErrCodeBadSignature, message: msg, wrapped: err}
}

// NewAlgorithmNotImplementedError creates an error for an unresolvable algorithm identifier.
func NewAlgorithmNotImplementedError(msg string) error {
	return &APIError{code: ErrCodeAlgorithmNotImplemented, message: msg}
}

// NewKeyError creates a key management error.
// Use this for errors related to key lookup, key loading or key format.
func NewKeyError(msg string) error {
	return &APIError{code: ErrCodeKeyError, message: msg}
}

// WrapKeyError wraps an existing error as a key management error.
func WrapKeyError(err error, msg string) error {
	return &APIError{code: ErrCodeKeyError, message: msg, wrapped: err}
}

// NewKeyExistsError creates an error for a duplicate kid.
func NewKeyExistsError(msg string) error {
	return &APIError{code: ErrCodeKeyExists, message: msg}
}

// NewRateLimitError creates a rate limit exceeded error.
// Use this when the client has exceeded the rate limit.
func NewRateLimitError(msg string) error {
	return &APIError{code: ErrCodeRateLimitExceeded, message: msg}
}

// NewRequestTooLargeError creates a request too large error.
// Use this when the request body exceeds the maximum allowed size.
func NewRequestTooLargeError(msg string) error {
	return &APIError{code: ErrCodeRequestTooLarge, message: msg}
}

// NewInternalError creates an internal error for unexpected failures.
func NewInternalError(msg string) error {
	return &APIError{code: ErrCodeInternalError, message: msg}
}

// WrapInternalError wraps an existing error as an internal error.
func WrapInternalError(err error, msg string) error {
	return &APIError{code: ErrCodeInternalError, message: msg, wrapped: err}
}
