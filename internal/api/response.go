package api

// response.go maps lower level errors to the error response format returned
// to API clients

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/information-sharing-networks/jws-demo/internal/jws"
	"github.com/information-sharing-networks/jws-demo/internal/keystore"
	"github.com/information-sharing-networks/jws-demo/internal/logger"
)

// ErrorResponse is the JSON body returned for every API error.
type ErrorResponse struct {
	ErrorCode ErrorCode `json:"error_code" example:"bad_signature"`
	Message   string    `json:"message" example:"could not validate signature"`
	RequestID string    `json:"request_id,omitempty" example:"a71f26a4-8212-4bc0-9a33-c30b06d8a171"`
}

// RespondWithErrorResponse translates an error into the API error format and
// writes it with the appropriate HTTP status.
//
// Engine errors (jws package) and key store errors are mapped to API codes
// here so handlers can return domain errors directly.
func RespondWithErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	status := statusForCode(apiErr.code)

	if status >= http.StatusInternalServerError {
		reqLogger := logger.ContextRequestLogger(r.Context())
		reqLogger.Error("internal error", slog.String("error", err.Error()))
	}

	response := ErrorResponse{
		ErrorCode: apiErr.code,
		Message:   apiErr.message,
		RequestID: middleware.GetReqID(r.Context()),
	}

	RespondWithJSON(w, r, status, response)
}

// RespondWithJSON writes a JSON response body with the given status.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		reqLogger := logger.ContextRequestLogger(r.Context())
		reqLogger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// toAPIError maps engine and key store errors to API errors.
// Errors that are already APIErrors pass through unchanged; anything
// unrecognized is an internal error.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var jwsErr *jws.JWSError
	if errors.As(err, &jwsErr) {
		switch jwsErr.Code() {
		case jws.ErrCodeBadSignature:
			return &APIError{code: ErrCodeBadSignature, message: jwsErr.Error()}
		case jws.ErrCodeAlgorithmNotImplemented:
			return &APIError{code: ErrCodeAlgorithmNotImplemented, message: jwsErr.Error()}
		case jws.ErrCodeInvalidHeader:
			return &APIError{code: ErrCodeMalformedRequest, message: jwsErr.Error()}
		case jws.ErrCodeKey:
			return &APIError{code: ErrCodeKeyError, message: jwsErr.Error()}
		}
	}

	if errors.Is(err, keystore.ErrKeyNotFound) {
		return &APIError{code: ErrCodeKeyError, message: err.Error()}
	}
	if errors.Is(err, keystore.ErrDuplicateKid) {
		return &APIError{code: ErrCodeKeyExists, message: err.Error()}
	}

	return &APIError{code: ErrCodeInternalError, message: "internal server error", wrapped: err}
}

func statusForCode(code ErrorCode) int {
	switch code {
	case ErrCodeMalformedRequest, ErrCodeAlgorithmNotImplemented:
		return http.StatusBadRequest
	case ErrCodeKeyError:
		return http.StatusNotFound
	case ErrCodeKeyExists:
		return http.StatusConflict
	case ErrCodeBadSignature:
		return http.StatusUnprocessableEntity
	case ErrCodeRequestTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
