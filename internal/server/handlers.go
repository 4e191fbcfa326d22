package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/information-sharing-networks/jws-demo/internal/api"
	"github.com/information-sharing-networks/jws-demo/internal/codec"
	"github.com/information-sharing-networks/jws-demo/internal/jws"
	"github.com/information-sharing-networks/jws-demo/internal/keys"
	"github.com/information-sharing-networks/jws-demo/internal/keystore"
	"github.com/information-sharing-networks/jws-demo/internal/logger"
)

// KeyStore is the subset of the keystore used by the handlers.
// Declared here so tests can substitute an in-memory implementation.
type KeyStore interface {
	Create(ctx context.Context, kid, algorithm string, material []byte) (keystore.SigningKey, error)
	GetByKid(ctx context.Context, kid string) (keystore.SigningKey, error)
	ListActive(ctx context.Context) ([]keystore.SigningKey, error)
	Deactivate(ctx context.Context, kid string) error
	IsDatabaseRunning(ctx context.Context) error
}

// RemoteKeys resolves verification keys from remote JWKS endpoints.
type RemoteKeys interface {
	PublicKey(ctx context.Context, jwksURL, keyID string) (any, error)
}

// requests and responses

type SignRequest struct {
	// Kid selects the stored signing key
	Kid string `json:"kid"`

	// Header is merged into the protected header - alg and kid are always
	// set from the stored key and cannot be overridden by the caller
	Header map[string]any `json:"header,omitempty"`

	Payload map[string]any `json:"payload"`
}

type SignResponse struct {
	// Compact is the JWS compact serialization (header.payload.signature)
	Compact string `json:"compact"`

	// Signature is the base64url-encoded raw signature bytes
	Signature string `json:"signature"`

	// Header is the protected header that was signed
	Header map[string]any `json:"header"`
}

type VerifyRequest struct {
	// Compact carries the whole JWS in compact form. Alternatively the
	// header/payload/signature fields can be supplied separately.
	Compact string `json:"compact,omitempty"`

	Header  map[string]any `json:"header,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`

	// Signature is base64url-encoded
	Signature string `json:"signature,omitempty"`

	// JWKSURL selects an allow-listed remote JWKS endpoint to fetch the
	// verification key from (defaults to the local key store)
	JWKSURL string `json:"jwks_url,omitempty"`
}

type VerifyResponse struct {
	Valid bool   `json:"valid"`
	Kid   string `json:"kid,omitempty"`
	Alg   string `json:"alg,omitempty"`
}

type KeyRequest struct {
	// Kid is optional - a UUID is generated when empty
	Kid string `json:"kid,omitempty"`

	// Algorithm must be one of the built-in identifiers (HS*/RS*/ES*)
	Algorithm string `json:"algorithm"`
}

type KeyResponse struct {
	ID        string `json:"id"`
	Kid       string `json:"kid"`
	Algorithm string `json:"algorithm"`
	Active    bool   `json:"active"`
}

// HandleSign godoc
//
//	@Summary		Sign a payload
//	@Description	Signs the supplied header and payload with the stored key identified by kid.
//	@Description
//	@Description	The signing algorithm is taken from the stored key - the caller cannot
//	@Description	choose a different algorithm for an existing key.
//	@Tags			JWS
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SignRequest	true	"Signing request"
//	@Success		200		{object}	SignResponse
//	@Failure		400		{object}	api.ErrorResponse	"Malformed request"
//	@Failure		404		{object}	api.ErrorResponse	"Unknown kid"
//	@Router			/v1/sign [post]
func HandleSign(store KeyStore, registry *jws.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithErrorResponse(w, r, api.WrapMalformedRequestError(err, "invalid request body"))
			return
		}
		if req.Kid == "" {
			api.RespondWithErrorResponse(w, r, api.NewMalformedRequestError("kid is required"))
			return
		}
		if req.Payload == nil {
			api.RespondWithErrorResponse(w, r, api.NewMalformedRequestError("payload is required"))
			return
		}

		key, err := store.GetByKid(r.Context(), req.Kid)
		if err != nil {
			api.RespondWithErrorResponse(w, r, err)
			return
		}
		if !key.Active {
			api.RespondWithErrorResponse(w, r, api.NewKeyError(fmt.Sprintf("key %q is deactivated", req.Kid)))
			return
		}

		privateKey, err := key.PrivateKey()
		if err != nil {
			api.RespondWithErrorResponse(w, r, api.WrapKeyError(err, "failed to load signing key"))
			return
		}

		header := make(map[string]any, len(req.Header)+2)
		for k, v := range req.Header {
			header[k] = v
		}
		header["alg"] = key.Algorithm
		header["kid"] = key.Kid

		signature, err := registry.Sign(header, req.Payload, privateKey)
		if err != nil {
			api.RespondWithErrorResponse(w, r, err)
			return
		}

		signingInput, err := jws.SigningInput(header, req.Payload)
		if err != nil {
			api.RespondWithErrorResponse(w, r, err)
			return
		}

		logger.ContextWithLogAttrs(r.Context(),
			slog.String("kid", key.Kid),
			slog.String("alg", key.Algorithm),
		)

		api.RespondWithJSON(w, r, http.StatusOK, SignResponse{
			Compact:   codec.CompactSerialize(signingInput, signature),
			Signature: codec.EncodeSegment(signature),
			Header:    header,
		})
	}
}

// HandleVerify godoc
//
//	@Summary		Verify a signature
//	@Description	Verifies a JWS (compact form or separate header/payload/signature fields).
//	@Description
//	@Description	The verification key is looked up by the header's kid in the local key
//	@Description	store, or fetched from an allow-listed remote JWKS endpoint when
//	@Description	jwks_url is set.
//	@Description
//	@Description	A failed verification is an error response (422), never a 200 - clients
//	@Description	must not be able to mistake "invalid" for "valid".
//	@Tags			JWS
//	@Accept			json
//	@Produce		json
//	@Param			request	body		VerifyRequest	true	"Verification request"
//	@Success		200		{object}	VerifyResponse
//	@Failure		400		{object}	api.ErrorResponse	"Malformed request"
//	@Failure		404		{object}	api.ErrorResponse	"Unknown kid"
//	@Failure		422		{object}	api.ErrorResponse	"Signature invalid"
//	@Router			/v1/verify [post]
func HandleVerify(store KeyStore, registry *jws.Registry, remote RemoteKeys) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req VerifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithErrorResponse(w, r, api.WrapMalformedRequestError(err, "invalid request body"))
			return
		}

		header, payload, signature, err := verifyInputs(&req)
		if err != nil {
			api.RespondWithErrorResponse(w, r, err)
			return
		}

		kid, _ := header["kid"].(string)
		alg, _ := header["alg"].(string)

		verifyKey, err := resolveVerifyKey(r.Context(), store, remote, req.JWKSURL, kid)
		if err != nil {
			api.RespondWithErrorResponse(w, r, err)
			return
		}

		if err := registry.Verify(header, payload, signature, verifyKey); err != nil {
			logger.ContextWithLogAttrs(r.Context(),
				slog.String("kid", kid),
				slog.String("verification", "failed"),
			)
			api.RespondWithErrorResponse(w, r, err)
			return
		}

		api.RespondWithJSON(w, r, http.StatusOK, VerifyResponse{
			Valid: true,
			Kid:   kid,
			Alg:   alg,
		})
	}
}

// verifyInputs normalizes the two accepted request shapes.
func verifyInputs(req *VerifyRequest) (header, payload map[string]any, signature []byte, err error) {
	if req.Compact != "" {
		if req.Header != nil || req.Payload != nil || req.Signature != "" {
			return nil, nil, nil, api.NewMalformedRequestError("compact cannot be combined with header/payload/signature")
		}

		header, err = codec.ParseHeader(req.Compact)
		if err != nil {
			return nil, nil, nil, api.WrapMalformedRequestError(err, "invalid compact serialization")
		}
		payload, err = codec.ParsePayload(req.Compact)
		if err != nil {
			return nil, nil, nil, api.WrapMalformedRequestError(err, "invalid compact serialization")
		}
		_, signature, err = codec.ParseCompact(req.Compact)
		if err != nil {
			return nil, nil, nil, api.WrapMalformedRequestError(err, "invalid compact serialization")
		}
		return header, payload, signature, nil
	}

	if req.Header == nil || req.Payload == nil || req.Signature == "" {
		return nil, nil, nil, api.NewMalformedRequestError("either compact or header, payload and signature are required")
	}

	signature, err = codec.DecodeSegment(req.Signature)
	if err != nil {
		return nil, nil, nil, api.WrapMalformedRequestError(err, "signature is not valid base64url")
	}

	return req.Header, req.Payload, signature, nil
}

// resolveVerifyKey picks the verification key: an allow-listed remote JWKS
// endpoint when requested, the local key store otherwise.
func resolveVerifyKey(ctx context.Context, store KeyStore, remote RemoteKeys, jwksURL, kid string) (any, error) {
	if kid == "" {
		return nil, api.NewMalformedRequestError("header kid is required to resolve the verification key")
	}

	if jwksURL != "" {
		if remote == nil {
			return nil, api.NewKeyError("remote JWKS lookup is disabled")
		}
		key, err := remote.PublicKey(ctx, jwksURL, kid)
		if err != nil {
			return nil, api.WrapKeyError(err, "failed to fetch remote verification key")
		}
		return key, nil
	}

	storedKey, err := store.GetByKid(ctx, kid)
	if err != nil {
		return nil, err
	}

	// HS* verification uses the shared secret; asymmetric verification only
	// needs the public half
	if keys.IsHMACAlgorithm(storedKey.Algorithm) {
		return storedKey.PrivateKey()
	}
	publicKey, err := storedKey.PublicKey()
	if err != nil {
		return nil, api.WrapKeyError(err, "failed to load verification key")
	}
	return publicKey, nil
}

// HandleCreateKey godoc
//
//	@Summary	Create a new signing key
//	@Description
//	@Description	Generates key material for the requested algorithm and stores it under
//	@Description	the given kid (a UUID is generated when kid is omitted).
//	@Description
//	@Description	This endpoint is unprotected and for use in development and testing only.
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		key	body		KeyRequest	true	"Key details"
//	@Success	201	{object}	KeyResponse
//	@Failure	400	{object}	api.ErrorResponse	"Invalid request"
//	@Failure	409	{object}	api.ErrorResponse	"Kid already exists"
//	@Router		/admin/keys [post]
func HandleCreateKey(store KeyStore) http.HandlerFunc {
	builtins := make(map[string]bool)
	for _, alg := range jws.BuiltinAlgorithms() {
		builtins[alg] = true
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req KeyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithErrorResponse(w, r, api.WrapMalformedRequestError(err, "invalid request body"))
			return
		}
		if !builtins[req.Algorithm] {
			api.RespondWithErrorResponse(w, r, api.NewMalformedRequestError(
				fmt.Sprintf("algorithm must be one of %v", jws.BuiltinAlgorithms())))
			return
		}

		kid := req.Kid
		if kid == "" {
			kid = uuid.NewString()
		}

		material, err := generateMaterial(req.Algorithm)
		if err != nil {
			api.RespondWithErrorResponse(w, r, api.WrapInternalError(err, "failed to generate key material"))
			return
		}

		key, err := store.Create(r.Context(), kid, req.Algorithm, material)
		if err != nil {
			api.RespondWithErrorResponse(w, r, err)
			return
		}

		reqLogger := logger.ContextRequestLogger(r.Context())
		reqLogger.Info("signing key created",
			slog.String("kid", key.Kid),
			slog.String("alg", key.Algorithm),
		)

		api.RespondWithJSON(w, r, http.StatusCreated, keyToResponse(key))
	}
}

// HandleDeactivateKey godoc
//
//	@Summary	Deactivate a signing key
//	@Description
//	@Description	Deactivated keys are no longer offered for signing but remain in the
//	@Description	store so existing signatures stay verifiable.
//	@Description
//	@Description	This endpoint is unprotected and for use in development and testing only.
//	@Tags		Admin
//	@Produce	json
//	@Param		kid	path	string	true	"Key ID"
//	@Success	204
//	@Failure	404	{object}	api.ErrorResponse	"Unknown kid"
//	@Router		/admin/keys/{kid} [delete]
func HandleDeactivateKey(store KeyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kid := chi.URLParam(r, "kid")

		if err := store.Deactivate(r.Context(), kid); err != nil {
			api.RespondWithErrorResponse(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// generateMaterial produces stored key material for a built-in algorithm:
// a random shared secret for HS*, a PKCS#8 PEM private key for RS*/ES*.
func generateMaterial(algorithm string) ([]byte, error) {
	switch {
	case keys.IsHMACAlgorithm(algorithm):
		return keys.GenerateHMACSecret(keys.DefaultHMACSecretSize)
	case algorithm == jws.AlgRS256 || algorithm == jws.AlgRS384 || algorithm == jws.AlgRS512:
		privateKey, err := keys.GenerateRSAKeyPair(2048)
		if err != nil {
			return nil, err
		}
		return keys.MarshalPrivateKeyPEM(privateKey)
	default:
		privateKey, err := keys.GenerateECDSAKeyPair(algorithm)
		if err != nil {
			return nil, err
		}
		return keys.MarshalPrivateKeyPEM(privateKey)
	}
}

func keyToResponse(key keystore.SigningKey) KeyResponse {
	return KeyResponse{
		ID:        key.ID.String(),
		Kid:       key.Kid,
		Algorithm: key.Algorithm,
		Active:    key.Active,
	}
}
