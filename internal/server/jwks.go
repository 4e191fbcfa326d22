package server

import (
	"encoding/json"
	"net/http"

	"github.com/lestrrat-go/jwx/v3/jwk"

	"github.com/information-sharing-networks/jws-demo/internal/api"
	"github.com/information-sharing-networks/jws-demo/internal/keys"
)

// HandleJWKS godoc
//
//	@Summary		Get JWK set
//	@Description	Returns the JWK set for this service.
//	@Description
//	@Description	Use this endpoint to retrieve the public keys needed to verify signatures from this service.
//	@Description
//	@Description	The JWK set in the response conforms to the [JWK specification](https://datatracker.ietf.org/doc/html/rfc7517).
//	@Description
//	@Description	Only the public halves of active RSA and ECDSA keys are published -
//	@Description	HMAC secrets are never included.
//	@Tags			Common
//
//	@Success		200	{object}	JWKSResponse	"JWK set"
//
//	@Router			/.well-known/jwks.json [get]
func HandleJWKS(store KeyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeKeys, err := store.ListActive(r.Context())
		if err != nil {
			api.RespondWithErrorResponse(w, r, err)
			return
		}

		var publishable []jwk.Key
		for _, key := range activeKeys {
			if keys.IsHMACAlgorithm(key.Algorithm) {
				continue
			}
			publicKey, err := key.PublicKey()
			if err != nil {
				api.RespondWithErrorResponse(w, r, api.WrapKeyError(err, "failed to load public key"))
				return
			}
			jwkKey, err := keys.PublicKeyToJWK(publicKey, key.Kid, key.Algorithm)
			if err != nil {
				api.RespondWithErrorResponse(w, r, api.WrapKeyError(err, "failed to convert public key to JWK"))
				return
			}
			publishable = append(publishable, jwkKey)
		}

		jwkSet, err := keys.BuildJWKSet(publishable...)
		if err != nil {
			api.RespondWithErrorResponse(w, r, api.WrapKeyError(err, "failed to build JWK set"))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(jwkSet); err != nil {
			http.Error(w, "Failed to encode JWK set", http.StatusInternalServerError)
			return
		}
	}
}

// JWKSResponse is used for swaggo documentation as swaggo doesn't support the jwk.Set interface type.
type JWKSResponse struct {
	Keys []map[string]any `json:"keys"`
}
