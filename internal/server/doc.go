// Package server provides the HTTP server for the JWS demo signing service.
//
// the server is configured through environment variables
// (see internal/config/config.go for details)
//
// The package includes the handlers for
//   - the signing API (/v1/sign, /v1/verify)
//   - common infrastructure handlers (health, version, jwks)
//   - the admin API for managing signing keys.
//
// middleware is in internal/server/middleware
package server
