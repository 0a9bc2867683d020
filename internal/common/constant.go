// Package common contains shared constants and sentinel errors used across
// patrimonio components.
package common

// AuthorizationHeaderName is the HTTP header (and gRPC metadata key, lowercased)
// carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token inside the Authorization header value.
const BearerPrefix = "Bearer "
