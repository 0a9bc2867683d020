// Package common defines shared constants and sentinel errors used across
// client and server layers of patrimonio. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrValidation     = errors.New("validation error")

	// Token errors. All of them degrade to "no identity" at the gate.
	ErrMalformedToken   = errors.New("malformed token")
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired     = errors.New("token expired")
	ErrSubjectMismatch  = errors.New("token subject mismatch")

	// Credential directory miss.
	ErrPrincipalNotFound = errors.New("principal not found")

	// The authenticated principal does not own the targeted resource.
	ErrOwnershipViolation = errors.New("ownership violation")

	// Exports need object storage to be configured.
	ErrExportsDisabled = errors.New("exports are disabled")
)
