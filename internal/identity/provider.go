package identity

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned when the provider rejects a credential as unusable.
var ErrInvalidToken = errors.New("invalid token")

// ErrExpiredToken is returned when the provider rejects a credential as expired.
// Kept distinct from ErrInvalidToken for telemetry; callers treat both as final.
var ErrExpiredToken = errors.New("expired token")

// ErrUnavailable is returned on transport or provider-side failure.
// It is the only retryable provider error.
var ErrUnavailable = errors.New("identity provider unavailable")

// Provider is the external identity provider consumed by this subsystem.
// It validates credentials and reports the current identity; credential
// storage and token issuance are entirely its concern.
type Provider interface {
	// ValidateToken resolves a bearer token or session token to an Identity.
	ValidateToken(ctx context.Context, token string) (*Identity, error)

	// CurrentIdentity reports the identity bound to the ambient session,
	// or (nil, nil) when the session is anonymous. Anonymous is a normal
	// outcome, not an error.
	CurrentIdentity(ctx context.Context) (*Identity, error)
}
