package authn

import "github.com/storehub/authcore/internal/identity"

// FailureKind classifies why an authentication attempt did not produce
// an identity.
type FailureKind string

const (
	// FailureNoCredential means no token or cookie was presented.
	// This is the normal anonymous case, not an error.
	FailureNoCredential FailureKind = "no_credential"

	// FailureInvalidToken means a credential was presented but rejected.
	FailureInvalidToken FailureKind = "invalid_token"

	// FailureExpiredToken means the credential was valid in shape but past expiry.
	FailureExpiredToken FailureKind = "expired_token"

	// FailureProviderUnavailable means the provider could not be reached.
	// The only retryable kind.
	FailureProviderUnavailable FailureKind = "provider_unavailable"

	// FailureMalformedSession means the session cookie could not be decoded.
	FailureMalformedSession FailureKind = "malformed_session"
)

// Retryable reports whether a failed attempt with this kind may succeed
// on retry without the user re-authenticating.
func (k FailureKind) Retryable() bool {
	return k == FailureProviderUnavailable
}

// Outcome is the result of one authentication attempt. Constructed fresh
// per request, never mutated, never persisted.
type Outcome struct {
	Authenticated bool
	Identity      *identity.Identity // set iff Authenticated
	Failure       FailureKind        // set iff !Authenticated
}

// Authenticated builds a successful outcome.
func Authenticated(ident *identity.Identity) Outcome {
	return Outcome{Authenticated: true, Identity: ident}
}

// Failed builds an unauthenticated outcome with the given kind.
func Failed(kind FailureKind) Outcome {
	return Outcome{Authenticated: false, Failure: kind}
}
