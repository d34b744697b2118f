package authn

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/storehub/authcore/internal/identity"
)

// ErrNilRequest is returned when Authenticate is handed a nil request.
// Unlike business-level auth failures, this is a programmer error.
var ErrNilRequest = errors.New("nil request")

// Authenticator resolves inbound requests to authentication outcomes.
// It holds no per-request state and is safe for concurrent use.
type Authenticator struct {
	provider   identity.Provider
	cookieName string
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) Option {
	return func(a *Authenticator) { a.cookieName = name }
}

// New creates an Authenticator backed by the given provider.
func New(provider identity.Provider, opts ...Option) *Authenticator {
	a := &Authenticator{
		provider:   provider,
		cookieName: SessionCookieName,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// legacySession is the JSON blob older storefront clients stored directly
// in the session cookie instead of a provider token.
type legacySession struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	AccountType string `json:"account_type"`
	Name        string `json:"name"`
}

// Authenticate extracts a credential and resolves it to an Outcome.
// Extraction order: Authorization bearer header, then the session cookie.
// Every business-level failure is expressed in the Outcome; the error
// return is reserved for structurally unusable input.
func (a *Authenticator) Authenticate(ctx context.Context, req Request) (Outcome, error) {
	if req == nil {
		return Outcome{}, ErrNilRequest
	}

	if token, ok := bearerToken(req.Header("Authorization")); ok {
		return a.validate(ctx, token), nil
	}

	raw, ok := req.Cookie(a.cookieName)
	if !ok {
		return Failed(FailureNoCredential), nil
	}

	// A cookie that looks like JSON is a legacy inline session; anything
	// else is an opaque provider token.
	if strings.HasPrefix(raw, "{") {
		return decodeLegacySession(raw), nil
	}

	return a.validate(ctx, raw), nil
}

// validate maps provider errors onto failure kinds.
func (a *Authenticator) validate(ctx context.Context, token string) Outcome {
	ident, err := a.provider.ValidateToken(ctx, token)
	switch {
	case err == nil:
		return Authenticated(ident)
	case errors.Is(err, identity.ErrExpiredToken):
		return Failed(FailureExpiredToken)
	case errors.Is(err, identity.ErrUnavailable):
		return Failed(FailureProviderUnavailable)
	default:
		return Failed(FailureInvalidToken)
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// decodeLegacySession parses an inline JSON session cookie.
func decodeLegacySession(raw string) Outcome {
	var sess legacySession
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return Failed(FailureMalformedSession)
	}

	rawRole := sess.Role
	if rawRole == "" {
		rawRole = sess.AccountType
	}

	role, err := identity.ParseRole(rawRole)
	if err != nil {
		return Failed(FailureMalformedSession)
	}

	if sess.ID == "" || sess.Email == "" {
		return Failed(FailureMalformedSession)
	}

	return Authenticated(&identity.Identity{
		ID:    sess.ID,
		Email: sess.Email,
		Role:  role,
		Name:  sess.Name,
	})
}
