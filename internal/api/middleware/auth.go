package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/storehub/authcore/internal/api/response"
	"github.com/storehub/authcore/internal/audit"
	"github.com/storehub/authcore/internal/authn"
)

const outcomeKey contextKey = "authOutcome"

// Authenticate is middleware that resolves the request's credential to an
// authn.Outcome, records it for telemetry, and stores it in the request
// context. It never rejects by itself; RequireAuth and RequireRole decide.
func Authenticate(authenticator *authn.Authenticator, recorder audit.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			outcome, err := authenticator.Authenticate(r.Context(), authn.FromHTTP(r))
			if err != nil {
				response.Err(w, http.StatusInternalServerError, "Authentication failed", requestID)
				return
			}

			recordOutcome(r, recorder, requestID, outcome)

			ctx := context.WithValue(r.Context(), outcomeKey, outcome)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetOutcome retrieves the authentication outcome from the request context.
// Absent middleware, it reports an anonymous outcome.
func GetOutcome(ctx context.Context) authn.Outcome {
	if o, ok := ctx.Value(outcomeKey).(authn.Outcome); ok {
		return o
	}
	return authn.Failed(authn.FailureNoCredential)
}

// RequireAuth rejects unauthenticated requests. Missing or bad credentials
// get 401; a provider outage gets 503 so clients know to retry rather than
// re-login.
func RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			outcome := GetOutcome(r.Context())
			if !outcome.Authenticated {
				if outcome.Failure == authn.FailureProviderUnavailable {
					response.Err(w, http.StatusServiceUnavailable, "Authentication service unavailable", requestID)
					return
				}
				response.Err(w, http.StatusUnauthorized, "Authentication required", requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// recordOutcome writes an audit event. Anonymous traffic is not recorded,
// and recorder failures never reach the request path.
func recordOutcome(r *http.Request, recorder audit.Recorder, requestID string, outcome authn.Outcome) {
	if !outcome.Authenticated && outcome.Failure == authn.FailureNoCredential {
		return
	}

	e := audit.Event{
		RequestID: requestID,
		Path:      r.URL.Path,
		Outcome:   "ok",
	}
	if outcome.Authenticated {
		id := outcome.Identity.ID
		e.IdentityID = &id
	} else {
		e.Outcome = string(outcome.Failure)
	}

	if err := recorder.Record(r.Context(), e); err != nil {
		slog.Warn("failed to record auth event", "error", err, "requestId", requestID)
	}
}
