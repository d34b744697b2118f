package middleware

import (
	"net/http"

	"github.com/storehub/authcore/internal/api/response"
	"github.com/storehub/authcore/internal/authn"
	"github.com/storehub/authcore/internal/authz"
	"github.com/storehub/authcore/internal/identity"
)

// RequireRole returns middleware that enforces a role requirement on the
// request's authentication outcome. Admins pass every requirement.
// Unauthenticated requests get 401; authenticated requests with the wrong
// role get 403 — the two are never conflated.
func RequireRole(role identity.Role) func(http.Handler) http.Handler {
	return requireDecision(&role)
}

// RequireAuthenticated enforces that some verified identity is present,
// with no role requirement.
func RequireAuthenticated() func(http.Handler) http.Handler {
	return requireDecision(nil)
}

func requireDecision(role *identity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			outcome := GetOutcome(r.Context())
			decision := authz.Authorize(outcome, role)
			if !decision.Allowed {
				writeDenial(w, requestID, outcome, decision)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeDenial(w http.ResponseWriter, requestID string, outcome authn.Outcome, decision authz.Decision) {
	if decision.Reason == authz.ReasonUnauthenticated {
		if outcome.Failure == authn.FailureProviderUnavailable {
			response.Err(w, http.StatusServiceUnavailable, "Authentication service unavailable", requestID)
			return
		}
		response.Err(w, http.StatusUnauthorized, "Authentication required", requestID)
		return
	}
	response.Err(w, http.StatusForbidden, "Insufficient permissions", requestID)
}
