package authz

import (
	"github.com/storehub/authcore/internal/authn"
	"github.com/storehub/authcore/internal/identity"
)

// Reason explains a denial.
type Reason string

const (
	ReasonUnauthenticated  Reason = "unauthenticated"
	ReasonInsufficientRole Reason = "insufficient_role"
	ReasonMissingScope     Reason = "missing_scope"
)

// Decision is the result of an authorization check.
type Decision struct {
	Allowed bool
	Reason  Reason // empty when Allowed
}

// Allow is the positive decision.
var Allow = Decision{Allowed: true}

// Deny builds a negative decision with the given reason.
func Deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Authorize decides whether the outcome's identity satisfies requiredRole.
// A nil requiredRole means any authenticated identity suffices. Admin is
// a universal override for every role requirement.
func Authorize(outcome authn.Outcome, requiredRole *identity.Role) Decision {
	if !outcome.Authenticated || outcome.Identity == nil {
		return Deny(ReasonUnauthenticated)
	}

	if requiredRole == nil {
		return Allow
	}

	role := outcome.Identity.Role
	if role == *requiredRole || role == identity.RoleAdmin {
		return Allow
	}

	return Deny(ReasonInsufficientRole)
}

// AuthorizeScopes decides whether a granted permission list covers every
// required permission string. This is an independent layer from the role
// check; routes that need both compose the two decisions.
func AuthorizeScopes(granted, required []string) Decision {
	if len(required) == 0 {
		return Allow
	}

	have := make(map[string]bool, len(granted))
	for _, g := range granted {
		have[g] = true
	}

	for _, want := range required {
		if !have[want] {
			return Deny(ReasonMissingScope)
		}
	}

	return Allow
}
