package redirect

import (
	"strings"

	"github.com/storehub/authcore/internal/identity"
)

// Role-specific landing routes used when login carries no explicit
// redirect parameter.
const (
	AdminLanding = "/admin"
	StoreLanding = "/store/dashboard"
	UserLanding  = "/account"
)

// TargetRoute resolves where a freshly logged-in user should land.
// An explicit redirect parameter wins when it is a safe relative path;
// absolute and scheme-relative values are rejected to keep the login
// flow from becoming an open redirect.
func TargetRoute(redirectParam string, role identity.Role) string {
	if isSafeRelative(redirectParam) {
		return redirectParam
	}

	switch role {
	case identity.RoleAdmin:
		return AdminLanding
	case identity.RoleStore:
		return StoreLanding
	default:
		return UserLanding
	}
}

func isSafeRelative(p string) bool {
	if p == "" || !strings.HasPrefix(p, "/") {
		return false
	}
	// "//host" and "/\host" are treated as absolute by browsers.
	if strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return false
	}
	return true
}
