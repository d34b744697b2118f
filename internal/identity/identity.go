package identity

import (
	"fmt"
	"strings"
)

// Role classifies an identity for coarse-grained authorization.
type Role string

const (
	RoleUser  Role = "user"
	RoleStore Role = "store"
	RoleAdmin Role = "admin"
)

// Roles lists every valid role.
var Roles = []Role{RoleUser, RoleStore, RoleAdmin}

// ParseRole validates a raw role string. Legacy sessions use
// "account_type" with the same value set, so this accepts exactly
// the closed set and nothing else.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleStore, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Identity is a verified principal returned by the identity provider.
// Absence of an Identity means anonymous; Role is never empty on a
// constructed Identity.
type Identity struct {
	ID    string
	Email string
	Role  Role
	Name  string
}

// DisplayName returns the identity's name, falling back to the
// local-part of the email when no name was set.
func (i *Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	if at := strings.IndexByte(i.Email, '@'); at > 0 {
		return i.Email[:at]
	}
	return i.Email
}
