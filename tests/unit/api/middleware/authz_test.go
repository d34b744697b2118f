package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storehub/authcore/internal/api/middleware"
	"github.com/storehub/authcore/internal/audit"
	"github.com/storehub/authcore/internal/identity"
)

func roleRequest(t *testing.T, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestRequireRole_MatchingRoleAllowed(t *testing.T) {
	provider := &fakeProvider{identity: userIdentity(identity.RoleStore)}
	handler := chain(provider, audit.NewNopRecorder(), okHandler(),
		middleware.RequireRole(identity.RoleStore))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, roleRequest(t, "tok"))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_AdminOverride(t *testing.T) {
	provider := &fakeProvider{identity: userIdentity(identity.RoleAdmin)}
	handler := chain(provider, audit.NewNopRecorder(), okHandler(),
		middleware.RequireRole(identity.RoleStore))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, roleRequest(t, "tok"))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_WrongRoleForbidden(t *testing.T) {
	provider := &fakeProvider{identity: userIdentity(identity.RoleUser)}
	handler := chain(provider, audit.NewNopRecorder(), okHandler(),
		middleware.RequireRole(identity.RoleStore))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, roleRequest(t, "tok"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	env := parseEnvelope(t, w)
	assert.Equal(t, false, env["success"])
	assert.Equal(t, "Insufficient permissions", env["error"])
}

func TestRequireRole_UnauthenticatedGets401Not403(t *testing.T) {
	handler := chain(&fakeProvider{}, audit.NewNopRecorder(), okHandler(),
		middleware.RequireRole(identity.RoleAdmin))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, roleRequest(t, ""))

	assert.Equal(t, http.StatusUnauthorized, w.Code,
		"missing login and wrong role must stay distinguishable")
	env := parseEnvelope(t, w)
	assert.Equal(t, "Authentication required", env["error"])
}

func TestRequireRole_ProviderDownGets503(t *testing.T) {
	provider := &fakeProvider{err: identity.ErrUnavailable}
	handler := chain(provider, audit.NewNopRecorder(), okHandler(),
		middleware.RequireRole(identity.RoleAdmin))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, roleRequest(t, "tok"))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRequireAuthenticated_AnyRoleAllowed(t *testing.T) {
	for _, role := range identity.Roles {
		provider := &fakeProvider{identity: userIdentity(role)}
		handler := chain(provider, audit.NewNopRecorder(), okHandler(),
			middleware.RequireAuthenticated())
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, roleRequest(t, "tok"))

		assert.Equal(t, http.StatusOK, w.Code, "role %s", role)
	}
}
