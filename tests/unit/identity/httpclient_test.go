package identity_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storehub/authcore/internal/identity"
)

// providerStub serves the provider's verify and me endpoints with a
// scripted response.
func providerStub(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			require.NoError(t, json.NewEncoder(w).Encode(body))
		}
	}))
}

func TestValidateToken_Success(t *testing.T) {
	srv := providerStub(t, http.StatusOK, map[string]any{
		"identity": map[string]string{
			"id":    "u-1",
			"email": "jo@example.com",
			"role":  "store",
			"name":  "Jo",
		},
	})
	defer srv.Close()

	client := identity.NewHTTPClient(srv.URL)
	ident, err := client.ValidateToken(context.Background(), "tok")

	require.NoError(t, err)
	assert.Equal(t, "u-1", ident.ID)
	assert.Equal(t, identity.RoleStore, ident.Role)
}

func TestValidateToken_LegacyAccountTypeField(t *testing.T) {
	srv := providerStub(t, http.StatusOK, map[string]any{
		"identity": map[string]string{
			"id":           "u-2",
			"email":        "shop@example.com",
			"account_type": "store",
		},
	})
	defer srv.Close()

	client := identity.NewHTTPClient(srv.URL)
	ident, err := client.ValidateToken(context.Background(), "tok")

	require.NoError(t, err)
	assert.Equal(t, identity.RoleStore, ident.Role)
}

func TestValidateToken_Invalid(t *testing.T) {
	srv := providerStub(t, http.StatusUnauthorized, map[string]any{
		"error": map[string]string{"code": "token_invalid"},
	})
	defer srv.Close()

	client := identity.NewHTTPClient(srv.URL)
	_, err := client.ValidateToken(context.Background(), "bad")

	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	srv := providerStub(t, http.StatusUnauthorized, map[string]any{
		"error": map[string]string{"code": "token_expired"},
	})
	defer srv.Close()

	client := identity.NewHTTPClient(srv.URL)
	_, err := client.ValidateToken(context.Background(), "old")

	assert.ErrorIs(t, err, identity.ErrExpiredToken)
}

func TestValidateToken_ServerError(t *testing.T) {
	srv := providerStub(t, http.StatusInternalServerError, nil)
	defer srv.Close()

	client := identity.NewHTTPClient(srv.URL)
	_, err := client.ValidateToken(context.Background(), "tok")

	assert.ErrorIs(t, err, identity.ErrUnavailable)
}

func TestValidateToken_TransportFailure(t *testing.T) {
	srv := providerStub(t, http.StatusOK, nil)
	srv.Close() // connection refused from here on

	client := identity.NewHTTPClient(srv.URL)
	_, err := client.ValidateToken(context.Background(), "tok")

	assert.ErrorIs(t, err, identity.ErrUnavailable)
}

func TestValidateToken_UnknownRoleRejected(t *testing.T) {
	srv := providerStub(t, http.StatusOK, map[string]any{
		"identity": map[string]string{
			"id":    "u-3",
			"email": "x@example.com",
			"role":  "wizard",
		},
	})
	defer srv.Close()

	client := identity.NewHTTPClient(srv.URL)
	_, err := client.ValidateToken(context.Background(), "tok")

	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestCurrentIdentity_Anonymous(t *testing.T) {
	srv := providerStub(t, http.StatusUnauthorized, nil)
	defer srv.Close()

	client := identity.NewHTTPClient(srv.URL)
	ident, err := client.CurrentIdentity(context.Background())

	require.NoError(t, err)
	assert.Nil(t, ident)
}

func TestCurrentIdentity_Authenticated(t *testing.T) {
	srv := providerStub(t, http.StatusOK, map[string]string{
		"id":    "u-4",
		"email": "admin@example.com",
		"role":  "admin",
	})
	defer srv.Close()

	client := identity.NewHTTPClient(srv.URL, identity.WithSessionToken("sess"))
	ident, err := client.CurrentIdentity(context.Background())

	require.NoError(t, err)
	require.NotNil(t, ident)
	assert.Equal(t, identity.RoleAdmin, ident.Role)
}

func TestCurrentIdentity_ServerError(t *testing.T) {
	srv := providerStub(t, http.StatusBadGateway, nil)
	defer srv.Close()

	client := identity.NewHTTPClient(srv.URL)
	_, err := client.CurrentIdentity(context.Background())

	assert.ErrorIs(t, err, identity.ErrUnavailable)
}
