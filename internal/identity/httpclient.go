package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient is a Provider backed by the identity provider's REST API.
type HTTPClient struct {
	baseURL      string
	sessionToken string
	httpClient   *http.Client
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(h *HTTPClient) { h.httpClient = c }
}

// WithSessionToken sets the ambient session token used by CurrentIdentity.
func WithSessionToken(token string) ClientOption {
	return func(h *HTTPClient) { h.sessionToken = token }
}

// WithTimeout sets the request timeout on the default http.Client.
func WithTimeout(d time.Duration) ClientOption {
	return func(h *HTTPClient) { h.httpClient.Timeout = d }
}

// NewHTTPClient creates a Provider that talks to the identity provider
// at baseURL.
func NewHTTPClient(baseURL string, opts ...ClientOption) *HTTPClient {
	h := &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// identityPayload is the provider's wire representation of a principal.
// Older provider versions send account_type instead of role.
type identityPayload struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	AccountType string `json:"account_type"`
	Name        string `json:"name"`
}

type verifyResponse struct {
	Identity *identityPayload `json:"identity"`
	Error    struct {
		Code string `json:"code"`
	} `json:"error"`
}

// ValidateToken calls POST /v1/tokens/verify and maps provider rejections
// to the package sentinel errors.
func (h *HTTPClient) ValidateToken(ctx context.Context, token string) (*Identity, error) {
	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return nil, fmt.Errorf("encoding verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/v1/tokens/verify", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var vr verifyResponse
		if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
			return nil, fmt.Errorf("decoding verify response: %w", err)
		}
		return identityFromPayload(vr.Identity)
	case resp.StatusCode == http.StatusUnauthorized:
		var vr verifyResponse
		if err := json.NewDecoder(resp.Body).Decode(&vr); err == nil && vr.Error.Code == "token_expired" {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: provider returned %d", ErrUnavailable, resp.StatusCode)
	default:
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: unexpected status %d", ErrInvalidToken, resp.StatusCode)
	}
}

// CurrentIdentity calls GET /v1/me with the ambient session token.
// A 401 means anonymous, which is a normal (nil, nil) outcome.
func (h *HTTPClient) CurrentIdentity(ctx context.Context) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/v1/me", nil)
	if err != nil {
		return nil, fmt.Errorf("building me request: %w", err)
	}
	if h.sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+h.sessionToken)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var payload identityPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decoding me response: %w", err)
		}
		return identityFromPayload(&payload)
	case resp.StatusCode == http.StatusUnauthorized:
		io.Copy(io.Discard, resp.Body)
		return nil, nil
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: provider returned %d", ErrUnavailable, resp.StatusCode)
	default:
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: unexpected status %d", ErrInvalidToken, resp.StatusCode)
	}
}

// identityFromPayload normalizes the wire form, preferring role over the
// legacy account_type field.
func identityFromPayload(p *identityPayload) (*Identity, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: provider returned no identity", ErrInvalidToken)
	}

	raw := p.Role
	if raw == "" {
		raw = p.AccountType
	}

	role, err := ParseRole(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return &Identity{
		ID:    p.ID,
		Email: p.Email,
		Role:  role,
		Name:  p.Name,
	}, nil
}
