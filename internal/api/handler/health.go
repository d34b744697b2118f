package handler

import (
	"net/http"

	"github.com/storehub/authcore/internal/api/middleware"
	"github.com/storehub/authcore/internal/api/response"
	"github.com/storehub/authcore/internal/identity"
	"github.com/storehub/authcore/internal/verify"
)

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	provider identity.Provider
	version  string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(provider identity.Provider, version string) *HealthHandler {
	return &HealthHandler{
		provider: provider,
		version:  version,
	}
}

type providerStatus struct {
	Reachable bool `json:"reachable"`
}

type healthData struct {
	Status   string         `json:"status"`
	Version  string         `json:"version"`
	Provider providerStatus `json:"provider"`
}

// ServeHTTP handles the health check request. The service is degraded,
// not down, when the identity provider is unreachable: cached and legacy
// sessions still authenticate.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	// A single non-retrying probe; health checks should stay cheap.
	v := verify.New(h.provider, verify.WithMaxRetries(1))
	res := v.Verify(r.Context())

	status := "healthy"
	reachable := res.Err == nil
	if !reachable {
		status = "degraded"
	}

	data := healthData{
		Status:   status,
		Version:  h.version,
		Provider: providerStatus{Reachable: reachable},
	}

	response.Success(w, http.StatusOK, data, requestID)
}
