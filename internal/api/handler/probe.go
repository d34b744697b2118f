package handler

import (
	"net/http"

	"github.com/storehub/authcore/internal/api/middleware"
	"github.com/storehub/authcore/internal/api/response"
)

// ProbeHandler serves the role-gated ping endpoints the storefront shell
// uses to decide which navigation to render.
type ProbeHandler struct {
	area string
}

// NewProbeHandler creates a probe for the named area ("admin", "store").
func NewProbeHandler(area string) *ProbeHandler {
	return &ProbeHandler{area: area}
}

type probeData struct {
	Area string `json:"area"`
	Role string `json:"role"`
}

// ServeHTTP confirms the caller may access the area.
func (h *ProbeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	outcome := middleware.GetOutcome(r.Context())

	response.Success(w, http.StatusOK, probeData{
		Area: h.area,
		Role: string(outcome.Identity.Role),
	}, requestID)
}
