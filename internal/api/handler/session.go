package handler

import (
	"net/http"

	"github.com/storehub/authcore/internal/api/middleware"
	"github.com/storehub/authcore/internal/api/response"
	"github.com/storehub/authcore/internal/authn"
)

// SessionHandler exposes the current session to storefront clients.
type SessionHandler struct{}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

type sessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}

type sessionData struct {
	Authenticated bool         `json:"authenticated"`
	User          *sessionUser `json:"user"`
	Failure       string       `json:"failure,omitempty"`
}

// Get reports the authentication outcome for the caller's credential.
// Anonymous callers get a 200 with authenticated:false; this endpoint
// never demands a login.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	outcome := middleware.GetOutcome(r.Context())

	data := sessionData{Authenticated: outcome.Authenticated}
	if outcome.Authenticated {
		data.User = &sessionUser{
			ID:    outcome.Identity.ID,
			Email: outcome.Identity.Email,
			Role:  string(outcome.Identity.Role),
			Name:  outcome.Identity.DisplayName(),
		}
	} else {
		data.Failure = string(outcome.Failure)
	}

	response.Success(w, http.StatusOK, data, requestID)
}

// Delete clears the session cookie. The provider invalidates the session
// server-side on its own schedule; clearing the cookie is what logs the
// browser out.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authn.ClearSessionCookie(w)
	response.NoContent(w)
}

// Me returns the authenticated identity. Mounted behind RequireAuth, so
// the outcome always carries an identity here.
func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	outcome := middleware.GetOutcome(r.Context())

	response.Success(w, http.StatusOK, &sessionUser{
		ID:    outcome.Identity.ID,
		Email: outcome.Identity.Email,
		Role:  string(outcome.Identity.Role),
		Name:  outcome.Identity.DisplayName(),
	}, requestID)
}
