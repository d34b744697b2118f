package authn

import "net/http"

// Request is the minimal capability an inbound request must expose to be
// authenticated. Any framework's request type can be adapted to it; the
// authenticator never sees a request body.
type Request interface {
	// Header returns the first value of the named header, or "".
	Header(name string) string

	// Cookie returns the named cookie's value and whether it was present.
	Cookie(name string) (string, bool)
}

// httpRequest adapts a *net/http.Request to the Request capability.
type httpRequest struct {
	r *http.Request
}

// FromHTTP adapts a standard library request.
func FromHTTP(r *http.Request) Request {
	return httpRequest{r: r}
}

func (h httpRequest) Header(name string) string {
	return h.r.Header.Get(name)
}

func (h httpRequest) Cookie(name string) (string, bool) {
	c, err := h.r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
