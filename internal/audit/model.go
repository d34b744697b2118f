package audit

import (
	"time"

	"github.com/google/uuid"
)

// Event is one recorded authentication attempt. Only attempts that
// carried a credential are recorded; anonymous traffic is normal and
// stays out of the log.
type Event struct {
	ID         uuid.UUID
	RequestID  string
	Path       string
	Outcome    string  // "ok" or an authn failure kind
	IdentityID *string // set for successful attempts
	CreatedAt  time.Time
}
