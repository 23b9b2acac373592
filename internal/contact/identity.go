package contact

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the server-generated portion of a ContactMessage. ReceivedAt is
// captured exactly once; the store formats it in a single place so the sort
// key and the persisted attribute cannot diverge.
type Identity struct {
	ID         string
	ReceivedAt time.Time
}

// NewIdentity generates a random 128-bit id and stamps the current UTC time.
// No external state is consulted, so concurrent calls never coordinate.
func NewIdentity() Identity {
	return Identity{
		ID:         uuid.NewString(),
		ReceivedAt: time.Now().UTC(),
	}
}
