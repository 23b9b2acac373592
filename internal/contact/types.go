// Package contact defines the contact-form submission domain: payload
// parsing, validation, identity generation, and the DynamoDB message store.
package contact

import (
	"errors"
	"time"
)

// ErrMalformedPayload indicates a request body that could not be decoded at
// all, as opposed to one that decoded but failed field validation.
var ErrMalformedPayload = errors.New("malformed request payload")

// ErrDuplicateMessage indicates the store rejected an insert because a record
// with the same id already exists. Ids are freshly generated per request, so
// this is never expected under correct operation.
var ErrDuplicateMessage = errors.New("duplicate contact message")

// Submission is a decoded contact-form payload before validation.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ContactMessage is the persisted representation of an accepted submission.
// A message is written exactly once and never updated.
type ContactMessage struct {
	ID         string
	ReceivedAt time.Time
	Name       string
	Email      string
	Subject    string
	Message    string
}

// NewContactMessage binds a validated submission to a fresh identity.
func NewContactMessage(sub *Submission, id Identity) *ContactMessage {
	return &ContactMessage{
		ID:         id.ID,
		ReceivedAt: id.ReceivedAt,
		Name:       sub.Name,
		Email:      sub.Email,
		Subject:    sub.Subject,
		Message:    sub.Message,
	}
}
