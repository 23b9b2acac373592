package contact

import (
	"fmt"
	"strings"
)

const (
	maxNameLength    = 256
	maxEmailLength   = 256
	maxSubjectLength = 256
	maxMessageLength = 2000
)

// FieldError describes one failing submission field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError reports every failing field of a submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return fmt.Sprintf("invalid submission: %s", strings.Join(names, ", "))
}

// Validate checks a decoded submission in place, trimming surrounding
// whitespace from every field first. It returns nil or a *ValidationError
// listing all failing fields. Deterministic, no side effects beyond the trim.
func (s *Submission) Validate() error {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Subject = strings.TrimSpace(s.Subject)
	s.Message = strings.TrimSpace(s.Message)

	var fields []FieldError

	switch {
	case s.Name == "":
		fields = append(fields, FieldError{Field: "name", Reason: "required"})
	case len(s.Name) > maxNameLength:
		fields = append(fields, FieldError{Field: "name", Reason: "too long"})
	}

	switch {
	case s.Email == "":
		fields = append(fields, FieldError{Field: "email", Reason: "required"})
	case len(s.Email) > maxEmailLength:
		fields = append(fields, FieldError{Field: "email", Reason: "too long"})
	case !validEmail(s.Email):
		fields = append(fields, FieldError{Field: "email", Reason: "not a valid address"})
	}

	// Subject is optional; the original form sends it but the API does not
	// require it.
	if len(s.Subject) > maxSubjectLength {
		fields = append(fields, FieldError{Field: "subject", Reason: "too long"})
	}

	switch {
	case s.Message == "":
		fields = append(fields, FieldError{Field: "message", Reason: "required"})
	case len(s.Message) > maxMessageLength:
		fields = append(fields, FieldError{Field: "message", Reason: "too long"})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// validEmail checks the basic shape only: exactly one @ with non-empty local
// and domain parts. Deliverability is the mail provider's problem.
func validEmail(addr string) bool {
	local, domain, ok := strings.Cut(addr, "@")
	if !ok || local == "" || domain == "" {
		return false
	}
	return !strings.Contains(domain, "@")
}
