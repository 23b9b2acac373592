package contact

import (
	"errors"
	"strings"
	"testing"
)

func validSubmission() *Submission {
	return &Submission{
		Name:    "Jane",
		Email:   "jane@example.com",
		Subject: "Hello",
		Message: "Hello there",
	}
}

func TestValidate_Valid(t *testing.T) {
	sub := validSubmission()
	if err := sub.Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_TrimsWhitespace(t *testing.T) {
	sub := &Submission{
		Name:    "  Jane\n",
		Email:   " jane@example.com ",
		Message: "\tHello ",
	}
	if err := sub.Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
	if sub.Name != "Jane" {
		t.Errorf("Name = %q, want %q", sub.Name, "Jane")
	}
	if sub.Email != "jane@example.com" {
		t.Errorf("Email = %q, want %q", sub.Email, "jane@example.com")
	}
	if sub.Message != "Hello" {
		t.Errorf("Message = %q, want %q", sub.Message, "Hello")
	}
}

func TestValidate_SubjectOptional(t *testing.T) {
	sub := validSubmission()
	sub.Subject = ""
	if err := sub.Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Submission)
		wantField string
	}{
		{"missing name", func(s *Submission) { s.Name = "" }, "name"},
		{"whitespace name", func(s *Submission) { s.Name = "   " }, "name"},
		{"name too long", func(s *Submission) { s.Name = strings.Repeat("a", maxNameLength+1) }, "name"},
		{"missing email", func(s *Submission) { s.Email = "" }, "email"},
		{"email without at", func(s *Submission) { s.Email = "not-an-email" }, "email"},
		{"email empty local part", func(s *Submission) { s.Email = "@example.com" }, "email"},
		{"email empty domain", func(s *Submission) { s.Email = "jane@" }, "email"},
		{"email two ats", func(s *Submission) { s.Email = "jane@foo@example.com" }, "email"},
		{"email too long", func(s *Submission) { s.Email = strings.Repeat("a", maxEmailLength) + "@example.com" }, "email"},
		{"subject too long", func(s *Submission) { s.Subject = strings.Repeat("s", maxSubjectLength+1) }, "subject"},
		{"missing message", func(s *Submission) { s.Message = "" }, "message"},
		{"whitespace message", func(s *Submission) { s.Message = " \n\t " }, "message"},
		{"message too long", func(s *Submission) { s.Message = strings.Repeat("m", maxMessageLength+1) }, "message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubmission()
			tt.mutate(sub)

			err := sub.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want *ValidationError", err)
			}

			found := false
			for _, f := range verr.Fields {
				if f.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("Fields = %v, want an entry for %q", verr.Fields, tt.wantField)
			}
		})
	}
}

func TestValidate_ReportsAllFailingFields(t *testing.T) {
	sub := &Submission{}
	err := sub.Validate()

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() error = %v, want *ValidationError", err)
	}
	if len(verr.Fields) != 3 {
		t.Errorf("len(Fields) = %d, want 3 (name, email, message)", len(verr.Fields))
	}
}

func TestValidate_Deterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		sub := validSubmission()
		sub.Email = "broken"
		if err := sub.Validate(); err == nil {
			t.Fatal("Validate() = nil, want error on every call")
		}
	}
}
