package utils

import "strings"

// ValidationError represents a validation error on a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateEmail applies the waitlist form's email rule: non-blank, containing "@" and ".".
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return &ValidationError{Field: "email", Message: "Please enter a valid email address"}
	}
	return nil
}

// ValidateWaitlist checks a waitlist signup. Name is checked before email, like the form.
func ValidateWaitlist(name, email string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Message: "Name is required"}
	}
	return ValidateEmail(email)
}
