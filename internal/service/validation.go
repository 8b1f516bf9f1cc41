package service

import (
	"net/mail"
	"strings"

	apperrors "github.com/cleantownship/cleantown-service/pkg/util"
)

// MinPasswordLength is the shortest password accepted at login and registration.
const MinPasswordLength = 8

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// fieldErrors maps a form field to its first validation message.
type fieldErrors map[string]any

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f fieldErrors) err(message string) error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.NewValidationError(message, map[string]any(f))
}

func validateEmail(errs fieldErrors, email string) {
	if strings.TrimSpace(email) == "" {
		errs.add("email", "Email Address is Required")
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		errs.add("email", "Please enter a valid email")
	}
}

func validatePassword(errs fieldErrors, password string) {
	if password == "" {
		errs.add("password", "Password is required")
		return
	}
	if len([]rune(password)) < MinPasswordLength {
		errs.add("password", "Password must be at least 8 characters")
		return
	}
	if len(password) > MaxPasswordBytes {
		errs.add("password", "Password must be at most 72 bytes")
	}
}

// ValidateCredentials checks the login and registration form fields.
func ValidateCredentials(email, password string) error {
	errs := fieldErrors{}
	validateEmail(errs, email)
	validatePassword(errs, password)
	return errs.err("invalid credentials form")
}
