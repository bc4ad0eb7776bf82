package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")

	// ErrInvalidFormat indicates phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits")

	// ErrInvalidLength indicates phone number is too short or too long
	ErrInvalidLength = errors.New("phone number must be between 8 and 15 digits")
)

// phoneRegex matches digits only
var phoneRegex = regexp.MustCompile(`^\d+$`)

// PhoneValidator normalizes and validates phone numbers used as sender
// identity keys for inbound message classification.
type PhoneValidator struct{}

// NewPhoneValidator creates a new phone validator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{}
}

// Normalize removes all non-digit separators from a phone number.
// Accepts formats like "+91 98765 43210", "(091) 98765-43210" or "919876543210"
// and returns the digits-only form. Two numbers that normalize to the same
// string are the same sender.
func (v *PhoneValidator) Normalize(phone string) string {
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")
	phone = strings.ReplaceAll(phone, "(", "")
	phone = strings.ReplaceAll(phone, ")", "")
	phone = strings.ReplaceAll(phone, "+", "")
	phone = strings.ReplaceAll(phone, ".", "")
	return phone
}

// Validate normalizes a phone number and checks it is a plausible subscriber
// number. Returns the normalized phone and an error if invalid.
func (v *PhoneValidator) Validate(phone string) (string, error) {
	if phone == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.Normalize(phone)

	if !phoneRegex.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}

	if len(sanitized) < 8 || len(sanitized) > 15 {
		return "", ErrInvalidLength
	}

	return sanitized, nil
}
