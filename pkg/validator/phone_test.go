package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPhoneValidator(t *testing.T) {
	validator := NewPhoneValidator()
	assert.NotNil(t, validator)
}

func TestNormalize(t *testing.T) {
	validator := NewPhoneValidator()

	tests := []struct {
		input    string
		expected string
		name     string
	}{
		{"919876543210", "919876543210", "Already clean"},
		{"+91 98765 43210", "919876543210", "With plus and spaces"},
		{"91-98765-43210", "919876543210", "With dashes"},
		{"(91) 98765 43210", "919876543210", "With parentheses"},
		{"91.98765.43210", "919876543210", "With dots"},
		{"  +91 98765-43210  ", "919876543210", "Mixed separators"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, validator.Normalize(tc.input))
		})
	}
}

func TestValidate_ValidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	validNumbers := []struct {
		input    string
		expected string
		name     string
	}{
		{"919876543210", "919876543210", "Full international"},
		{"+91 98765 43210", "919876543210", "With country code and plus"},
		{"98765432", "98765432", "Minimum length"},
		{"987654321012345", "987654321012345", "Maximum length"},
	}

	for _, tc := range validNumbers {
		t.Run(tc.name, func(t *testing.T) {
			sanitized, err := validator.Validate(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sanitized)
		})
	}
}

func TestValidate_InvalidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	invalidNumbers := []struct {
		input       string
		expectedErr error
		name        string
	}{
		{"", ErrEmptyPhone, "Empty string"},
		{"12345", ErrInvalidLength, "Too short"},
		{"9876543210123456", ErrInvalidLength, "Too long"},
		{"98765abc43210", ErrInvalidFormat, "Contains letters"},
		{"98765!43210", ErrInvalidFormat, "Contains special characters"},
		{"     ", ErrInvalidFormat, "Only spaces"},
	}

	for _, tc := range invalidNumbers {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.Validate(tc.input)
			assert.Error(t, err)
			assert.Equal(t, tc.expectedErr, err)
		})
	}
}

func TestNormalize_SameSender(t *testing.T) {
	validator := NewPhoneValidator()

	// The webhook and the operator config may carry the same number in
	// different formats; they must collapse to one identity key.
	forms := []string{
		"919876543210",
		"+919876543210",
		"+91 98765 43210",
		"91-98765-43210",
	}

	for _, form := range forms[1:] {
		assert.Equal(t, validator.Normalize(forms[0]), validator.Normalize(form))
	}
}
