package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	validNumbers := []struct {
		input    string
		expected string
		name     string
	}{
		{"0912345678", "0912345678", "Standard format"},
		{"091 234 5678", "0912345678", "With spaces"},
		{"091-234-5678", "0912345678", "With dashes"},
		{"091.234.5678", "0912345678", "With dots"},
		{"(091) 234 5678", "0912345678", "With parentheses"},
		{"0351234567", "0351234567", "Viettel 035"},
		{"0561234567", "0561234567", "Vietnamobile 056"},
		{"0701234567", "0701234567", "MobiFone 070"},
		{"0812345678", "0812345678", "Vinaphone 081"},
		{"+84912345678", "0912345678", "With +84 country code"},
		{"84912345678", "0912345678", "With bare country code"},
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
		{"   ", ErrEmptyPhone, "Whitespace only"},
		{"123", ErrInvalidLength, "Too short"},
		{"09123456789", ErrInvalidLength, "Too long"},
		{"0112345678", ErrInvalidPrefix, "Invalid prefix 01"},
		{"0212345678", ErrInvalidPrefix, "Landline prefix 02"},
		{"0412345678", ErrInvalidPrefix, "Invalid prefix 04"},
		{"0612345678", ErrInvalidPrefix, "Invalid prefix 06"},
		{"091234567a", ErrInvalidFormat, "Contains letters"},
		{"091 234 567!", ErrInvalidFormat, "Contains special characters"},
		{"9123456789", ErrInvalidPrefix, "Missing leading zero"},
	}

	for _, tc := range invalidNumbers {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.Validate(tc.input)
			assert.Error(t, err)
			assert.Equal(t, tc.expectedErr, err)
		})
	}
}

func TestSanitize(t *testing.T) {
	validator := NewPhoneValidator()

	tests := []struct {
		input    string
		expected string
	}{
		{" 091 234-5678 ", "0912345678"},
		{"(091).234.5678", "0912345678"},
		{"+84 91 234 5678", "+84912345678"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, validator.Sanitize(tc.input))
	}
}
