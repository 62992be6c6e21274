// Package validator provides input validation for Vietnamese phone numbers,
// the public key used for unauthenticated ticket lookup.
package validator

import (
	"errors"
	"regexp"
	"strings"
)

// Validation errors
var (
	ErrEmptyPhone    = errors.New("phone number is empty")
	ErrInvalidFormat = errors.New("phone number contains invalid characters")
	ErrInvalidLength = errors.New("phone number has invalid length")
	ErrInvalidPrefix = errors.New("phone number has invalid prefix")
)

// Vietnamese mobile prefixes after the leading zero
var validPrefixes = []string{"03", "05", "07", "08", "09"}

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// PhoneValidator validates and normalizes Vietnamese mobile numbers
type PhoneValidator struct{}

// NewPhoneValidator creates a new phone validator
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{}
}

// Sanitize strips common formatting characters without validating
func (v *PhoneValidator) Sanitize(phone string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "", "+", "+")
	return replacer.Replace(strings.TrimSpace(phone))
}

// Validate normalizes a phone number to local 0xxxxxxxxx form and checks it
// against the Vietnamese mobile numbering plan.
func (v *PhoneValidator) Validate(phone string) (string, error) {
	sanitized := v.Sanitize(phone)
	if sanitized == "" {
		return "", ErrEmptyPhone
	}

	// Convert +84 / 84 country-code form to local form
	sanitized = strings.TrimPrefix(sanitized, "+")
	if strings.HasPrefix(sanitized, "84") && len(sanitized) == 11 {
		sanitized = "0" + sanitized[2:]
	}

	if !digitsOnly.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}

	if len(sanitized) != 10 {
		return "", ErrInvalidLength
	}

	if sanitized[0] != '0' {
		return "", ErrInvalidPrefix
	}

	prefix := sanitized[:2]
	for _, p := range validPrefixes {
		if prefix == p {
			return sanitized, nil
		}
	}

	return "", ErrInvalidPrefix
}
