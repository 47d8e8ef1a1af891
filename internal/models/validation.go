package models

import (
	"regexp"
	"strings"
)

// Email validation regex pattern
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// SanitizeString removes extra whitespace and trims the string
func SanitizeString(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// ValidateAmount validates that an amount, when present, is decimal text
func ValidateAmount(value Amount, fieldName string) error {
	if !value.Valid() {
		return &ValidationError{
			Field:   fieldName,
			Message: fieldName + " must be a decimal number",
			Value:   value.String(),
		}
	}
	return nil
}
