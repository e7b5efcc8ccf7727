package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule names reported in ValidationError.Rule.
const (
	RuleRequired      = "required"
	RuleInvalidFormat = "invalid-format"
)

// ValidationError represents a single validation error for a field or key.
type ValidationError struct {
	Field   string // Field name (for UI mapping)
	Rule    string // Rule that was violated
	Message string // Human-readable message
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsZero reports whether e carries no error.
func (e ValidationError) IsZero() bool {
	return e.Rule == "" && e.Message == ""
}

// ValidationErrors accumulates the failures of one validation pass.
type ValidationErrors []ValidationError

// Check appends err unless it is the zero value.
func (e *ValidationErrors) Check(err ValidationError) {
	if !err.IsZero() {
		*e = append(*e, err)
	}
}

// emailShape is a minimal shape check, not RFC 5322.
var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsRequired checks if a string is not empty after trimming whitespace.
func IsRequired(value string) bool {
	return strings.TrimSpace(value) != ""
}

// IsEmailShape checks for "local@domain.tld" with no spaces or extra '@'.
func IsEmailShape(value string) bool {
	return emailShape.MatchString(value)
}

// RequiredString validates that a string field is not blank.
func RequiredString(field, value string) ValidationError {
	if !IsRequired(value) {
		return ValidationError{Field: field, Rule: RuleRequired, Message: "is required"}
	}
	return ValidationError{}
}

// Email validates a required email field: blank yields RuleRequired,
// a malformed address yields RuleInvalidFormat.
func Email(field, value string) ValidationError {
	if err := RequiredString(field, value); !err.IsZero() {
		return err
	}
	if !IsEmailShape(value) {
		return ValidationError{Field: field, Rule: RuleInvalidFormat, Message: "is not a valid email address"}
	}
	return ValidationError{}
}
