// Package validate collects field-level input errors before a write.
package validate

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/zapponejosh/inzalo-api/internal/calendar"
	"github.com/zapponejosh/inzalo-api/internal/slug"
)

// FieldError describes one invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned by Validator.Err when any rule failed.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator accumulates failures through chained rule calls.
// Not safe for concurrent use; create one per request.
type Validator struct {
	errs []FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the rune count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// Email fails if the value is not a valid address.
func (v *Validator) Email(field, value string) *Validator {
	if _, err := mail.ParseAddress(value); err != nil {
		v.add(field, "Must be a valid email address")
	}
	return v
}

// Date fails unless value is a YYYY-MM-DD civil date.
func (v *Validator) Date(field, value string) *Validator {
	if _, err := calendar.ParseDateString(value); err != nil {
		v.add(field, "Must be a date in YYYY-MM-DD format")
	}
	return v
}

// Slug fails if value is not already a URL slug.
func (v *Validator) Slug(field, value string) *Validator {
	if !slug.Valid(value) {
		v.add(field, "Must be a URL slug (lowercase letters, digits, hyphens)")
	}
	return v
}

// OneOf fails if value is not in allowed.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, "Must be one of: "+strings.Join(allowed, ", "))
	return v
}

// Custom records message when failed is true.
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns an *Error if any rule failed, otherwise nil.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return &Error{Fields: v.errs}
}

func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: message})
}
