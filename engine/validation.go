package engine

import (
	"fmt"
	"strings"

	"github.com/liamcoop/riskscore/rules"
)

// FieldError describes one invalid profile field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned by Run when the profile cannot be scored. No
// rules are evaluated for an invalid profile.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s %s", f.Field, f.Message)
	}
	return "invalid profile: " + strings.Join(parts, "; ")
}

// Validate checks the fields the engine requires. Format checks on the
// remaining fields belong to the intake layer.
func Validate(p rules.Profile) error {
	var fields []FieldError

	if strings.TrimSpace(p.FullName) == "" {
		fields = append(fields, FieldError{Field: "full_name", Message: "is required"})
	}

	switch {
	case !p.Amount.Valid:
		fields = append(fields, FieldError{Field: "amount", Message: "is required"})
	case p.Amount.Decimal.IsNegative():
		fields = append(fields, FieldError{Field: "amount", Message: "must not be negative"})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
