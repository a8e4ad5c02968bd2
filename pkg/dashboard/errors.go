// SPDX-License-Identifier: AGPL-3.0-only

package dashboard

import (
	"fmt"
	"unicode/utf8"
)

// ValidationError is returned when a caller-supplied value violates a structural
// invariant of the model. Field is a path to the offending value, such as
// "panels[2].gridPos.w".
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SchemaError is returned by the Serializer when it finds a value that
// construction should already have rejected.
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema violation at %s: %s", e.Path, e.Reason)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// validateText rejects strings that would not survive a JSON round trip.
func validateText(field, s string) error {
	if !utf8.ValidString(s) {
		return invalid(field, "%q is not valid UTF-8", s)
	}
	return nil
}

// prefixed returns err with its field path rooted at prefix.
func prefixed(prefix string, err error) error {
	if err == nil {
		return nil
	}
	if verr, ok := err.(*ValidationError); ok {
		return &ValidationError{Field: joinPath(prefix, verr.Field), Reason: verr.Reason}
	}
	return err
}

func joinPath(prefix, field string) string {
	switch {
	case prefix == "":
		return field
	case field == "":
		return prefix
	case field[0] == '[':
		return prefix + field
	default:
		return prefix + "." + field
	}
}
