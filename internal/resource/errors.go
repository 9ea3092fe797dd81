package resource

import (
	"errors"
	"fmt"
)

var (
	// ErrNoIdentifier is returned when a type declares no primary field
	ErrNoIdentifier = errors.New("no identifier field declared")

	// ErrMultipleIdentifiers is returned when a type declares more than one primary field
	ErrMultipleIdentifiers = errors.New("more than one identifier field declared")

	// ErrNoTypeName is returned when no external type name can be resolved
	ErrNoTypeName = errors.New("no resource type name declared")

	// ErrInvalidTag is returned for a malformed jsonapi struct tag
	ErrInvalidTag = errors.New("invalid jsonapi tag")
)

// ConfigError reports a type whose metadata cannot be used for conversion.
// It is a programming error and should surface at startup.
type ConfigError struct {
	Type   string
	Field  string
	Reason string
	Err    error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("resource %s", e.Type)
	if e.Field != "" {
		msg += "." + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying sentinel
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// FieldError reports a document member that could not be converted.
// Pointer is a JSON pointer into the request document.
type FieldError struct {
	Pointer string
	Detail  string
	Err     error
}

// Error implements the error interface
func (e *FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Pointer, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Pointer, e.Detail)
}

// Unwrap returns the wrapped cause
func (e *FieldError) Unwrap() error {
	return e.Err
}

// AttributePointer returns the JSON pointer to an attribute of the primary resource
func AttributePointer(name string) string {
	return "/data/attributes/" + escapePointer(name)
}

// RelationshipPointer returns the JSON pointer to a relationship of the primary resource
func RelationshipPointer(name string) string {
	return "/data/relationships/" + escapePointer(name)
}

// escapePointer escapes a reference token per RFC 6901
func escapePointer(token string) string {
	// ~ must be escaped before /
	out := make([]byte, 0, len(token))
	for i := 0; i < len(token); i++ {
		switch token[i] {
		case '~':
			out = append(out, '~', '0')
		case '/':
			out = append(out, '~', '1')
		default:
			out = append(out, token[i])
		}
	}
	return string(out)
}
