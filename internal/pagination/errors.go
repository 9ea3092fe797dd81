package pagination

import (
	"errors"
	"fmt"
)

// ErrInvalidCursor marks a cursor that is not a syntactically valid id.
// Callers map it to a not-found response.
var ErrInvalidCursor = errors.New("invalid cursor")

// ParamError is a validation error tied to one query parameter
type ParamError struct {
	Parameter string
	Detail    string
	Err       error
}

// Error implements the error interface
func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Parameter, e.Detail)
}

// Unwrap returns the wrapped cause
func (e *ParamError) Unwrap() error {
	return e.Err
}

// IsInvalidCursor returns true if the error is a malformed cursor
func IsInvalidCursor(err error) bool {
	return errors.Is(err, ErrInvalidCursor)
}
