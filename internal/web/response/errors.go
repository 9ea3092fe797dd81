package response

import (
	"errors"
	"net/http"

	"github.com/DataDog/jsonapi"
	"github.com/goccy/go-json"

	"github.com/conduit-lang/causeway/internal/pagination"
	"github.com/conduit-lang/causeway/internal/resource"
	"github.com/conduit-lang/causeway/internal/store"
)

// HTTPError is an error with a fixed status and optional source
type HTTPError struct {
	StatusCode int
	Message    string
	Pointer    *string
	Parameter  string
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// WithPointer sets source.pointer
func (e *HTTPError) WithPointer(pointer string) *HTTPError {
	e.Pointer = &pointer
	return e
}

// WithParameter sets source.parameter
func (e *HTTPError) WithParameter(name string) *HTTPError {
	e.Parameter = name
	return e
}

// ErrorObject maps err to a JSON:API error object. Errors without a known
// class become an opaque 500 so internals are never exposed.
func ErrorObject(err error) *jsonapi.Error {
	var (
		httpErr  *HTTPError
		paramErr *pagination.ParamError
		fieldErr *resource.FieldError
	)

	switch {
	case errors.As(err, &httpErr):
		e := newError(httpErr.StatusCode, httpErr.Message)
		switch {
		case httpErr.Parameter != "":
			e.Source = &jsonapi.ErrorSource{Parameter: httpErr.Parameter}
		case httpErr.Pointer != nil:
			e.Source = &jsonapi.ErrorSource{Pointer: *httpErr.Pointer}
		}
		return e

	case pagination.IsInvalidCursor(err):
		e := newError(http.StatusNotFound, "no page exists at this cursor")
		if errors.As(err, &paramErr) {
			e.Source = &jsonapi.ErrorSource{Parameter: paramErr.Parameter}
		}
		return e

	case errors.As(err, &paramErr):
		e := newError(http.StatusBadRequest, paramErr.Error())
		e.Source = &jsonapi.ErrorSource{Parameter: paramErr.Parameter}
		return e

	case errors.As(err, &fieldErr):
		status := http.StatusUnprocessableEntity
		if fieldErr.Pointer == "/data/type" {
			status = http.StatusConflict
		}
		e := newError(status, fieldErr.Detail)
		if fieldErr.Err != nil {
			e.Detail = fieldErr.Detail + ": " + fieldErr.Err.Error()
		}
		e.Source = &jsonapi.ErrorSource{Pointer: fieldErr.Pointer}
		return e

	case store.IsNotFound(err):
		return newError(http.StatusNotFound, "resource not found")

	case errors.Is(err, store.ErrUniqueViolation):
		return newError(http.StatusConflict, "a resource with these values already exists")

	case store.IsConstraintViolation(err):
		return newError(http.StatusUnprocessableEntity, "the resource violates a data constraint")

	default:
		return newError(http.StatusInternalServerError, "")
	}
}

func newError(status int, detail string) *jsonapi.Error {
	return &jsonapi.Error{
		Status: &status,
		Code:   errorCodeFromStatus(status),
		Title:  http.StatusText(status),
		Detail: detail,
	}
}

// RenderError writes err as an errors document and returns the status used
func RenderError(w http.ResponseWriter, err error) int {
	e := ErrorObject(err)
	RenderErrors(w, *e.Status, []*jsonapi.Error{e})
	return *e.Status
}

// RenderErrors writes an errors document
func RenderErrors(w http.ResponseWriter, status int, errs []*jsonapi.Error) {
	data, err := json.Marshal(map[string][]*jsonapi.Error{"errors": errs})
	if err != nil {
		w.Header().Set("Content-Type", JSONAPIMediaType)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"errors":[{"status":"500","code":"internal_error","title":"Internal Server Error"}]}`))
		return
	}

	w.Header().Set("Content-Type", JSONAPIMediaType)
	w.WriteHeader(status)
	w.Write(data)
}

// RenderNotFound renders a 404 for an unknown route
func RenderNotFound(w http.ResponseWriter) {
	RenderError(w, NewHTTPError(http.StatusNotFound, "no route matches this path"))
}

// RenderMethodNotAllowed renders a 405
func RenderMethodNotAllowed(w http.ResponseWriter) {
	RenderError(w, NewHTTPError(http.StatusMethodNotAllowed, "method not allowed"))
}

// errorCodeFromStatus maps HTTP status codes to error codes
func errorCodeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusConflict:
		return "conflict"
	case http.StatusRequestEntityTooLarge:
		return "request_too_large"
	case http.StatusUnsupportedMediaType:
		return "unsupported_media_type"
	case http.StatusUnprocessableEntity:
		return "unprocessable_entity"
	case http.StatusInternalServerError:
		return "internal_error"
	case http.StatusServiceUnavailable:
		return "service_unavailable"
	default:
		return "error"
	}
}
