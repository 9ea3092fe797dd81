// Package response renders JSON:API documents and error objects.
package response

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/conduit-lang/causeway/internal/pagination"
	"github.com/conduit-lang/causeway/internal/resource"
)

const (
	// JSONAPIMediaType is the official JSON:API media type
	JSONAPIMediaType = "application/vnd.api+json"

	// maxBodyBytes bounds request documents
	maxBodyBytes = 1 << 20
)

// Document is a top-level JSON:API document. Data holds a single
// *resource.Resource, a slice of them or nil.
type Document struct {
	Data     any                  `json:"data"`
	Included []*resource.Resource `json:"included,omitempty"`
	Links    *pagination.Links    `json:"links,omitempty"`
	Meta     map[string]any       `json:"meta,omitempty"`
}

// Single wraps one resource
func Single(res *resource.Resource) *Document {
	return &Document{Data: res}
}

// Collection wraps a page of resources. The data member is always an array.
func Collection(resources []*resource.Resource, links pagination.Links) *Document {
	if resources == nil {
		resources = []*resource.Resource{}
	}
	return &Document{
		Data:  resources,
		Links: &links,
		Meta:  map[string]any{"count": len(resources)},
	}
}

// Render writes doc with the JSON:API media type
func Render(w http.ResponseWriter, status int, doc *Document) error {
	// Encode before touching the response so failures leave it unwritten
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	return Write(w, status, data)
}

// Encode serializes doc
func Encode(doc *Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

// Write sends an encoded document with the JSON:API media type
func Write(w http.ResponseWriter, status int, data []byte) error {
	w.Header().Set("Content-Type", JSONAPIMediaType)
	w.WriteHeader(status)
	_, err := w.Write(data)
	return err
}

// requestDocument is the body of a create or update request
type requestDocument struct {
	Data *resource.Resource `json:"data"`
}

// DecodeResource reads the primary resource object of a request body
func DecodeResource(r *http.Request) (*resource.Resource, error) {
	if err := checkContentType(r); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, "could not read request body")
	}
	if len(body) > maxBodyBytes {
		return nil, NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
	}

	// numbers stay json.Number so large integers survive conversion
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc requestDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, "request body is not a valid JSON document")
	}
	if doc.Data == nil {
		return nil, NewHTTPError(http.StatusBadRequest, "missing primary data").WithPointer("/data")
	}
	if doc.Data.Type == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "missing resource type").WithPointer("/data/type")
	}
	return doc.Data, nil
}

// checkContentType accepts the JSON:API media type without parameters, or plain JSON
func checkContentType(r *http.Request) error {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return nil
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return NewHTTPError(http.StatusUnsupportedMediaType, "malformed Content-Type")
	}

	switch {
	case mediaType == JSONAPIMediaType && len(params) > 0:
		return NewHTTPError(http.StatusUnsupportedMediaType, "Content-Type must be "+JSONAPIMediaType+" without media type parameters")
	case mediaType != JSONAPIMediaType && mediaType != "application/json":
		return NewHTTPError(http.StatusUnsupportedMediaType, "Content-Type must be "+JSONAPIMediaType)
	}
	return nil
}
