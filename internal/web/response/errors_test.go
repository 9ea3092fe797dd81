package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/causeway/internal/pagination"
	"github.com/conduit-lang/causeway/internal/resource"
	"github.com/conduit-lang/causeway/internal/store"
)

func TestErrorObject(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		pointer   string
		parameter string
	}{
		{
			name:      "invalid cursor is not found",
			err:       pagination.ValidateCursor("zzz"),
			status:    http.StatusNotFound,
			parameter: "page[cursor]",
		},
		{
			name:      "bad filter",
			err:       &pagination.ParamError{Parameter: "filter[count]", Detail: "expected gt(<integer>)"},
			status:    http.StatusBadRequest,
			parameter: "filter[count]",
		},
		{
			name:    "invalid attribute",
			err:     &resource.FieldError{Pointer: "/data/attributes/status", Detail: "invalid value", Err: errors.New("must be one of draft, open")},
			status:  http.StatusUnprocessableEntity,
			pointer: "/data/attributes/status",
		},
		{
			name:    "type mismatch conflicts",
			err:     &resource.FieldError{Pointer: "/data/type", Detail: `expected type "causes", got "users"`},
			status:  http.StatusConflict,
			pointer: "/data/type",
		},
		{
			name:   "wrapped not found",
			err:    fmt.Errorf("failed to find causes x: %w", store.ErrNotFound),
			status: http.StatusNotFound,
		},
		{
			name:   "unique violation",
			err:    fmt.Errorf("insert: %w", store.ErrUniqueViolation),
			status: http.StatusConflict,
		},
		{
			name:   "foreign key violation",
			err:    fmt.Errorf("insert: %w", store.ErrForeignKeyViolation),
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "unknown error",
			err:    errors.New("dial tcp: connection refused"),
			status: http.StatusInternalServerError,
		},
		{
			name:      "explicit http error",
			err:       NewHTTPError(http.StatusBadRequest, "nope").WithParameter("page[size]"),
			status:    http.StatusBadRequest,
			parameter: "page[size]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ErrorObject(tt.err)
			require.NotNil(t, e.Status)
			assert.Equal(t, tt.status, *e.Status)
			assert.Equal(t, http.StatusText(tt.status), e.Title)

			switch {
			case tt.pointer != "":
				require.NotNil(t, e.Source)
				assert.Equal(t, tt.pointer, e.Source.Pointer)
			case tt.parameter != "":
				require.NotNil(t, e.Source)
				assert.Equal(t, tt.parameter, e.Source.Parameter)
			default:
				assert.Nil(t, e.Source)
			}
		})
	}
}

func TestErrorObjectHidesInternals(t *testing.T) {
	e := ErrorObject(errors.New("pq: password authentication failed"))
	assert.Empty(t, e.Detail)
}

func TestErrorObjectIncludesCause(t *testing.T) {
	e := ErrorObject(&resource.FieldError{Pointer: "/data/attributes/status", Detail: "invalid value", Err: errors.New("must be one of closed, draft, open")})
	assert.Equal(t, "invalid value: must be one of closed, draft, open", e.Detail)
}

func TestRenderError(t *testing.T) {
	w := httptest.NewRecorder()
	status := RenderError(w, &pagination.ParamError{Parameter: "page[points]", Detail: "expected first or last"})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, JSONAPIMediaType, w.Header().Get("Content-Type"))

	var body struct {
		Errors []struct {
			Code   string `json:"code"`
			Title  string `json:"title"`
			Detail string `json:"detail"`
			Source struct {
				Parameter string `json:"parameter"`
			} `json:"source"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "bad_request", body.Errors[0].Code)
	assert.Equal(t, "page[points]", body.Errors[0].Source.Parameter)
	assert.Contains(t, body.Errors[0].Detail, "expected first or last")
}
