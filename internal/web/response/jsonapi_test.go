package response

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/causeway/internal/pagination"
	"github.com/conduit-lang/causeway/internal/resource"
)

func TestRenderCollection(t *testing.T) {
	first := "/api/causes"
	next := "/api/causes?page[cursor]=c2&page[points]=last"
	prev := "/api/causes?page[cursor]=c1&page[points]=first"

	doc := Collection([]*resource.Resource{
		{ID: "c1", Type: "causes", Attributes: map[string]any{"title": "Parks"}},
		{ID: "c2", Type: "causes"},
	}, pagination.Links{First: &first, Prev: &prev, Next: &next})

	w := httptest.NewRecorder()
	require.NoError(t, Render(w, http.StatusOK, doc))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, JSONAPIMediaType, w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"data": [
			{"id": "c1", "type": "causes", "attributes": {"title": "Parks"}},
			{"id": "c2", "type": "causes"}
		],
		"links": {
			"first": "/api/causes",
			"last": null,
			"prev": "/api/causes?page[cursor]=c1&page[points]=first",
			"next": "/api/causes?page[cursor]=c2&page[points]=last"
		},
		"meta": {"count": 2}
	}`, w.Body.String())
}

func TestRenderEmptyCollection(t *testing.T) {
	first := "/api/causes"
	w := httptest.NewRecorder()
	require.NoError(t, Render(w, http.StatusOK, Collection(nil, pagination.Links{First: &first})))

	assert.JSONEq(t, `{
		"data": [],
		"links": {"first": "/api/causes", "last": null, "prev": null, "next": null},
		"meta": {"count": 0}
	}`, w.Body.String())
}

func TestRenderSingleWithIncluded(t *testing.T) {
	doc := Single(&resource.Resource{
		ID:   "s1",
		Type: "signatures",
		Relationships: map[string]*resource.Relationship{
			"cause": {Data: &resource.Identifier{ID: "c1", Type: "causes"}},
			"user":  {},
		},
	})
	doc.Included = []*resource.Resource{{ID: "c1", Type: "causes"}}

	w := httptest.NewRecorder()
	require.NoError(t, Render(w, http.StatusCreated, doc))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{
		"data": {
			"id": "s1",
			"type": "signatures",
			"relationships": {
				"cause": {"data": {"id": "c1", "type": "causes"}},
				"user": {"data": null}
			}
		},
		"included": [{"id": "c1", "type": "causes"}]
	}`, w.Body.String())
}

func TestDecodeResource(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		body := `{"data": {"type": "causes", "attributes": {"title": "Parks", "target": 10}}}`
		req := httptest.NewRequest(http.MethodPost, "/api/causes", strings.NewReader(body))
		req.Header.Set("Content-Type", JSONAPIMediaType)

		res, err := DecodeResource(req)
		require.NoError(t, err)
		assert.Equal(t, "causes", res.Type)
		assert.Empty(t, res.ID)
		assert.Equal(t, "Parks", res.Attributes["title"])
		assert.Equal(t, json.Number("10"), res.Attributes["target"])
	})

	t.Run("large integers keep precision", func(t *testing.T) {
		body := `{"data": {"type": "activity-logs", "attributes": {"count": 9007199254740993}}}`
		req := httptest.NewRequest(http.MethodPost, "/api/activity-logs", strings.NewReader(body))

		res, err := DecodeResource(req)
		require.NoError(t, err)
		n, ok := res.Attributes["count"].(json.Number)
		require.True(t, ok)
		i, err := n.Int64()
		require.NoError(t, err)
		assert.Equal(t, int64(9007199254740993), i)
	})

	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
		pointer     string
	}{
		{"media type parameters", JSONAPIMediaType + "; ext=bulk", `{}`, http.StatusUnsupportedMediaType, ""},
		{"wrong media type", "text/plain", `{}`, http.StatusUnsupportedMediaType, ""},
		{"malformed json", JSONAPIMediaType, `{"data":`, http.StatusBadRequest, ""},
		{"missing data", JSONAPIMediaType, `{"meta": {}}`, http.StatusBadRequest, "/data"},
		{"missing type", "application/json", `{"data": {"attributes": {}}}`, http.StatusBadRequest, "/data/type"},
		{"too large", "", `{"data": "` + strings.Repeat("x", maxBodyBytes) + `"}`, http.StatusRequestEntityTooLarge, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/causes", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			_, err := DecodeResource(req)
			require.Error(t, err)

			e := ErrorObject(err)
			assert.Equal(t, tt.status, *e.Status)
			if tt.pointer != "" {
				require.NotNil(t, e.Source)
				assert.Equal(t, tt.pointer, e.Source.Pointer)
			}
		})
	}
}

func TestApplySparseFieldsets(t *testing.T) {
	cause := &resource.Resource{
		ID:   "c1",
		Type: "causes",
		Attributes: map[string]any{
			"title":   "Parks",
			"summary": "More parks",
		},
		Relationships: map[string]*resource.Relationship{
			"group": {},
		},
	}
	user := &resource.Resource{ID: "u1", Type: "users", Attributes: map[string]any{"name": "Ada"}}

	ApplySparseFieldsets(map[string][]string{"causes": {"title", "unknown"}}, cause, user)

	assert.Equal(t, map[string]any{"title": "Parks"}, cause.Attributes)
	assert.Nil(t, cause.Relationships, "empty containers are dropped")
	assert.Equal(t, map[string]any{"name": "Ada"}, user.Attributes, "other types are untouched")

	ApplySparseFieldsets(map[string][]string{"users": {}}, user)
	assert.Nil(t, user.Attributes)
	assert.Equal(t, "u1", user.ID)
}
