package query

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/causeway/internal/domain"
	"github.com/conduit-lang/causeway/internal/pagination"
	"github.com/conduit-lang/causeway/internal/resource"
)

func signatureMeta(t *testing.T) *resource.TypeMetadata {
	t.Helper()
	meta, ok := domain.NewRegistry().Lookup("signatures")
	require.True(t, ok)
	return meta
}

func mustQuery(t *testing.T, raw string) url.Values {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return values
}

func TestParseInclude(t *testing.T) {
	meta := signatureMeta(t)

	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{name: "absent", query: "", expected: nil},
		{name: "empty value", query: "include=", expected: nil},
		{name: "single relationship", query: "include=cause", expected: []string{"cause"}},
		{name: "multiple relationships", query: "include=cause,user", expected: []string{"cause", "user"}},
		{name: "trims whitespace", query: "include=%20user%20,cause", expected: []string{"user", "cause"}},
		{name: "duplicates collapse", query: "include=cause,,cause", expected: []string{"cause"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rels, err := ParseInclude(mustQuery(t, tt.query), meta)
			require.NoError(t, err)

			var names []string
			for _, rel := range rels {
				names = append(names, rel.External)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestParseIncludeErrors(t *testing.T) {
	meta := signatureMeta(t)

	for _, raw := range []string{"include=author", "include=cause.group", "include=cause,comments"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseInclude(mustQuery(t, raw), meta)

			var paramErr *pagination.ParamError
			require.True(t, errors.As(err, &paramErr))
			assert.Equal(t, "include", paramErr.Parameter)
		})
	}
}

func TestParseFields(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected map[string][]string
	}{
		{
			name:     "absent",
			query:    "include=cause",
			expected: map[string][]string{},
		},
		{
			name:  "several types",
			query: "fields[causes]=title,summary&fields[users]=name",
			expected: map[string][]string{
				"causes": {"title", "summary"},
				"users":  {"name"},
			},
		},
		{
			name:     "empty value keeps nothing",
			query:    "fields[causes]=",
			expected: map[string][]string{"causes": {}},
		},
		{
			name:     "malformed keys ignored",
			query:    "fields=title&fields[]=x&field[causes]=title",
			expected: map[string][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseFields(mustQuery(t, tt.query)))
		})
	}
}

func TestCheckUnsupported(t *testing.T) {
	tests := []struct {
		query     string
		parameter string
	}{
		{query: "page[cursor]=x&page[points]=last&filter[count]=gt(1)&include=cause"},
		{query: "fields[causes]=title"},
		{query: "sort=-createdAt", parameter: "sort"},
		{query: "page[size]=50", parameter: "page[size]"},
		{query: "page[cursor]=x&page[number]=2", parameter: "page[number]"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			err := CheckUnsupported(mustQuery(t, tt.query))
			if tt.parameter == "" {
				assert.NoError(t, err)
				return
			}

			var paramErr *pagination.ParamError
			require.True(t, errors.As(err, &paramErr))
			assert.Equal(t, tt.parameter, paramErr.Parameter)
		})
	}
}
