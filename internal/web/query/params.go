// Package query parses the JSON:API request parameters that sit outside
// pagination: include, sparse fieldsets and the parameters this service
// deliberately does not support.
package query

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/conduit-lang/causeway/internal/pagination"
	"github.com/conduit-lang/causeway/internal/resource"
)

const (
	// ParamInclude names the include query parameter
	ParamInclude = "include"
	// ParamSort names the sort query parameter
	ParamSort = "sort"
)

// fieldsPattern matches query parameters like fields[typename]
var fieldsPattern = regexp.MustCompile(`^fields\[([^\]]+)\]$`)

// ParseInclude resolves ?include=author,cause against the relationships of
// meta. Only direct relationships are supported; dotted paths, unknown names
// and repeated names are rejected.
func ParseInclude(values url.Values, meta *resource.TypeMetadata) ([]*resource.RelationshipField, error) {
	names := splitList(values.Get(ParamInclude))
	if len(names) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool, len(names))
	rels := make([]*resource.RelationshipField, 0, len(names))
	for _, name := range names {
		if strings.Contains(name, ".") {
			return nil, &pagination.ParamError{Parameter: ParamInclude, Detail: "nested include path " + name + " is not supported"}
		}
		rel, ok := meta.Relationship(name)
		if !ok {
			return nil, &pagination.ParamError{Parameter: ParamInclude, Detail: meta.TypeName + " has no relationship " + name}
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		rels = append(rels, rel)
	}
	return rels, nil
}

// ParseFields parses the fields query parameters into a map of resource types to field names.
// Example: ?fields[users]=name,email&fields[causes]=title
// Returns: {"users": ["name", "email"], "causes": ["title"]}
// An empty value keeps no fields for that type.
func ParseFields(values url.Values) map[string][]string {
	result := make(map[string][]string)

	for key, vals := range values {
		matches := fieldsPattern.FindStringSubmatch(key)
		if len(matches) != 2 {
			continue
		}

		typeName := matches[1]
		if len(vals) == 0 {
			result[typeName] = []string{}
			continue
		}
		result[typeName] = splitList(vals[0])
	}

	return result
}

// CheckUnsupported rejects sort and any page[...] member other than the
// cursor and points parameters. Page size is fixed by configuration.
func CheckUnsupported(values url.Values) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch {
		case key == ParamSort:
			return &pagination.ParamError{Parameter: key, Detail: "sorting is not supported, pages follow creation order"}
		case key == pagination.ParamCursor, key == pagination.ParamPoints:
		case strings.HasPrefix(key, "page["):
			return &pagination.ParamError{Parameter: key, Detail: "only page[cursor] and page[points] are supported"}
		}
	}
	return nil
}

// splitList splits a comma separated value, dropping blank entries
func splitList(value string) []string {
	if value == "" {
		return []string{}
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
