package response

import (
	"github.com/conduit-lang/causeway/internal/resource"
)

// ApplySparseFieldsets trims attributes and relationships of resources whose
// type appears in fieldsets. id and type are always kept. Unknown field names
// are ignored. The resources are modified in place.
func ApplySparseFieldsets(fieldsets map[string][]string, resources ...*resource.Resource) {
	if len(fieldsets) == 0 {
		return
	}

	for _, res := range resources {
		fields, ok := fieldsets[res.Type]
		if !ok {
			continue
		}

		allowed := make(map[string]bool, len(fields))
		for _, f := range fields {
			allowed[f] = true
		}

		res.Attributes = keep(res.Attributes, allowed)
		res.Relationships = keep(res.Relationships, allowed)
	}
}

// keep returns the allowed members of m, or nil when none remain
func keep[V any](m map[string]V, allowed map[string]bool) map[string]V {
	var out map[string]V
	for k, v := range m {
		if !allowed[k] {
			continue
		}
		if out == nil {
			out = make(map[string]V)
		}
		out[k] = v
	}
	return out
}
