package resource

import "time"

// TimeFormat is the wire format for temporal attributes, used for both
// rendering and parsing.
const TimeFormat = time.RFC3339

// Resource is the wire representation of a single entity
type Resource struct {
	ID            string                   `json:"id"`
	Type          string                   `json:"type"`
	Attributes    map[string]any           `json:"attributes,omitempty"`
	Relationships map[string]*Relationship `json:"relationships,omitempty"`
}

// Identifier references another resource by type and id
type Identifier struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Relationship is a to-one linkage. A nil Data renders as null.
type Relationship struct {
	Data *Identifier `json:"data"`
}

// Identifier returns the resource's own type+id pair
func (r *Resource) Identifier() Identifier {
	return Identifier{ID: r.ID, Type: r.Type}
}

// Related returns the linkage stored under the given relationship name
func (r *Resource) Related(name string) (*Identifier, bool) {
	rel, ok := r.Relationships[name]
	if !ok || rel == nil || rel.Data == nil {
		return nil, false
	}
	return rel.Data, true
}

// PropertyMap holds internal field name to value, as produced by FromResource.
// Only members present in the source document appear.
type PropertyMap map[string]any
