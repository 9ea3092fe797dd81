// Package resource maps typed domain entities to JSON:API resource objects
// and back. Each entity type is described once from its jsonapi struct tags:
//
//	type Cause struct {
//		ID      string `jsonapi:"primary,causes"`
//		Title   string `jsonapi:"attr,title"`
//		GroupID string `jsonapi:"rel,group,groups"`
//	}
//
// The resulting TypeMetadata is cached by the Registry and drives the
// Converter in both directions.
package resource

import (
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// TagName is the struct tag key read by the registry
const TagName = "jsonapi"

// FieldKind tells the converter which built-in handling applies to a field
type FieldKind int

const (
	// KindScalar values are passed through unchanged
	KindScalar FieldKind = iota
	// KindTime values are formatted and parsed with TimeFormat
	KindTime
)

// String returns the string representation of the field kind
func (k FieldKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

var (
	timeType    = reflect.TypeOf(time.Time{})
	timePtrType = reflect.TypeOf(&time.Time{})
)

// IDField describes the identifier field of a type
type IDField struct {
	Name  string
	Index []int
}

// Attribute describes an externally visible scalar or temporal field
type Attribute struct {
	Name     string // internal name
	External string
	Kind     FieldKind
	ReadOnly bool
	Hooks    Hooks
	Index    []int
	Type     reflect.Type
}

// RelationshipField describes a to-one reference to another resource type
type RelationshipField struct {
	Name        string // internal name
	External    string
	RelatedType string
	Index       []int
	Type        reflect.Type
}

// TypeMetadata is the resolved mapping for one entity type
type TypeMetadata struct {
	GoType        reflect.Type
	TypeName      string
	ID            IDField
	Attributes    []*Attribute
	Relationships []*RelationshipField

	attrByExternal map[string]*Attribute
	relByExternal  map[string]*RelationshipField
	byName         map[string][]int
	explicit       bool
}

// Attribute looks up an attribute by its external name
func (m *TypeMetadata) Attribute(external string) (*Attribute, bool) {
	a, ok := m.attrByExternal[external]
	return a, ok
}

// Relationship looks up a relationship by its external name
func (m *TypeMetadata) Relationship(external string) (*RelationshipField, bool) {
	r, ok := m.relByExternal[external]
	return r, ok
}

// attributeByName looks up an attribute by its internal name
func (m *TypeMetadata) attributeByName(name string) (*Attribute, bool) {
	for _, a := range m.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// pointer returns the request document pointer of the field with the given internal name
func (m *TypeMetadata) pointer(name string) string {
	if a, ok := m.attributeByName(name); ok {
		return AttributePointer(a.External)
	}
	for _, r := range m.Relationships {
		if r.Name == name {
			return RelationshipPointer(r.External)
		}
	}
	if name == m.ID.Name {
		return "/data/id"
	}
	return "/data"
}

// fieldIndex resolves any described field (id, attribute or relationship) by internal name
func (m *TypeMetadata) fieldIndex(name string) ([]int, bool) {
	idx, ok := m.byName[name]
	return idx, ok
}

// typeNamer lets a type supply its resource type name when the primary tag omits it
type typeNamer interface {
	ResourceType() string
}

// describe builds metadata from the jsonapi tags of t
func describe(t reflect.Type) (*TypeMetadata, error) {
	if t == nil {
		return nil, &ConfigError{Type: "<nil>", Reason: "no type"}
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, &ConfigError{Type: t.String(), Reason: "not a struct"}
	}

	meta := &TypeMetadata{
		GoType:         t,
		attrByExternal: make(map[string]*Attribute),
		relByExternal:  make(map[string]*RelationshipField),
		byName:         make(map[string][]int),
	}

	primaries := 0
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		tag, ok := f.Tag.Lookup(TagName)
		if !ok || tag == "" || tag == "-" {
			continue
		}
		if throughPointer(t, f.Index) {
			return nil, &ConfigError{Type: t.String(), Field: f.Name, Reason: "tagged field inside embedded pointer"}
		}

		parts := strings.Split(tag, ",")
		name := internalName(f.Name)

		switch parts[0] {
		case "primary":
			primaries++
			if f.Type.Kind() != reflect.String {
				return nil, &ConfigError{Type: t.String(), Field: f.Name, Reason: "identifier must be a string"}
			}
			if len(parts) > 1 && parts[1] != "" {
				meta.TypeName = parts[1]
			}
			meta.ID = IDField{Name: name, Index: f.Index}

		case "attr":
			ext := name
			if len(parts) > 1 && parts[1] != "" {
				ext = parts[1]
			}
			if _, dup := meta.attrByExternal[ext]; dup {
				return nil, &ConfigError{Type: t.String(), Field: f.Name, Reason: fmt.Sprintf("duplicate attribute %q", ext)}
			}
			attr := &Attribute{
				Name:     name,
				External: ext,
				Kind:     kindOf(f.Type),
				Index:    f.Index,
				Type:     f.Type,
			}
			meta.Attributes = append(meta.Attributes, attr)
			meta.attrByExternal[ext] = attr

		case "rel":
			if len(parts) < 3 || parts[2] == "" {
				return nil, &ConfigError{Type: t.String(), Field: f.Name, Reason: "relationship needs a related type", Err: ErrInvalidTag}
			}
			if f.Type.Kind() != reflect.String &&
				!(f.Type.Kind() == reflect.Pointer && f.Type.Elem().Kind() == reflect.String) {
				return nil, &ConfigError{Type: t.String(), Field: f.Name, Reason: "relationship must hold a string id"}
			}
			ext := name
			if parts[1] != "" {
				ext = parts[1]
			}
			if _, dup := meta.relByExternal[ext]; dup {
				return nil, &ConfigError{Type: t.String(), Field: f.Name, Reason: fmt.Sprintf("duplicate relationship %q", ext)}
			}
			rel := &RelationshipField{
				Name:        name,
				External:    ext,
				RelatedType: parts[2],
				Index:       f.Index,
				Type:        f.Type,
			}
			meta.Relationships = append(meta.Relationships, rel)
			meta.relByExternal[ext] = rel

		default:
			return nil, &ConfigError{Type: t.String(), Field: f.Name, Reason: fmt.Sprintf("unknown tag kind %q", parts[0]), Err: ErrInvalidTag}
		}

		if _, dup := meta.byName[name]; dup {
			return nil, &ConfigError{Type: t.String(), Field: f.Name, Reason: "field described twice"}
		}
		meta.byName[name] = f.Index
	}

	switch {
	case primaries == 0:
		return nil, &ConfigError{Type: t.String(), Err: ErrNoIdentifier}
	case primaries > 1:
		return nil, &ConfigError{Type: t.String(), Err: ErrMultipleIdentifiers}
	}

	if meta.TypeName == "" {
		if namer, ok := reflect.New(t).Interface().(typeNamer); ok {
			meta.TypeName = namer.ResourceType()
		}
	}
	if meta.TypeName == "" {
		return nil, &ConfigError{Type: t.String(), Err: ErrNoTypeName}
	}

	return meta, nil
}

func kindOf(t reflect.Type) FieldKind {
	if t == timeType || t == timePtrType {
		return KindTime
	}
	return KindScalar
}

// throughPointer reports whether reaching index crosses an embedded pointer
func throughPointer(t reflect.Type, index []int) bool {
	for i, idx := range index {
		f := t.Field(idx)
		if i == len(index)-1 {
			return false
		}
		t = f.Type
		if t.Kind() == reflect.Pointer {
			return true
		}
	}
	return false
}

// internalName lower-cases the leading rune of a Go field name, or the whole
// name when it is an all-caps initialism (ID -> id).
func internalName(field string) string {
	if strings.ToUpper(field) == field {
		return strings.ToLower(field)
	}
	r, size := utf8.DecodeRuneInString(field)
	return string(unicode.ToLower(r)) + field[size:]
}
