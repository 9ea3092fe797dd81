package resource

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"time"

	"github.com/goccy/go-json"
)

// Converter turns entities into resource objects and resource objects into
// property maps, driven entirely by registry metadata.
//
// Outgoing attribute values resolve in order: Hooks.ToExternal, Hooks.Get,
// built-in time formatting, raw value. Incoming values resolve in order:
// Hooks.FromExternal, Hooks.Set, built-in time parsing, raw value.
type Converter struct {
	registry   *Registry
	timeFormat string
}

// NewConverter creates a converter backed by registry
func NewConverter(registry *Registry) *Converter {
	return &Converter{
		registry:   registry,
		timeFormat: TimeFormat,
	}
}

// Registry returns the metadata registry used by the converter
func (c *Converter) Registry() *Registry {
	return c.registry
}

// ToResource converts an entity (struct or pointer to struct) into a resource object.
// Related entities are referenced by type and id, never embedded.
func (c *Converter) ToResource(entity any) (*Resource, error) {
	v := reflect.ValueOf(entity)
	if !v.IsValid() {
		return nil, fmt.Errorf("cannot convert nil entity")
	}
	self := entity
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, fmt.Errorf("cannot convert nil %s", v.Type())
		}
		v = v.Elem()
	} else {
		// hooks always see a pointer
		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)
		self = ptr.Interface()
	}

	meta, err := c.registry.Describe(v.Type())
	if err != nil {
		return nil, err
	}

	idValue, err := v.FieldByIndexErr(meta.ID.Index)
	if err != nil {
		return nil, fmt.Errorf("resource %s: identifier: %w", meta.TypeName, err)
	}

	res := &Resource{
		ID:   idValue.String(),
		Type: meta.TypeName,
	}

	if len(meta.Attributes) > 0 {
		attrs := make(map[string]any, len(meta.Attributes))
		for _, attr := range meta.Attributes {
			value, err := c.outgoing(self, v, attr)
			if err != nil {
				return nil, fmt.Errorf("resource %s: attribute %s: %w", meta.TypeName, attr.External, err)
			}
			attrs[attr.External] = value
		}
		res.Attributes = attrs
	}

	if len(meta.Relationships) > 0 {
		rels := make(map[string]*Relationship, len(meta.Relationships))
		for _, rel := range meta.Relationships {
			fv, err := v.FieldByIndexErr(rel.Index)
			if err != nil {
				return nil, fmt.Errorf("resource %s: relationship %s: %w", meta.TypeName, rel.External, err)
			}
			id, ok := stringID(fv)
			if !ok {
				rels[rel.External] = &Relationship{}
				continue
			}
			rels[rel.External] = &Relationship{Data: &Identifier{ID: id, Type: rel.RelatedType}}
		}
		res.Relationships = rels
	}

	return res, nil
}

// ToResources converts a slice of entities, preserving order
func ToResources[T any](c *Converter, entities []T) ([]*Resource, error) {
	out := make([]*Resource, 0, len(entities))
	for _, e := range entities {
		res, err := c.ToResource(e)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (c *Converter) outgoing(entity any, v reflect.Value, attr *Attribute) (any, error) {
	if attr.Hooks.ToExternal != nil {
		return attr.Hooks.ToExternal(entity)
	}

	fv, err := v.FieldByIndexErr(attr.Index)
	if err != nil {
		return nil, err
	}
	raw := fv.Interface()

	if attr.Hooks.Get != nil {
		return attr.Hooks.Get(raw)
	}
	if attr.Kind == KindTime {
		return c.formatTime(raw)
	}
	return raw, nil
}

func (c *Converter) formatTime(raw any) (any, error) {
	switch t := raw.(type) {
	case time.Time:
		if t.IsZero() {
			return nil, nil
		}
		return t.Format(c.timeFormat), nil
	case *time.Time:
		if t == nil || t.IsZero() {
			return nil, nil
		}
		return t.Format(c.timeFormat), nil
	default:
		return nil, fmt.Errorf("expected time value, got %T", raw)
	}
}

// FromResource translates doc into a property map for the type of target
// (a value, pointer or reflect.Type). Only members present in doc are
// translated, so the result is suitable for partial updates.
func (c *Converter) FromResource(target any, doc *Resource) (PropertyMap, error) {
	meta, err := c.registry.Describe(target)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, &FieldError{Pointer: "/data", Detail: "missing resource object"}
	}
	if doc.Type != "" && doc.Type != meta.TypeName {
		return nil, &FieldError{
			Pointer: "/data/type",
			Detail:  fmt.Sprintf("expected type %q, got %q", meta.TypeName, doc.Type),
		}
	}

	props := make(PropertyMap, len(doc.Attributes)+len(doc.Relationships)+1)
	if doc.ID != "" {
		props[meta.ID.Name] = doc.ID
	}

	for _, ext := range sortedKeys(doc.Attributes) {
		attr, ok := meta.Attribute(ext)
		if !ok {
			return nil, &FieldError{Pointer: AttributePointer(ext), Detail: "unknown attribute"}
		}
		if attr.ReadOnly {
			continue
		}
		value, err := c.incoming(doc.Attributes[ext], doc, attr)
		if err != nil {
			return nil, &FieldError{Pointer: AttributePointer(ext), Detail: "invalid value", Err: err}
		}
		props[attr.Name] = value
	}

	for _, ext := range sortedKeys(doc.Relationships) {
		rel, ok := meta.Relationship(ext)
		if !ok {
			return nil, &FieldError{Pointer: RelationshipPointer(ext), Detail: "unknown relationship"}
		}
		linkage := doc.Relationships[ext]
		if linkage == nil || linkage.Data == nil {
			props[rel.Name] = nil
			continue
		}
		if linkage.Data.Type != "" && linkage.Data.Type != rel.RelatedType {
			return nil, &FieldError{
				Pointer: RelationshipPointer(ext) + "/data/type",
				Detail:  fmt.Sprintf("expected type %q, got %q", rel.RelatedType, linkage.Data.Type),
			}
		}
		props[rel.Name] = linkage.Data.ID
	}

	return props, nil
}

func (c *Converter) incoming(value any, doc *Resource, attr *Attribute) (any, error) {
	if attr.Hooks.FromExternal != nil {
		return attr.Hooks.FromExternal(value, doc)
	}
	if attr.Hooks.Set != nil {
		return attr.Hooks.Set(value)
	}
	if attr.Kind == KindTime {
		return c.parseTime(value)
	}
	return value, nil
}

func (c *Converter) parseTime(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("expected timestamp string, got %T", value)
	}
	t, err := time.Parse(c.timeFormat, s)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Apply writes props onto entity, which must be a non-nil pointer to a
// registered struct. JSON numbers, as float64 or json.Number, are converted
// to the field's numeric kind. Integers beyond 2^53 keep full precision only
// as json.Number.
func (c *Converter) Apply(entity any, props PropertyMap) error {
	v := reflect.ValueOf(entity)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return fmt.Errorf("apply needs a non-nil pointer, got %T", entity)
	}
	v = v.Elem()

	meta, err := c.registry.Describe(v.Type())
	if err != nil {
		return err
	}

	for _, name := range sortedKeys(props) {
		index, ok := meta.fieldIndex(name)
		if !ok {
			return fmt.Errorf("resource %s has no field %q", meta.TypeName, name)
		}
		fv, err := v.FieldByIndexErr(index)
		if err != nil {
			return fmt.Errorf("resource %s field %s: %w", meta.TypeName, name, err)
		}
		if err := assign(fv, props[name]); err != nil {
			return &FieldError{Pointer: meta.pointer(name), Detail: "invalid value", Err: err}
		}
	}
	return nil
}

var (
	errNotIntegral = errors.New("number is not integral")
	errOverflow    = errors.New("number overflows field")
)

func assign(dst reflect.Value, value any) error {
	if value == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	src := reflect.ValueOf(value)
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}

	if dst.Kind() == reflect.Pointer {
		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), value); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}

	if n, ok := value.(json.Number); ok {
		return assignNumber(dst, n)
	}

	switch {
	case isInt(dst.Kind()) && isFloat(src.Kind()):
		f := src.Float()
		if f != math.Trunc(f) {
			return errNotIntegral
		}
		dst.SetInt(int64(f))
		return nil
	case isInt(dst.Kind()) && isInt(src.Kind()):
		dst.SetInt(src.Int())
		return nil
	case isFloat(dst.Kind()) && (isFloat(src.Kind()) || isInt(src.Kind())):
		dst.Set(src.Convert(dst.Type()))
		return nil
	case dst.Kind() == reflect.String && src.Kind() == reflect.String:
		dst.SetString(src.String())
		return nil
	case dst.Kind() == reflect.Bool && src.Kind() == reflect.Bool:
		dst.SetBool(src.Bool())
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, dst.Type())
}

func assignNumber(dst reflect.Value, n json.Number) error {
	switch {
	case isInt(dst.Kind()):
		i, err := n.Int64()
		if err != nil {
			// 1e3 and 10.0 are integral but not in integer syntax
			f, ferr := n.Float64()
			switch {
			case ferr != nil || f != math.Trunc(f):
				return errNotIntegral
			case math.Abs(f) > 1<<53:
				return errOverflow
			}
			i = int64(f)
		}
		if dst.OverflowInt(i) {
			return errOverflow
		}
		dst.SetInt(i)
		return nil
	case isFloat(dst.Kind()):
		f, err := n.Float64()
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", n, err)
		}
		dst.SetFloat(f)
		return nil
	}
	return fmt.Errorf("cannot assign number %s to %s", n, dst.Type())
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// stringID reads a relationship field; false means no linkage
func stringID(v reflect.Value) (string, bool) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "", false
		}
		v = v.Elem()
	}
	id := v.String()
	return id, id != ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
