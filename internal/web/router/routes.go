package router

import (
	"fmt"
	"net/http"
)

// ResourceDefinition names a resource and the operations it exposes
type ResourceDefinition struct {
	Name        string          // external type name, e.g. "causes"
	BasePath    string          // collection path, e.g. "/api/causes"
	IDParamName string          // member id parameter (default: "id")
	Operations  []CRUDOperation // enabled operations
}

// NewResourceDefinition creates a definition with every operation enabled
func NewResourceDefinition(name, basePath string) *ResourceDefinition {
	return &ResourceDefinition{
		Name:        name,
		BasePath:    basePath + "/" + name,
		IDParamName: "id",
		Operations:  []CRUDOperation{OpList, OpCreate, OpShow, OpPatch, OpDelete},
	}
}

// ResourceHandlers contains handlers for resource operations
type ResourceHandlers struct {
	List   http.HandlerFunc
	Create http.HandlerFunc
	Show   http.HandlerFunc
	Patch  http.HandlerFunc
	Delete http.HandlerFunc
}

// GetHandler returns the handler for the given operation
func (h *ResourceHandlers) GetHandler(op CRUDOperation) http.HandlerFunc {
	switch op {
	case OpList:
		return h.List
	case OpCreate:
		return h.Create
	case OpShow:
		return h.Show
	case OpPatch:
		return h.Patch
	case OpDelete:
		return h.Delete
	default:
		return nil
	}
}

// RegisterResource registers REST routes for a resource
func (r *Router) RegisterResource(def *ResourceDefinition, handlers ResourceHandlers) error {
	member := fmt.Sprintf("%s/{%s}", def.BasePath, def.IDParamName)

	for _, op := range def.Operations {
		handler := handlers.GetHandler(op)
		if handler == nil {
			return fmt.Errorf("resource %s: missing handler for operation %s", def.Name, op)
		}

		name := def.Name + "." + op.String()
		switch op {
		case OpList:
			r.Handle(http.MethodGet, def.BasePath, name, handler)
		case OpCreate:
			r.Handle(http.MethodPost, def.BasePath, name, handler)
		case OpShow:
			r.Handle(http.MethodGet, member, name, handler)
		case OpPatch:
			r.Handle(http.MethodPatch, member, name, handler)
		case OpDelete:
			r.Handle(http.MethodDelete, member, name, handler)
		default:
			return fmt.Errorf("resource %s: unknown operation %s", def.Name, op)
		}
	}
	return nil
}

// RegisterNested registers a read-only collection of child under a member
// of parent, e.g. GET /api/causes/{id}/activity-logs
func (r *Router) RegisterNested(parent *ResourceDefinition, child string, list http.HandlerFunc) {
	pattern := fmt.Sprintf("%s/{%s}/%s", parent.BasePath, parent.IDParamName, child)
	r.Handle(http.MethodGet, pattern, parent.Name+"."+child, list)
}
