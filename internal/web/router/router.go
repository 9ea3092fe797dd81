// Package router builds the chi route table of the API and keeps a list of
// registered routes for introspection.
package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/conduit-lang/causeway/internal/web/middleware"
	"github.com/conduit-lang/causeway/internal/web/response"
)

// Router manages HTTP routing using chi
type Router struct {
	mux    chi.Router
	routes []RouteInfo
}

// RouteInfo describes a registered route
type RouteInfo struct {
	Method  string
	Pattern string
	Name    string
}

// CRUDOperation represents a REST operation type
type CRUDOperation int

const (
	// OpList represents the list operation (GET /)
	OpList CRUDOperation = iota
	// OpCreate represents the create operation (POST /)
	OpCreate
	// OpShow represents the show operation (GET /{id})
	OpShow
	// OpPatch represents the partial update operation (PATCH /{id})
	OpPatch
	// OpDelete represents the delete operation (DELETE /{id})
	OpDelete
)

// String returns the string representation of CRUDOperation
func (o CRUDOperation) String() string {
	switch o {
	case OpList:
		return "list"
	case OpCreate:
		return "create"
	case OpShow:
		return "show"
	case OpPatch:
		return "patch"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// NewRouter creates a router whose unmatched requests get JSON:API errors
func NewRouter(chain *middleware.Chain) *Router {
	mux := chi.NewRouter()
	if chain != nil {
		mux.Use(chain.Then)
	}
	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.RenderNotFound(w)
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.RenderMethodNotAllowed(w)
	})

	return &Router{mux: mux}
}

// ServeHTTP implements http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handle registers handler for method and pattern under a route name
func (r *Router) Handle(method, pattern, name string, handler http.HandlerFunc) {
	r.mux.Method(method, pattern, handler)
	r.routes = append(r.routes, RouteInfo{Method: method, Pattern: pattern, Name: name})
}

// Routes returns the registered routes in registration order
func (r *Router) Routes() []RouteInfo {
	routes := make([]RouteInfo, len(r.routes))
	copy(routes, r.routes)
	return routes
}

// RouteList returns a formatted list of all routes
func (r *Router) RouteList() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-8s %-48s %s\n", "METHOD", "PATTERN", "NAME"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	for _, info := range r.routes {
		sb.WriteString(fmt.Sprintf("%-8s %-48s %s\n", info.Method, info.Pattern, info.Name))
	}
	return sb.String()
}
