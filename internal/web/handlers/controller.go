// Package handlers serves domain entities as JSON:API resources. One
// generic Controller per entity type covers list, show, create, patch and
// delete, plus collections nested under a parent resource.
package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conduit-lang/causeway/internal/domain"
	"github.com/conduit-lang/causeway/internal/pagination"
	"github.com/conduit-lang/causeway/internal/resource"
	"github.com/conduit-lang/causeway/internal/store"
	"github.com/conduit-lang/causeway/internal/web/cache"
	webcontext "github.com/conduit-lang/causeway/internal/web/context"
	"github.com/conduit-lang/causeway/internal/web/response"
)

// IDParam is the route parameter holding a resource id
const IDParam = "id"

// Finder loads entities of one type by id for compound documents
type Finder interface {
	FindEntities(ctx context.Context, ids []string) ([]domain.Entity, error)
}

// Related resolves included resources by external type name
type Related map[string]Finder

// RelatedFrom indexes every repository by the type name it serves
func RelatedFrom(repos *store.Repositories) Related {
	return Related{
		(&domain.User{}).ResourceType():        repos.Users,
		(&domain.Session{}).ResourceType():     repos.Sessions,
		(&domain.Group{}).ResourceType():       repos.Groups,
		(&domain.Cause{}).ResourceType():       repos.Causes,
		(&domain.Objective{}).ResourceType():   repos.Objectives,
		(&domain.Signature{}).ResourceType():   repos.Signatures,
		(&domain.ActivityLog{}).ResourceType(): repos.ActivityLogs,
	}
}

// Deps are shared by every controller
type Deps struct {
	Converter *resource.Converter
	Cache     *cache.Resources
	Related   Related
	// Limit is the fixed page size
	Limit int
	// Order is the direction collections are served in
	Order pagination.Order
}

// Controller serves one entity type
type Controller[T domain.Entity] struct {
	repo      *store.Repository[T]
	converter *resource.Converter
	meta      *resource.TypeMetadata
	cache     *cache.Resources
	related   Related
	limit     int
	order     pagination.Order
}

// NewController creates a controller for the entity type stored by repo
func NewController[T domain.Entity](repo *store.Repository[T], deps Deps) (*Controller[T], error) {
	registry := deps.Converter.Registry()
	meta, err := registry.Describe(repo.Table().New())
	if err != nil {
		return nil, err
	}
	for _, rel := range meta.Relationships {
		if _, ok := registry.Lookup(rel.RelatedType); !ok {
			return nil, fmt.Errorf("%s relationship %s links unregistered type %s", meta.TypeName, rel.External, rel.RelatedType)
		}
	}

	resources := deps.Cache
	if resources == nil {
		resources = cache.NewResources(cache.Noop{}, 0, nil)
	}
	limit := deps.Limit
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}

	return &Controller[T]{
		repo:      repo,
		converter: deps.Converter,
		meta:      meta,
		cache:     resources,
		related:   deps.Related,
		limit:     limit,
		order:     deps.Order,
	}, nil
}

// TypeName returns the external type name served by the controller
func (c *Controller[T]) TypeName() string {
	return c.meta.TypeName
}

// resourceID reads and checks the id route parameter. Anything other than
// a canonical id cannot name a row, so it is reported as not found.
func resourceID(r *http.Request) (string, error) {
	id := chi.URLParam(r, IDParam)
	if !validID(id) {
		return "", fmt.Errorf("resource %q: %w", id, store.ErrNotFound)
	}
	return id, nil
}

// validID reports whether id is a canonical lowercase uuid
func validID(id string) bool {
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.String() == id
}

// fail renders err and logs server side failures
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := response.RenderError(w, err)
	if status >= http.StatusInternalServerError {
		webcontext.Logger(r.Context()).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}
