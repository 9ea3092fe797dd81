package router

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/conduit-lang/causeway/internal/domain"
	"github.com/conduit-lang/causeway/internal/store"
	"github.com/conduit-lang/causeway/internal/web/handlers"
	"github.com/conduit-lang/causeway/internal/web/middleware"
)

// APIConfig configures the route table
type APIConfig struct {
	// BasePath prefixes every route, e.g. "/api"
	BasePath string
	Stack    middleware.StackConfig
	Logger   *zap.Logger
}

// NewAPI mounts a controller for every entity type plus the collections
// nested under causes. Every type in the converter's registry must be served.
func NewAPI(repos *store.Repositories, deps handlers.Deps, cfg APIConfig) (*Router, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Related == nil {
		deps.Related = handlers.RelatedFrom(repos)
	}

	r := NewRouter(middleware.Default(logger, cfg.Stack))

	if _, _, err := mount(r, cfg.BasePath, repos.Users, deps); err != nil {
		return nil, err
	}
	if _, _, err := mount(r, cfg.BasePath, repos.Sessions, deps); err != nil {
		return nil, err
	}
	if _, _, err := mount(r, cfg.BasePath, repos.Groups, deps); err != nil {
		return nil, err
	}
	_, causes, err := mount(r, cfg.BasePath, repos.Causes, deps)
	if err != nil {
		return nil, err
	}
	if _, _, err := mount(r, cfg.BasePath, repos.Objectives, deps); err != nil {
		return nil, err
	}
	signatures, _, err := mount(r, cfg.BasePath, repos.Signatures, deps)
	if err != nil {
		return nil, err
	}
	logs, _, err := mount(r, cfg.BasePath, repos.ActivityLogs, deps)
	if err != nil {
		return nil, err
	}

	r.RegisterNested(causes, logs.TypeName(), logs.ListNested(repos.ActivityLogs.Table().Scope, causes.IDParamName))
	r.RegisterNested(causes, signatures.TypeName(), signatures.ListNested(repos.Signatures.Table().Scope, causes.IDParamName))

	if err := checkServed(r, deps.Converter.Registry().List()); err != nil {
		return nil, err
	}
	return r, nil
}

// checkServed reports registered types that have no routes
func checkServed(r *Router, typeNames []string) error {
	served := make(map[string]bool)
	for _, route := range r.Routes() {
		resource, _, _ := strings.Cut(route.Name, ".")
		served[resource] = true
	}
	for _, name := range typeNames {
		if !served[name] {
			return fmt.Errorf("resource type %s is registered but not served", name)
		}
	}
	return nil
}

// mount registers the standard operations for the entity type of repo
func mount[T domain.Entity](r *Router, basePath string, repo *store.Repository[T], deps handlers.Deps) (*handlers.Controller[T], *ResourceDefinition, error) {
	c, err := handlers.NewController(repo, deps)
	if err != nil {
		return nil, nil, err
	}

	def := NewResourceDefinition(c.TypeName(), basePath)
	def.IDParamName = handlers.IDParam
	err = r.RegisterResource(def, ResourceHandlers{
		List:   c.List,
		Create: c.Create,
		Show:   c.Show,
		Patch:  c.Patch,
		Delete: c.Delete,
	})
	if err != nil {
		return nil, nil, err
	}
	return c, def, nil
}
