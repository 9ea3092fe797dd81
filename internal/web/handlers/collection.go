package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/conduit-lang/causeway/internal/pagination"
	"github.com/conduit-lang/causeway/internal/store"
	"github.com/conduit-lang/causeway/internal/web/query"
	"github.com/conduit-lang/causeway/internal/web/response"
)

// List serves one page of the whole collection
func (c *Controller[T]) List(w http.ResponseWriter, r *http.Request) {
	c.servePage(w, r, nil)
}

// ListNested serves one page of the rows whose column matches the parent id
// route parameter. A parent without rows yields an empty page; a malformed
// parent id is not found.
func (c *Controller[T]) ListNested(column, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parent := chi.URLParam(r, param)
		if !validID(parent) {
			fail(w, r, fmt.Errorf("parent %q: %w", parent, store.ErrNotFound))
			return
		}
		c.servePage(w, r, &store.Scope{Column: column, Value: parent})
	}
}

func (c *Controller[T]) servePage(w http.ResponseWriter, r *http.Request, scope *store.Scope) {
	values := r.URL.Query()
	if err := query.CheckUnsupported(values); err != nil {
		fail(w, r, err)
		return
	}

	p, err := pagination.FromQuery(values, pagination.Options{
		Limit:        c.limit,
		Order:        c.order,
		FilterFields: c.repo.Table().FilterFields(),
	})
	if err != nil {
		fail(w, r, err)
		return
	}

	includes, err := query.ParseInclude(values, c.meta)
	if err != nil {
		fail(w, r, err)
		return
	}

	page, err := pagination.Paginate[T](r.Context(), p, c.repo.Source(scope))
	if err != nil {
		fail(w, r, err)
		return
	}

	resources, err := c.toResources(page.Items)
	if err != nil {
		fail(w, r, err)
		return
	}

	included, err := c.resolveIncluded(r.Context(), includes, resources)
	if err != nil {
		fail(w, r, err)
		return
	}

	fields := query.ParseFields(values)
	response.ApplySparseFieldsets(fields, resources...)
	response.ApplySparseFieldsets(fields, included...)

	doc := response.Collection(resources, pagination.BuildLinks(r.URL.Path, page.Filter, page))
	doc.Included = included
	if err := response.Render(w, http.StatusOK, doc); err != nil {
		fail(w, r, err)
	}
}
