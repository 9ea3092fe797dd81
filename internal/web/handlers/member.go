package handlers

import (
	"net/http"

	"github.com/conduit-lang/causeway/internal/domain"
	"github.com/conduit-lang/causeway/internal/resource"
	"github.com/conduit-lang/causeway/internal/web/cache"
	"github.com/conduit-lang/causeway/internal/web/query"
	"github.com/conduit-lang/causeway/internal/web/response"
)

// Show serves one resource, with ?include and sparse fieldsets. Converted
// resources are cached by type and id; conditional requests are answered
// with 304 when the ETag matches.
func (c *Controller[T]) Show(w http.ResponseWriter, r *http.Request) {
	id, err := resourceID(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	values := r.URL.Query()
	if err := query.CheckUnsupported(values); err != nil {
		fail(w, r, err)
		return
	}
	includes, err := query.ParseInclude(values, c.meta)
	if err != nil {
		fail(w, r, err)
		return
	}

	res, ok := c.cache.Get(r.Context(), c.meta.TypeName, id)
	if !ok {
		entity, err := c.repo.Find(r.Context(), id)
		if err != nil {
			fail(w, r, err)
			return
		}
		if res, err = c.converter.ToResource(entity); err != nil {
			fail(w, r, err)
			return
		}
		c.cache.Put(r.Context(), res)
	}

	included, err := c.resolveIncluded(r.Context(), includes, []*resource.Resource{res})
	if err != nil {
		fail(w, r, err)
		return
	}

	fields := query.ParseFields(values)
	response.ApplySparseFieldsets(fields, res)
	response.ApplySparseFieldsets(fields, included...)

	doc := response.Single(res)
	doc.Included = included

	data, err := response.Encode(doc)
	if err != nil {
		fail(w, r, err)
		return
	}
	etag := cache.GenerateWeakETag(data)
	w.Header().Set("ETag", etag)
	if cache.MatchesETag(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	response.Write(w, http.StatusOK, data)
}

// Create stores a new resource. A client supplied id must be a canonical uuid.
func (c *Controller[T]) Create(w http.ResponseWriter, r *http.Request) {
	doc, err := response.DecodeResource(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if doc.ID != "" && !validID(doc.ID) {
		fail(w, r, &resource.FieldError{Pointer: "/data/id", Detail: "client generated ids must be uuids"})
		return
	}

	entity := c.repo.Table().New()
	if err := c.decodeInto(entity, doc); err != nil {
		fail(w, r, err)
		return
	}
	if err := c.repo.Insert(r.Context(), entity); err != nil {
		fail(w, r, err)
		return
	}

	res, err := c.converter.ToResource(entity)
	if err != nil {
		fail(w, r, err)
		return
	}
	c.cache.Evict(r.Context(), linkage(res)...)

	w.Header().Set("Location", r.URL.Path+"/"+res.ID)
	if err := response.Render(w, http.StatusCreated, response.Single(res)); err != nil {
		fail(w, r, err)
	}
}

// Patch applies the members present in the request document to a stored
// resource. Absent members keep their stored values.
func (c *Controller[T]) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := resourceID(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	doc, err := response.DecodeResource(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if doc.ID != id {
		fail(w, r, response.NewHTTPError(http.StatusConflict, "resource id does not match the URL").WithPointer("/data/id"))
		return
	}

	entity, err := c.repo.Find(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	before, err := c.converter.ToResource(entity)
	if err != nil {
		fail(w, r, err)
		return
	}

	if err := c.decodeInto(entity, doc); err != nil {
		fail(w, r, err)
		return
	}
	if err := c.repo.Update(r.Context(), entity); err != nil {
		fail(w, r, err)
		return
	}

	res, err := c.converter.ToResource(entity)
	if err != nil {
		fail(w, r, err)
		return
	}
	c.cache.Evict(r.Context(), append(linkage(before), linkage(res)...)...)

	if err := response.Render(w, http.StatusOK, response.Single(res)); err != nil {
		fail(w, r, err)
	}
}

// Delete soft-deletes a resource. The row keeps anchoring cursors.
func (c *Controller[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := resourceID(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	entity, err := c.repo.Find(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	res, err := c.converter.ToResource(entity)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := c.repo.SoftDelete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	c.cache.Evict(r.Context(), linkage(res)...)

	w.WriteHeader(http.StatusNoContent)
}

// decodeInto applies doc onto entity and validates the result
func (c *Controller[T]) decodeInto(entity T, doc *resource.Resource) error {
	props, err := c.converter.FromResource(entity, doc)
	if err != nil {
		return err
	}
	if err := c.converter.Apply(entity, props); err != nil {
		return err
	}
	if v, ok := any(entity).(domain.Validator); ok {
		return v.Validate()
	}
	return nil
}

func (c *Controller[T]) toResources(entities []T) ([]*resource.Resource, error) {
	return resource.ToResources(c.converter, entities)
}

// linkage returns res and every resource it links to. Writes evict them all
// because related resources may carry aggregates over res.
func linkage(res *resource.Resource) []resource.Identifier {
	ids := []resource.Identifier{res.Identifier()}
	for _, name := range sortedNames(res.Relationships) {
		if target, ok := res.Related(name); ok {
			ids = append(ids, *target)
		}
	}
	return ids
}
