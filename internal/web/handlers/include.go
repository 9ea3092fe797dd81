package handlers

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/conduit-lang/causeway/internal/resource"
)

// resolveIncluded loads the resources linked from primary through rels.
// Each resource appears once and never duplicates primary data. Linkage to
// a missing or deleted resource is left out of the compound document.
func (c *Controller[T]) resolveIncluded(ctx context.Context, rels []*resource.RelationshipField, primary []*resource.Resource) ([]*resource.Resource, error) {
	if len(rels) == 0 {
		return nil, nil
	}

	seen := make(map[resource.Identifier]bool, len(primary))
	for _, res := range primary {
		seen[res.Identifier()] = true
	}

	var included []*resource.Resource
	for _, rel := range rels {
		var pending []string
		for _, res := range primary {
			target, ok := res.Related(rel.External)
			if !ok || seen[*target] {
				continue
			}
			seen[*target] = true

			if cached, ok := c.cache.Get(ctx, rel.RelatedType, target.ID); ok {
				included = append(included, cached)
				continue
			}
			pending = append(pending, target.ID)
		}
		if len(pending) == 0 {
			continue
		}

		finder, ok := c.related[rel.RelatedType]
		if !ok {
			return nil, fmt.Errorf("no finder for related type %s", rel.RelatedType)
		}
		entities, err := finder.FindEntities(ctx, pending)
		if err != nil {
			return nil, fmt.Errorf("failed to load included %s: %w", rel.RelatedType, err)
		}
		for _, entity := range entities {
			res, err := c.converter.ToResource(entity)
			if err != nil {
				return nil, err
			}
			c.cache.Put(ctx, res)
			included = append(included, res)
		}
	}
	return included, nil
}

func sortedNames[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
