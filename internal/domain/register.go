package domain

import (
	"github.com/conduit-lang/causeway/internal/resource"
)

// AnonymousName replaces the signer's name on anonymous signatures
const AnonymousName = "Anonymous"

// lifecycleAttributes are maintained by the store. created_at orders every
// page, so clients never write it.
var lifecycleAttributes = []string{"createdAt", "updatedAt"}

// Register describes every entity type with its conversion hooks
func Register(registry *resource.Registry) error {
	registrations := []struct {
		entity any
		opts   []resource.Option
	}{
		{entity: User{}},
		{entity: Session{}},
		{entity: Group{}},
		{
			entity: Cause{},
			opts: []resource.Option{
				resource.WithHooks("status", causeStatuses.hooks()),
				resource.WithReadOnly("signatureCount"),
			},
		},
		{
			entity: Objective{},
			opts: []resource.Option{
				resource.WithHooks("status", objectiveStatuses.hooks()),
			},
		},
		{
			entity: Signature{},
			opts: []resource.Option{
				resource.WithHooks("displayName", resource.Hooks{ToExternal: signatureDisplayName}),
				resource.WithReadOnly("displayName"),
			},
		},
		{entity: ActivityLog{}},
	}

	for _, r := range registrations {
		opts := append([]resource.Option{resource.WithReadOnly(lifecycleAttributes...)}, r.opts...)
		if _, err := registry.Register(r.entity, opts...); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry with every entity registered. It panics on
// a configuration error.
func NewRegistry() *resource.Registry {
	registry := resource.NewRegistry()
	if err := Register(registry); err != nil {
		panic(err)
	}
	return registry
}

func signatureDisplayName(entity any) (any, error) {
	s := entity.(*Signature)
	if s.Anonymous {
		return AnonymousName, nil
	}
	return s.Name, nil
}
