// Package query executes point-read plans against a store.
package query

import (
	"github.com/truora/dynamap/expression"
	"github.com/truora/dynamap/metadata"
	"github.com/truora/dynamap/tracking"
	"github.com/truora/dynamap/types"
)

// ResolveResourceID returns the item id of plan.
// A bound id value wins; otherwise the id is generated from the bound primary key values
// on a transient entry that never reaches the identity map of sm.
func ResolveResourceID(plan *expression.ReadItem, params types.ParameterValues, sm *tracking.StateManager) (string, error) {
	et := plan.EntityType()
	idProperty := et.IDProperty()

	if v, ok := parameterValue(plan, params, idProperty); ok {
		id, err := providerString(idProperty, v)
		if err != nil {
			return "", err
		}

		if id == "" {
			return "", types.Errorf(types.ErrInvalidResourceID, "entity type %q", et.Name)
		}

		return id, nil
	}

	generated, ok, err := generateIDFromKeys(plan, params, sm, idProperty)
	if err != nil {
		return "", err
	}

	if !ok {
		return "", types.Errorf(types.ErrResourceIDMissing, "entity type %q", et.Name)
	}

	id, err := providerString(idProperty, generated)
	if err != nil {
		return "", err
	}

	if id == "" {
		return "", types.Errorf(types.ErrResourceIDMissing, "entity type %q", et.Name)
	}

	return id, nil
}

func generateIDFromKeys(plan *expression.ReadItem, params types.ParameterValues, sm *tracking.StateManager, idProperty *metadata.Property) (any, bool, error) {
	if idProperty == nil {
		return nil, false, nil
	}

	entry := sm.NewTransientEntry(plan.EntityType())

	for _, p := range plan.EntityType().PrimaryKey() {
		if v, ok := parameterValue(plan, params, p); ok {
			entry.SetValue(p, v)
		}
	}

	if err := entry.SetState(tracking.Added); err != nil {
		return nil, false, err
	}

	value, ok := entry.Value(idProperty)

	if err := entry.SetState(tracking.Detached); err != nil {
		return nil, false, err
	}

	return value, ok && value != nil, nil
}

// ResolvePartitionKey returns the partition key of plan, nil when the entity type declares none
func ResolvePartitionKey(plan *expression.ReadItem, params types.ParameterValues) (*string, error) {
	et := plan.EntityType()

	p := et.PartitionKeyProperty()
	if p == nil {
		return nil, nil
	}

	v, ok := parameterValue(plan, params, p)
	if !ok {
		return nil, types.Errorf(types.ErrPartitionKeyMissing, "property %s.%s", et.Name, p.Name)
	}

	partitionKey, err := providerString(p, v)
	if err != nil {
		return nil, err
	}

	if partitionKey == "" {
		return nil, types.Errorf(types.ErrInvalidPartitionKey, "property %s.%s", et.Name, p.Name)
	}

	return &partitionKey, nil
}

func parameterValue(plan *expression.ReadItem, params types.ParameterValues, p *metadata.Property) (any, bool) {
	name, ok := plan.ParameterName(p)
	if !ok {
		return nil, false
	}

	return params.Lookup(name)
}

func providerString(p *metadata.Property, v any) (string, error) {
	if v == nil {
		return "", nil
	}

	return p.ProviderString(v)
}
