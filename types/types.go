package types

import (
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// IDAttributeName is the attribute every container uses to store the item identifier
const IDAttributeName = "id"

// Document is a raw item as returned by a point lookup
type Document map[string]ddbtypes.AttributeValue

// ParameterValues maps parameter names to the values bound at execution time
type ParameterValues map[string]any

// Lookup returns the value bound to name
func (pv ParameterValues) Lookup(name string) (any, bool) {
	if pv == nil {
		return nil, false
	}

	v, ok := pv[name]

	return v, ok
}

// ContainerSchema describes how a logical container maps to a table
type ContainerSchema struct {
	// Table is the physical table name, the container name is used when empty
	Table string
	// PartitionKeyAttribute is the table hash key, empty when the container is not partitioned
	PartitionKeyAttribute string
	// IDAttribute is the item identifier attribute, IDAttributeName when empty
	IDAttribute string
}

// TableName returns the physical table for the container
func (cs ContainerSchema) TableName(container string) string {
	if cs.Table != "" {
		return cs.Table
	}

	return container
}

// IDAttributeOrDefault returns the identifier attribute name
func (cs ContainerSchema) IDAttributeOrDefault() string {
	if cs.IDAttribute != "" {
		return cs.IDAttribute
	}

	return IDAttributeName
}

// Key builds the primary key of an item for the given schema.
// Partitioned containers use the partition key as hash key and the id as range key.
func (cs ContainerSchema) Key(partitionKey, resourceID string) Document {
	id := cs.IDAttributeOrDefault()
	key := Document{
		id: &ddbtypes.AttributeValueMemberS{Value: resourceID},
	}

	if cs.PartitionKeyAttribute != "" && cs.PartitionKeyAttribute != id {
		key[cs.PartitionKeyAttribute] = &ddbtypes.AttributeValueMemberS{Value: partitionKey}
	}

	return key
}

// Copy returns a shallow copy of the document
func (d Document) Copy() Document {
	if d == nil {
		return nil
	}

	copy := Document{}
	for key, val := range d {
		copy[key] = val
	}

	return copy
}
