package query

import (
	"github.com/truora/dynamap/expression"
	"github.com/truora/dynamap/metadata"
)

// KeyParameterPrefix prefixes the parameters bound by PlanByKey and PlanByID
const KeyParameterPrefix = "__key_"

// KeyParameterName returns the parameter bound to the property by the plan builders
func KeyParameterName(p *metadata.Property) string {
	return KeyParameterPrefix + p.Name
}

// PlanByKey returns a point-read plan binding every primary key property and the partition key
func PlanByKey(et *metadata.EntityType) (*expression.ReadItem, error) {
	bindings := map[string]string{}

	for _, p := range et.PrimaryKey() {
		bindings[p.Name] = KeyParameterName(p)
	}

	if p := et.PartitionKeyProperty(); p != nil {
		bindings[p.Name] = KeyParameterName(p)
	}

	return expression.NewReadItem(et, bindings)
}

// PlanByID returns a point-read plan binding the id property and the partition key
func PlanByID(et *metadata.EntityType) (*expression.ReadItem, error) {
	bindings := map[string]string{}

	if p := et.IDProperty(); p != nil {
		bindings[p.Name] = KeyParameterName(p)
	}

	if p := et.PartitionKeyProperty(); p != nil {
		bindings[p.Name] = KeyParameterName(p)
	}

	return expression.NewReadItem(et, bindings)
}
