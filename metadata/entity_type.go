package metadata

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/truora/dynamap/types"
)

// StoreKeyPropertyName is the shadow property added to carry a generated item id
const StoreKeyPropertyName = "__id"

var (
	// ErrDuplicateProperty when a property name is declared twice
	ErrDuplicateProperty = errors.New("duplicate property")
	// ErrPropertyNotFound when a referenced property is not declared
	ErrPropertyNotFound = errors.New("property not found")
	// ErrEmptyPrimaryKey when a primary key without properties is declared
	ErrEmptyPrimaryKey = errors.New("primary key must contain at least one property")
)

// EntityType describes how a Go type is mapped to a container
type EntityType struct {
	Name          string
	GoType        reflect.Type
	Container     string
	Discriminator string

	properties               []*Property
	byName                   map[string]*Property
	primaryKey               []*Property
	partitionKeyPropertyName string
}

// NewEntityType creates an entity type stored in container
func NewEntityType(name string, goType reflect.Type, container string) *EntityType {
	return &EntityType{
		Name:      name,
		GoType:    goType,
		Container: container,
		byName:    map[string]*Property{},
	}
}

// AddProperty declares a property
func (et *EntityType) AddProperty(p *Property) error {
	if _, ok := et.byName[p.Name]; ok {
		return fmt.Errorf("%w: %q in entity type %q", ErrDuplicateProperty, p.Name, et.Name)
	}

	p.declaringType = et
	et.properties = append(et.properties, p)
	et.byName[p.Name] = p

	return nil
}

// MustAddProperty declares a property and panics on failure
func (et *EntityType) MustAddProperty(p *Property) *EntityType {
	if err := et.AddProperty(p); err != nil {
		panic(err)
	}

	return et
}

// SetPrimaryKey declares the primary key properties in order
func (et *EntityType) SetPrimaryKey(names ...string) error {
	if len(names) == 0 {
		return ErrEmptyPrimaryKey
	}

	key := make([]*Property, 0, len(names))

	for _, name := range names {
		p, ok := et.byName[name]
		if !ok {
			return fmt.Errorf("%w: primary key %q in entity type %q", ErrPropertyNotFound, name, et.Name)
		}

		key = append(key, p)
	}

	et.primaryKey = key

	return nil
}

// SetPartitionKey declares the partition key property
func (et *EntityType) SetPartitionKey(name string) error {
	if _, ok := et.byName[name]; !ok {
		return fmt.Errorf("%w: partition key %q in entity type %q", ErrPropertyNotFound, name, et.Name)
	}

	et.partitionKeyPropertyName = name

	return nil
}

// AddStoreKeyProperty adds a shadow id property generated from the primary key
// unless a property is already stored under the id attribute
func (et *EntityType) AddStoreKeyProperty() error {
	if et.IDProperty() != nil {
		return nil
	}

	p := NewProperty(StoreKeyPropertyName, stringType).
		WithStoreName(types.IDAttributeName).
		WithValueGenerator(IDValueGenerator{})

	return et.AddProperty(p)
}

// Properties returns the declared properties in declaration order
func (et *EntityType) Properties() []*Property {
	return et.properties
}

// PrimaryKey returns the primary key properties
func (et *EntityType) PrimaryKey() []*Property {
	return et.primaryKey
}

// FindProperty returns the property with the given name or nil
func (et *EntityType) FindProperty(name string) *Property {
	return et.byName[name]
}

// FindStoreProperty returns the property stored under storeName or nil
func (et *EntityType) FindStoreProperty(storeName string) *Property {
	for _, p := range et.properties {
		if p.StoreName == storeName {
			return p
		}
	}

	return nil
}

// IDProperty returns the property mapped to the item identifier
func (et *EntityType) IDProperty() *Property {
	return et.FindStoreProperty(types.IDAttributeName)
}

// PartitionKeyPropertyName returns the partition key property name, empty when none is declared
func (et *EntityType) PartitionKeyPropertyName() string {
	return et.partitionKeyPropertyName
}

// PartitionKeyProperty returns the partition key property or nil
func (et *EntityType) PartitionKeyProperty() *Property {
	if et.partitionKeyPropertyName == "" {
		return nil
	}

	return et.byName[et.partitionKeyPropertyName]
}

// ContainerSchema returns the store layout implied by the entity type
func (et *EntityType) ContainerSchema() types.ContainerSchema {
	schema := types.ContainerSchema{Table: et.Container}

	if pk := et.PartitionKeyProperty(); pk != nil {
		schema.PartitionKeyAttribute = pk.StoreName
	}

	return schema
}

func (et *EntityType) String() string {
	return et.Name
}
