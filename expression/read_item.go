package expression

import (
	"errors"
	"fmt"

	"github.com/truora/dynamap/metadata"
)

// ErrUnknownProperty when a binding names a property the entity type does not declare
var ErrUnknownProperty = errors.New("unknown property")

// ReadItem is the root of a point-read plan: one item of an entity type looked up
// by the parameters bound to its id, key and partition key properties.
type ReadItem struct {
	nodeBase
	container  string
	entityType *metadata.EntityType
	// parameters maps property names to the parameter bound to them
	parameters map[string]*Parameter
}

// NewReadItem returns a point-read plan binding each property name to a parameter name
func NewReadItem(et *metadata.EntityType, bindings map[string]string) (*ReadItem, error) {
	params := make(map[string]*Parameter, len(bindings))

	for propertyName, parameterName := range bindings {
		p := et.FindProperty(propertyName)
		if p == nil {
			return nil, fmt.Errorf("%w: %q in entity type %q", ErrUnknownProperty, propertyName, et.Name)
		}

		params[propertyName] = NewParameter(parameterName, p.GoType, MappingFor(p))
	}

	return &ReadItem{
		nodeBase:   newBase(et.GoType, nil),
		container:  et.Container,
		entityType: et,
		parameters: params,
	}, nil
}

// Container returns the container the item is read from
func (r *ReadItem) Container() string { return r.container }

// EntityType returns the entity type of the item
func (r *ReadItem) EntityType() *metadata.EntityType { return r.entityType }

// ParameterName returns the parameter bound to the property
func (r *ReadItem) ParameterName(p *metadata.Property) (string, bool) {
	if p == nil {
		return "", false
	}

	param, ok := r.parameters[p.Name]
	if !ok {
		return "", false
	}

	return param.Name(), true
}

// PropertyParameters returns the property name to parameter name bindings
func (r *ReadItem) PropertyParameters() map[string]string {
	bindings := make(map[string]string, len(r.parameters))
	for name, param := range r.parameters {
		bindings[name] = param.Name()
	}

	return bindings
}

// boundProperties returns the bound property names in declaration order
func (r *ReadItem) boundProperties() []string {
	names := make([]string, 0, len(r.parameters))

	for _, p := range r.entityType.Properties() {
		if _, ok := r.parameters[p.Name]; ok {
			names = append(names, p.Name)
		}
	}

	return names
}

// VisitChildren visits the bound parameters
func (r *ReadItem) VisitChildren(v Visitor) (Node, error) {
	var rebuilt map[string]*Parameter

	for _, name := range r.boundProperties() {
		visited, err := v.Visit(r.parameters[name])
		if err != nil {
			return nil, err
		}

		param, ok := visited.(*Parameter)
		if !ok {
			return nil, fmt.Errorf("read item binding %q must remain a parameter, got %T", name, visited)
		}

		if param == r.parameters[name] {
			continue
		}

		if rebuilt == nil {
			rebuilt = make(map[string]*Parameter, len(r.parameters))
			for k, p := range r.parameters {
				rebuilt[k] = p
			}
		}

		rebuilt[name] = param
	}

	if rebuilt == nil {
		return r, nil
	}

	return &ReadItem{
		nodeBase:   r.nodeBase,
		container:  r.container,
		entityType: r.entityType,
		parameters: rebuilt,
	}, nil
}

func (r *ReadItem) equal(o *ReadItem) bool {
	if r.container != o.container || r.entityType != o.entityType || len(r.parameters) != len(o.parameters) {
		return false
	}

	for name, param := range r.parameters {
		if !Equal(param, o.parameters[name]) {
			return false
		}
	}

	return true
}

// Print writes ReadItem(container, attribute=@param, ...)
func (r *ReadItem) Print(p *Printer) {
	p.Append("ReadItem(" + r.container)

	for _, name := range r.boundProperties() {
		p.Append(", " + r.entityType.FindProperty(name).StoreName + "=")
		r.parameters[name].Print(p)
	}

	p.Append(")")
}

func (r *ReadItem) String() string { return Print(r) }
