package expression

import (
	"reflect"
)

// Parameter is a named placeholder bound to a value at execution time
type Parameter struct {
	nodeBase
	name string
}

// NewParameter returns a parameter node
func NewParameter(name string, typ reflect.Type, mapping *TypeMapping) *Parameter {
	return &Parameter{
		nodeBase: newBase(typ, mapping),
		name:     name,
	}
}

// Name returns the parameter name
func (p *Parameter) Name() string { return p.name }

// ApplyTypeMapping returns a copy of the parameter using mapping
func (p *Parameter) ApplyTypeMapping(mapping *TypeMapping) *Parameter {
	return NewParameter(p.name, p.typ, mapping)
}

// VisitChildren returns the parameter itself, it has no children
func (p *Parameter) VisitChildren(Visitor) (Node, error) { return p, nil }

// Print writes @name
func (p *Parameter) Print(pr *Printer) {
	pr.Append("@" + p.name)
}

func (p *Parameter) String() string { return Print(p) }

// Equal reports whether other is an equal parameter
func (p *Parameter) Equal(other Node) bool { return Equal(p, other) }

// Hash returns the node hash
func (p *Parameter) Hash() uint64 { return Hash(p) }
