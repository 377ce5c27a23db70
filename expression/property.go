package expression

import (
	"strconv"

	"github.com/truora/dynamap/metadata"
)

// Property reads a mapped property of the current item
type Property struct {
	nodeBase
	entity   *metadata.EntityType
	property *metadata.Property
}

// NewProperty returns a property access typed after the property
func NewProperty(p *metadata.Property) *Property {
	return &Property{
		nodeBase: newBase(p.GoType, MappingFor(p)),
		entity:   p.DeclaringType(),
		property: p,
	}
}

// Property returns the accessed property
func (p *Property) Property() *metadata.Property { return p.property }

// VisitChildren returns the property access itself
func (p *Property) VisitChildren(Visitor) (Node, error) { return p, nil }

// Print writes c["attribute"]
func (p *Property) Print(pr *Printer) {
	pr.Append("c[" + strconv.Quote(p.property.StoreName) + "]")
}

func (p *Property) String() string { return Print(p) }
