package expression

import (
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
	"github.com/truora/dynamap/types"
)

// Node is an immutable expression tree node.
//
// The set of nodes is closed: Equal and Hash switch over every
// concrete type of this package.
type Node interface {
	fmt.Stringer
	// Type is the Go type the node evaluates to
	Type() reflect.Type
	// TypeMapping is the runtime to store coercion of the value, nil when unmapped
	TypeMapping() *TypeMapping
	// Print renders the diagnostic form of the node
	Print(p *Printer)
	// VisitChildren returns the node rebuilt from its visited children
	VisitChildren(v Visitor) (Node, error)

	base() *nodeBase
}

// Visitor visits the children of a node
type Visitor interface {
	Visit(n Node) (Node, error)
}

// VisitorFunc adapts a function to Visitor
type VisitorFunc func(Node) (Node, error)

// Visit calls f(n)
func (f VisitorFunc) Visit(n Node) (Node, error) { return f(n) }

// nodeBase holds the attributes shared by every node
type nodeBase struct {
	typ     reflect.Type
	mapping *TypeMapping
}

// newBase returns the shared node attributes
func newBase(typ reflect.Type, mapping *TypeMapping) nodeBase {
	return nodeBase{typ: typ, mapping: mapping}
}

// Type returns the result type
func (b *nodeBase) Type() reflect.Type { return b.typ }

// TypeMapping returns the type mapping or nil
func (b *nodeBase) TypeMapping() *TypeMapping { return b.mapping }

// VisitChildren fails: every node must define how it is rebuilt from its children
func (b *nodeBase) VisitChildren(Visitor) (Node, error) {
	return nil, types.ErrVisitChildrenMustBeOverridden
}

func (b *nodeBase) base() *nodeBase { return b }

func (b *nodeBase) equal(o *nodeBase) bool {
	return b.typ == o.typ && b.mapping.Equal(o.mapping)
}

// Equal reports whether a and b are the same variant with the same result type,
// type mapping and variant attributes.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if reflect.TypeOf(a) != reflect.TypeOf(b) || !a.base().equal(b.base()) {
		return false
	}

	switch x := a.(type) {
	case *Parameter:
		return x.name == b.(*Parameter).name
	case *Constant:
		return reflect.DeepEqual(x.value, b.(*Constant).value)
	case *Property:
		y := b.(*Property)
		return x.entity == y.entity && x.property == y.property
	case *Binary:
		y := b.(*Binary)
		return x.op == y.op && Equal(x.left, y.left) && Equal(x.right, y.right)
	case *ReadItem:
		return x.equal(b.(*ReadItem))
	}

	return true
}

// Hash returns a hash consistent with Equal
func Hash(n Node) uint64 {
	d := xxhash.New()
	writeHash(d, n)

	return d.Sum64()
}

func writeHash(d *xxhash.Digest, n Node) {
	if n == nil {
		_, _ = d.WriteString("<nil>")
		return
	}

	b := n.base()

	_, _ = d.WriteString(fmt.Sprintf("%T|", n))
	if b.typ != nil {
		_, _ = d.WriteString(b.typ.String())
	}

	_, _ = d.WriteString("|")
	b.mapping.writeHash(d)

	switch x := n.(type) {
	case *Parameter:
		_, _ = d.WriteString("|" + x.name)
	case *Constant:
		_, _ = d.WriteString("|" + constantHashKey(x.value))
	case *Property:
		_, _ = d.WriteString("|" + x.entity.Name + "." + x.property.Name)
	case *Binary:
		_, _ = d.WriteString("|" + string(x.op))
		writeHash(d, x.left)
		writeHash(d, x.right)
	case *ReadItem:
		_, _ = d.WriteString("|" + x.container + "|" + x.entityType.Name)
		for _, name := range x.boundProperties() {
			_, _ = d.WriteString("|" + name + "=")
			writeHash(d, x.parameters[name])
		}
	}
}

// Transform rebuilds n bottom-up, replacing every node with f(node)
func Transform(n Node, f func(Node) (Node, error)) (Node, error) {
	rebuilt, err := n.VisitChildren(VisitorFunc(func(child Node) (Node, error) {
		return Transform(child, f)
	}))
	if err != nil {
		return nil, err
	}

	return f(rebuilt)
}

// Parameters returns the parameters of the tree in visiting order
func Parameters(n Node) ([]*Parameter, error) {
	params := []*Parameter{}

	_, err := Transform(n, func(node Node) (Node, error) {
		if p, ok := node.(*Parameter); ok {
			params = append(params, p)
		}

		return node, nil
	})

	return params, err
}
