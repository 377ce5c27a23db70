package expression

import (
	"reflect"
)

// Operator is a binary operator
type Operator string

const (
	// OperatorEqual compares two values
	OperatorEqual Operator = "="
	// OperatorNotEqual compares two values
	OperatorNotEqual Operator = "!="
	// OperatorAnd is the logical conjunction
	OperatorAnd Operator = "AND"
	// OperatorOr is the logical disjunction
	OperatorOr Operator = "OR"
)

var boolType = reflect.TypeOf(false)

// Binary applies an operator to two operands
type Binary struct {
	nodeBase
	op    Operator
	left  Node
	right Node
}

// NewBinary returns a binary node evaluating to a bool
func NewBinary(op Operator, left, right Node) *Binary {
	return &Binary{
		nodeBase: newBase(boolType, nil),
		op:       op,
		left:     left,
		right:    right,
	}
}

// Operator returns the operator
func (b *Binary) Operator() Operator { return b.op }

// Left returns the left operand
func (b *Binary) Left() Node { return b.left }

// Right returns the right operand
func (b *Binary) Right() Node { return b.right }

// VisitChildren visits both operands and rebuilds the node when one of them changed
func (b *Binary) VisitChildren(v Visitor) (Node, error) {
	left, err := v.Visit(b.left)
	if err != nil {
		return nil, err
	}

	right, err := v.Visit(b.right)
	if err != nil {
		return nil, err
	}

	if left == b.left && right == b.right {
		return b, nil
	}

	return &Binary{nodeBase: b.nodeBase, op: b.op, left: left, right: right}, nil
}

// Print writes (left op right)
func (b *Binary) Print(p *Printer) {
	p.Append("(")
	b.left.Print(p)
	p.Append(" " + string(b.op) + " ")
	b.right.Print(p)
	p.Append(")")
}

func (b *Binary) String() string { return Print(b) }
