package expression

import (
	"fmt"
	"reflect"
	"strconv"
)

// Constant is a literal value
type Constant struct {
	nodeBase
	value any
}

// NewConstant returns a constant typed after its value
func NewConstant(value any, mapping *TypeMapping) *Constant {
	return &Constant{
		nodeBase: newBase(reflect.TypeOf(value), mapping),
		value:    value,
	}
}

// Value returns the literal value
func (c *Constant) Value() any { return c.value }

// ApplyTypeMapping returns a copy of the constant using mapping
func (c *Constant) ApplyTypeMapping(mapping *TypeMapping) *Constant {
	return &Constant{nodeBase: newBase(c.typ, mapping), value: c.value}
}

// VisitChildren returns the constant itself
func (c *Constant) VisitChildren(Visitor) (Node, error) { return c, nil }

// Print writes the literal
func (c *Constant) Print(p *Printer) {
	switch v := c.value.(type) {
	case nil:
		p.Append("null")
	case string:
		p.Append(strconv.Quote(v))
	default:
		p.Append(fmt.Sprintf("%v", v))
	}
}

func (c *Constant) String() string { return Print(c) }

func constantHashKey(v any) string {
	if v == nil {
		return "null"
	}

	switch f := v.(type) {
	case float64:
		// -0 equals 0
		if f == 0 {
			v = float64(0)
		}
	case float32:
		if f == 0 {
			v = float32(0)
		}
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%T:%v", v, v)
	}

	return fmt.Sprintf("%T", v)
}
