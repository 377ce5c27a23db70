package expression

import (
	"reflect"

	"github.com/cespare/xxhash/v2"
	"github.com/truora/dynamap/metadata"
)

// TypeMapping describes how a runtime value is coerced into its store representation
type TypeMapping struct {
	// StoreType is the DynamoDB scalar type: S, N, B, BOOL, L, M or NULL
	StoreType string
	ClrType   reflect.Type
	Converter metadata.ValueConverter
}

// Equal reports whether both mappings are nil or describe the same coercion
func (m *TypeMapping) Equal(o *TypeMapping) bool {
	if m == nil || o == nil {
		return m == nil && o == nil
	}

	return m.StoreType == o.StoreType &&
		m.ClrType == o.ClrType &&
		metadata.SameConverter(m.Converter, o.Converter)
}

func (m *TypeMapping) writeHash(d *xxhash.Digest) {
	if m == nil {
		_, _ = d.WriteString("<unmapped>")
		return
	}

	_, _ = d.WriteString(m.StoreType)

	if m.ClrType != nil {
		_, _ = d.WriteString(m.ClrType.String())
	}

	if m.Converter != nil {
		_, _ = d.WriteString(reflect.TypeOf(m.Converter).String())
	}
}

// MappingFor returns the type mapping of a property
func MappingFor(p *metadata.Property) *TypeMapping {
	provider := p.GoType
	if p.Converter != nil {
		provider = p.Converter.ProviderType()
	}

	return &TypeMapping{
		StoreType: StoreTypeOf(provider),
		ClrType:   p.GoType,
		Converter: p.Converter,
	}
}

// StoreTypeOf returns the DynamoDB type used to store values of t
func StoreTypeOf(t reflect.Type) string {
	if t == nil {
		return "NULL"
	}

	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch k := t.Kind(); {
	case k == reflect.String:
		return "S"
	case k == reflect.Bool:
		return "BOOL"
	case k >= reflect.Int && k <= reflect.Float64:
		return "N"
	case k == reflect.Map || k == reflect.Struct:
		return "M"
	case k == reflect.Slice || k == reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return "B"
		}

		return "L"
	}

	return ""
}
