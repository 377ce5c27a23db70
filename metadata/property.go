package metadata

import (
	"fmt"
	"reflect"
	"strconv"
)

// Property describes one mapped field of an entity type
type Property struct {
	Name           string
	StoreName      string
	GoType         reflect.Type
	Converter      ValueConverter
	ValueGenerator ValueGenerator

	declaringType *EntityType
}

// NewProperty returns a property stored under its own name
func NewProperty(name string, goType reflect.Type) *Property {
	return &Property{
		Name:      name,
		StoreName: name,
		GoType:    goType,
	}
}

// WithStoreName sets the attribute name used in the store
func (p *Property) WithStoreName(storeName string) *Property {
	p.StoreName = storeName

	return p
}

// WithConverter sets the value converter
func (p *Property) WithConverter(c ValueConverter) *Property {
	p.Converter = c

	return p
}

// WithValueGenerator sets the generator used when the entry is added
func (p *Property) WithValueGenerator(g ValueGenerator) *Property {
	p.ValueGenerator = g

	return p
}

// DeclaringType returns the entity type owning the property
func (p *Property) DeclaringType() *EntityType {
	return p.declaringType
}

// IsPrimaryKey reports whether the property is part of the primary key
func (p *Property) IsPrimaryKey() bool {
	if p.declaringType == nil {
		return false
	}

	for _, k := range p.declaringType.primaryKey {
		if k == p {
			return true
		}
	}

	return false
}

// ToProvider converts v with the property converter, if any
func (p *Property) ToProvider(v any) (any, error) {
	if p.Converter == nil {
		return v, nil
	}

	return p.Converter.ToProvider(v)
}

// ProviderString returns the store string form of v
func (p *Property) ProviderString(v any) (string, error) {
	pv, err := p.ToProvider(v)
	if err != nil {
		return "", fmt.Errorf("converting property %q: %w", p.Name, err)
	}

	return FormatValue(pv), nil
}

// FormatValue renders a provider value as a string
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case *string:
		if val == nil {
			return ""
		}

		return *val
	case fmt.Stringer:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	}

	rv := reflect.ValueOf(v)

	switch {
	case rv.CanInt():
		return strconv.FormatInt(rv.Int(), 10)
	case rv.CanUint():
		return strconv.FormatUint(rv.Uint(), 10)
	}

	return fmt.Sprintf("%v", v)
}
