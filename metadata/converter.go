package metadata

import (
	"errors"
	"fmt"
	"net/netip"
	"reflect"
	"strconv"
)

var (
	// ErrUnexpectedValueType when a converter receives a value of the wrong type
	ErrUnexpectedValueType = errors.New("unexpected value type")

	stringType = reflect.TypeOf("")
	addrType   = reflect.TypeOf(netip.Addr{})
)

// ValueConverter converts property values between their model and store representations
type ValueConverter interface {
	ToProvider(v any) (any, error)
	FromProvider(v any) (any, error)
	ModelType() reflect.Type
	ProviderType() reflect.Type
}

// SameConverter reports whether a and b convert the same way
func SameConverter(a, b ValueConverter) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return reflect.TypeOf(a) == reflect.TypeOf(b) &&
		a.ModelType() == b.ModelType() &&
		a.ProviderType() == b.ProviderType()
}

// IPAddressToString stores netip.Addr values as their textual form
type IPAddressToString struct{}

// ToProvider returns the textual form of the address
func (IPAddressToString) ToProvider(v any) (any, error) {
	switch addr := v.(type) {
	case nil:
		return nil, nil
	case netip.Addr:
		if !addr.IsValid() {
			return nil, nil
		}

		return addr.String(), nil
	case *netip.Addr:
		if addr == nil || !addr.IsValid() {
			return nil, nil
		}

		return addr.String(), nil
	}

	return nil, fmt.Errorf("%w: %T is not a netip.Addr", ErrUnexpectedValueType, v)
}

// FromProvider parses the textual form of an address
func (IPAddressToString) FromProvider(v any) (any, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case string:
		return netip.ParseAddr(s)
	}

	return nil, fmt.Errorf("%w: %T is not a string", ErrUnexpectedValueType, v)
}

// ModelType returns netip.Addr
func (IPAddressToString) ModelType() reflect.Type { return addrType }

// ProviderType returns string
func (IPAddressToString) ProviderType() reflect.Type { return stringType }

// NumberToString stores integer values as decimal strings
type NumberToString struct {
	Model reflect.Type
}

// ToProvider formats the number in base 10
func (n NumberToString) ToProvider(v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	rv := reflect.ValueOf(v)

	switch {
	case rv.CanInt():
		return strconv.FormatInt(rv.Int(), 10), nil
	case rv.CanUint():
		return strconv.FormatUint(rv.Uint(), 10), nil
	}

	return nil, fmt.Errorf("%w: %T is not an integer", ErrUnexpectedValueType, v)
}

// FromProvider parses a decimal string into the model type
func (n NumberToString) FromProvider(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a string", ErrUnexpectedValueType, v)
	}

	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}

	if n.Model == nil {
		return i, nil
	}

	return reflect.ValueOf(i).Convert(n.Model).Interface(), nil
}

// ModelType returns the integer type of the property
func (n NumberToString) ModelType() reflect.Type {
	if n.Model == nil {
		return reflect.TypeOf(int64(0))
	}

	return n.Model
}

// ProviderType returns string
func (n NumberToString) ProviderType() reflect.Type { return stringType }

// ConverterFunc adapts a pair of functions to ValueConverter
type ConverterFunc struct {
	Model    reflect.Type
	Provider reflect.Type
	To       func(any) (any, error)
	From     func(any) (any, error)
}

// ToProvider calls To
func (c ConverterFunc) ToProvider(v any) (any, error) { return c.To(v) }

// FromProvider calls From, values pass through when From is nil
func (c ConverterFunc) FromProvider(v any) (any, error) {
	if c.From == nil {
		return v, nil
	}

	return c.From(v)
}

// ModelType returns Model
func (c ConverterFunc) ModelType() reflect.Type { return c.Model }

// ProviderType returns Provider
func (c ConverterFunc) ProviderType() reflect.Type { return c.Provider }
