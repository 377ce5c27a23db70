package expression

import (
	"math"
	"net/netip"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
	"github.com/truora/dynamap/metadata"
	"github.com/truora/dynamap/types"
)

type device struct {
	Tenant  string
	Serial  int
	Address netip.Addr
}

// orphan forgets to define VisitChildren
type orphan struct {
	nodeBase
}

func (o *orphan) Print(p *Printer) { p.Append("orphan") }

func (o *orphan) String() string { return Print(o) }

var (
	intType    = reflect.TypeOf(0)
	stringType = reflect.TypeOf("")
)

func newDeviceType(t *testing.T) *metadata.EntityType {
	c := require.New(t)

	et := metadata.NewEntityType("Device", reflect.TypeOf(device{}), "devices")
	et.MustAddProperty(metadata.NewProperty("Tenant", stringType).WithStoreName("tenant")).
		MustAddProperty(metadata.NewProperty("Serial", intType).WithStoreName("serial")).
		MustAddProperty(metadata.NewProperty("Address", reflect.TypeOf(netip.Addr{})).
			WithStoreName("address").
			WithConverter(metadata.IPAddressToString{}))

	c.NoError(et.SetPrimaryKey("Serial"))
	c.NoError(et.SetPartitionKey("Tenant"))
	c.NoError(et.AddStoreKeyProperty())

	return et
}

func newGolden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestParameterEquality(t *testing.T) {
	c := require.New(t)

	mapping := &TypeMapping{StoreType: "S", ClrType: stringType}

	a := NewParameter("p0", stringType, mapping)
	b := NewParameter("p0", stringType, &TypeMapping{StoreType: "S", ClrType: stringType})

	c.True(a.Equal(b))
	c.True(Equal(b, a))
	c.Equal(a.Hash(), b.Hash())

	c.True(Equal(NewParameter("p0", stringType, nil), NewParameter("p0", stringType, nil)))
	c.Equal(Hash(NewParameter("p0", stringType, nil)), Hash(NewParameter("p0", stringType, nil)))

	c.False(a.Equal(NewParameter("p1", stringType, mapping)))
	c.False(a.Equal(NewParameter("p0", intType, mapping)))
	c.False(a.Equal(NewParameter("p0", stringType, nil)))
	c.False(a.Equal(NewConstant("p0", mapping)))
	c.False(a.Equal(nil))
}

func TestApplyTypeMappingReturnsNewNode(t *testing.T) {
	c := require.New(t)

	original := NewParameter("ip", reflect.TypeOf(netip.Addr{}), nil)
	mapped := original.ApplyTypeMapping(&TypeMapping{
		StoreType: "S",
		ClrType:   reflect.TypeOf(netip.Addr{}),
		Converter: metadata.IPAddressToString{},
	})

	c.NotSame(original, mapped)
	c.Nil(original.TypeMapping())
	c.Equal("ip", mapped.Name())
	c.Equal(original.Type(), mapped.Type())
	c.False(original.Equal(mapped))
	c.NotEqual(original.Hash(), mapped.Hash())

	c.True(mapped.Equal(mapped.ApplyTypeMapping(mapped.TypeMapping())))
}

func TestTypeMappingEquality(t *testing.T) {
	c := require.New(t)

	var unmapped *TypeMapping
	c.True(unmapped.Equal(nil))
	c.False(unmapped.Equal(&TypeMapping{}))

	withConverter := &TypeMapping{StoreType: "S", Converter: metadata.IPAddressToString{}}
	c.True(withConverter.Equal(&TypeMapping{StoreType: "S", Converter: metadata.IPAddressToString{}}))
	c.False(withConverter.Equal(&TypeMapping{StoreType: "S"}))
	c.False(withConverter.Equal(&TypeMapping{StoreType: "N", Converter: metadata.IPAddressToString{}}))
}

func TestStoreTypeOf(t *testing.T) {
	c := require.New(t)

	c.Equal("S", StoreTypeOf(stringType))
	c.Equal("N", StoreTypeOf(intType))
	c.Equal("N", StoreTypeOf(reflect.TypeOf(1.5)))
	c.Equal("BOOL", StoreTypeOf(boolType))
	c.Equal("B", StoreTypeOf(reflect.TypeOf([]byte{})))
	c.Equal("L", StoreTypeOf(reflect.TypeOf([]string{})))
	c.Equal("M", StoreTypeOf(reflect.TypeOf(device{})))
	c.Equal("S", StoreTypeOf(reflect.TypeOf(new(string))))
	c.Equal("NULL", StoreTypeOf(nil))
}

func TestMappingForConvertedProperty(t *testing.T) {
	c := require.New(t)

	et := newDeviceType(t)

	m := MappingFor(et.FindProperty("Address"))
	c.Equal("S", m.StoreType)
	c.Equal(reflect.TypeOf(netip.Addr{}), m.ClrType)
	c.IsType(metadata.IPAddressToString{}, m.Converter)

	c.Equal("N", MappingFor(et.FindProperty("Serial")).StoreType)
}

func TestBaseVisitChildrenMustBeOverridden(t *testing.T) {
	c := require.New(t)

	n := &orphan{nodeBase: newBase(intType, nil)}

	_, err := n.VisitChildren(VisitorFunc(func(n Node) (Node, error) { return n, nil }))
	c.ErrorIs(err, types.ErrVisitChildrenMustBeOverridden)

	code, _ := types.CodeOf(err)
	c.Equal(types.CodeInvalidOperation, code)

	_, err = Transform(NewBinary(OperatorEqual, n, NewConstant(1, nil)), func(n Node) (Node, error) { return n, nil })
	c.ErrorIs(err, types.ErrVisitChildrenMustBeOverridden)

	// equality only compares the shared attributes for foreign variants
	c.True(Equal(n, &orphan{nodeBase: newBase(intType, nil)}))
}

func TestTransformRebuildsOnlyChangedBranches(t *testing.T) {
	c := require.New(t)

	left := NewBinary(OperatorEqual, NewParameter("a", intType, nil), NewConstant(1, nil))
	right := NewBinary(OperatorEqual, NewParameter("b", stringType, nil), NewConstant("x", nil))
	tree := NewBinary(OperatorAnd, left, right)

	renamed, err := Transform(tree, func(n Node) (Node, error) {
		if p, ok := n.(*Parameter); ok && p.Name() == "a" {
			return NewParameter("a_renamed", p.Type(), p.TypeMapping()), nil
		}

		return n, nil
	})
	c.NoError(err)

	c.Equal(`((@a = 1) AND (@b = "x"))`, tree.String())
	c.Equal(`((@a_renamed = 1) AND (@b = "x"))`, renamed.String())

	rebuilt := renamed.(*Binary)
	c.NotSame(tree, rebuilt)
	c.NotSame(left, rebuilt.Left())
	c.Same(right, rebuilt.Right())

	unchanged, err := Transform(tree, func(n Node) (Node, error) { return n, nil })
	c.NoError(err)
	c.Same(tree, unchanged)
	c.True(Equal(tree, unchanged))
	c.False(Equal(tree, renamed))

	params, err := Parameters(renamed)
	c.NoError(err)

	names := []string{}
	for _, p := range params {
		names = append(names, p.Name())
	}

	if diff := cmp.Diff([]string{"a_renamed", "b"}, names); diff != "" {
		t.Fatalf("unexpected parameters (-want +got):\n%s", diff)
	}
}

func TestConstantEqualityAndHash(t *testing.T) {
	c := require.New(t)

	c.True(Equal(NewConstant("x", nil), NewConstant("x", nil)))
	c.Equal(Hash(NewConstant("x", nil)), Hash(NewConstant("x", nil)))
	c.False(Equal(NewConstant(1, nil), NewConstant(int64(1), nil)))
	c.True(Equal(NewConstant([]string{"a"}, nil), NewConstant([]string{"a"}, nil)))
	c.Equal(Hash(NewConstant([]string{"a"}, nil)), Hash(NewConstant([]string{"a"}, nil)))
	c.Equal("null", NewConstant(nil, nil).String())
}

func TestConstantSignedZeroHash(t *testing.T) {
	c := require.New(t)

	pos, neg := NewConstant(0.0, nil), NewConstant(math.Copysign(0, -1), nil)
	c.True(Equal(pos, neg))
	c.Equal(Hash(pos), Hash(neg))

	pos32, neg32 := NewConstant(float32(0), nil), NewConstant(float32(math.Copysign(0, -1)), nil)
	c.True(Equal(pos32, neg32))
	c.Equal(Hash(pos32), Hash(neg32))

	c.NotEqual(Hash(pos), Hash(NewConstant(1.5, nil)))
}

func TestNodeAttributesAreNotExported(t *testing.T) {
	c := require.New(t)

	variants := []any{Parameter{}, Constant{}, Property{}, Binary{}, ReadItem{}}
	for _, v := range variants {
		typ := reflect.TypeOf(v)
		for i := 0; i < typ.NumField(); i++ {
			c.False(typ.Field(i).IsExported(), "%s.%s", typ.Name(), typ.Field(i).Name)
		}
	}
}

func TestReadItem(t *testing.T) {
	c := require.New(t)

	et := newDeviceType(t)

	plan, err := NewReadItem(et, map[string]string{
		"Serial":  "serial",
		"Tenant":  "tenant",
		"Address": "ip",
	})
	c.NoError(err)
	c.Equal("devices", plan.Container())
	c.Same(et, plan.EntityType())
	c.Equal(et.GoType, plan.Type())

	name, ok := plan.ParameterName(et.FindProperty("Serial"))
	c.True(ok)
	c.Equal("serial", name)

	_, ok = plan.ParameterName(et.IDProperty())
	c.False(ok)

	_, ok = plan.ParameterName(nil)
	c.False(ok)

	if diff := cmp.Diff(map[string]string{"Serial": "serial", "Tenant": "tenant", "Address": "ip"}, plan.PropertyParameters()); diff != "" {
		t.Fatalf("unexpected bindings (-want +got):\n%s", diff)
	}

	params, err := Parameters(plan)
	c.NoError(err)
	c.Len(params, 3)
	c.Equal("tenant", params[0].Name())
	c.Equal("S", params[2].TypeMapping().StoreType)

	same, err := NewReadItem(et, map[string]string{"Serial": "serial", "Tenant": "tenant", "Address": "ip"})
	c.NoError(err)
	c.True(Equal(plan, same))
	c.Equal(Hash(plan), Hash(same))

	other, err := NewReadItem(et, map[string]string{"Serial": "serial"})
	c.NoError(err)
	c.False(Equal(plan, other))

	_, err = NewReadItem(et, map[string]string{"Missing": "m"})
	c.ErrorIs(err, ErrUnknownProperty)

	g := newGolden(t)
	g.Assert(t, "read_item", []byte(plan.String()))
	g.Assert(t, "read_item_id", []byte(mustReadItem(t, et, map[string]string{metadata.StoreKeyPropertyName: "id", "Tenant": "tenant"}).String()))
}

func TestReadItemVisitChildren(t *testing.T) {
	c := require.New(t)

	et := newDeviceType(t)
	plan := mustReadItem(t, et, map[string]string{"Serial": "serial", "Tenant": "tenant"})

	rebuilt, err := Transform(plan, func(n Node) (Node, error) {
		if p, ok := n.(*Parameter); ok && p.Name() == "serial" {
			return p.ApplyTypeMapping(nil), nil
		}

		return n, nil
	})
	c.NoError(err)
	c.NotSame(plan, rebuilt)
	c.False(Equal(plan, rebuilt))
	c.Equal(plan.String(), rebuilt.String())

	_, err = plan.VisitChildren(VisitorFunc(func(n Node) (Node, error) {
		return NewConstant(1, nil), nil
	}))
	c.ErrorContains(err, "must remain a parameter")
}

func TestPrinter(t *testing.T) {
	c := require.New(t)

	et := newDeviceType(t)
	tree := NewBinary(OperatorOr,
		NewBinary(OperatorEqual, NewProperty(et.FindProperty("Address")), NewConstant("10.0.0.1", nil)),
		NewBinary(OperatorNotEqual, NewProperty(et.FindProperty("Serial")), NewParameter("serial", intType, nil)),
	)

	var p Printer
	c.Equal("<nil>", p.Visit(nil).String())

	g := newGolden(t)
	g.Assert(t, "binary", []byte(Print(tree)))
}

func mustReadItem(t *testing.T, et *metadata.EntityType, bindings map[string]string) *ReadItem {
	plan, err := NewReadItem(et, bindings)
	require.NoError(t, err)

	return plan
}
