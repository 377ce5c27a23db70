package query

import (
	"context"
	"net/netip"
	"reflect"
	"testing"
	"time"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
	"github.com/truora/dynamap/core"
	"github.com/truora/dynamap/diagnostics"
	"github.com/truora/dynamap/expression"
	"github.com/truora/dynamap/metadata"
	"github.com/truora/dynamap/storage"
	"github.com/truora/dynamap/tracking"
	"github.com/truora/dynamap/types"
)

type order struct {
	ID       string  `dynamodbav:"id"`
	Customer int     `dynamodbav:"customer"`
	Code     string  `dynamodbav:"code"`
	Total    float64 `dynamodbav:"total"`
}

type device struct {
	ID      string `dynamodbav:"id"`
	Tenant  string `dynamodbav:"tenant"`
	Address string `dynamodbav:"address"`
	Model   string `dynamodbav:"model"`
}

type inventoryContext struct{}

var contextType = reflect.TypeOf(inventoryContext{})

func newOrderType(t *testing.T) *metadata.EntityType {
	c := require.New(t)

	et := metadata.NewEntityType("Order", reflect.TypeOf(order{}), "orders")
	et.MustAddProperty(metadata.NewProperty("Customer", reflect.TypeOf(0)).WithStoreName("customer")).
		MustAddProperty(metadata.NewProperty("Code", reflect.TypeOf("")).WithStoreName("code")).
		MustAddProperty(metadata.NewProperty("Token", reflect.TypeOf("")).
			WithStoreName("token").
			WithValueGenerator(metadata.UUIDGenerator{AsString: true}))

	c.NoError(et.SetPrimaryKey("Customer", "Code"))
	c.NoError(et.AddStoreKeyProperty())

	return et
}

func newDeviceType(t *testing.T) *metadata.EntityType {
	c := require.New(t)

	et := metadata.NewEntityType("Device", reflect.TypeOf(device{}), "devices")
	et.MustAddProperty(metadata.NewProperty("Tenant", reflect.TypeOf("")).WithStoreName("tenant")).
		MustAddProperty(metadata.NewProperty("Address", reflect.TypeOf(netip.Addr{})).
			WithStoreName("address").
			WithConverter(metadata.IPAddressToString{}))

	c.NoError(et.SetPrimaryKey("Tenant", "Address"))
	c.NoError(et.SetPartitionKey("Tenant"))
	c.NoError(et.AddStoreKeyProperty())

	return et
}

func setupStore(t *testing.T, entityTypes ...*metadata.EntityType) *core.Client {
	c := require.New(t)

	store := core.NewClient()

	for _, et := range entityTypes {
		c.NoError(store.CreateContainer(et.Container, et.ContainerSchema()))
	}

	c.NoError(store.PutValue("orders", order{ID: "1|x", Customer: 1, Code: "x", Total: 9.5}))
	c.NoError(store.PutValue("devices", device{ID: "10.0.0.1", Tenant: "acme", Address: "10.0.0.1", Model: "router"}))

	return store
}

func mustPlan(t *testing.T) func(*expression.ReadItem, error) *expression.ReadItem {
	return func(plan *expression.ReadItem, err error) *expression.ReadItem {
		require.NoError(t, err)

		return plan
	}
}

func keyParams(et *metadata.EntityType, values map[string]any) types.ParameterValues {
	params := types.ParameterValues{}
	for name, v := range values {
		params[KeyParameterName(et.FindProperty(name))] = v
	}

	return params
}

func TestPointReadYieldsOneItemThenNothing(t *testing.T) {
	c := require.New(t)

	et := newOrderType(t)
	store := setupStore(t, et, newDeviceType(t))
	plan := mustPlan(t)(PlanByID(et))

	qc := NewQueryContext(store, nil, keyParams(et, map[string]any{metadata.StoreKeyPropertyName: "1|x"}))
	rec := &diagnostics.Recorder{}

	e := NewReadItemQueryingEnumerable(qc, plan, NewEntityShaper[order](et, false), contextType, rec, false)
	en := e.Enumerator()

	ok, err := en.Next()
	c.NoError(err)
	c.True(ok)
	c.Equal(1, en.Current().Customer)
	c.Equal(9.5, en.Current().Total)

	ok, err = en.Next()
	c.NoError(err)
	c.False(ok)
	c.Equal(1, store.Reads())

	c.Equal([]string{"ReadItem(orders, id=@__key___id)"}, rec.Plans())
	c.Empty(rec.Failures())

	missing := NewReadItemQueryingEnumerable(qc.WithParameters(keyParams(et, map[string]any{metadata.StoreKeyPropertyName: "2|y"})),
		plan, NewEntityShaper[order](et, false), contextType, rec, false).Enumerator()

	ok, err = missing.Next()
	c.NoError(err)
	c.False(ok)
	c.Nil(missing.Current())

	ok, err = missing.Next()
	c.NoError(err)
	c.False(ok)
	c.Equal(2, store.Reads())
}

func TestBindingsAreCopiedAtCreation(t *testing.T) {
	c := require.New(t)

	et := newOrderType(t)
	store := setupStore(t, et, newDeviceType(t))
	plan := mustPlan(t)(PlanByID(et))

	params := keyParams(et, map[string]any{metadata.StoreKeyPropertyName: "1|x"})
	base := NewQueryContext(store, nil, params)

	readParams := keyParams(et, map[string]any{metadata.StoreKeyPropertyName: "1|x"})
	qc := base.WithParameters(readParams)

	params[KeyParameterName(et.IDProperty())] = "2|y"
	readParams[KeyParameterName(et.IDProperty())] = "2|y"

	for _, ctx := range []*QueryContext{base, qc} {
		en := NewReadItemQueryingEnumerable(ctx, plan, NewEntityShaper[order](et, false), contextType, nil, false).Enumerator()

		ok, err := en.Next()
		c.NoError(err)
		c.True(ok)
		c.Equal("x", en.Current().Code)
	}
}

func TestMissingPartitionKeyFailsBeforeLookup(t *testing.T) {
	c := require.New(t)

	et := newDeviceType(t)
	store := setupStore(t, newOrderType(t), et)
	plan := mustPlan(t)(PlanByKey(et))
	rec := &diagnostics.Recorder{}

	qc := NewQueryContext(store, nil, keyParams(et, map[string]any{"Address": netip.MustParseAddr("10.0.0.1")}))
	en := NewReadItemQueryingEnumerable(qc, plan, NewEntityShaper[device](et, false), contextType, rec, false).Enumerator()

	ok, err := en.Next()
	c.False(ok)
	c.ErrorIs(err, types.ErrPartitionKeyMissing)
	c.Equal(0, store.Reads())

	failures := rec.Failures()
	c.Len(failures, 1)
	c.Equal(contextType, failures[0].ContextType)
	c.Same(err, failures[0].Err)
}

func TestResolutionFailures(t *testing.T) {
	et := newDeviceType(t)
	orderType := newOrderType(t)
	store := setupStore(t, orderType, et)
	addr := netip.MustParseAddr("10.0.0.1")

	tests := map[string]struct {
		entityType *metadata.EntityType
		byID       bool
		values     map[string]any
		wantErr    error
	}{
		"empty partition key": {
			entityType: et,
			values:     map[string]any{"Tenant": "", "Address": addr},
			wantErr:    types.ErrInvalidPartitionKey,
		},
		"nil partition key": {
			entityType: et,
			values:     map[string]any{"Tenant": nil, "Address": addr},
			wantErr:    types.ErrInvalidPartitionKey,
		},
		"empty id": {
			entityType: orderType,
			byID:       true,
			values:     map[string]any{metadata.StoreKeyPropertyName: ""},
			wantErr:    types.ErrInvalidResourceID,
		},
		"unbound id and incomplete key": {
			entityType: orderType,
			values:     map[string]any{"Customer": 1},
			wantErr:    types.ErrResourceIDMissing,
		},
		"unbound id by id": {
			entityType: orderType,
			byID:       true,
			values:     map[string]any{},
			wantErr:    types.ErrResourceIDMissing,
		},
		"invalid address": {
			entityType: et,
			values:     map[string]any{"Tenant": "acme", "Address": "10.0.0.1"},
			wantErr:    metadata.ErrUnexpectedValueType,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := require.New(t)

			plan := mustPlan(t)(PlanByKey(tt.entityType))
			if tt.byID {
				plan = mustPlan(t)(PlanByID(tt.entityType))
			}

			qc := NewQueryContext(store, nil, keyParams(tt.entityType, tt.values))
			en := NewReadItemQueryingEnumerable(qc, plan, NewEntityShaper[order](tt.entityType, false), contextType, nil, false).Enumerator()

			_, err := en.Next()
			c.ErrorIs(err, tt.wantErr)
		})
	}

	require.Equal(t, 0, store.Reads())
}

func TestSynthesizedIDMatchesTransientEntry(t *testing.T) {
	c := require.New(t)

	et := newOrderType(t)
	plan := mustPlan(t)(PlanByKey(et))
	params := keyParams(et, map[string]any{"Customer": 1, "Code": "x"})
	sm := tracking.NewStateManager()

	entry := tracking.NewStateManager().NewTransientEntry(et)
	entry.SetValue(et.FindProperty("Customer"), 1)
	entry.SetValue(et.FindProperty("Code"), "x")
	c.NoError(entry.SetState(tracking.Added))

	want, ok := entry.Value(et.IDProperty())
	c.True(ok)
	c.NoError(entry.SetState(tracking.Detached))

	id, err := ResolveResourceID(plan, params, sm)
	c.NoError(err)
	c.Equal(want, id)
	c.Equal("1|x", id)
	c.Equal(0, sm.Count())
	c.Empty(sm.Entries())

	partitionKey, err := ResolvePartitionKey(plan, params)
	c.NoError(err)
	c.Nil(partitionKey)

	store := setupStore(t, et, newDeviceType(t))
	qc := NewQueryContext(store, sm, params)
	en := NewReadItemQueryingEnumerable(qc, plan, NewEntityShaper[order](et, true), contextType, nil, false).Enumerator()

	found, err := en.Next()
	c.NoError(err)
	c.True(found)

	// only the shaped entity is tracked
	c.Equal(1, sm.Count())
	tracked, ok := sm.TryGet(et, "1|x")
	c.True(ok)
	c.Same(en.Current(), tracked.Entity())
}

func TestConverterBackedKeys(t *testing.T) {
	c := require.New(t)

	et := newDeviceType(t)
	store := setupStore(t, newOrderType(t), et)
	plan := mustPlan(t)(PlanByKey(et))

	params := keyParams(et, map[string]any{"Tenant": "acme", "Address": netip.MustParseAddr("10.0.0.1")})

	id, err := ResolveResourceID(plan, params, tracking.NewStateManager())
	c.NoError(err)
	c.Equal("10.0.0.1", id)

	en := NewReadItemQueryingEnumerable(NewQueryContext(store, nil, params), plan, NewEntityShaper[device](et, false), contextType, nil, false).Enumerator()

	ok, err := en.Next()
	c.NoError(err)
	c.True(ok)
	c.Equal("router", en.Current().Model)
}

func TestCancelledLookupFails(t *testing.T) {
	c := require.New(t)

	et := newOrderType(t)
	store := setupStore(t, et, newDeviceType(t))
	store.SetLatency(time.Hour)

	plan := mustPlan(t)(PlanByID(et))
	qc := NewQueryContext(store, nil, keyParams(et, map[string]any{metadata.StoreKeyPropertyName: "1|x"}))
	rec := &diagnostics.Recorder{}
	e := NewReadItemQueryingEnumerable(qc, plan, NewEntityShaper[order](et, false), contextType, rec, false)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	ok, err := e.EnumeratorContext(ctx).Next()
	c.False(ok)
	c.ErrorIs(err, context.Canceled)

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = e.EnumeratorContext(ctx).Next()
	c.ErrorIs(err, context.DeadlineExceeded)
	c.Len(rec.Failures(), 2)
}

type silentStore struct{}

func (silentStore) ReadItem(*storage.ReadItemInput) (types.Document, error) {
	return nil, nil
}

// ReadItemWithContext waits for ctx and then reports no item
func (silentStore) ReadItemWithContext(ctx context.Context, _ *storage.ReadItemInput) (types.Document, error) {
	<-ctx.Done()

	return nil, nil
}

func TestCancelledLookupNeverReadsAsMissing(t *testing.T) {
	c := require.New(t)

	et := newOrderType(t)
	plan := mustPlan(t)(PlanByID(et))
	qc := NewQueryContext(silentStore{}, nil, keyParams(et, map[string]any{metadata.StoreKeyPropertyName: "1|x"}))
	e := NewReadItemQueryingEnumerable(qc, plan, NewEntityShaper[order](et, false), contextType, nil, false)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	ok, err := e.EnumeratorContext(ctx).Next()
	c.False(ok)
	c.ErrorIs(err, context.Canceled)

	ok, err = e.Enumerator().Next()
	c.NoError(err)
	c.False(ok)
}

func TestReentrantAdvanceFails(t *testing.T) {
	c := require.New(t)

	et := newOrderType(t)
	store := setupStore(t, et, newDeviceType(t))
	plan := mustPlan(t)(PlanByID(et))
	qc := NewQueryContext(store, nil, keyParams(et, map[string]any{metadata.StoreKeyPropertyName: "1|x"}))
	rec := &diagnostics.Recorder{}

	var (
		en       *Enumerator[*order]
		innerErr error
	)

	reentrant := func(qc *QueryContext, doc types.Document) (*order, error) {
		_, innerErr = en.Next()

		return nil, innerErr
	}

	e := NewReadItemQueryingEnumerable(qc, plan, reentrant, contextType, rec, false)
	en = e.Enumerator()

	ok, err := en.Next()
	c.False(ok)
	c.ErrorIs(innerErr, types.ErrConcurrentMethodInvocation)
	c.ErrorIs(err, types.ErrConcurrentMethodInvocation)
	c.Len(rec.Failures(), 2)

	// the critical section was released
	shaped := NewReadItemQueryingEnumerable(qc, plan, NewEntityShaper[order](et, false), contextType, rec, false).Enumerator()

	ok, err = shaped.Next()
	c.NoError(err)
	c.True(ok)
}

func TestStoreErrorsPropagateUnchanged(t *testing.T) {
	c := require.New(t)

	et := newOrderType(t)
	store := setupStore(t, et, newDeviceType(t))
	core.EmulateFailure(store, core.FailureConditionInternalServerError)

	plan := mustPlan(t)(PlanByID(et))
	qc := NewQueryContext(store, nil, keyParams(et, map[string]any{metadata.StoreKeyPropertyName: "1|x"}))
	rec := &diagnostics.Recorder{}

	_, err := NewReadItemQueryingEnumerable(qc, plan, NewEntityShaper[order](et, false), contextType, rec, false).Enumerator().Next()

	var internal *ddbtypes.InternalServerError
	c.ErrorAs(err, &internal)
	c.Same(internal, err)
	c.Same(err, rec.Failures()[0].Err)
}

func TestEnumeratorLifecycle(t *testing.T) {
	c := require.New(t)

	et := newOrderType(t)
	store := setupStore(t, et, newDeviceType(t))
	plan := mustPlan(t)(PlanByID(et))
	qc := NewQueryContext(store, nil, keyParams(et, map[string]any{metadata.StoreKeyPropertyName: "1|x"}))
	e := NewReadItemQueryingEnumerable(qc, plan, NewEntityShaper[order](et, false), contextType, nil, false)

	_, err := e.ToQueryString()
	c.ErrorIs(err, types.ErrNotImplemented)
	c.Equal("ReadItem(orders, id=@__key___id)", e.String())
	c.Same(plan, e.Plan())

	en := e.Enumerator()

	ok, err := en.Next()
	c.NoError(err)
	c.True(ok)

	c.ErrorIs(en.Reset(), types.ErrResetNotSupported)
	c.NotNil(en.Current())

	c.NoError(en.Close())
	c.Nil(en.Current())

	got := []*order{}
	for item, err := range e.All(context.Background()) {
		c.NoError(err)
		got = append(got, item)
	}

	c.Len(got, 1)
	c.Equal("x", got[0].Code)

	collectErr := func() error {
		for _, err := range e.All(context.Background()) {
			if err != nil {
				return err
			}
		}

		return nil
	}

	core.EmulateFailure(store, core.FailureConditionThrottled)
	c.Error(collectErr())
}

func TestIdentityResolution(t *testing.T) {
	c := require.New(t)

	et := newOrderType(t)
	store := setupStore(t, et, newDeviceType(t))
	plan := mustPlan(t)(PlanByKey(et))
	sm := tracking.NewStateManager()
	qc := NewQueryContext(store, sm, keyParams(et, map[string]any{"Customer": 1, "Code": "x"}))

	read := func(track, identityResolution bool) *order {
		en := NewReadItemQueryingEnumerable(qc, plan, NewEntityShaper[order](et, track), contextType, nil, identityResolution).Enumerator()

		ok, err := en.Next()
		c.NoError(err)
		c.True(ok)

		return en.Current()
	}

	first := read(true, false)
	c.Same(first, read(true, false))
	c.NotSame(first, read(false, false))
	c.Equal(1, sm.Count())

	scoped := read(true, true)
	c.NotSame(first, scoped)
	c.Same(scoped, read(true, true))
	c.Equal(1, sm.Count())
}

func TestConcurrencyDetector(t *testing.T) {
	c := require.New(t)

	d := &ConcurrencyDetector{}

	exit, err := d.EnterCriticalSection()
	c.NoError(err)

	_, err = d.EnterCriticalSection()
	c.ErrorIs(err, types.ErrConcurrentMethodInvocation)

	exit()

	exit, err = d.EnterCriticalSection()
	c.NoError(err)
	exit()
}
