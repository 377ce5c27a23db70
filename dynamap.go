// Package dynamap reads single items by key from DynamoDB-style stores.
package dynamap

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/truora/dynamap/diagnostics"
	"github.com/truora/dynamap/expression"
	"github.com/truora/dynamap/metadata"
	"github.com/truora/dynamap/query"
	"github.com/truora/dynamap/storage"
	"github.com/truora/dynamap/tracking"
	"github.com/truora/dynamap/types"
)

var (
	// ErrNilStore when New receives no store
	ErrNilStore = errors.New("store must not be nil")
	// ErrNilLogger when WithLogger receives no logger
	ErrNilLogger = errors.New("logger must not be nil")
	// ErrKeyValuesMismatch when the number of key values differs from the primary key
	ErrKeyValuesMismatch = errors.New("key values do not match the primary key")
)

// TrackingBehavior selects how read entities are resolved against the identity map
type TrackingBehavior int

const (
	// TrackAll registers every read entity with the DB state manager
	TrackAll TrackingBehavior = iota
	// NoTracking returns a new instance on every read
	NoTracking
	// NoTrackingWithIdentityResolution resolves identity within a single read only
	NoTrackingWithIdentityResolution
)

// DB runs point reads against a store.
// A DB is not safe for concurrent use, overlapping reads fail with types.ErrConcurrentMethodInvocation.
type DB struct {
	store        storage.Client
	logger       diagnostics.Logger
	contextType  reflect.Type
	tracking     TrackingBehavior
	queryContext *query.QueryContext
}

// Option configures a DB
type Option func(*DB) error

// WithLogger sets the diagnostics logger
func WithLogger(logger diagnostics.Logger) Option {
	return func(db *DB) error {
		if logger == nil {
			return ErrNilLogger
		}

		db.logger = logger

		return nil
	}
}

// WithContextType sets the type reported with query failures
func WithContextType(t reflect.Type) Option {
	return func(db *DB) error {
		db.contextType = t

		return nil
	}
}

// WithTrackingBehavior sets how read entities are tracked
func WithTrackingBehavior(b TrackingBehavior) Option {
	return func(db *DB) error {
		db.tracking = b

		return nil
	}
}

// New returns a DB reading from store
func New(store storage.Client, opts ...Option) (*DB, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	db := &DB{
		store:  store,
		logger: diagnostics.Nop(),
	}
	db.contextType = reflect.TypeOf(db)

	for _, opt := range opts {
		if err := opt(db); err != nil {
			return nil, err
		}
	}

	db.queryContext = query.NewQueryContext(store, tracking.NewStateManager(), nil)

	return db, nil
}

// StateManager returns the identity map of tracked entities
func (db *DB) StateManager() *tracking.StateManager {
	return db.queryContext.StateManager()
}

// ReadItem returns the enumerable running plan with params
func ReadItem[T any](db *DB, et *metadata.EntityType, plan *expression.ReadItem, params types.ParameterValues) *query.ReadItemQueryingEnumerable[*T] {
	return query.NewReadItemQueryingEnumerable(
		db.queryContext.WithParameters(params),
		plan,
		query.NewEntityShaper[T](et, db.tracking != NoTracking),
		db.contextType,
		db.logger,
		db.tracking == NoTrackingWithIdentityResolution,
	)
}

// Find reads the entity with the given primary key values, in primary key order.
// The partition key is taken from the key values when it is part of the primary key.
func Find[T any](ctx context.Context, db *DB, et *metadata.EntityType, keyValues ...any) (*T, bool, error) {
	params, err := keyParameters(et, keyValues)
	if err != nil {
		return nil, false, err
	}

	plan, err := query.PlanByKey(et)
	if err != nil {
		return nil, false, err
	}

	return first(ctx, ReadItem[T](db, et, plan, params))
}

// FindInPartition reads the entity with the given primary key values from a partition
func FindInPartition[T any](ctx context.Context, db *DB, et *metadata.EntityType, partitionKey any, keyValues ...any) (*T, bool, error) {
	params, err := keyParameters(et, keyValues)
	if err != nil {
		return nil, false, err
	}

	if p := et.PartitionKeyProperty(); p != nil {
		params[query.KeyParameterName(p)] = partitionKey
	}

	plan, err := query.PlanByKey(et)
	if err != nil {
		return nil, false, err
	}

	return first(ctx, ReadItem[T](db, et, plan, params))
}

// FindByID reads the entity stored under id, partitionKey is ignored when the entity type declares none
func FindByID[T any](ctx context.Context, db *DB, et *metadata.EntityType, id string, partitionKey any) (*T, bool, error) {
	params := types.ParameterValues{}

	if p := et.IDProperty(); p != nil {
		params[query.KeyParameterName(p)] = id
	}

	if p := et.PartitionKeyProperty(); p != nil {
		params[query.KeyParameterName(p)] = partitionKey
	}

	plan, err := query.PlanByID(et)
	if err != nil {
		return nil, false, err
	}

	return first(ctx, ReadItem[T](db, et, plan, params))
}

func keyParameters(et *metadata.EntityType, keyValues []any) (types.ParameterValues, error) {
	key := et.PrimaryKey()
	if len(key) != len(keyValues) {
		return nil, fmt.Errorf("%w: %s expects %d values, got %d", ErrKeyValuesMismatch, et.Name, len(key), len(keyValues))
	}

	params := types.ParameterValues{}
	for i, p := range key {
		params[query.KeyParameterName(p)] = keyValues[i]
	}

	return params, nil
}

func first[T any](ctx context.Context, e *query.ReadItemQueryingEnumerable[*T]) (*T, bool, error) {
	en := e.EnumeratorContext(ctx)
	defer en.Close()

	ok, err := en.Next()
	if err != nil || !ok {
		return nil, false, err
	}

	return en.Current(), true, nil
}
