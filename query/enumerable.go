package query

import (
	"context"
	"iter"
	"reflect"

	"github.com/truora/dynamap/diagnostics"
	"github.com/truora/dynamap/expression"
	"github.com/truora/dynamap/storage"
	"github.com/truora/dynamap/types"
)

// lookupFunc performs the single point lookup of an enumerator
type lookupFunc func(input *storage.ReadItemInput) (types.Document, error)

// ReadItemQueryingEnumerable runs a point-read plan.
// Every enumerator it hands out reads the store at most once.
type ReadItemQueryingEnumerable[T any] struct {
	queryContext              *QueryContext
	plan                      *expression.ReadItem
	shaper                    Shaper[T]
	contextType               reflect.Type
	logger                    diagnostics.Logger
	performIdentityResolution bool
}

// NewReadItemQueryingEnumerable returns an enumerable over the item read by plan.
// contextType tags the failures reported to logger.
func NewReadItemQueryingEnumerable[T any](
	qc *QueryContext,
	plan *expression.ReadItem,
	shaper Shaper[T],
	contextType reflect.Type,
	logger diagnostics.Logger,
	performIdentityResolution bool,
) *ReadItemQueryingEnumerable[T] {
	if logger == nil {
		logger = diagnostics.Nop()
	}

	return &ReadItemQueryingEnumerable[T]{
		queryContext:              qc,
		plan:                      plan,
		shaper:                    shaper,
		contextType:               contextType,
		logger:                    logger,
		performIdentityResolution: performIdentityResolution,
	}
}

// Enumerator returns an enumerator blocking on the lookup
func (e *ReadItemQueryingEnumerable[T]) Enumerator() *Enumerator[T] {
	return e.newEnumerator(e.queryContext.Store.ReadItem)
}

// EnumeratorContext returns an enumerator whose lookup is cancelled with ctx
func (e *ReadItemQueryingEnumerable[T]) EnumeratorContext(ctx context.Context) *Enumerator[T] {
	return e.newEnumerator(func(input *storage.ReadItemInput) (types.Document, error) {
		doc, err := e.queryContext.Store.ReadItemWithContext(ctx, input)
		if err != nil {
			return nil, err
		}

		// a cancelled lookup never reads as a missing item
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		return doc, nil
	})
}

func (e *ReadItemQueryingEnumerable[T]) newEnumerator(lookup lookupFunc) *Enumerator[T] {
	return &Enumerator[T]{enumerable: e, lookup: lookup}
}

// All iterates the results, yielding the failure as the last pair
func (e *ReadItemQueryingEnumerable[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		en := e.EnumeratorContext(ctx)
		defer en.Close()

		for {
			ok, err := en.Next()
			if err != nil {
				var zero T
				yield(zero, err)

				return
			}

			if !ok || !yield(en.Current(), nil) {
				return
			}
		}
	}
}

// Plan returns the executed plan
func (e *ReadItemQueryingEnumerable[T]) Plan() *expression.ReadItem {
	return e.plan
}

// ToQueryString is not available, point reads have no query text
func (e *ReadItemQueryingEnumerable[T]) ToQueryString() (string, error) {
	return "", types.ErrNotImplemented
}

func (e *ReadItemQueryingEnumerable[T]) String() string {
	return expression.Print(e.plan)
}

// Enumerator yields at most one item
type Enumerator[T any] struct {
	enumerable  *ReadItemQueryingEnumerable[T]
	lookup      lookupFunc
	current     T
	hasExecuted bool
}

// Next advances the enumerator, the first call reads the store.
// Failures are reported to the logger and returned unchanged.
func (en *Enumerator[T]) Next() (bool, error) {
	hasNext, err := en.advance()
	if err != nil {
		en.enumerable.logger.QueryIterationFailed(en.enumerable.contextType, err)

		return false, err
	}

	return hasNext, nil
}

func (en *Enumerator[T]) advance() (bool, error) {
	e := en.enumerable
	qc := e.queryContext

	exit, err := qc.ConcurrencyDetector.EnterCriticalSection()
	if err != nil {
		return false, err
	}
	defer exit()

	if en.hasExecuted {
		return false, nil
	}

	resourceID, err := ResolveResourceID(e.plan, qc.ParameterValues, qc.StateManager())
	if err != nil {
		return false, err
	}

	partitionKey, err := ResolvePartitionKey(e.plan, qc.ParameterValues)
	if err != nil {
		return false, err
	}

	e.logger.QueryExecutionPlanned(e.plan)

	doc, err := en.lookup(&storage.ReadItemInput{
		Container:    e.plan.Container(),
		PartitionKey: partitionKey,
		ResourceID:   resourceID,
	})
	if err != nil {
		return false, err
	}

	return en.shapeResult(doc)
}

func (en *Enumerator[T]) shapeResult(doc types.Document) (bool, error) {
	e := en.enumerable
	hasNext := len(doc) != 0

	e.queryContext.InitializeStateManager(e.performIdentityResolution)

	var current T

	if hasNext {
		shaped, err := e.shaper(e.queryContext, doc)
		if err != nil {
			return false, err
		}

		current = shaped
	}

	en.current = current
	en.hasExecuted = true

	return hasNext, nil
}

// Current returns the item produced by the last successful Next
func (en *Enumerator[T]) Current() T {
	return en.current
}

// Close drops the current item and forgets the lookup ran
func (en *Enumerator[T]) Close() error {
	var zero T

	en.current = zero
	en.hasExecuted = false

	return nil
}

// Reset is not supported
func (en *Enumerator[T]) Reset() error {
	return types.ErrResetNotSupported
}
