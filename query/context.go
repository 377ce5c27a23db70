package query

import (
	"maps"
	"sync/atomic"

	"github.com/truora/dynamap/storage"
	"github.com/truora/dynamap/tracking"
	"github.com/truora/dynamap/types"
)

// ConcurrencyDetector flags a query context entered while it is already in use.
// It is not a lock: the second caller fails instead of waiting.
type ConcurrencyDetector struct {
	inCriticalSection atomic.Bool
}

// EnterCriticalSection marks the context as busy and returns the function leaving it
func (d *ConcurrencyDetector) EnterCriticalSection() (func(), error) {
	if !d.inCriticalSection.CompareAndSwap(false, true) {
		return nil, types.ErrConcurrentMethodInvocation
	}

	return func() { d.inCriticalSection.Store(false) }, nil
}

// QueryContext carries what a running query needs from its owner
type QueryContext struct {
	Store               storage.Client
	ParameterValues     types.ParameterValues
	ConcurrencyDetector *ConcurrencyDetector

	stateManager *tracking.StateManager
	queryScoped  *tracking.StateManager
}

// NewQueryContext returns a context reading from store and tracking into sm.
// A nil sm gets a fresh state manager. params is copied.
func NewQueryContext(store storage.Client, sm *tracking.StateManager, params types.ParameterValues) *QueryContext {
	if sm == nil {
		sm = tracking.NewStateManager()
	}

	return &QueryContext{
		Store:               store,
		ParameterValues:     maps.Clone(params),
		ConcurrencyDetector: &ConcurrencyDetector{},
		stateManager:        sm,
	}
}

// InitializeStateManager prepares identity tracking for the results about to be shaped.
// standAlone switches to a state manager private to this query context, used to resolve identity
// without tracking into the owner.
func (qc *QueryContext) InitializeStateManager(standAlone bool) {
	if !standAlone {
		qc.queryScoped = nil
		return
	}

	if qc.queryScoped == nil {
		qc.queryScoped = tracking.NewStateManager()
	}
}

// StateManager returns the state manager shaped entities are resolved against
func (qc *QueryContext) StateManager() *tracking.StateManager {
	if qc.queryScoped != nil {
		return qc.queryScoped
	}

	return qc.stateManager
}

// WithParameters returns a context sharing the store, detector and state manager of qc
// with its own copy of params
func (qc *QueryContext) WithParameters(params types.ParameterValues) *QueryContext {
	return &QueryContext{
		Store:               qc.Store,
		ParameterValues:     maps.Clone(params),
		ConcurrencyDetector: qc.ConcurrencyDetector,
		stateManager:        qc.stateManager,
	}
}
