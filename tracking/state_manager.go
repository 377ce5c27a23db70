package tracking

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/truora/dynamap/metadata"
)

// ErrIdentityConflict when a different instance with the same key is already tracked
var ErrIdentityConflict = errors.New("another instance with the same key is already being tracked")

type identityKey struct {
	entityType string
	key        string
}

// StateManager owns the identity map of a query context.
// It is not safe for concurrent use, its owner serializes access.
type StateManager struct {
	identityMap map[identityKey]*InternalEntry
	// order keeps Entries stable
	order []identityKey
}

// NewStateManager returns an empty state manager
func NewStateManager() *StateManager {
	return &StateManager{
		identityMap: map[identityKey]*InternalEntry{},
	}
}

// NewTransientEntry returns a detached entry for et that is never registered
// with the identity map, even when it later changes state.
func (sm *StateManager) NewTransientEntry(et *metadata.EntityType) *InternalEntry {
	return newEntry(nil, et, nil)
}

// TryGet returns the tracked entry for key
func (sm *StateManager) TryGet(et *metadata.EntityType, key string) (*InternalEntry, bool) {
	entry, ok := sm.identityMap[identityKey{entityType: et.Name, key: key}]

	return entry, ok
}

// StartTracking registers entity under key as Unchanged.
// Tracking the same instance twice returns the existing entry.
func (sm *StateManager) StartTracking(et *metadata.EntityType, key string, entity any) (*InternalEntry, error) {
	ik := identityKey{entityType: et.Name, key: key}

	if existing, ok := sm.identityMap[ik]; ok {
		if !sameInstance(existing.entity, entity) {
			return nil, fmt.Errorf("%w: %s with key %q", ErrIdentityConflict, et.Name, key)
		}

		return existing, nil
	}

	entry := newEntry(sm, et, entity)
	entry.state = Unchanged
	sm.identityMap[ik] = entry
	sm.order = append(sm.order, ik)

	return entry, nil
}

func (sm *StateManager) stopTracking(e *InternalEntry) {
	for ik, entry := range sm.identityMap {
		if entry != e {
			continue
		}

		delete(sm.identityMap, ik)

		for i, k := range sm.order {
			if k == ik {
				sm.order = append(sm.order[:i], sm.order[i+1:]...)
				break
			}
		}

		return
	}
}

// Entries returns the tracked entries in registration order
func (sm *StateManager) Entries() []*InternalEntry {
	entries := make([]*InternalEntry, 0, len(sm.order))
	for _, ik := range sm.order {
		entries = append(entries, sm.identityMap[ik])
	}

	return entries
}

// Count returns the number of tracked entries
func (sm *StateManager) Count() int {
	return len(sm.identityMap)
}

// Clear stops tracking every entry
func (sm *StateManager) Clear() {
	sm.identityMap = map[identityKey]*InternalEntry{}
	sm.order = nil
}

func sameInstance(a, b any) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}

	if ta == nil || !ta.Comparable() {
		return ta == nil
	}

	return a == b
}
