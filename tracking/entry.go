package tracking

import (
	"fmt"
	"strings"

	"github.com/truora/dynamap/metadata"
)

// EntityState is the tracking state of an entry
type EntityState int

const (
	// Detached entries are not tracked
	Detached EntityState = iota
	// Unchanged entries were materialized from the store
	Unchanged
	// Deleted entries are marked for removal
	Deleted
	// Modified entries have pending changes
	Modified
	// Added entries are new and run their value generators
	Added
)

func (s EntityState) String() string {
	switch s {
	case Detached:
		return "Detached"
	case Unchanged:
		return "Unchanged"
	case Deleted:
		return "Deleted"
	case Modified:
		return "Modified"
	case Added:
		return "Added"
	}

	return fmt.Sprintf("EntityState(%d)", int(s))
}

// InternalEntry holds the property values and state of one entity instance
type InternalEntry struct {
	entityType *metadata.EntityType
	values     map[string]any
	state      EntityState
	entity     any
	manager    *StateManager
}

func newEntry(sm *StateManager, et *metadata.EntityType, entity any) *InternalEntry {
	return &InternalEntry{
		entityType: et,
		values:     map[string]any{},
		entity:     entity,
		manager:    sm,
	}
}

// EntityType returns the entity type of the entry
func (e *InternalEntry) EntityType() *metadata.EntityType {
	return e.entityType
}

// Entity returns the materialized instance, nil for transient entries
func (e *InternalEntry) Entity() any {
	return e.entity
}

// Value returns the current value of p
func (e *InternalEntry) Value(p *metadata.Property) (any, bool) {
	v, ok := e.values[p.Name]

	return v, ok
}

// SetValue sets the current value of p
func (e *InternalEntry) SetValue(p *metadata.Property, v any) {
	e.values[p.Name] = v
}

// State returns the tracking state
func (e *InternalEntry) State() EntityState {
	return e.state
}

// IsTransient reports whether the entry was created outside of the identity map
func (e *InternalEntry) IsTransient() bool {
	return e.manager == nil
}

// SetState moves the entry to state.
// Entering Added fills every property that has a generator and no value yet;
// transient entries only run deterministic generators.
func (e *InternalEntry) SetState(state EntityState) error {
	if state == Added && e.state != Added {
		if err := e.generateValues(); err != nil {
			return err
		}
	}

	if state == Detached && e.manager != nil {
		e.manager.stopTracking(e)
	}

	e.state = state

	return nil
}

func (e *InternalEntry) generateValues() error {
	for _, p := range e.entityType.Properties() {
		gen := p.ValueGenerator
		if gen == nil {
			continue
		}

		if v, ok := e.values[p.Name]; ok && v != nil {
			continue
		}

		if e.IsTransient() && !gen.Deterministic() {
			continue
		}

		v, err := gen.Next(e)
		if err != nil {
			return fmt.Errorf("generating value for %s.%s: %w", e.entityType.Name, p.Name, err)
		}

		if v != nil {
			e.values[p.Name] = v
		}
	}

	return nil
}

// Key returns the identity key built from the primary key values
func (e *InternalEntry) Key() (string, bool, error) {
	key := e.entityType.PrimaryKey()
	parts := make([]string, 0, len(key))

	for _, p := range key {
		v, ok := e.values[p.Name]
		if !ok || v == nil {
			return "", false, nil
		}

		s, err := p.ProviderString(v)
		if err != nil {
			return "", false, err
		}

		parts = append(parts, s)
	}

	return JoinKey(parts), true, nil
}

var keyEscaper = strings.NewReplacer("^", "^^", "|", "^|")

// JoinKey joins provider key parts into an identity key.
// '^' is escaped as "^^" and '|' as "^|", so distinct parts never join to the same key.
func JoinKey(parts []string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = keyEscaper.Replace(p)
	}

	return strings.Join(escaped, "|")
}
