package metadata

import (
	"strings"

	"github.com/google/uuid"
)

// ValueSource exposes the current values of an entry to value generators
type ValueSource interface {
	EntityType() *EntityType
	Value(p *Property) (any, bool)
}

// ValueGenerator produces a property value when an entry starts being added
type ValueGenerator interface {
	Next(src ValueSource) (any, error)
	// Deterministic generators derive their value from other values of the entry
	Deterministic() bool
}

// IDValueGenerator builds the item id from the primary key values.
// Values are joined with '|' and a literal '|' is escaped as "^|", '^' is kept as is.
type IDValueGenerator struct{}

// Next returns the id, or nil when a key value is missing
func (IDValueGenerator) Next(src ValueSource) (any, error) {
	et := src.EntityType()
	key := et.PrimaryKey()
	parts := make([]string, 0, len(key)+1)

	if et.Discriminator != "" {
		parts = append(parts, escapeKeyPart(et.Discriminator))
	}

	for _, p := range key {
		if p.Name == et.PartitionKeyPropertyName() && len(key) > 1 {
			continue
		}

		v, ok := src.Value(p)
		if !ok || v == nil {
			return nil, nil
		}

		s, err := p.ProviderString(v)
		if err != nil {
			return nil, err
		}

		parts = append(parts, escapeKeyPart(s))
	}

	if len(parts) == 0 {
		return nil, nil
	}

	return strings.Join(parts, "|"), nil
}

// Deterministic returns true
func (IDValueGenerator) Deterministic() bool { return true }

func escapeKeyPart(s string) string {
	return strings.ReplaceAll(s, "|", "^|")
}

// UUIDGenerator generates random version 4 identifiers
type UUIDGenerator struct {
	// AsString returns the canonical text form instead of uuid.UUID
	AsString bool
}

// Next returns a new random uuid
func (g UUIDGenerator) Next(ValueSource) (any, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	if g.AsString {
		return id.String(), nil
	}

	return id, nil
}

// Deterministic returns false
func (UUIDGenerator) Deterministic() bool { return false }
