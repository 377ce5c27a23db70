package query

import (
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/truora/dynamap/metadata"
	"github.com/truora/dynamap/tracking"
	"github.com/truora/dynamap/types"
)

// Shaper turns a raw document into a typed result
type Shaper[T any] func(qc *QueryContext, doc types.Document) (T, error)

// NewEntityShaper returns a shaper unmarshaling documents into *T.
// With track set, the result is resolved against the identity map of the query context:
// an entity already tracked under the same key is returned instead of a new instance.
func NewEntityShaper[T any](et *metadata.EntityType, track bool) Shaper[*T] {
	return func(qc *QueryContext, doc types.Document) (*T, error) {
		if !track {
			return unmarshalEntity[T](doc)
		}

		key, ok := documentKey(et, doc)
		if !ok {
			return unmarshalEntity[T](doc)
		}

		sm := qc.StateManager()

		if entry, found := sm.TryGet(et, key); found {
			if entity, isT := entry.Entity().(*T); isT {
				return entity, nil
			}
		}

		entity, err := unmarshalEntity[T](doc)
		if err != nil {
			return nil, err
		}

		if _, err := sm.StartTracking(et, key, entity); err != nil {
			return nil, err
		}

		return entity, nil
	}
}

func unmarshalEntity[T any](doc types.Document) (*T, error) {
	entity := new(T)

	if err := attributevalue.UnmarshalMap(doc, entity); err != nil {
		return nil, fmt.Errorf("shaping %T: %w", entity, err)
	}

	return entity, nil
}

// documentKey builds the identity key from the stored primary key attributes
func documentKey(et *metadata.EntityType, doc types.Document) (string, bool) {
	key := et.PrimaryKey()
	if len(key) == 0 {
		return "", false
	}

	parts := make([]string, 0, len(key))

	for _, p := range key {
		av, ok := doc[p.StoreName]
		if !ok {
			return "", false
		}

		s := scalarString(av)
		if s == "" {
			return "", false
		}

		parts = append(parts, s)
	}

	return tracking.JoinKey(parts), true
}

func scalarString(av ddbtypes.AttributeValue) string {
	switch v := av.(type) {
	case *ddbtypes.AttributeValueMemberS:
		return v.Value
	case *ddbtypes.AttributeValueMemberN:
		return v.Value
	case *ddbtypes.AttributeValueMemberBOOL:
		return strconv.FormatBool(v.Value)
	}

	return ""
}
